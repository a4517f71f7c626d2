package main

import (
	"bytes"
	"strings"
	"testing"

	"gemdrop"
)

func TestPrintState(t *testing.T) {
	var buf bytes.Buffer
	printState(&buf, gemdrop.State{TxID: "abc123", Success: true})
	if got := buf.String(); got != "Transaction hash: abc123\nAirdrop successful!\n" {
		t.Fatalf("got %q", got)
	}

	buf.Reset()
	printState(&buf, gemdrop.State{Err: gemdrop.MsgInvalidAddress})
	if got := buf.String(); got != "Invalid address\n" {
		t.Fatalf("got %q", got)
	}
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil, 0)
	if buf.String() != "no activity\n" {
		t.Fatalf("got %q", buf.String())
	}

	buf.Reset()
	printHistory(&buf, []gemdrop.Activity{{
		ID:       "0123456789abcdef",
		Kind:     gemdrop.KindPurchase,
		Address:  "11111111111111111111111111111111",
		Lamports: gemdrop.GemPriceLamports,
		Time:     100,
		Status:   gemdrop.StatusDone,
	}}, 220)
	out := buf.String()
	for _, want := range []string{"01234567", "purchase", "11111111...", "0.1", "done", "2m ago"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}
}

func TestPrintHistory_ShortID(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, []gemdrop.Activity{{
		ID:     "abc",
		Kind:   gemdrop.KindAirdrop,
		Status: gemdrop.StatusFail,
	}}, 0)
	if !strings.Contains(buf.String(), "abc      | airdrop") {
		t.Fatalf("got %s", buf.String())
	}
}

func TestFmtAgo(t *testing.T) {
	cases := map[int64]string{
		5:      "5s ago",
		120:    "2m ago",
		7200:   "2h ago",
		172800: "2d ago",
	}
	for in, want := range cases {
		if got := fmtAgo(in); got != want {
			t.Fatalf("fmtAgo(%d) = %s, want %s", in, got, want)
		}
	}
}

func TestRoot_RegistersCommands(t *testing.T) {
	root := newRoot()
	for _, name := range []string{"panel", "airdrop", "claim", "purchase", "wallets", "connect", "disconnect", "init", "recover", "balance", "history", "cluster"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Fatalf("command %s not registered", name)
		}
	}
}

func TestRun_PrintsCommandError(t *testing.T) {
	t.Setenv("GEMDROP_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	code := run([]string{"connect", "phantom"}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if got := stderr.String(); got != "error: unknown wallet adapter: phantom\n" {
		t.Fatalf("stderr %q", got)
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout %q", stdout.String())
	}
}

func TestRun_Success(t *testing.T) {
	t.Setenv("GEMDROP_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	if code := run([]string{"cluster"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr.String())
	}
	if stderr.Len() != 0 {
		t.Fatalf("stderr %q", stderr.String())
	}
}
