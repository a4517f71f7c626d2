package tui

import (
	"context"
	"io"
	"strings"
	"testing"

	"gemdrop"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

func testModel(t *testing.T) Model {
	t.Helper()
	providers, err := gemdrop.NewProviders(gemdrop.Config{Cluster: gemdrop.Devnet}, nil, nil, log.New(io.Discard))
	if err != nil {
		t.Fatalf("providers: %v", err)
	}
	feed, updates := Feed()
	panel := gemdrop.NewPanel(providers.Conn, providers.Wallet, feed, gemdrop.WithLogger(log.New(io.Discard)))
	t.Cleanup(panel.Close)
	return New(context.Background(), providers, panel, updates, NewStyles(gemdrop.Palette{}))
}

func TestStatusView_Success(t *testing.T) {
	out := StatusView(gemdrop.State{TxID: "abc123", Success: true, Phase: gemdrop.PhaseSucceeded}, NewStyles(gemdrop.Palette{}))
	if !strings.Contains(out, "Transaction hash: abc123") {
		t.Fatalf("missing tx hash; got %q", out)
	}
	if !strings.Contains(out, "Airdrop successful!") {
		t.Fatalf("missing success text; got %q", out)
	}
}

func TestStatusView_Error(t *testing.T) {
	out := StatusView(gemdrop.State{Err: gemdrop.MsgAirdropFailed, Phase: gemdrop.PhaseFailed}, NewStyles(gemdrop.Palette{}))
	if !strings.Contains(out, "faucet.solana.com") {
		t.Fatalf("missing faucet hint; got %q", out)
	}
	if strings.Contains(out, "Transaction hash") {
		t.Fatalf("unexpected tx hash; got %q", out)
	}
}

func TestModel_EnterWithBadAddressRejects(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("not-a-real-address")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	msg := cmd()
	done, ok := msg.(doneMsg)
	if !ok || done.op != "airdrop" || done.err == nil {
		t.Fatalf("unexpected msg %#v", msg)
	}

	next, _ = next.Update(done)
	view := next.View()
	if !strings.Contains(view, gemdrop.MsgInvalidAddress) {
		t.Fatalf("view missing invalid address; got %s", view)
	}
}

func TestModel_PurchaseWithoutWallet(t *testing.T) {
	m := testModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	msg := cmd()
	next, _ := m.Update(msg)
	if !strings.Contains(next.View(), "connect your wallet first") {
		t.Fatalf("missing notice; got %s", next.View())
	}
}

func TestModel_NextAdapterCycles(t *testing.T) {
	m := testModel(t)
	if got := m.nextAdapter(); got != gemdrop.AdapterKeystore {
		t.Fatalf("first: %s", got)
	}
	if err := m.providers.Wallet.Select(gemdrop.AdapterKeygen); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := m.nextAdapter(); got != gemdrop.AdapterKeystore {
		t.Fatalf("wrap: %s", got)
	}
}
