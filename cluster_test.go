package gemdrop

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go/rpc"
)

func TestClusterURL(t *testing.T) {
	cases := map[string]string{
		"devnet":       rpc.DevNet_RPC,
		" Devnet ":     rpc.DevNet_RPC,
		"testnet":      rpc.TestNet_RPC,
		"mainnet-beta": rpc.MainNetBeta_RPC,
		"mainnet":      rpc.MainNetBeta_RPC,
		"localnet":     rpc.LocalNet_RPC,
	}
	for in, want := range cases {
		got, err := ClusterURL(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: got %s want %s", in, got, want)
		}
	}

	if _, err := ClusterURL("moonnet"); !errors.Is(err, ErrUnknownCluster) {
		t.Fatalf("expected ErrUnknownCluster, got %v", err)
	}
}

func TestEndpoint_RPCOverridesCluster(t *testing.T) {
	got, err := Endpoint(Config{Cluster: "nope", RPC: "http://127.0.0.1:9999"})
	if err != nil || got != "http://127.0.0.1:9999" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestExplorerURL(t *testing.T) {
	if got := ExplorerURL(Devnet, "sig"); got != "https://explorer.solana.com/tx/sig?cluster=devnet" {
		t.Fatalf("devnet: %s", got)
	}
	if got := ExplorerURL(MainnetBeta, "sig"); got != "https://explorer.solana.com/tx/sig" {
		t.Fatalf("mainnet: %s", got)
	}
}

func TestReached(t *testing.T) {
	cases := []struct {
		status rpc.ConfirmationStatusType
		want   rpc.CommitmentType
		ok     bool
	}{
		{rpc.ConfirmationStatusProcessed, rpc.CommitmentConfirmed, false},
		{rpc.ConfirmationStatusConfirmed, rpc.CommitmentConfirmed, true},
		{rpc.ConfirmationStatusFinalized, rpc.CommitmentConfirmed, true},
		{rpc.ConfirmationStatusConfirmed, rpc.CommitmentFinalized, false},
		{rpc.ConfirmationStatusProcessed, rpc.CommitmentProcessed, true},
		{"", rpc.CommitmentProcessed, false},
	}
	for _, c := range cases {
		if got := Reached(c.status, c.want); got != c.ok {
			t.Fatalf("Reached(%q, %q) = %v, want %v", c.status, c.want, got, c.ok)
		}
	}
}

func TestFmtSOL(t *testing.T) {
	for in, want := range map[uint64]string{
		0:                "0",
		AirdropLamports:  "0.5",
		GemPriceLamports: "0.1",
		1_500_000_001:    "1.500000001",
		3_000_000_000:    "3",
	} {
		if got := FmtSOL(in); got != want {
			t.Fatalf("FmtSOL(%d) = %s, want %s", in, got, want)
		}
	}
}
