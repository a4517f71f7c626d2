package gemdrop

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"
)

const (
	Devnet      = "devnet"
	Testnet     = "testnet"
	MainnetBeta = "mainnet-beta"
	Localnet    = "localnet"
)

var clusters = map[string]string{
	Devnet:      rpc.DevNet_RPC,
	Testnet:     rpc.TestNet_RPC,
	MainnetBeta: rpc.MainNetBeta_RPC,
	Localnet:    rpc.LocalNet_RPC,
}

// ClusterURL returns the public JSON-RPC endpoint for a named cluster.
func ClusterURL(cluster string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(cluster))
	if name == "mainnet" {
		name = MainnetBeta
	}
	url, ok := clusters[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCluster, cluster)
	}
	return url, nil
}

// Endpoint resolves the RPC URL for cfg; an explicit rpc setting wins.
func Endpoint(cfg Config) (string, error) {
	if cfg.RPC != "" {
		return cfg.RPC, nil
	}
	return ClusterURL(cfg.Cluster)
}

func ExplorerURL(cluster, signature string) string {
	base := "https://explorer.solana.com/tx/" + signature
	switch cluster {
	case Devnet, Testnet:
		return base + "?cluster=" + cluster
	case Localnet:
		return base + "?cluster=custom"
	default:
		return base
	}
}
