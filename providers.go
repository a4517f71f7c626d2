package gemdrop

import (
	"github.com/charmbracelet/log"
)

// Providers is the fixed composition the panel reads from: one network
// connection and one wallet provider over three adapters.
type Providers struct {
	Cluster  string
	Endpoint string
	Conn     Connection
	Wallet   *WalletProvider
}

type WalletInfo struct {
	Name      string
	Ready     bool
	Selected  bool
	Connected bool
}

// DefaultAdapters returns the adapter list in its fixed order.
func DefaultAdapters(cfg Config, prompt Prompt) []WalletAdapter {
	return []WalletAdapter{
		NewKeystoreAdapter(cfg.Keystore, prompt),
		NewMnemonicAdapter(prompt),
		NewKeygenAdapter(cfg.Keygen),
	}
}

func NewProviders(cfg Config, store SettingsStore, prompt Prompt, logger *log.Logger) (*Providers, error) {
	if logger == nil {
		logger = Log
	}
	endpoint, err := Endpoint(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("providers", "cluster", cfg.Cluster, "endpoint", endpoint)

	return &Providers{
		Cluster:  cfg.Cluster,
		Endpoint: endpoint,
		Conn:     NewConnection(endpoint, cfg.ConfirmTimeout),
		Wallet:   NewWalletProvider(DefaultAdapters(cfg, prompt), store, logger),
	}, nil
}

// Wallets lists the adapters for a selection menu.
func (p *Providers) Wallets() []WalletInfo {
	sel, _ := p.Wallet.Selected()
	var out []WalletInfo
	for _, a := range p.Wallet.Adapters() {
		_, connected := a.PublicKey()
		out = append(out, WalletInfo{
			Name:      a.Name(),
			Ready:     a.Ready(),
			Selected:  sel != nil && sel.Name() == a.Name(),
			Connected: connected,
		})
	}
	return out
}
