package gemdrop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gagliardetto/solana-go"
)

// Prompt asks the user for a secret value such as a password or seed phrase.
type Prompt func(label string) ([]byte, error)

// WalletAdapter is one way of holding a signing key.
type WalletAdapter interface {
	Name() string
	Ready() bool
	Connect(ctx context.Context) (solana.PublicKey, error)
	Disconnect()
	PublicKey() (solana.PublicKey, bool)
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
}

// WalletState is the read-only view of the connected wallet.
type WalletState interface {
	Connected() bool
	PublicKey() (solana.PublicKey, bool)
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
}

const (
	AdapterKeystore = "keystore"
	AdapterMnemonic = "mnemonic"
	AdapterKeygen   = "keygen"

	settingSelected = "wallet.selected"
)

type signer struct {
	mu  sync.Mutex
	key *solana.PrivateKey
}

func (s *signer) set(key solana.PrivateKey) solana.PublicKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = &key
	return key.PublicKey()
}

func (s *signer) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = nil
}

func (s *signer) PublicKey() (solana.PublicKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key == nil {
		return solana.PublicKey{}, false
	}
	return s.key.PublicKey(), true
}

func (s *signer) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	key := s.key
	s.mu.Unlock()
	if key == nil {
		return nil, ErrNotConnected
	}

	pub := key.PublicKey()
	_, err := tx.Sign(func(k solana.PublicKey) *solana.PrivateKey {
		if k.Equals(pub) {
			return key
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return tx, nil
}

type KeystoreAdapter struct {
	signer
	path   string
	prompt Prompt
}

func NewKeystoreAdapter(path string, prompt Prompt) *KeystoreAdapter {
	return &KeystoreAdapter{path: path, prompt: prompt}
}

func (a *KeystoreAdapter) Name() string { return AdapterKeystore }

func (a *KeystoreAdapter) Ready() bool {
	_, err := os.Stat(a.path)
	return err == nil && a.prompt != nil
}

func (a *KeystoreAdapter) Connect(ctx context.Context) (solana.PublicKey, error) {
	if a.prompt == nil {
		return solana.PublicKey{}, errors.New("keystore: no password prompt")
	}
	pwd, err := a.prompt("password: ")
	if err != nil {
		return solana.PublicKey{}, err
	}
	secret, err := LoadKeystore(a.path, pwd)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return a.set(solana.PrivateKey(secret)), nil
}

type MnemonicAdapter struct {
	signer
	prompt Prompt
}

func NewMnemonicAdapter(prompt Prompt) *MnemonicAdapter {
	return &MnemonicAdapter{prompt: prompt}
}

func (a *MnemonicAdapter) Name() string { return AdapterMnemonic }

func (a *MnemonicAdapter) Ready() bool { return a.prompt != nil }

func (a *MnemonicAdapter) Connect(ctx context.Context) (solana.PublicKey, error) {
	if a.prompt == nil {
		return solana.PublicKey{}, errors.New("mnemonic: no prompt")
	}
	phrase, err := a.prompt("mnemonic: ")
	if err != nil {
		return solana.PublicKey{}, err
	}
	w, err := FromMnemonic(string(phrase))
	if err != nil {
		return solana.PublicKey{}, err
	}
	return a.set(w.PrivateKey()), nil
}

// KeygenAdapter reads a solana-keygen JSON keypair file.
type KeygenAdapter struct {
	signer
	path string
}

func NewKeygenAdapter(path string) *KeygenAdapter {
	return &KeygenAdapter{path: path}
}

func (a *KeygenAdapter) Name() string { return AdapterKeygen }

func (a *KeygenAdapter) Ready() bool {
	if a.path == "" {
		return false
	}
	_, err := os.Stat(a.path)
	return err == nil
}

func (a *KeygenAdapter) Connect(ctx context.Context) (solana.PublicKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(a.path)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("keygen: %w", err)
	}
	return a.set(key), nil
}

// SettingsStore remembers small key/value settings between runs.
type SettingsStore interface {
	Setting(key string) (string, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

// WalletProvider owns adapter selection and connection state.
type WalletProvider struct {
	mu       sync.Mutex
	adapters []WalletAdapter
	selected WalletAdapter
	store    SettingsStore
	logger   *log.Logger
}

func NewWalletProvider(adapters []WalletAdapter, store SettingsStore, logger *log.Logger) *WalletProvider {
	if logger == nil {
		logger = Log
	}
	return &WalletProvider{adapters: adapters, store: store, logger: logger}
}

func (p *WalletProvider) Adapters() []WalletAdapter {
	return append([]WalletAdapter(nil), p.adapters...)
}

func (p *WalletProvider) lookup(name string) (WalletAdapter, error) {
	for _, a := range p.adapters {
		if a.Name() == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAdapter, name)
}

// Select makes name the active adapter, disconnecting any previous one.
func (p *WalletProvider) Select(name string) error {
	a, err := p.lookup(name)
	if err != nil {
		return err
	}

	p.mu.Lock()
	prev := p.selected
	p.selected = a
	p.mu.Unlock()

	if prev != nil && prev != a {
		prev.Disconnect()
	}
	if p.store != nil {
		if err := p.store.SetSetting(settingSelected, name); err != nil {
			p.logger.Warn("remember wallet", "err", err)
		}
	}
	return nil
}

func (p *WalletProvider) Selected() (WalletAdapter, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected, p.selected != nil
}

func (p *WalletProvider) Connect(ctx context.Context) (solana.PublicKey, error) {
	a, ok := p.Selected()
	if !ok {
		return solana.PublicKey{}, ErrNoWallet
	}
	pub, err := a.Connect(ctx)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("connect %s: %w", a.Name(), err)
	}
	p.logger.Info("wallet connected", "adapter", a.Name(), "pubkey", pub)
	return pub, nil
}

// Disconnect drops the connection and forgets the remembered adapter.
func (p *WalletProvider) Disconnect() {
	p.mu.Lock()
	a := p.selected
	p.selected = nil
	p.mu.Unlock()

	if a != nil {
		a.Disconnect()
		p.logger.Info("wallet disconnected", "adapter", a.Name())
	}
	if p.store != nil {
		if err := p.store.DeleteSetting(settingSelected); err != nil {
			p.logger.Warn("forget wallet", "err", err)
		}
	}
}

// AutoConnect reconnects the adapter remembered from a previous run.
func (p *WalletProvider) AutoConnect(ctx context.Context) bool {
	if p.store == nil {
		return false
	}
	name, err := p.store.Setting(settingSelected)
	if err != nil || name == "" {
		return false
	}
	a, err := p.lookup(name)
	if err != nil {
		p.logger.Warn("auto-connect", "err", err)
		return false
	}
	if !a.Ready() {
		p.logger.Debug("auto-connect skipped", "adapter", name)
		return false
	}

	p.mu.Lock()
	p.selected = a
	p.mu.Unlock()

	if _, err := p.Connect(ctx); err != nil {
		p.logger.Warn("auto-connect", "err", err)
		return false
	}
	return true
}

func (p *WalletProvider) Connected() bool {
	_, ok := p.PublicKey()
	return ok
}

func (p *WalletProvider) PublicKey() (solana.PublicKey, bool) {
	a, ok := p.Selected()
	if !ok {
		return solana.PublicKey{}, false
	}
	return a.PublicKey()
}

func (p *WalletProvider) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	a, ok := p.Selected()
	if !ok {
		return nil, ErrNotConnected
	}
	return a.SignTransaction(ctx, tx)
}
