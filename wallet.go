package gemdrop

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip39"
)

// NewMnemonic creates a 24-word seed phrase and the wallet derived from it.
func NewMnemonic() (mnemonic string, wallet Wallet, err error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", Wallet{}, err
	}

	mnemonic, err = bip39.NewMnemonic(entropy)
	if err != nil {
		return "", Wallet{}, err
	}

	wallet, err = FromMnemonic(mnemonic)
	return mnemonic, wallet, err
}

func FromMnemonic(mnemonic string) (Wallet, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return Wallet{}, errors.New("invalid mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, "")
	priv := ed25519.NewKeyFromSeed(seed[:32])

	return Wallet{
		Pubkey: base58.Encode(priv.Public().(ed25519.PublicKey)),
		Secret: []byte(priv),
	}, nil
}

func (w Wallet) PrivateKey() solana.PrivateKey {
	return solana.PrivateKey(w.Secret)
}

func SaveKeystore(path string, secret, password []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	enc, err := seal(secret, password)
	if err != nil {
		return err
	}

	data, err := json.Marshal(map[string]string{
		"pubkey":  Pubkey(secret),
		"keypair": hex.EncodeToString(enc),
	})
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func LoadKeystore(path string, password []byte) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("keystore: %w", err)
	}

	enc, err := hex.DecodeString(stored["keypair"])
	if err != nil {
		return nil, fmt.Errorf("keystore: %w", err)
	}

	secret, err := open(enc, password)
	if err != nil {
		return nil, errors.New("keystore: wrong password or corrupt file")
	}
	return secret, nil
}

// Pubkey returns the base58 public half of a 64-byte ed25519 secret.
func Pubkey(secret []byte) string {
	if len(secret) < 64 {
		return ""
	}
	return base58.Encode(secret[32:64])
}

func seal(data, password []byte) ([]byte, error) {
	gcm, err := newGCM(password)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, data, nil), nil
}

func open(data, password []byte) ([]byte, error) {
	gcm, err := newGCM(password)
	if err != nil {
		return nil, err
	}

	if len(data) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(password []byte) (cipher.AEAD, error) {
	key := sha256.Sum256(password)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
