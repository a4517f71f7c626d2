package gemdrop

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestNewMnemonic_RecoversSameWallet(t *testing.T) {
	mnemonic, w, err := NewMnemonic()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	got, err := FromMnemonic("  " + mnemonic + "\n")
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if got.Pubkey != w.Pubkey || !bytes.Equal(got.Secret, w.Secret) {
		t.Fatalf("recovered wallet differs")
	}
	if w.PrivateKey().PublicKey().String() != w.Pubkey {
		t.Fatalf("pubkey mismatch: %s vs %s", w.PrivateKey().PublicKey(), w.Pubkey)
	}
	if Pubkey(w.Secret) != w.Pubkey {
		t.Fatalf("Pubkey(secret) mismatch")
	}
}

func TestFromMnemonic_Invalid(t *testing.T) {
	if _, err := FromMnemonic("not a valid seed phrase"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestKeystore_SaveLoad(t *testing.T) {
	_, w, err := NewMnemonic()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	path := filepath.Join(t.TempDir(), "nested", "keystore.json")

	if err := SaveKeystore(path, w.Secret, []byte("hunter2")); err != nil {
		t.Fatalf("save: %v", err)
	}
	secret, err := LoadKeystore(path, []byte("hunter2"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(secret, w.Secret) {
		t.Fatalf("secret mismatch")
	}
	if _, err := LoadKeystore(path, []byte("wrong")); err == nil {
		t.Fatalf("expected wrong password error")
	}
}
