package gemdrop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

// Home is the directory holding the keystore and ledger by default.
func Home() string {
	if dir := os.Getenv("GEMDROP_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".gemdrop")
}

func Defaults() map[string]any {
	home := Home()
	return map[string]any{
		"cluster":              Devnet,
		"rpc":                  "",
		"recipient":            "",
		"keystore":             filepath.Join(home, "keystore.json"),
		"keygen":               defaultKeygenPath(),
		"db_path":              filepath.Join(home, "ledger.db"),
		"confirm_timeout":      "30s",
		"palette.primary":      "#21153B",
		"palette.soft_primary": "#45365F",
		"palette.dark_primary": "#120D21",
		"palette.text":         "#FFFFFF",
		"palette.soft_grey":    "#463E57",
		"palette.success":      "#22C55E",
		"palette.error":        "#EF4444",
	}
}

func defaultKeygenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "solana", "id.json")
}

// LoadConfig reads gemdrop.yaml (explicit path first, then the user config
// dir, then Home), applies GEMDROP_* env overrides and validates the result.
func LoadConfig(path string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName("gemdrop")
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "gemdrop"))
	}
	v.AddConfigPath(Home())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("gemdrop")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if c.RPC == "" {
		if _, err := ClusterURL(c.Cluster); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if c.Recipient != "" {
		if _, err := solana.PublicKeyFromBase58(c.Recipient); err != nil {
			return fmt.Errorf("config: recipient %q: %w", c.Recipient, ErrInvalidAddress)
		}
	}
	return nil
}

// RecipientKey returns the configured purchase recipient.
func (c Config) RecipientKey() (solana.PublicKey, error) {
	if c.Recipient == "" {
		return solana.PublicKey{}, ErrNoRecipient
	}
	pk, err := solana.PublicKeyFromBase58(c.Recipient)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("recipient: %w", ErrInvalidAddress)
	}
	return pk, nil
}
