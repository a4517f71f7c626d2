package gemdrop

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
)

type Activity struct {
	ID        string
	Kind      string
	Address   string
	Lamports  uint64
	Signature string
	Time      int64
	Status    string
}

const (
	KindAirdrop  = "airdrop"
	KindPurchase = "purchase"

	StatusPending = "pending"
	StatusSent    = "sent"
	StatusDone    = "done"
	StatusFail    = "fail"
)

type Wallet struct {
	Pubkey string
	Secret []byte
}

type Palette struct {
	Primary     string `mapstructure:"primary"`
	SoftPrimary string `mapstructure:"soft_primary"`
	DarkPrimary string `mapstructure:"dark_primary"`
	Text        string `mapstructure:"text"`
	SoftGrey    string `mapstructure:"soft_grey"`
	Success     string `mapstructure:"success"`
	Error       string `mapstructure:"error"`
}

type Config struct {
	Cluster        string        `mapstructure:"cluster"`
	RPC            string        `mapstructure:"rpc"`
	Recipient      string        `mapstructure:"recipient"`
	Keystore       string        `mapstructure:"keystore"`
	Keygen         string        `mapstructure:"keygen"`
	DbPath         string        `mapstructure:"db_path"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
	Palette        Palette       `mapstructure:"palette"`
}

const (
	// AirdropLamports is the faucet grant per claim (0.5 SOL).
	AirdropLamports = solana.LAMPORTS_PER_SOL / 2
	// GemPriceLamports is the fixed purchase transfer (0.1 SOL).
	GemPriceLamports = solana.LAMPORTS_PER_SOL / 10
	GemsPerPurchase  = 1000

	ErrorClearDelay = 10 * time.Second

	FaucetURL = "https://faucet.solana.com"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrNotConnected   = errors.New("wallet not connected")
	ErrAlreadyClaimed = errors.New("airdrop already claimed")
	ErrNoRecipient    = errors.New("recipient not configured")
	ErrUnknownAdapter = errors.New("unknown wallet adapter")
	ErrUnknownCluster = errors.New("unknown cluster")
	ErrNoWallet       = errors.New("no wallet selected")
	ErrClosed         = errors.New("panel closed")
)

// FmtSOL renders lamports as SOL without trailing zeros.
func FmtSOL(lamports uint64) string {
	whole := lamports / solana.LAMPORTS_PER_SOL
	frac := lamports % solana.LAMPORTS_PER_SOL
	if frac == 0 {
		return fmt.Sprintf("%d", whole)
	}
	return fmt.Sprintf("%d.%s", whole, strings.TrimRight(fmt.Sprintf("%09d", frac), "0"))
}
