package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"gemdrop"
	"gemdrop/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	configPath string
	logLevel   string
	notifyMode string
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRoot()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "gemdrop",
		Short:         "connect a Solana wallet, claim devnet airdrops and buy gems",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return gemdrop.SetLevel(logLevel)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to gemdrop.yaml")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn, error")
	root.PersistentFlags().StringVar(&notifyMode, "notify", "", "write events to stdout: json")

	root.AddCommand(initCmd())
	root.AddCommand(recoverCmd())
	root.AddCommand(walletsCmd())
	root.AddCommand(connectCmd())
	root.AddCommand(disconnectCmd())
	root.AddCommand(airdropCmd())
	root.AddCommand(claimCmd())
	root.AddCommand(purchaseCmd())
	root.AddCommand(balanceCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(clusterCmd())
	root.AddCommand(panelCmd())

	return root
}

type app struct {
	cfg       gemdrop.Config
	ledger    *gemdrop.Ledger
	providers *gemdrop.Providers
	panel     *gemdrop.Panel
	stop      func()
}

func setup(out io.Writer, opts ...gemdrop.Option) (*app, error) {
	cfg, err := gemdrop.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	ledger, err := gemdrop.OpenLedger(cfg.DbPath)
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}

	providers, err := gemdrop.NewProviders(cfg, ledger, prompt, gemdrop.Log)
	if err != nil {
		ledger.Close()
		return nil, err
	}

	opts = append(opts, gemdrop.WithRecorder(ledger), gemdrop.WithLogger(gemdrop.Log))
	if pk, err := cfg.RecipientKey(); err == nil {
		opts = append(opts, gemdrop.WithRecipient(pk))
	}
	panel := gemdrop.NewPanel(providers.Conn, providers.Wallet, opts...)

	a := &app{cfg: cfg, ledger: ledger, providers: providers, panel: panel, stop: func() {}}
	if notifyMode == "json" {
		a.stop = forward(panel.Bus(), out)
	}
	return a, nil
}

func (a *app) Close() {
	a.panel.Close()
	a.stop()
	a.ledger.Close()
}

// forward writes every event as one JSON line until the returned func runs.
func forward(bus *gemdrop.Bus, out io.Writer) func() {
	events, cancel := bus.Subscribe(16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			line, err := gemdrop.MarshalEvent(ev)
			if err != nil {
				gemdrop.Log.Warn("notify", "err", err)
				continue
			}
			fmt.Fprintln(out, string(line))
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "create a keystore wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gemdrop.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfg.Keystore); err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "wallet exists")
				return nil
			}

			mnemonic, wallet, err := gemdrop.NewMnemonic()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pubkey: %s\n\n", wallet.Pubkey)
			fmt.Fprintln(out, "save your seed phrase:")
			fmt.Fprintln(out, mnemonic)
			fmt.Fprintln(out)

			pwd, err := prompt("password: ")
			if err != nil {
				return err
			}
			if err := gemdrop.SaveKeystore(cfg.Keystore, wallet.Secret, pwd); err != nil {
				return err
			}
			fmt.Fprintf(out, "saved: %s\n", cfg.Keystore)
			return nil
		},
	}
}

func recoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "restore the keystore wallet from a seed phrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gemdrop.LoadConfig(configPath)
			if err != nil {
				return err
			}

			phrase, err := prompt("mnemonic: ")
			if err != nil {
				return err
			}
			wallet, err := gemdrop.FromMnemonic(string(phrase))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pubkey: %s\n", wallet.Pubkey)

			pwd, err := prompt("password: ")
			if err != nil {
				return err
			}
			if err := gemdrop.SaveKeystore(cfg.Keystore, wallet.Secret, pwd); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wallet recovered")
			return nil
		},
	}
}

func walletsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wallets",
		Short: "list wallet adapters",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			remembered, _ := a.ledger.Setting("wallet.selected")
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s | %-5s | %s\n", "ADAPTER", "READY", "REMEMBERED")
			fmt.Fprintln(out, strings.Repeat("-", 34))
			for _, w := range a.providers.Wallets() {
				mark := ""
				if w.Name == remembered {
					mark = "*"
				}
				fmt.Fprintf(out, "%-10s | %-5t | %s\n", w.Name, w.Ready, mark)
			}
			return nil
		},
	}
}

func connectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <adapter>",
		Short: "select and connect a wallet adapter (keystore, mnemonic, keygen)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			if err := a.providers.Wallet.Select(args[0]); err != nil {
				return err
			}
			pub, err := a.providers.Wallet.Connect(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connected: %s (%s)\n", pub, args[0])
			return nil
		},
	}
}

func disconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "forget the remembered wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			a.providers.Wallet.Disconnect()
			fmt.Fprintln(cmd.OutOrStdout(), "disconnected")
			return nil
		},
	}
}

func airdropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "airdrop <address>",
		Short: "request 0.5 SOL from the faucet for any address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			a.panel.SetAddress(args[0])
			_, err = a.panel.ClaimAirdrop(ctx)
			printState(cmd.OutOrStdout(), a.panel.State())
			return err
		},
	}
}

func claimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim",
		Short: "claim 0.5 SOL to the connected wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			a.providers.Wallet.AutoConnect(ctx)
			sig, err := a.panel.ClaimConnected(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tx: %s\n", gemdrop.ExplorerURL(a.cfg.Cluster, sig.String()))
			return nil
		},
	}
}

func purchaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purchase",
		Short: "purchase 1000 crystals for 0.1 SOL",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			a.providers.Wallet.AutoConnect(ctx)
			sig, err := a.panel.Purchase(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tx: %s\n", gemdrop.ExplorerURL(a.cfg.Cluster, sig.String()))
			return nil
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "show the SOL balance of an address or the connected wallet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			var pub solana.PublicKey
			if len(args) == 1 {
				pub, err = solana.PublicKeyFromBase58(args[0])
				if err != nil {
					return gemdrop.ErrInvalidAddress
				}
			} else {
				a.providers.Wallet.AutoConnect(ctx)
				var ok bool
				if pub, ok = a.providers.Wallet.PublicKey(); !ok {
					return gemdrop.ErrNotConnected
				}
			}

			bal, err := a.providers.Conn.Balance(ctx, pub)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pubkey: %s\n", pub)
			fmt.Fprintf(cmd.OutOrStdout(), "SOL: %s\n", gemdrop.FmtSOL(bal))
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "list recorded airdrops and purchases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gemdrop.LoadConfig(configPath)
			if err != nil {
				return err
			}
			ledger, err := gemdrop.OpenLedger(cfg.DbPath)
			if err != nil {
				return err
			}
			defer ledger.Close()

			acts, err := ledger.List(limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), acts, time.Now().Unix())
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of rows")
	return cmd
}

func clusterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cluster",
		Short: "print the resolved RPC endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gemdrop.LoadConfig(configPath)
			if err != nil {
				return err
			}
			endpoint, err := gemdrop.Endpoint(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cfg.Cluster, endpoint)
			return nil
		},
	}
}

func panelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "panel",
		Short: "open the interactive wallet panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			feed, updates := tui.Feed()
			a, err := setup(cmd.OutOrStdout(), feed)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			a.providers.Wallet.AutoConnect(ctx)

			m := tui.New(ctx, a.providers, a.panel, updates, tui.NewStyles(a.cfg.Palette))
			_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
}

func printState(out io.Writer, st gemdrop.State) {
	if st.TxID != "" {
		fmt.Fprintf(out, "Transaction hash: %s\n", st.TxID)
	}
	if st.Success {
		fmt.Fprintln(out, "Airdrop successful!")
	}
	if st.Err != "" {
		fmt.Fprintln(out, st.Err)
	}
}

func printHistory(out io.Writer, acts []gemdrop.Activity, now int64) {
	if len(acts) == 0 {
		fmt.Fprintln(out, "no activity")
		return
	}

	fmt.Fprintf(out, "%-8s | %-8s | %-12s | %9s | %-7s | %s\n", "ID", "KIND", "ADDRESS", "SOL", "STATUS", "TIME")
	fmt.Fprintln(out, strings.Repeat("-", 68))
	for _, a := range acts {
		fmt.Fprintf(out, "%-8s | %-8s | %-12s | %9s | %-7s | %s\n",
			shortID(a.ID),
			a.Kind,
			trunc(a.Address),
			gemdrop.FmtSOL(a.Lamports),
			a.Status,
			fmtAgo(now-a.Time),
		)
	}
}

func prompt(label string) ([]byte, error) {
	fmt.Fprint(os.Stderr, label)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		return b, err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return nil, err
	}
	return []byte(strings.TrimSpace(line)), nil
}

func trunc(s string) string {
	if len(s) > 12 {
		return s[:8] + "..."
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func fmtAgo(secs int64) string {
	if secs < 60 {
		return fmt.Sprintf("%ds ago", secs)
	}
	if secs < 3600 {
		return fmt.Sprintf("%dm ago", secs/60)
	}
	if secs < 86400 {
		return fmt.Sprintf("%dh ago", secs/3600)
	}
	return fmt.Sprintf("%dd ago", secs/86400)
}
