// Package tui renders the wallet panel as a bubbletea program.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gemdrop"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type stateMsg gemdrop.State

type eventMsg struct{ ev gemdrop.Event }

type doneMsg struct {
	op  string
	err error
}

type balanceMsg struct {
	lamports uint64
	err      error
}

type connectedMsg struct{ err error }

// Feed returns a panel option that forwards state snapshots to the channel
// the model listens on.
func Feed() (gemdrop.Option, <-chan gemdrop.State) {
	ch := make(chan gemdrop.State, 16)
	return gemdrop.OnChange(func(s gemdrop.State) {
		select {
		case ch <- s:
		default:
		}
	}), ch
}

type Model struct {
	ctx       context.Context
	providers *gemdrop.Providers
	panel     *gemdrop.Panel
	updates   <-chan gemdrop.State
	events    <-chan gemdrop.Event
	unsub     func()

	input   textinput.Model
	styles  Styles
	state   gemdrop.State
	balance string
	notice  string
	busy    int
}

func New(ctx context.Context, providers *gemdrop.Providers, panel *gemdrop.Panel, updates <-chan gemdrop.State, styles Styles) Model {
	in := textinput.New()
	in.Prompt = "Address: "
	in.Placeholder = "recipient public key"
	in.CharLimit = 64
	in.Width = 48
	in.Focus()

	events, unsub := panel.Bus().Subscribe(8)

	return Model{
		ctx:       ctx,
		providers: providers,
		panel:     panel,
		updates:   updates,
		events:    events,
		unsub:     unsub,
		input:     in,
		styles:    styles,
		state:     panel.State(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitState(), m.waitEvent(), m.fetchBalance())
}

func (m Model) waitState() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-m.updates
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

func (m Model) waitEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return eventMsg{ev}
	}
}

func (m Model) fetchBalance() tea.Cmd {
	pub, ok := m.providers.Wallet.PublicKey()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		bal, err := m.providers.Conn.Balance(m.ctx, pub)
		return balanceMsg{bal, err}
	}
}

func (m Model) op(name string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{op: name, err: fn(m.ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.unsub()
			m.panel.Close()
			return m, tea.Quit
		case "enter":
			m.panel.SetAddress(m.input.Value())
			m.busy++
			return m, m.op("airdrop", func(ctx context.Context) error {
				_, err := m.panel.ClaimAirdrop(ctx)
				return err
			})
		case "ctrl+a":
			m.busy++
			return m, m.op("claim", func(ctx context.Context) error {
				_, err := m.panel.ClaimConnected(ctx)
				return err
			})
		case "ctrl+p":
			m.busy++
			return m, m.op("purchase", func(ctx context.Context) error {
				_, err := m.panel.Purchase(ctx)
				return err
			})
		case "ctrl+w":
			next := m.nextAdapter()
			if err := m.providers.Wallet.Select(next); err != nil {
				m.notice = err.Error()
				return m, nil
			}
			return m, tea.Exec(&connectExec{ctx: m.ctx, wallet: m.providers.Wallet}, func(err error) tea.Msg {
				return connectedMsg{err}
			})
		case "ctrl+d":
			m.providers.Wallet.Disconnect()
			m.balance = ""
			m.notice = "wallet disconnected"
			return m, nil
		}

	case stateMsg:
		m.state = gemdrop.State(msg)
		return m, m.waitState()

	case eventMsg:
		m.notice = msg.ev.Message()
		return m, tea.Batch(m.waitEvent(), m.fetchBalance())

	case doneMsg:
		if m.busy > 0 {
			m.busy--
		}
		m.state = m.panel.State()
		switch {
		case msg.err == nil:
		case errors.Is(msg.err, gemdrop.ErrNotConnected):
			m.notice = "connect your wallet first"
		case errors.Is(msg.err, gemdrop.ErrAlreadyClaimed):
			m.notice = "airdrop already claimed"
		}
		return m, nil

	case balanceMsg:
		if msg.err != nil {
			m.balance = "?"
		} else {
			m.balance = gemdrop.FmtSOL(msg.lamports) + " SOL"
		}
		return m, nil

	case connectedMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
			return m, nil
		}
		m.notice = "wallet connected"
		return m, m.fetchBalance()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) nextAdapter() string {
	adapters := m.providers.Wallet.Adapters()
	if len(adapters) == 0 {
		return ""
	}
	cur, ok := m.providers.Wallet.Selected()
	if !ok {
		return adapters[0].Name()
	}
	for i, a := range adapters {
		if a.Name() == cur.Name() {
			return adapters[(i+1)%len(adapters)].Name()
		}
	}
	return adapters[0].Name()
}

func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("gemdrop · "+m.providers.Cluster) + "\n\n")
	b.WriteString(m.walletLine() + "\n")
	for _, w := range m.providers.Wallets() {
		mark := "  "
		style := s.Muted
		if w.Selected {
			mark = "> "
			style = s.Selected
		}
		ready := ""
		if !w.Ready {
			ready = " (unavailable)"
		}
		b.WriteString(style.Render(mark+w.Name+ready) + "\n")
	}
	b.WriteString("\n" + m.input.View() + "\n\n")

	b.WriteString(s.Button.Render("enter  Claim Airdrop Token") + " ")
	b.WriteString(s.Button.Render("ctrl+a  Claim to wallet") + "\n")
	b.WriteString(s.Button.Render(fmt.Sprintf("ctrl+p  Purchase Gems (%s SOL for %d Crystals)",
		gemdrop.FmtSOL(gemdrop.GemPriceLamports), gemdrop.GemsPerPurchase)) + "\n")
	b.WriteString(s.Muted.Render("ctrl+w next wallet · ctrl+d disconnect · esc quit") + "\n\n")

	b.WriteString(StatusView(m.state, s))
	if m.busy > 0 {
		b.WriteString(s.Muted.Render("working...") + "\n")
	}
	if m.notice != "" {
		b.WriteString(s.Muted.Render(m.notice) + "\n")
	}
	return s.Frame.Render(b.String())
}

func (m Model) walletLine() string {
	sel, ok := m.providers.Wallet.Selected()
	if !ok {
		return m.styles.Muted.Render("Wallet: not selected")
	}
	pub, connected := sel.PublicKey()
	if !connected {
		return m.styles.Muted.Render("Wallet: " + sel.Name() + " (disconnected)")
	}
	line := "Wallet: " + sel.Name() + "  " + pub.String()
	if m.balance != "" {
		line += "  " + m.balance
	}
	return m.styles.Selected.Render(line)
}

// StatusView renders the outcome of the latest airdrop submission.
func StatusView(st gemdrop.State, s Styles) string {
	var b strings.Builder
	if st.TxID != "" {
		b.WriteString("Transaction hash: " + st.TxID + "\n")
	}
	if st.Success {
		b.WriteString(s.Success.Render("Airdrop successful!") + "\n")
	}
	if st.Err != "" {
		b.WriteString(s.Error.Render(st.Err) + "\n")
	}
	if st.Phase == gemdrop.PhaseSubmitting {
		b.WriteString(s.Muted.Render("requesting airdrop...") + "\n")
	}
	return b.String()
}

// connectExec runs the wallet connect prompt with the terminal released.
type connectExec struct {
	ctx    context.Context
	wallet *gemdrop.WalletProvider
}

func (c *connectExec) Run() error {
	_, err := c.wallet.Connect(c.ctx)
	return err
}

func (c *connectExec) SetStdin(io.Reader)  {}
func (c *connectExec) SetStdout(io.Writer) {}
func (c *connectExec) SetStderr(io.Writer) {}
