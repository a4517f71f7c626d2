package gemdrop

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/andres-erbsen/clock"
	"github.com/charmbracelet/log"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseRejected
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseValidating:
		return "validating"
	case PhaseRejected:
		return "rejected"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

const (
	MsgInvalidAddress = "Invalid address"
	MsgAirdropFailed  = "Airdrop failed: the faucet may be rate limited or empty. Try again later or use " + FaucetURL
)

// State is the airdrop form as last shown to the user.
type State struct {
	Address string
	TxID    string
	Success bool
	Err     string
	Phase   Phase
}

// Recorder persists activity; *Ledger satisfies it.
type Recorder interface {
	Save(a Activity) error
}

type Option func(*Panel)

func WithClock(c clock.Clock) Option { return func(p *Panel) { p.clock = c } }

func WithLogger(l *log.Logger) Option { return func(p *Panel) { p.logger = l } }

func WithBus(b *Bus) Option { return func(p *Panel) { p.bus = b } }

func WithRecorder(r Recorder) Option { return func(p *Panel) { p.recorder = r } }

func WithRecipient(pk solana.PublicKey) Option {
	return func(p *Panel) { p.recipient = &pk }
}

// OnChange registers fn to receive a snapshot after every state change.
func OnChange(fn func(State)) Option {
	return func(p *Panel) { p.observers = append(p.observers, fn) }
}

// Panel drives the airdrop form and the gem purchase against a
// Connection and the connected wallet.
type Panel struct {
	conn      Connection
	wallet    WalletState
	recipient *solana.PublicKey
	bus       *Bus
	recorder  Recorder
	clock     clock.Clock
	logger    *log.Logger
	observers []func(State)

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	gen       uint64
	closed    bool
	stopClear chan struct{}
	timer     *clock.Timer
	// claimed maps an address to true once its airdrop confirmed, or to
	// false while a claim is in flight.
	claimed map[string]bool
}

func NewPanel(conn Connection, wallet WalletState, opts ...Option) *Panel {
	p := &Panel{
		conn:    conn,
		wallet:  wallet,
		claimed: map[string]bool{},
	}
	for _, o := range opts {
		o(p)
	}
	if p.clock == nil {
		p.clock = clock.New()
	}
	if p.logger == nil {
		p.logger = Log
	}
	if p.bus == nil {
		p.bus = NewBus()
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())
	return p
}

func (p *Panel) Bus() *Bus { return p.bus }

func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Panel) SetAddress(addr string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.state.Address = addr
	s := p.state
	p.mu.Unlock()
	p.emit(s)
}

// Close unmounts the panel. In-flight calls are cancelled and any result
// or timer that lands afterwards is discarded.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.stopClearLocked()
	p.cancel()
}

// ClaimAirdrop requests AirdropLamports for the address typed into the form.
func (p *Panel) ClaimAirdrop(ctx context.Context) (solana.Signature, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return solana.Signature{}, ErrClosed
	}
	p.gen++
	gen := p.gen
	p.stopClearLocked()
	p.state.Phase = PhaseValidating
	addr := strings.TrimSpace(p.state.Address)
	s := p.state
	p.mu.Unlock()
	p.emit(s)

	to, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		p.apply(gen, false, func(s *State) {
			s.Err = MsgInvalidAddress
			s.Success = false
			s.TxID = ""
			s.Phase = PhaseRejected
		})
		return solana.Signature{}, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	p.apply(gen, false, func(s *State) {
		s.Err = ""
		s.Phase = PhaseSubmitting
	})

	ctx, cancel := p.bind(ctx)
	defer cancel()

	act := p.record(Activity{
		ID:       NewActivityID(),
		Kind:     KindAirdrop,
		Address:  to.String(),
		Lamports: AirdropLamports,
		Time:     p.clock.Now().Unix(),
		Status:   StatusPending,
	})

	sig, err := p.conn.RequestAirdrop(ctx, to, AirdropLamports)
	if err != nil {
		p.logger.Error("airdrop failed", "address", to, "err", err)
		act.Status = StatusFail
		p.record(act)
		p.apply(gen, true, func(s *State) {
			s.Err = MsgAirdropFailed
			s.Success = false
			s.TxID = ""
			s.Phase = PhaseFailed
		})
		return solana.Signature{}, fmt.Errorf("claim airdrop: %w", err)
	}

	act.Signature = sig.String()
	act.Status = StatusSent
	p.record(act)

	p.apply(gen, false, func(s *State) {
		s.TxID = sig.String()
		s.Success = true
		s.Err = ""
		s.Phase = PhaseSucceeded
	})
	p.publish(AirdropClaimed{Address: to.String(), Signature: sig.String()})
	return sig, nil
}

func (p *Panel) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// ClaimConnected airdrops to the connected wallet once per session. A claim
// that is still in flight counts as claimed until it fails.
func (p *Panel) ClaimConnected(ctx context.Context) (solana.Signature, error) {
	if p.isClosed() {
		return solana.Signature{}, ErrClosed
	}
	to, ok := p.wallet.PublicKey()
	if !p.wallet.Connected() || !ok {
		p.logger.Info("connect your wallet first")
		return solana.Signature{}, ErrNotConnected
	}
	key := to.String()

	p.mu.Lock()
	done, seen := p.claimed[key]
	if !seen {
		p.claimed[key] = false
	}
	p.mu.Unlock()
	if seen {
		if done {
			p.logger.Info("airdrop already claimed", "address", key)
		} else {
			p.logger.Info("airdrop claim in progress", "address", key)
		}
		return solana.Signature{}, ErrAlreadyClaimed
	}

	ctx, cancel := p.bind(ctx)
	defer cancel()

	act := p.record(Activity{
		ID:       NewActivityID(),
		Kind:     KindAirdrop,
		Address:  key,
		Lamports: AirdropLamports,
		Time:     p.clock.Now().Unix(),
		Status:   StatusPending,
	})

	fail := func(err error) (solana.Signature, error) {
		p.logger.Error("airdrop failed", "address", key, "err", err)
		p.mu.Lock()
		delete(p.claimed, key)
		p.mu.Unlock()
		act.Status = StatusFail
		p.record(act)
		return solana.Signature{}, fmt.Errorf("claim airdrop: %w", err)
	}

	sig, err := p.conn.RequestAirdrop(ctx, to, AirdropLamports)
	if err != nil {
		return fail(err)
	}
	act.Signature = sig.String()
	if err := p.conn.ConfirmTransaction(ctx, sig, rpc.CommitmentConfirmed); err != nil {
		return fail(err)
	}

	p.mu.Lock()
	p.claimed[key] = true
	p.mu.Unlock()

	act.Status = StatusDone
	p.record(act)
	p.logger.Info("airdrop claimed", "address", key, "sig", sig)
	p.publish(AirdropClaimed{Address: key, Signature: sig.String()})
	return sig, nil
}

// Claimed reports whether addr has claimed through ClaimConnected this session.
func (p *Panel) Claimed(addr string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.claimed[addr]
}

// Purchase transfers GemPriceLamports from the connected wallet to the
// configured recipient. Failures are logged and returned but never written
// into the form state.
func (p *Panel) Purchase(ctx context.Context) (solana.Signature, error) {
	if p.isClosed() {
		return solana.Signature{}, ErrClosed
	}
	from, ok := p.wallet.PublicKey()
	if !p.wallet.Connected() || !ok {
		p.logger.Info("connect your wallet first")
		return solana.Signature{}, ErrNotConnected
	}
	if p.recipient == nil {
		p.logger.Error("purchase failed", "err", ErrNoRecipient)
		return solana.Signature{}, ErrNoRecipient
	}
	to := *p.recipient

	ctx, cancel := p.bind(ctx)
	defer cancel()

	act := p.record(Activity{
		ID:       NewActivityID(),
		Kind:     KindPurchase,
		Address:  to.String(),
		Lamports: GemPriceLamports,
		Time:     p.clock.Now().Unix(),
		Status:   StatusPending,
	})

	fail := func(stage string, err error) (solana.Signature, error) {
		p.logger.Error("purchase failed", "stage", stage, "err", err)
		act.Status = StatusFail
		p.record(act)
		return solana.Signature{}, fmt.Errorf("purchase: %s: %w", stage, err)
	}

	ix := system.NewTransferInstruction(GemPriceLamports, from, to).Build()

	blockhash, err := p.conn.GetLatestBlockhash(ctx)
	if err != nil {
		return fail("blockhash", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return fail("tx", err)
	}

	signed, err := p.wallet.SignTransaction(ctx, tx)
	if err != nil {
		return fail("sign", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return fail("serialize", err)
	}

	sig, err := p.conn.SendRawTransaction(ctx, raw)
	if err != nil {
		return fail("send", err)
	}
	act.Signature = sig.String()
	act.Status = StatusSent
	p.record(act)

	if err := p.conn.ConfirmTransaction(ctx, sig, rpc.CommitmentConfirmed); err != nil {
		return fail("confirm", err)
	}

	act.Status = StatusDone
	p.record(act)

	ev := GemsPurchased{Signature: sig.String(), Lamports: GemPriceLamports, Gems: GemsPerPurchase}
	p.logger.Info(ev.Message(), "sig", sig)
	p.publish(ev)
	return sig, nil
}

// apply mutates state only if the panel is open and gen is still the
// latest submission. With arm set it schedules the error auto-clear.
func (p *Panel) apply(gen uint64, arm bool, fn func(*State)) bool {
	p.mu.Lock()
	if p.closed || gen != p.gen {
		p.mu.Unlock()
		return false
	}
	fn(&p.state)
	if arm {
		p.armClearLocked(gen)
	}
	s := p.state
	p.mu.Unlock()

	p.emit(s)
	return true
}

func (p *Panel) armClearLocked(gen uint64) {
	p.stopClearLocked()

	t := p.clock.Timer(ErrorClearDelay)
	stop := make(chan struct{})
	p.timer = t
	p.stopClear = stop

	go func() {
		select {
		case <-t.C:
			p.apply(gen, false, func(s *State) {
				s.Err = ""
				s.Phase = PhaseIdle
			})
		case <-stop:
		}
	}()
}

func (p *Panel) stopClearLocked() {
	if p.timer == nil {
		return
	}
	p.timer.Stop()
	close(p.stopClear)
	p.timer = nil
	p.stopClear = nil
}

// bind derives a context cancelled by either the caller or Close.
func (p *Panel) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(p.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (p *Panel) emit(s State) {
	for _, fn := range p.observers {
		fn(s)
	}
}

func (p *Panel) publish(e Event) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return
	}
	p.bus.Publish(e)
}

func (p *Panel) record(a Activity) Activity {
	if p.recorder == nil {
		return a
	}
	if err := p.recorder.Save(a); err != nil {
		p.logger.Warn("ledger", "id", a.ID, "err", err)
	}
	return a
}
