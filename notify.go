package gemdrop

import (
	"encoding/json"
	"fmt"
	"sync"
)

type Action string

const (
	ActionClaimAirdrop Action = "claimAirdrop"
	ActionPurchaseGems Action = "purchaseGems"
)

// Event is a notification for whatever hosts the panel. The set of
// implementations is closed: AirdropClaimed and GemsPurchased.
type Event interface {
	Action() Action
	Message() string
	event()
}

type AirdropClaimed struct {
	Address   string
	Signature string
}

func (AirdropClaimed) Action() Action  { return ActionClaimAirdrop }
func (AirdropClaimed) Message() string { return "Airdrop claimed successfully!" }
func (AirdropClaimed) event()          {}

type GemsPurchased struct {
	Signature string
	Lamports  uint64
	Gems      int
}

func (GemsPurchased) Action() Action { return ActionPurchaseGems }
func (e GemsPurchased) Message() string {
	return fmt.Sprintf("Purchased %d crystals for %s SOL!", e.Gems, FmtSOL(e.Lamports))
}
func (GemsPurchased) event() {}

type wireEvent struct {
	Action  Action `json:"action"`
	Message string `json:"message"`
}

// MarshalEvent encodes e as {"action": ..., "message": ...}.
func MarshalEvent(e Event) ([]byte, error) {
	return json.Marshal(wireEvent{Action: e.Action(), Message: e.Message()})
}

// Bus fans events out to subscribers without ever blocking the publisher.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{subs: map[int]chan Event{}}
}

func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber with room in its buffer.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
