package gemdrop

import (
	"testing"
)

func TestMarshalEvent_WireShape(t *testing.T) {
	cases := []struct {
		ev   Event
		want string
	}{
		{AirdropClaimed{Address: "x", Signature: "y"}, `{"action":"claimAirdrop","message":"Airdrop claimed successfully!"}`},
		{GemsPurchased{Lamports: GemPriceLamports, Gems: 1000}, `{"action":"purchaseGems","message":"Purchased 1000 crystals for 0.1 SOL!"}`},
	}
	for _, c := range cases {
		b, err := MarshalEvent(c.ev)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(b) != c.want {
			t.Fatalf("got %s want %s", b, c.want)
		}
	}
}

func TestBus_PublishNeverBlocks(t *testing.T) {
	b := NewBus()
	slow, cancelSlow := b.Subscribe(1)
	defer cancelSlow()
	fast, cancelFast := b.Subscribe(4)
	defer cancelFast()

	for i := 0; i < 3; i++ {
		b.Publish(AirdropClaimed{})
	}

	if len(slow) != 1 {
		t.Fatalf("slow subscriber: expected 1 buffered event, got %d", len(slow))
	}
	if len(fast) != 3 {
		t.Fatalf("fast subscriber: expected 3 buffered events, got %d", len(fast))
	}
}

func TestBus_CancelClosesChannel(t *testing.T) {
	b := NewBus()
	ch, cancel := b.Subscribe(1)
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	b.Publish(GemsPurchased{})
}
