package gemdrop

import (
	"path/filepath"
	"testing"
)

func TestLedger_SaveListLoad(t *testing.T) {
	l, err := OpenLedger(filepath.Join(t.TempDir(), "sub", "ledger.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer l.Close()

	older := Activity{ID: NewActivityID(), Kind: KindAirdrop, Address: "a", Lamports: AirdropLamports, Time: 100, Status: StatusPending}
	newer := Activity{ID: NewActivityID(), Kind: KindPurchase, Address: "b", Lamports: GemPriceLamports, Time: 200, Status: StatusPending}
	for _, a := range []Activity{older, newer} {
		if err := l.Save(a); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	newer.Status = StatusDone
	newer.Signature = "sig"
	if err := l.Save(newer); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := l.Load(newer.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != newer {
		t.Fatalf("got %+v want %+v", got, newer)
	}

	list, err := l.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatalf("unexpected order: %+v", list)
	}
}

func TestLedger_Settings(t *testing.T) {
	l, err := OpenLedger(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer l.Close()

	if v, err := l.Setting("missing"); err != nil || v != "" {
		t.Fatalf("missing: %q %v", v, err)
	}
	if err := l.SetSetting("k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := l.SetSetting("k", "v2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := l.Setting("k"); v != "v2" {
		t.Fatalf("got %q", v)
	}
	if err := l.DeleteSetting("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if v, _ := l.Setting("k"); v != "" {
		t.Fatalf("still set: %q", v)
	}
}
