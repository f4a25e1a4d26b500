package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dukaan-guru/internal/store"
)

func TestMemory_Setup(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	if _, err := m.LoadSetup(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("LoadSetup before save err = %v, want ErrNotFound", err)
	}

	rec := store.SetupRecord{Name: "Madina General Store", Stock: "10 Lays 500"}
	if err := m.SaveSetup(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := m.LoadSetup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if *got != rec {
		t.Errorf("LoadSetup = %+v, want %+v", got, rec)
	}
}

func TestMemory_Waitlist(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	joined, err := m.WaitlistJoined(ctx)
	if err != nil || joined {
		t.Errorf("fresh store joined = %v err = %v, want false nil", joined, err)
	}

	entry := store.WaitlistEntry{ShopName: "Madina", Phone: "03001234567", JoinedAt: time.Now()}
	if err := m.JoinWaitlist(ctx, entry); err != nil {
		t.Fatal(err)
	}

	joined, err = m.WaitlistJoined(ctx)
	if err != nil || !joined {
		t.Errorf("after join joined = %v err = %v, want true nil", joined, err)
	}
}
