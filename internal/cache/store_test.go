package cache

import (
	"context"
	"testing"
	"time"

	"github.com/CALILU/cardtradr/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := storage.DefaultConfig(":memory:")
	cfg.AutoMigrate = true
	db, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(db, nil)
}

func TestGetMiss(t *testing.T) {
	s := newTestStore(t)
	if _, ok := s.Get(context.Background(), GamesKey()); ok {
		t.Error("expected miss on empty store")
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Set(ctx, GamesKey(), []byte(`{"games":[]}`), time.Hour)

	got, ok := s.Get(ctx, GamesKey())
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(got) != `{"games":[]}` {
		t.Errorf("got %q", got)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Set(ctx, GamesKey(), []byte("old"), time.Hour)
	s.Set(ctx, GamesKey(), []byte("new"), time.Hour)

	got, ok := s.Get(ctx, GamesKey())
	if !ok || string(got) != "new" {
		t.Errorf("got %q, %v; want new, true", got, ok)
	}
}

func TestExpiryBoundary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	s.Set(ctx, GamesKey(), []byte("v"), time.Hour)

	// One instant before the deadline the entry is live.
	s.now = func() time.Time { return base.Add(time.Hour - time.Millisecond) }
	if _, ok := s.Get(ctx, GamesKey()); !ok {
		t.Error("entry expired before its deadline")
	}

	// At exactly the deadline it is gone.
	s.now = func() time.Time { return base.Add(time.Hour) }
	if _, ok := s.Get(ctx, GamesKey()); ok {
		t.Error("entry still live at its deadline")
	}
}

func TestExpiredEntryIsEvicted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	s.Set(ctx, GamesKey(), []byte("v"), time.Minute)

	s.now = func() time.Time { return base.Add(time.Hour) }
	if _, ok := s.Get(ctx, GamesKey()); ok {
		t.Fatal("expected expired entry to miss")
	}

	// The expired read physically removed the row.
	n, err := s.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 0 {
		t.Errorf("expired entry still present: %d rows", n)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Set(ctx, GamesKey(), []byte("a"), time.Hour)
	s.Set(ctx, ExpansionsKey(3, 1), []byte("b"), time.Hour)
	s.Set(ctx, CardsKey(604, 2), []byte("c"), time.Hour)

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	n, err := s.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 0 {
		t.Errorf("Clear left %d entries", n)
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{GamesKey(), "games"},
		{ExpansionsKey(3, 1), "expansions:3:p1"},
		{CardsKey(604, 2), "cards:604:p2"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("Key.String() = %q, want %q", got, tt.want)
		}
	}
}
