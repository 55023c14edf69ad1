package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/CALILU/cardtradr/internal/storage"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := storage.DefaultConfig(":memory:")
	cfg.AutoMigrate = true
	db, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db.Conn()
}

func TestSettingsRoundTrip(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t))
	ctx := context.Background()

	type prefs struct {
		Theme string `json:"theme"`
	}

	if err := repo.Set(ctx, "prefs", prefs{Theme: "dark"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got prefs
	if err := repo.GetTyped(ctx, "prefs", &got); err != nil {
		t.Fatalf("GetTyped: %v", err)
	}
	if got.Theme != "dark" {
		t.Errorf("theme = %q", got.Theme)
	}

	// Upsert replaces.
	if err := repo.Set(ctx, "prefs", prefs{Theme: "light"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.GetTyped(ctx, "prefs", &got); err != nil {
		t.Fatal(err)
	}
	if got.Theme != "light" {
		t.Errorf("theme after upsert = %q", got.Theme)
	}
}

func TestSettingsMissingKey(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t))

	_, err := repo.Get(context.Background(), "absent")
	if !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("got %v, want ErrSettingNotFound", err)
	}

	// Deleting a missing key is not an error.
	if err := repo.Delete(context.Background(), "absent"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestCollectionCRUD(t *testing.T) {
	repo := NewCollectionRepository(newTestDB(t))
	ctx := context.Background()

	c := &Collection{UserID: "u1", TCGType: "pokemon", Name: "Binder"}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == "" {
		t.Fatal("Create did not assign an ID")
	}

	got, err := repo.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Binder" || got.TCGType != "pokemon" {
		t.Errorf("got %+v", got)
	}

	name := "Trade Binder"
	desc := "cards up for trade"
	if err := repo.Update(ctx, c.ID, CollectionUpdate{Name: &name, Description: &desc}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = repo.Get(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Trade Binder" || got.Description != "cards up for trade" {
		t.Errorf("after update: %+v", got)
	}

	list, err := repo.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d collections", len(list))
	}

	// Other users see nothing.
	other, err := repo.List(ctx, "u2")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("user scoping leaked %d collections", len(other))
	}

	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete: %v, want ErrNotFound", err)
	}
}

func TestCollectionValidation(t *testing.T) {
	repo := NewCollectionRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &Collection{UserID: "u1"}); err == nil {
		t.Error("expected error for unnamed collection")
	}
	if err := repo.Update(ctx, "missing", CollectionUpdate{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update missing: %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestCollectionCards(t *testing.T) {
	repo := NewCollectionRepository(newTestDB(t))
	ctx := context.Background()

	c := &Collection{UserID: "u1", TCGType: "pokemon", Name: "Binder"}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatal(err)
	}

	card := &CollectionCard{CollectionID: c.ID, ProductID: 42, CardName: "Pikachu"}
	if err := repo.AddCard(ctx, card); err != nil {
		t.Fatalf("AddCard: %v", err)
	}

	// Defaults applied on insert.
	cards, err := repo.ListCards(ctx, c.ID)
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("got %d cards", len(cards))
	}
	got := cards[0]
	if got.Quantity != 1 || got.Condition != ConditionNearMint || got.Language != "English" {
		t.Errorf("defaults not applied: %+v", got)
	}

	qty := 4
	fav := true
	if err := repo.UpdateCard(ctx, card.ID, CardUpdate{Quantity: &qty, IsFavorite: &fav}); err != nil {
		t.Fatalf("UpdateCard: %v", err)
	}
	cards, err = repo.ListCards(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cards[0].Quantity != 4 || !cards[0].IsFavorite {
		t.Errorf("after update: %+v", cards[0])
	}

	bad := 0
	if err := repo.UpdateCard(ctx, card.ID, CardUpdate{Quantity: &bad}); err == nil {
		t.Error("expected error for non-positive quantity")
	}

	// Deleting the collection cascades to its cards.
	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	cards, err = repo.ListCards(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 0 {
		t.Errorf("cascade left %d cards", len(cards))
	}
}

func TestWishlist(t *testing.T) {
	repo := NewWishlistRepository(newTestDB(t))
	ctx := context.Background()

	low := &WishlistItem{UserID: "u1", ProductID: 1, TCGType: "pokemon", CardName: "Bulbasaur", Priority: 1}
	high := &WishlistItem{UserID: "u1", ProductID: 2, TCGType: "pokemon", CardName: "Charizard ex", Priority: 5}
	defaulted := &WishlistItem{UserID: "u1", ProductID: 3, TCGType: "pokemon", CardName: "Mewtwo"}

	for _, item := range []*WishlistItem{low, high, defaulted} {
		if err := repo.Add(ctx, item); err != nil {
			t.Fatalf("Add(%s): %v", item.CardName, err)
		}
	}
	if defaulted.Priority != 3 {
		t.Errorf("default priority = %d, want 3", defaulted.Priority)
	}

	items, err := repo.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items", len(items))
	}
	// Highest priority first.
	if items[0].CardName != "Charizard ex" || items[2].CardName != "Bulbasaur" {
		t.Errorf("order = [%s %s %s]", items[0].CardName, items[1].CardName, items[2].CardName)
	}

	p := 6
	if err := repo.Update(ctx, low.ID, WishlistUpdate{Priority: &p}); err == nil {
		t.Error("expected error for out-of-range priority")
	}
	p = 4
	if err := repo.Update(ctx, low.ID, WishlistUpdate{Priority: &p}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := repo.Remove(ctx, high.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := repo.Remove(ctx, high.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double remove: %v, want ErrNotFound", err)
	}
}

func TestWishlistValidation(t *testing.T) {
	repo := NewWishlistRepository(newTestDB(t))
	ctx := context.Background()

	if err := repo.Add(ctx, &WishlistItem{UserID: "u1"}); err == nil {
		t.Error("expected error for unnamed card")
	}
	if err := repo.Add(ctx, &WishlistItem{UserID: "u1", CardName: "X", Priority: 9}); err == nil {
		t.Error("expected error for out-of-range priority")
	}
}

func TestStatsSummary(t *testing.T) {
	db := newTestDB(t)
	collections := NewCollectionRepository(db)
	wishlist := NewWishlistRepository(db)
	stats := NewStatsRepository(db)
	ctx := context.Background()

	poke := &Collection{UserID: "u1", TCGType: "pokemon", Name: "Binder"}
	mtg := &Collection{UserID: "u1", TCGType: "mtg", Name: "Commander staples"}
	for _, c := range []*Collection{poke, mtg} {
		if err := collections.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	fav := &CollectionCard{CollectionID: poke.ID, ProductID: 1, CardName: "Pikachu", Quantity: 4, IsFavorite: true}
	plain := &CollectionCard{CollectionID: mtg.ID, ProductID: 2, CardName: "Sol Ring", Quantity: 2}
	for _, card := range []*CollectionCard{fav, plain} {
		if err := collections.AddCard(ctx, card); err != nil {
			t.Fatal(err)
		}
	}

	if err := wishlist.Add(ctx, &WishlistItem{UserID: "u1", CardName: "Charizard ex", TCGType: "pokemon"}); err != nil {
		t.Fatal(err)
	}

	got, err := stats.Summary(ctx, "u1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got.Collections != 2 || got.DistinctGames != 2 {
		t.Errorf("collections %d, games %d", got.Collections, got.DistinctGames)
	}
	if got.TotalCards != 6 {
		t.Errorf("TotalCards = %d, want quantity-weighted 6", got.TotalCards)
	}
	if got.Favorites != 1 {
		t.Errorf("Favorites = %d, want 1", got.Favorites)
	}
	if got.WishlistItems != 1 {
		t.Errorf("WishlistItems = %d, want 1", got.WishlistItems)
	}
	if len(got.PerGame) != 2 || got.PerGame[0].TCGType != "pokemon" || got.PerGame[0].Cards != 4 {
		t.Errorf("PerGame = %+v", got.PerGame)
	}

	// A user with no data gets a zero summary, not an error.
	empty, err := stats.Summary(ctx, "u2")
	if err != nil {
		t.Fatal(err)
	}
	if empty.Collections != 0 || empty.TotalCards != 0 {
		t.Errorf("empty summary = %+v", empty)
	}
}
