package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CALILU/cardtradr/internal/session"
	"github.com/CALILU/cardtradr/internal/storage"
	"github.com/CALILU/cardtradr/internal/storage/repository"
	"github.com/CALILU/cardtradr/internal/tcg"
)

// fakeCatalog implements handlers.CatalogClient with canned data.
type fakeCatalog struct {
	gamesErr error
}

func (f *fakeCatalog) ListGames(context.Context) ([]tcg.Game, error) {
	if f.gamesErr != nil {
		return nil, f.gamesErr
	}
	return []tcg.Game{
		{CategoryID: 3, DisplayName: "Pokemon"},
		{CategoryID: 1, DisplayName: "Magic: The Gathering"},
	}, nil
}

func (f *fakeCatalog) ListExpansions(_ context.Context, categoryID, _ int) (tcg.ExpansionPage, error) {
	return tcg.ExpansionPage{
		Expansions: []tcg.Expansion{{GroupID: 604, Name: "Crown Zenith", CategoryID: categoryID}},
		TotalPages: 1,
	}, nil
}

func (f *fakeCatalog) ListCards(context.Context, int, int) (tcg.CardPage, error) {
	return tcg.CardPage{
		Cards: []tcg.Card{
			{ProductID: 1, Name: "Pikachu", Number: "25", Rarity: "Common",
				ExtendedData: []tcg.ExtendedData{{Name: "HP", Value: "60"}}},
			{ProductID: 2, Name: "Mewtwo", Number: "150", Rarity: "Rare",
				ExtendedData: []tcg.ExtendedData{{Name: "HP", Value: "150"}}},
			{ProductID: 3, Name: "Charizard ex", Number: "4", Rarity: "Rare Holo",
				ExtendedData: []tcg.ExtendedData{{Name: "HP", Value: "180"}}},
		},
		TotalPages: 1,
	}, nil
}

func (f *fakeCatalog) GetUsage(context.Context) (tcg.Usage, error) {
	return tcg.Usage{
		Current:   tcg.UsageWindow{Daily: 42},
		Limits:    tcg.UsageLimit{Calls: 100, Period: "day"},
		Remaining: tcg.UsageLimit{Calls: 58, Period: "day"},
	}, nil
}

func (f *fakeCatalog) CheckHealth(context.Context) bool { return true }
func (f *fakeCatalog) ClearCache(context.Context) error { return nil }
func (f *fakeCatalog) SessionCalls() int64              { return 7 }

func newTestServer(t *testing.T, catalog *fakeCatalog) (*Server, *session.Provider) {
	t.Helper()

	cfg := storage.DefaultConfig(":memory:")
	cfg.AutoMigrate = true
	db, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	sessions := session.NewProvider(repository.NewSettingsRepository(db.Conn()), nil)
	if err := sessions.Hydrate(context.Background()); err != nil {
		t.Fatal(err)
	}

	srv := NewServer(&Config{Port: 0, Version: "test"}, Dependencies{
		Catalog:     catalog,
		Collections: repository.NewCollectionRepository(db.Conn()),
		Wishlist:    repository.NewWishlistRepository(db.Conn()),
		Stats:       repository.NewStatsRepository(db.Conn()),
		Sessions:    sessions,
	})
	return srv, sessions
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, w.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeCatalog{})
	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestListGamesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeCatalog{})

	w := doJSON(t, srv, http.MethodGet, "/api/v1/games", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var games []tcg.Game
	decodeData(t, w, &games)
	if len(games) != 2 {
		t.Errorf("got %d games", len(games))
	}

	// Free-text narrowing via ?q=
	w = doJSON(t, srv, http.MethodGet, "/api/v1/games?q=magic", nil)
	decodeData(t, w, &games)
	if len(games) != 1 || games[0].DisplayName != "Magic: The Gathering" {
		t.Errorf("filtered games = %+v", games)
	}
}

func TestListCardsEndpointFilters(t *testing.T) {
	srv, _ := newTestServer(t, &fakeCatalog{})

	var result struct {
		Cards         []tcg.Card `json:"cards"`
		FilteredCards int        `json:"filteredCards"`
		TotalCards    int        `json:"totalCards"`
	}

	// Unfiltered, default sort is set number ascending.
	w := doJSON(t, srv, http.MethodGet, "/api/v1/expansions/604/cards", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	decodeData(t, w, &result)
	if result.TotalCards != 3 || result.FilteredCards != 3 {
		t.Errorf("counts = %d/%d", result.FilteredCards, result.TotalCards)
	}
	if result.Cards[0].Name != "Charizard ex" {
		t.Errorf("first card = %s, want number-ascending order", result.Cards[0].Name)
	}

	// Rarity chips plus numeric range.
	w = doJSON(t, srv, http.MethodGet, "/api/v1/expansions/604/cards?rarity=Common&rarity=Rare&f.HP=100..200", nil)
	decodeData(t, w, &result)
	if result.FilteredCards != 1 || result.Cards[0].Name != "Mewtwo" {
		t.Errorf("got %+v", result.Cards)
	}

	// Malformed range is a 400.
	w = doJSON(t, srv, http.MethodGet, "/api/v1/expansions/604/cards?f.HP=10..x", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestProviderErrorMapping(t *testing.T) {
	srv, _ := newTestServer(t, &fakeCatalog{gamesErr: &tcg.QuotaExceededError{}})

	w := doJSON(t, srv, http.MethodGet, "/api/v1/games", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	var body struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Kind != "quota_exceeded" {
		t.Errorf("kind = %q", body.Kind)
	}
}

func TestCollectionsRequireSession(t *testing.T) {
	srv, _ := newTestServer(t, &fakeCatalog{})
	w := doJSON(t, srv, http.MethodGet, "/api/v1/collections", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestCollectionLifecycleOverHTTP(t *testing.T) {
	srv, sessions := newTestServer(t, &fakeCatalog{})
	if err := sessions.SignIn(context.Background(), "u1", "u1@example.com"); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, srv, http.MethodPost, "/api/v1/collections",
		map[string]string{"tcgType": "pokemon", "name": "Binder"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var created repository.Collection
	decodeData(t, w, &created)
	if created.ID == "" || created.UserID != "u1" {
		t.Fatalf("created = %+v", created)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/v1/collections/"+created.ID+"/cards",
		map[string]interface{}{"productId": 1, "cardName": "Pikachu", "quantity": 2})
	if w.Code != http.StatusCreated {
		t.Fatalf("add card status = %d: %s", w.Code, w.Body.String())
	}

	var summary repository.Summary
	w = doJSON(t, srv, http.MethodGet, "/api/v1/stats", nil)
	decodeData(t, w, &summary)
	if summary.Collections != 1 || summary.TotalCards != 2 {
		t.Errorf("summary = %+v", summary)
	}

	w = doJSON(t, srv, http.MethodDelete, "/api/v1/collections/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
	w = doJSON(t, srv, http.MethodGet, "/api/v1/collections/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", w.Code)
	}
}

func TestSessionEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, &fakeCatalog{})

	w := doJSON(t, srv, http.MethodPost, "/api/v1/session",
		map[string]string{"userId": "u1", "email": "u1@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("sign-in status = %d: %s", w.Code, w.Body.String())
	}

	var s session.Session
	w = doJSON(t, srv, http.MethodGet, "/api/v1/session", nil)
	decodeData(t, w, &s)
	if s.UserID != "u1" {
		t.Errorf("session = %+v", s)
	}

	w = doJSON(t, srv, http.MethodDelete, "/api/v1/session", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("sign-out status = %d", w.Code)
	}
}

func TestUsageEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeCatalog{})

	var payload struct {
		Usage        tcg.Usage `json:"usage"`
		SessionCalls int64     `json:"sessionCalls"`
	}
	w := doJSON(t, srv, http.MethodGet, "/api/v1/usage", nil)
	decodeData(t, w, &payload)
	if payload.Usage.Remaining.Calls != 58 || payload.SessionCalls != 7 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestContentTypeEnforcement(t *testing.T) {
	srv, _ := newTestServer(t, &fakeCatalog{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session",
		bytes.NewBufferString(`{"userId":"u1"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", w.Code)
	}
}
