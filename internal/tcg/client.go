// Package tcg is the single point of contact with the remote card-data
// provider. It enforces the per-resource cache tiers (games 7d, expansions
// and cards 24h) and translates transport failures into typed errors.
//
// The free provider plan allows 100 calls per day; the aggressive cache is
// what makes the app usable under that quota. Concurrent misses on the same
// key may each hit the provider — there is deliberately no in-flight
// de-duplication, the request volume is too low to warrant it.
package tcg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/CALILU/cardtradr/internal/cache"
)

const (
	defaultTimeout = 30 * time.Second
	// Minimum spacing between provider calls. The quota is enforced
	// remotely; this only keeps bursts polite.
	requestSpacing = 200 * time.Millisecond
)

// Client talks to the card-data provider through the cache store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *cache.Store
	logger     *slog.Logger

	mu     sync.RWMutex
	apiKey string

	gamesTTL      time.Duration
	expansionsTTL time.Duration
	cardsTTL      time.Duration

	// sessionCalls counts transport calls this process has made.
	// Diagnostics only; the provider is the source of truth for quota.
	sessionCalls atomic.Int64
}

// ClientConfig configures the provider client.
type ClientConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	Cache         *cache.Store
	Logger        *slog.Logger
	GamesTTL      time.Duration
	ExpansionsTTL time.Duration
	CardsTTL      time.Duration
}

// NewClient creates a provider client. Cache is required; everything else
// has defaults.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.GamesTTL == 0 {
		cfg.GamesTTL = 7 * 24 * time.Hour
	}
	if cfg.ExpansionsTTL == 0 {
		cfg.ExpansionsTTL = 24 * time.Hour
	}
	if cfg.CardsTTL == 0 {
		cfg.CardsTTL = 24 * time.Hour
	}

	return &Client{
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		limiter:       rate.NewLimiter(rate.Every(requestSpacing), 1),
		cache:         cfg.Cache,
		logger:        cfg.Logger,
		gamesTTL:      cfg.GamesTTL,
		expansionsTTL: cfg.ExpansionsTTL,
		cardsTTL:      cfg.CardsTTL,
	}, nil
}

// SetAPIKey swaps the API key at runtime (config hot-reload).
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

// SessionCalls reports how many transport calls this process has made.
func (c *Client) SessionCalls() int64 {
	return c.sessionCalls.Load()
}

// ListGames returns all supported games. Cached for the games tier (7 days
// by default).
func (c *Client) ListGames(ctx context.Context) ([]Game, error) {
	key := cache.GamesKey()
	if raw, ok := c.cache.Get(ctx, key); ok {
		var games []Game
		if err := json.Unmarshal(raw, &games); err == nil {
			return games, nil
		}
		// Corrupt entry: fall through to a fresh fetch.
	}

	var res gamesResponse
	if err := c.request(ctx, "/games", &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, &DataUnavailableError{Resource: "games"}
	}

	c.cacheSet(ctx, key, res.Data.Games, c.gamesTTL)
	return res.Data.Games, nil
}

// ListExpansions returns one page of a game's expansions. Each (game, page)
// pair is an independent 24h cache entry.
func (c *Client) ListExpansions(ctx context.Context, categoryID, page int) (ExpansionPage, error) {
	key := cache.ExpansionsKey(categoryID, page)
	if raw, ok := c.cache.Get(ctx, key); ok {
		var cached ExpansionPage
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	var res expansionsResponse
	endpoint := fmt.Sprintf("/expansions/%d?page=%d", categoryID, page)
	if err := c.request(ctx, endpoint, &res); err != nil {
		return ExpansionPage{}, err
	}
	if !res.Success {
		return ExpansionPage{}, &DataUnavailableError{Resource: fmt.Sprintf("expansions for game %d", categoryID)}
	}

	result := ExpansionPage{
		Expansions: res.Data.Expansions,
		TotalPages: res.Data.Pagination.TotalPages,
	}
	c.cacheSet(ctx, key, result, c.expansionsTTL)
	return result, nil
}

// ListCards returns one page of an expansion's cards. Each (group, page)
// pair is an independent 24h cache entry.
func (c *Client) ListCards(ctx context.Context, groupID, page int) (CardPage, error) {
	key := cache.CardsKey(groupID, page)
	if raw, ok := c.cache.Get(ctx, key); ok {
		var cached CardPage
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	var res cardsResponse
	endpoint := fmt.Sprintf("/cards/%d?page=%d", groupID, page)
	if err := c.request(ctx, endpoint, &res); err != nil {
		return CardPage{}, err
	}
	if !res.Success {
		return CardPage{}, &DataUnavailableError{Resource: fmt.Sprintf("cards for group %d", groupID)}
	}

	result := CardPage{
		Cards:      res.Data.Cards,
		TotalPages: res.Data.Pagination.TotalPages,
	}
	c.cacheSet(ctx, key, result, c.cardsTTL)
	return result, nil
}

// GetUsage returns the provider's live quota snapshot. Never cached.
func (c *Client) GetUsage(ctx context.Context) (Usage, error) {
	var res usageResponse
	if err := c.request(ctx, "/user/usage", &res); err != nil {
		return Usage{}, err
	}
	if !res.Success {
		return Usage{}, &DataUnavailableError{Resource: "usage"}
	}
	return res.Data, nil
}

// GetUserProfile returns the API account behind the configured key.
// Never cached.
func (c *Client) GetUserProfile(ctx context.Context) (UserProfile, error) {
	var res profileResponse
	if err := c.request(ctx, "/user/profile", &res); err != nil {
		return UserProfile{}, err
	}
	if !res.Success {
		return UserProfile{}, &DataUnavailableError{Resource: "profile"}
	}
	return res.Data, nil
}

// CheckHealth reports whether the provider is reachable. Failures collapse
// to false; health is informational only.
func (c *Client) CheckHealth(ctx context.Context) bool {
	var res healthResponse
	if err := c.request(ctx, "/health", &res); err != nil {
		return false
	}
	return res.Success
}

// ClearCache drops every cached provider response.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

// cacheSet marshals and stores a value; marshal failure just skips the
// write (cache is best effort).
func (c *Client) cacheSet(ctx context.Context, key cache.Key, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug("cache marshal failed", "key", key.String(), "error", err)
		return
	}
	c.cache.Set(ctx, key, raw, ttl)
}

// request performs one paced GET against the provider and decodes the
// JSON body into result. Non-2xx statuses become typed errors.
func (c *Client) request(ctx context.Context, endpoint string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	c.sessionCalls.Add(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.mu.RLock()
	req.Header.Set("X-API-Key", c.apiKey)
	c.mu.RUnlock()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &InvalidCredentialError{}
	case resp.StatusCode == http.StatusForbidden:
		return &PlanRestrictedError{Endpoint: endpoint}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &QuotaExceededError{}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &TransportError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return nil
}
