// Package session holds the process-wide user session as explicit,
// injected state. The provider hydrates from the durable store on startup
// and notifies subscribers on every change, so consumers (data layer,
// API surface) never import a singleton.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/CALILU/cardtradr/internal/storage/repository"
)

// settingsKey is where the session is persisted in the settings table.
const settingsKey = "session"

// Session identifies the signed-in user.
type Session struct {
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	SignedInAt time.Time `json:"signedInAt"`
}

// Listener receives the session on subscription and after every change.
// A nil session means signed out.
type Listener func(s *Session)

type subscriber struct {
	id int
	fn Listener
}

// Provider owns the current session. Safe for concurrent use. Listeners
// are notified sequentially in registration order.
type Provider struct {
	settings repository.SettingsRepository
	logger   *slog.Logger

	mu      sync.RWMutex
	current *Session
	subs    []subscriber
	nextID  int
}

// NewProvider creates a session provider over the settings repository.
func NewProvider(settings repository.SettingsRepository, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		settings: settings,
		logger:   logger,
	}
}

// Hydrate loads the persisted session, if any. Call exactly once on
// startup, before Subscribe, so the initial delivery reflects the
// persisted-or-absent session.
func (p *Provider) Hydrate(ctx context.Context) error {
	var s Session
	err := p.settings.GetTyped(ctx, settingsKey, &s)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		if !errors.Is(err, repository.ErrSettingNotFound) {
			// A corrupt persisted session degrades to signed-out
			// rather than blocking startup.
			p.logger.Warn("failed to hydrate session", "error", err)
		}
		p.current = nil
		return nil
	}

	p.current = &s
	return nil
}

// Subscribe registers a listener. The current session is delivered
// synchronously exactly once before Subscribe returns, then again on every
// change. The returned function unsubscribes.
func (p *Provider) Subscribe(fn Listener) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs = append(p.subs, subscriber{id: id, fn: fn})
	current := p.current
	p.mu.Unlock()

	fn(copySession(current))

	return func() {
		p.mu.Lock()
		for i, sub := range p.subs {
			if sub.id == id {
				p.subs = append(p.subs[:i], p.subs[i+1:]...)
				break
			}
		}
		p.mu.Unlock()
	}
}

// Current returns the session, or nil when signed out.
func (p *Provider) Current() *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return copySession(p.current)
}

// SignIn sets and persists the session, then notifies subscribers.
func (p *Provider) SignIn(ctx context.Context, userID, email string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	s := &Session{UserID: userID, Email: email, SignedInAt: time.Now()}

	if err := p.settings.Set(ctx, settingsKey, s); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	p.mu.Lock()
	p.current = s
	p.mu.Unlock()

	p.notify()
	return nil
}

// SignOut clears the persisted session and notifies subscribers with nil.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := p.settings.Delete(ctx, settingsKey); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}

	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	p.notify()
	return nil
}

// notify delivers the current session to all subscribers in registration
// order, outside the lock.
func (p *Provider) notify() {
	p.mu.RLock()
	current := p.current
	subs := make([]subscriber, len(p.subs))
	copy(subs, p.subs)
	p.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(copySession(current))
	}
}

func copySession(s *Session) *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
