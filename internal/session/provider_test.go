package session

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/CALILU/cardtradr/internal/storage/repository"
)

// fakeSettings is an in-memory SettingsRepository.
type fakeSettings struct {
	values map[string]string
	failOn string
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{values: make(map[string]string)}
}

func (f *fakeSettings) Get(_ context.Context, key string) (string, error) {
	if f.failOn == "get" {
		return "", fmt.Errorf("forced failure")
	}
	v, ok := f.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", repository.ErrSettingNotFound, key)
	}
	return v, nil
}

func (f *fakeSettings) GetTyped(ctx context.Context, key string, target interface{}) error {
	v, err := f.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(v), target)
}

func (f *fakeSettings) Set(_ context.Context, key string, value interface{}) error {
	if f.failOn == "set" {
		return fmt.Errorf("forced failure")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[key] = string(raw)
	return nil
}

func (f *fakeSettings) Delete(_ context.Context, key string) error {
	if f.failOn == "delete" {
		return fmt.Errorf("forced failure")
	}
	delete(f.values, key)
	return nil
}

func TestHydrateEmptyStore(t *testing.T) {
	p := NewProvider(newFakeSettings(), nil)
	if err := p.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if p.Current() != nil {
		t.Error("expected signed-out after hydrating an empty store")
	}
}

func TestHydrateCorruptSessionDegradesToSignedOut(t *testing.T) {
	settings := newFakeSettings()
	settings.values[settingsKey] = "{not json"

	p := NewProvider(settings, nil)
	if err := p.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate should absorb corrupt state, got %v", err)
	}
	if p.Current() != nil {
		t.Error("corrupt session should hydrate as signed-out")
	}
}

func TestSignInPersistsAndNotifies(t *testing.T) {
	settings := newFakeSettings()
	p := NewProvider(settings, nil)
	if err := p.Hydrate(context.Background()); err != nil {
		t.Fatal(err)
	}

	var notifications []*Session
	p.Subscribe(func(s *Session) {
		notifications = append(notifications, s)
	})

	if err := p.SignIn(context.Background(), "u1", "u1@example.com"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	// Initial nil delivery plus the sign-in.
	if len(notifications) != 2 {
		t.Fatalf("got %d notifications, want 2", len(notifications))
	}
	if notifications[0] != nil {
		t.Error("initial delivery should be nil when signed out")
	}
	if notifications[1] == nil || notifications[1].UserID != "u1" {
		t.Errorf("second delivery = %+v", notifications[1])
	}

	if _, ok := settings.values[settingsKey]; !ok {
		t.Error("session was not persisted")
	}

	// A fresh provider over the same store hydrates the session back.
	p2 := NewProvider(settings, nil)
	if err := p2.Hydrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := p2.Current()
	if got == nil || got.UserID != "u1" || got.Email != "u1@example.com" {
		t.Errorf("rehydrated session = %+v", got)
	}
}

func TestSignInRequiresUserID(t *testing.T) {
	p := NewProvider(newFakeSettings(), nil)
	if err := p.SignIn(context.Background(), "", "x@example.com"); err == nil {
		t.Error("expected error for empty user ID")
	}
}

func TestSignInPersistFailureLeavesStateUnchanged(t *testing.T) {
	settings := newFakeSettings()
	settings.failOn = "set"
	p := NewProvider(settings, nil)

	if err := p.SignIn(context.Background(), "u1", ""); err == nil {
		t.Fatal("expected persist failure")
	}
	if p.Current() != nil {
		t.Error("failed sign-in must not change in-memory state")
	}
}

func TestSignOut(t *testing.T) {
	settings := newFakeSettings()
	p := NewProvider(settings, nil)
	if err := p.SignIn(context.Background(), "u1", ""); err != nil {
		t.Fatal(err)
	}

	var last *Session
	delivered := false
	p.Subscribe(func(s *Session) {
		last = s
		delivered = true
	})

	if err := p.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if !delivered || last != nil {
		t.Errorf("expected nil delivery after sign-out, got %+v", last)
	}
	if p.Current() != nil {
		t.Error("Current should be nil after sign-out")
	}
	if _, ok := settings.values[settingsKey]; ok {
		t.Error("persisted session should be removed")
	}
}

func TestSubscribeDeliversCurrentExactlyOnce(t *testing.T) {
	p := NewProvider(newFakeSettings(), nil)
	if err := p.SignIn(context.Background(), "u1", ""); err != nil {
		t.Fatal(err)
	}

	count := 0
	p.Subscribe(func(s *Session) {
		count++
		if s == nil || s.UserID != "u1" {
			t.Errorf("initial delivery = %+v", s)
		}
	})
	if count != 1 {
		t.Errorf("initial delivery count = %d, want 1", count)
	}
}

func TestUnsubscribe(t *testing.T) {
	p := NewProvider(newFakeSettings(), nil)

	count := 0
	unsubscribe := p.Subscribe(func(*Session) { count++ })
	unsubscribe()

	if err := p.SignIn(context.Background(), "u1", ""); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("unsubscribed listener was notified: count = %d, want 1", count)
	}
}

func TestNotificationOrder(t *testing.T) {
	p := NewProvider(newFakeSettings(), nil)

	var order []int
	p.Subscribe(func(*Session) { order = append(order, 1) })
	p.Subscribe(func(*Session) { order = append(order, 2) })
	order = nil

	if err := p.SignIn(context.Background(), "u1", ""); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("notification order = %v, want [1 2]", order)
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	p := NewProvider(newFakeSettings(), nil)
	if err := p.SignIn(context.Background(), "u1", ""); err != nil {
		t.Fatal(err)
	}

	got := p.Current()
	got.UserID = "mutated"
	if p.Current().UserID != "u1" {
		t.Error("mutating the returned session changed provider state")
	}
}
