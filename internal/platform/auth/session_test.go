package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemorySessionStore_CreateRead(t *testing.T) {
	store := NewMemorySessionStore()
	defer store.Close()
	ctx := context.Background()
	p := testProfile()

	sess := Session{
		Token:     "token-a",
		User:      p,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	if err := store.Create(ctx, &sess); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := store.Read(ctx, "token-a")
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if got.User.ID != p.ID {
		t.Errorf("expected user %s, got %s", p.ID, got.User.ID)
	}
	if got.User.Email != p.Email {
		t.Errorf("expected email %s, got %s", p.Email, got.User.Email)
	}
}

func TestMemorySessionStore_ReadAbsent(t *testing.T) {
	store := NewMemorySessionStore()
	defer store.Close()

	_, err := store.Read(context.Background(), "never-created")
	if !errors.Is(err, ErrSessionAbsent) {
		t.Errorf("expected ErrSessionAbsent, got %v", err)
	}
}

func TestMemorySessionStore_Clear(t *testing.T) {
	store := NewMemorySessionStore()
	defer store.Close()
	ctx := context.Background()

	sess := Session{Token: "token-a", User: testProfile(), ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Create(ctx, &sess); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := store.Clear(ctx, "token-a"); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, err := store.Read(ctx, "token-a"); !errors.Is(err, ErrSessionAbsent) {
		t.Errorf("expected ErrSessionAbsent after Clear, got %v", err)
	}

	// Clearing an absent session is a no-op.
	if err := store.Clear(ctx, "token-a"); err != nil {
		t.Errorf("Clear() on absent session error: %v", err)
	}
}

func TestMemorySessionStore_OneSessionPerUser(t *testing.T) {
	store := NewMemorySessionStore()
	defer store.Close()
	ctx := context.Background()
	p := testProfile()

	first := Session{Token: "token-1", User: p, ExpiresAt: time.Now().Add(time.Hour)}
	second := Session{Token: "token-2", User: p, ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Create(ctx, &first); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := store.Create(ctx, &second); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if _, err := store.Read(ctx, "token-1"); !errors.Is(err, ErrSessionAbsent) {
		t.Errorf("a second login should evict the first session, got %v", err)
	}
	if _, err := store.Read(ctx, "token-2"); err != nil {
		t.Errorf("latest session should remain readable: %v", err)
	}
}

func TestMemorySessionStore_ExpiredDroppedOnRead(t *testing.T) {
	store := NewMemorySessionStore()
	defer store.Close()
	ctx := context.Background()

	sess := Session{Token: "stale", User: testProfile(), ExpiresAt: time.Now().Add(-time.Minute)}
	if err := store.Create(ctx, &sess); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := store.Read(ctx, "stale"); !errors.Is(err, ErrSessionAbsent) {
		t.Errorf("expected ErrSessionAbsent for expired session, got %v", err)
	}
}

func TestMemorySessionStore_ClearAllForUser(t *testing.T) {
	store := NewMemorySessionStore()
	defer store.Close()
	ctx := context.Background()
	p := testProfile()

	sess := Session{Token: "token-a", User: p, ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Create(ctx, &sess); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := store.ClearAllForUser(ctx, p.ID); err != nil {
		t.Fatalf("ClearAllForUser() error: %v", err)
	}
	if _, err := store.Read(ctx, "token-a"); !errors.Is(err, ErrSessionAbsent) {
		t.Errorf("expected ErrSessionAbsent after ClearAllForUser, got %v", err)
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Now().UTC()
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"future", now.Add(time.Hour), false},
		{"past", now.Add(-time.Second), true},
		{"exactly now", now, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Session{ExpiresAt: tt.expiresAt}
			if got := s.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
