package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// failingStore wraps a SessionStore and fails Read with a non-absent error,
// simulating a backend outage.
type failingStore struct {
	SessionStore
}

func (f failingStore) Read(context.Context, string) (*Session, error) {
	return nil, errors.New("connection refused")
}

func guardFixture(t *testing.T) (*Guard, *TokenIssuer, *MemorySessionStore, *RevocationList) {
	t.Helper()
	issuer := testIssuer(time.Hour)
	store := NewMemorySessionStore()
	revoked := NewRevocationList()
	t.Cleanup(store.Close)
	t.Cleanup(revoked.Close)
	return NewGuard(issuer, store, revoked), issuer, store, revoked
}

func login(t *testing.T, issuer *TokenIssuer, store SessionStore, p Profile) (string, *Claims) {
	t.Helper()
	token, claims, err := issuer.Issue(p)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	sess := &Session{
		Token:     token,
		User:      p,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := store.Create(context.Background(), sess); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	return token, claims
}

func TestGuard_NoToken(t *testing.T) {
	guard, _, _, _ := guardFixture(t)

	result, err := guard.Evaluate(context.Background(), "", "/students")
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if result.State != StateDenied {
		t.Errorf("expected DENIED, got %s", result.State)
	}
	if result.Code != CodeUnauthenticated {
		t.Errorf("expected code %q, got %q", CodeUnauthenticated, result.Code)
	}
	if result.Redirect != "/login" {
		t.Errorf("expected redirect /login, got %q", result.Redirect)
	}
	if result.From != "/students" {
		t.Errorf("expected from /students, got %q", result.From)
	}
}

func TestGuard_ValidSession(t *testing.T) {
	guard, issuer, store, _ := guardFixture(t)
	p := testProfile()
	token, _ := login(t, issuer, store, p)

	result, err := guard.Evaluate(context.Background(), token, "/students")
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if result.State != StateAllowed {
		t.Fatalf("expected ALLOWED, got %s (code %q)", result.State, result.Code)
	}
	if result.User == nil || result.User.ID != p.ID {
		t.Error("allowed result must carry the session profile")
	}
}

func TestGuard_MalformedTokenClearsSession(t *testing.T) {
	guard, _, store, _ := guardFixture(t)

	sess := &Session{Token: "invalid-token", User: testProfile(), ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Create(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	result, err := guard.Evaluate(context.Background(), "invalid-token", "/students")
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if result.State != StateDenied || result.Code != CodeSessionExpired {
		t.Errorf("expected DENIED/session_expired, got %s/%q", result.State, result.Code)
	}
	if _, err := store.Read(context.Background(), "invalid-token"); !errors.Is(err, ErrSessionAbsent) {
		t.Error("malformed-token denial must clear the stored session")
	}
}

func TestGuard_ForgedTokenDenied(t *testing.T) {
	guard, _, store, _ := guardFixture(t)
	p := testProfile()

	forged := mustIssue(t, NewTokenIssuer([]byte("attacker-key"), "whitecross", "whitecross-web", time.Hour), p)
	sess := &Session{Token: forged, User: p, ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Create(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	result, err := guard.Evaluate(context.Background(), forged, "/students")
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if result.State != StateDenied {
		t.Error("a session row must grant nothing when the token fails verification")
	}
}

func TestGuard_RevokedTokenDenied(t *testing.T) {
	guard, issuer, store, revoked := guardFixture(t)
	p := testProfile()
	token, claims := login(t, issuer, store, p)

	revoked.Revoke(claims.ID, p.ID.String(), claims.ExpiresAt.Time)

	result, err := guard.Evaluate(context.Background(), token, "/students")
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if result.State != StateDenied || result.Code != CodeSessionExpired {
		t.Errorf("expected DENIED/session_expired for revoked token, got %s/%q", result.State, result.Code)
	}
}

func TestGuard_SessionAbsent(t *testing.T) {
	guard, issuer, _, _ := guardFixture(t)

	// Token verifies, but no server-side session exists (e.g. logged out
	// elsewhere). Server-side state is authoritative.
	token := mustIssue(t, issuer, testProfile())

	result, err := guard.Evaluate(context.Background(), token, "/students")
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if result.State != StateDenied || result.Code != CodeSessionExpired {
		t.Errorf("expected DENIED/session_expired, got %s/%q", result.State, result.Code)
	}
}

func TestGuard_StoreOutageKeepsSession(t *testing.T) {
	issuer := testIssuer(time.Hour)
	store := NewMemorySessionStore()
	t.Cleanup(store.Close)
	p := testProfile()
	token, _ := login(t, issuer, store, p)

	guard := NewGuard(issuer, failingStore{store}, nil)

	_, err := guard.Evaluate(context.Background(), token, "/students")
	if err == nil {
		t.Fatal("store outage must surface as an error, not a denial")
	}

	// The session survives the outage: once the store recovers, the same
	// token still works.
	recovered := NewGuard(issuer, store, nil)
	result, err := recovered.Evaluate(context.Background(), token, "/students")
	if err != nil {
		t.Fatalf("Evaluate() after recovery error: %v", err)
	}
	if result.State != StateAllowed {
		t.Errorf("session should remain valid after a transient outage, got %s", result.State)
	}
}

func TestGuard_CanceledContextDiscardsResult(t *testing.T) {
	guard, issuer, store, _ := guardFixture(t)
	token, _ := login(t, issuer, store, testProfile())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := guard.Evaluate(ctx, token, "/students")
	if err == nil {
		t.Errorf("abandoned request must not yield a result, got %+v", result)
	}
}

func TestGuard_ExpiredSessionCleared(t *testing.T) {
	issuer := testIssuer(time.Hour)
	store := NewMemorySessionStore()
	t.Cleanup(store.Close)
	guard := NewGuard(issuer, store, nil)
	p := testProfile()

	token, _, err := issuer.Issue(p)
	if err != nil {
		t.Fatal(err)
	}
	// Session record expires before the token does.
	sess := &Session{Token: token, User: p, ExpiresAt: time.Now().Add(-time.Minute)}
	if err := store.Create(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	result, err := guard.Evaluate(context.Background(), token, "/dashboard")
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if result.State != StateDenied || result.Code != CodeSessionExpired {
		t.Errorf("expected DENIED/session_expired, got %s/%q", result.State, result.Code)
	}
}

func TestGuardState_String(t *testing.T) {
	tests := []struct {
		state GuardState
		want  string
	}{
		{StateUnchecked, "UNCHECKED"},
		{StateVerifying, "VERIFYING"},
		{StateAllowed, "ALLOWED"},
		{StateDenied, "DENIED"},
		{GuardState(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("GuardState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestGuard_DistinctUsersDistinctSessions(t *testing.T) {
	guard, issuer, store, _ := guardFixture(t)

	alice := testProfile()
	bob := Profile{ID: uuid.New(), Email: "counselor@school.edu", Role: RoleCounselor, Active: true}

	aliceToken, _ := login(t, issuer, store, alice)
	bobToken, _ := login(t, issuer, store, bob)

	aliceResult, err := guard.Evaluate(context.Background(), aliceToken, "/")
	if err != nil {
		t.Fatal(err)
	}
	bobResult, err := guard.Evaluate(context.Background(), bobToken, "/")
	if err != nil {
		t.Fatal(err)
	}
	if aliceResult.User.ID != alice.ID || bobResult.User.ID != bob.ID {
		t.Error("sessions must resolve to their own user")
	}
}
