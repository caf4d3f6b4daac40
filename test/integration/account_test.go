package integration

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/whitecross/server/internal/domain/account"
	"github.com/whitecross/server/internal/platform/auth"
)

func newAccountService(t *testing.T) (*account.Service, *auth.Guard, auth.SessionStore) {
	t.Helper()
	tokens := auth.NewTokenIssuer([]byte("integration-test-signing-key-0001"), "whitecross", "whitecross-web", time.Hour)
	revoked := auth.NewRevocationList()
	t.Cleanup(revoked.Close)
	sessions := auth.NewPGSessionStoreFromPool(globalDB.Pool)
	svc := account.NewService(
		account.NewUserRepo(globalDB.Pool),
		account.NewHasher(4),
		tokens, sessions, revoked,
		"/dashboard", zerolog.Nop(),
	)
	return svc, auth.NewGuard(tokens, sessions, revoked), sessions
}

func TestLoginFlow(t *testing.T) {
	ctx := context.Background()
	truncate(t, ctx, "session", "app_user")
	svc, guard, sessions := newAccountService(t)

	user, err := svc.CreateUser(ctx, account.CreateUserRequest{
		Email:     "nurse@school.example",
		Password:  "correct horse battery staple",
		Role:      auth.RoleNurse,
		FirstName: "Dana",
		LastName:  "Reyes",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	resp, err := svc.Login(ctx, account.LoginRequest{
		Email:    "nurse@school.example",
		Password: "correct horse battery staple",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a session token")
	}
	if resp.RedirectTo != "/dashboard" {
		t.Errorf("RedirectTo = %q, want /dashboard", resp.RedirectTo)
	}

	// The session row is persisted and the guard accepts the token.
	sess, err := sessions.Read(ctx, resp.Token)
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if sess.User.ID != user.ID {
		t.Errorf("session bound to %s, want %s", sess.User.ID, user.ID)
	}

	result, err := guard.Evaluate(ctx, resp.Token, "/students")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.State != auth.StateAllowed {
		t.Fatalf("guard state = %s, want ALLOWED (%s)", result.State, result.Code)
	}
	if result.User.Role != auth.RoleNurse {
		t.Errorf("guard role = %s, want NURSE", result.User.Role)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	ctx := context.Background()
	truncate(t, ctx, "session", "app_user")
	svc, _, _ := newAccountService(t)

	if _, err := svc.CreateUser(ctx, account.CreateUserRequest{
		Email:    "known@school.example",
		Password: "a long enough password",
		Role:     auth.RoleReadOnly,
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, unknownErr := svc.Login(ctx, account.LoginRequest{
		Email:    "unknown@school.example",
		Password: "a long enough password",
	})
	_, wrongErr := svc.Login(ctx, account.LoginRequest{
		Email:    "known@school.example",
		Password: "not the right password",
	})

	if unknownErr == nil || wrongErr == nil {
		t.Fatal("expected both logins to fail")
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("failure messages differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	ctx := context.Background()
	truncate(t, ctx, "session", "app_user")
	svc, guard, _ := newAccountService(t)

	if _, err := svc.CreateUser(ctx, account.CreateUserRequest{
		Email:    "counselor@school.example",
		Password: "another fine password",
		Role:     auth.RoleCounselor,
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	resp, err := svc.Login(ctx, account.LoginRequest{
		Email:    "counselor@school.example",
		Password: "another fine password",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(ctx, resp.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	result, err := guard.Evaluate(ctx, resp.Token, "/students")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.State != auth.StateDenied {
		t.Fatalf("guard state after logout = %s, want DENIED", result.State)
	}
}

func TestFreshLoginReplacesSession(t *testing.T) {
	ctx := context.Background()
	truncate(t, ctx, "session", "app_user")
	svc, guard, _ := newAccountService(t)

	if _, err := svc.CreateUser(ctx, account.CreateUserRequest{
		Email:    "admin@school.example",
		Password: "the admin passphrase",
		Role:     auth.RoleAdmin,
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	login := func() string {
		resp, err := svc.Login(ctx, account.LoginRequest{
			Email:    "admin@school.example",
			Password: "the admin passphrase",
		})
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		return resp.Token
	}

	first := login()
	second := login()

	evaluate := func(token string) auth.GuardState {
		result, err := guard.Evaluate(ctx, token, "/students")
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		return result.State
	}

	if evaluate(first) == auth.StateAllowed {
		t.Error("first session should be replaced by the second login")
	}
	if evaluate(second) != auth.StateAllowed {
		t.Error("second session should be live")
	}
}
