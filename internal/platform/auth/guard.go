package auth

import (
	"context"
	"errors"
	"time"
)

// GuardState models one navigation attempt through the route guard.
type GuardState int

const (
	StateUnchecked GuardState = iota
	StateVerifying
	StateAllowed
	StateDenied
)

func (s GuardState) String() string {
	switch s {
	case StateUnchecked:
		return "UNCHECKED"
	case StateVerifying:
		return "VERIFYING"
	case StateAllowed:
		return "ALLOWED"
	case StateDenied:
		return "DENIED"
	}
	return "UNKNOWN"
}

// Denial codes carried on guard results and 401 payloads. The client shows
// different messaging for a fresh login requirement versus an expired
// session, so the two must stay distinguishable.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeSessionExpired  = "session_expired"
)

// GuardResult is the outcome of evaluating one request against the guard.
// On DENIED, Redirect and From tell the client where to go and which path to
// return to after a successful login.
type GuardResult struct {
	State    GuardState
	User     *Profile
	Code     string
	Redirect string
	From     string
}

// Guard verifies that a bearer token corresponds to a live, unrevoked
// session before any protected handler runs. Verification is strictly
// ordered: no caller observes ALLOWED until every check has passed.
type Guard struct {
	tokens   *TokenIssuer
	sessions SessionStore
	revoked  *RevocationList
}

func NewGuard(tokens *TokenIssuer, sessions SessionStore, revoked *RevocationList) *Guard {
	return &Guard{tokens: tokens, sessions: sessions, revoked: revoked}
}

// Evaluate runs the guard state machine for one request. requestedPath is
// recorded on denials so the client can redirect back after login.
//
// A non-nil error means verification could not complete (store outage); the
// session is deliberately NOT cleared in that case — transient failures must
// not log users out. Context cancellation also returns an error: a result
// computed for an abandoned request is discarded, never applied.
func (g *Guard) Evaluate(ctx context.Context, token, requestedPath string) (*GuardResult, error) {
	if token == "" {
		return &GuardResult{
			State:    StateDenied,
			Code:     CodeUnauthenticated,
			Redirect: "/login",
			From:     requestedPath,
		}, nil
	}

	// VERIFYING from here on.
	if !IsTokenWellFormed(token) {
		// Malformed tokens have no matching session row; clearing keeps the
		// invariant that a denial leaves nothing behind.
		_ = g.sessions.Clear(ctx, token)
		return g.expired(requestedPath), nil
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		_ = g.sessions.Clear(ctx, token)
		return g.expired(requestedPath), nil
	}

	if g.revoked != nil && g.revoked.IsRevoked(claims.ID) {
		_ = g.sessions.Clear(ctx, token)
		return g.expired(requestedPath), nil
	}

	sess, err := g.sessions.Read(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionAbsent) {
			return g.expired(requestedPath), nil
		}
		// Store outage: fail the request, keep the session.
		return nil, err
	}

	if sess.Expired(time.Now()) {
		_ = g.sessions.Clear(ctx, token)
		return g.expired(requestedPath), nil
	}

	// Stale-response guard: if the request was abandoned while we were
	// verifying, discard the result instead of applying it.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user := sess.User
	return &GuardResult{State: StateAllowed, User: &user}, nil
}

func (g *Guard) expired(requestedPath string) *GuardResult {
	return &GuardResult{
		State:    StateDenied,
		Code:     CodeSessionExpired,
		Redirect: "/login",
		From:     requestedPath,
	}
}
