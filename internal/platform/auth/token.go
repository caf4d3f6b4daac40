package auth

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims holds the JWT claims carried by a session token. The role and
// permission snapshot is embedded so that the gate can run without a user
// store round trip; the authoritative copy lives on the session.
type Claims struct {
	jwt.RegisteredClaims
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// TokenIssuer issues and verifies HS256 session tokens. Every issued token
// carries a fresh random jti, so two logins with the same credentials always
// produce different tokens.
type TokenIssuer struct {
	signingKey []byte
	issuer     string
	audience   string
	ttl        time.Duration
}

func NewTokenIssuer(signingKey []byte, issuer, audience string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		signingKey: signingKey,
		issuer:     issuer,
		audience:   audience,
		ttl:        ttl,
	}
}

// TTL returns the lifetime applied to issued tokens.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a session token for the given profile. Returns the token
// string and its parsed claims (jti, expiry) for session bookkeeping.
func (i *TokenIssuer) Issue(p Profile) (string, *Claims, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   p.ID.String(),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Role:        string(p.Role),
		Permissions: p.Permissions,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Verify parses and validates a token (signature, expiry, issuer, audience).
// Returns ErrInvalidToken on any failure; callers must not leak the cause.
func (i *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
	}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.signingKey, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// IsTokenWellFormed reports whether token has the structure of a signed
// token: three non-empty dot-separated segments of URL-safe base64
// characters. This is a shape check only, not authentication — a well-formed
// but revoked or expired token still fails Verify.
func IsTokenWellFormed(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
		for _, r := range part {
			switch {
			case r >= 'a' && r <= 'z':
			case r >= 'A' && r <= 'Z':
			case r >= '0' && r <= '9':
			case r == '-' || r == '_':
			default:
				return false
			}
		}
	}
	return true
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
