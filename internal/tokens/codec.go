package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken indicates a token that failed signature, expiry, or kind checks.
var ErrInvalidToken = errors.New("invalid token")

// Kind distinguishes the two credential types issued by the codec.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Codec creates and verifies signed, expiring account credentials. Access and
// refresh tokens are signed with distinct secrets so a leaked access secret
// cannot be used to mint refresh tokens.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

type sessionClaims struct {
	Kind Kind `json:"tkn"`
	jwt.RegisteredClaims
}

// NewCodec constructs a Codec from the two signing secrets and their TTLs.
func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("tokens: signing secrets must not be empty")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("tokens: token TTLs must be positive")
	}
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// IssueAccess mints a short-lived access token for the account.
func (c *Codec) IssueAccess(accountID string) (string, time.Time, error) {
	return c.issue(accountID, KindAccess, c.accessSecret, c.accessTTL)
}

// IssueRefresh mints a long-lived refresh token for the account.
func (c *Codec) IssueRefresh(accountID string) (string, time.Time, error) {
	return c.issue(accountID, KindRefresh, c.refreshSecret, c.refreshTTL)
}

func (c *Codec) issue(accountID string, kind Kind, secret []byte, ttl time.Duration) (string, time.Time, error) {
	if accountID == "" {
		return "", time.Time{}, errors.New("tokens: account id must be provided")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	claims := sessionClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti makes every token unique; iat alone has second granularity,
			// which would let two tokens minted in the same second collide.
			ID:        uuid.NewString(),
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}

	return signed, expiresAt, nil
}

// Verify checks the token's signature, expiry, and kind, returning the
// embedded account identifier. Any failure surfaces as ErrInvalidToken.
func (c *Codec) Verify(token string, kind Kind) (string, error) {
	secret := c.accessSecret
	if kind == KindRefresh {
		secret = c.refreshSecret
	}

	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Kind != kind || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
