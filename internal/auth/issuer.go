package auth

import (
	"context"
	"errors"
	"time"

	"github.com/cliptide/backend/internal/logging"
	"github.com/cliptide/backend/internal/models"
)

// ErrIssuance indicates token issuance failed. The underlying cause is logged
// but never exposed to callers, since failures here point at infrastructure
// rather than caller input.
var ErrIssuance = errors.New("unable to issue credentials")

// AccountStore captures the persistence operations the issuer needs: loading
// the account and overwriting its single stored refresh token.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (models.Account, error)
	SetRefreshToken(ctx context.Context, id, token string) error
}

// TokenCodec mints the signed credentials that make up a token pair.
type TokenCodec interface {
	IssueAccess(accountID string) (string, time.Time, error)
	IssueRefresh(accountID string) (string, time.Time, error)
}

// Issuer produces access/refresh token pairs and persists the refresh token so
// it can later be compared and revoked.
type Issuer struct {
	accounts AccountStore
	codec    TokenCodec
}

// NewIssuer constructs an Issuer over the provided collaborators.
func NewIssuer(accounts AccountStore, codec TokenCodec) *Issuer {
	if accounts == nil || codec == nil {
		panic("auth: issuer collaborators must not be nil")
	}
	return &Issuer{accounts: accounts, codec: codec}
}

// Issue mints a fresh token pair for the account and stores the refresh token
// as the account's single authoritative session credential. A concurrent
// issue for the same account races last-writer-wins on the stored token.
func (i *Issuer) Issue(ctx context.Context, accountID string) (models.TokenPair, error) {
	logger := logging.FromContext(ctx)

	account, err := i.accounts.FindByID(ctx, accountID)
	if err != nil {
		logger.Error("issuance account lookup failed", "accountId", accountID, "error", err)
		return models.TokenPair{}, ErrIssuance
	}

	accessToken, accessExpiry, err := i.codec.IssueAccess(account.ID)
	if err != nil {
		logger.Error("issuance access token mint failed", "accountId", account.ID, "error", err)
		return models.TokenPair{}, ErrIssuance
	}

	refreshToken, refreshExpiry, err := i.codec.IssueRefresh(account.ID)
	if err != nil {
		logger.Error("issuance refresh token mint failed", "accountId", account.ID, "error", err)
		return models.TokenPair{}, ErrIssuance
	}

	if err := i.accounts.SetRefreshToken(ctx, account.ID, refreshToken); err != nil {
		logger.Error("issuance refresh token persist failed", "accountId", account.ID, "error", err)
		return models.TokenPair{}, ErrIssuance
	}

	return models.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}
