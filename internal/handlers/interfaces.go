package handlers

import (
	"context"
	"io"

	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/tokens"
)

// AccountStore captures the persistence operations required by the auth handlers.
type AccountStore interface {
	Create(ctx context.Context, account models.Account) error
	FindByID(ctx context.Context, id string) (models.Account, error)
	FindByLogin(ctx context.Context, username, email string) (models.Account, error)
	ClearRefreshToken(ctx context.Context, id string) error
	GetRefreshToken(ctx context.Context, id string) (string, error)
}

// CredentialIssuer mints and persists token pairs for authenticated accounts.
type CredentialIssuer interface {
	Issue(ctx context.Context, accountID string) (models.TokenPair, error)
}

// TokenVerifier validates a signed credential of the expected kind.
type TokenVerifier interface {
	Verify(token string, kind tokens.Kind) (string, error)
}

// AssetStorage persists uploaded files and returns their durable public URL.
type AssetStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}
