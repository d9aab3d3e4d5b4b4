package repositories

import (
	"context"

	"github.com/cliptide/backend/internal/models"
)

// AccountRepository defines the data access contract for accounts, including
// the narrow refresh-token writes used by the credential lifecycle.
type AccountRepository interface {
	Create(ctx context.Context, account models.Account) error
	FindByID(ctx context.Context, id string) (models.Account, error)
	FindByLogin(ctx context.Context, username, email string) (models.Account, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	ClearRefreshToken(ctx context.Context, id string) error
	GetRefreshToken(ctx context.Context, id string) (string, error)
}
