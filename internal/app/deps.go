package app

import (
	"context"
	"time"

	"github.com/cliptide/backend/internal/auth"
	"github.com/cliptide/backend/internal/config"
	"github.com/cliptide/backend/internal/db"
	"github.com/cliptide/backend/internal/handlers"
	"github.com/cliptide/backend/internal/middleware"
	"github.com/cliptide/backend/internal/repositories"
	"github.com/cliptide/backend/internal/storage"
	"github.com/cliptide/backend/internal/tokens"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	codec, err := tokens.NewCodec(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	assets, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	accounts := repositories.NewPostgresAccountRepository(pool)

	return handlers.Dependencies{
		Accounts:    accounts,
		Issuer:      auth.NewIssuer(accounts, codec),
		Verifier:    codec,
		Assets:      assets,
		AuthLimiter: middleware.NewIPRateLimiter(cfg.AuthRateLimit, time.Minute, cfg.AuthRateLimit, 10*time.Minute),
	}, nil
}
