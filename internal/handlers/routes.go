package handlers

import (
	"net/http"

	"github.com/cliptide/backend/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{
		Accounts: deps.Accounts,
		Issuer:   deps.Issuer,
		Verifier: deps.Verifier,
		Assets:   deps.Assets,
		Limiter:  deps.AuthLimiter,
	}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/auth/register", auth.Register)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.HandleFunc("/api/v1/auth/refresh", auth.Refresh)
	mux.Handle("/api/v1/auth/logout", middleware.RequireAuth(deps.Verifier)(http.HandlerFunc(auth.Logout)))
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts    AccountStore
	Issuer      CredentialIssuer
	Verifier    TokenVerifier
	Assets      AssetStorage
	AuthLimiter RateLimiter
}
