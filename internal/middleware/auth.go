package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cliptide/backend/internal/logging"
	"github.com/cliptide/backend/internal/tokens"
)

// AccessTokenCookie is the cookie carrying the short-lived access credential.
const AccessTokenCookie = "accessToken"

type authCtxKey string

const accountIDKey authCtxKey = "accountID"

// TokenVerifier validates an access token and returns the account it belongs to.
type TokenVerifier interface {
	Verify(token string, kind tokens.Kind) (string, error)
}

// WithAccountID stores the authenticated account identifier on the context.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	if ctx == nil || accountID == "" {
		return ctx
	}
	return context.WithValue(ctx, accountIDKey, accountID)
}

// AccountIDFromContext retrieves the authenticated account identifier, or "".
func AccountIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(accountIDKey).(string); ok {
		return id
	}
	return ""
}

// RequireAuth verifies the access token from the accessToken cookie or the
// Authorization header and stores the trusted account identifier on the
// request context. Requests without a valid token are rejected with 401.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, r)
				return
			}

			accountID, err := verifier.Verify(token, tokens.KindAccess)
			if err != nil {
				logging.FromContext(r.Context()).Warn("access token rejected", "error", err)
				unauthorized(w, r)
				return
			}

			ctx := WithAccountID(r.Context(), accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	payload := map[string]any{
		"statusCode": http.StatusUnauthorized,
		"data":       nil,
		"message":    "unauthorized request",
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(r.Context()).Error("encode unauthorized response", "error", err)
	}
}
