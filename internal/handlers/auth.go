package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptide/backend/internal/logging"
	"github.com/cliptide/backend/internal/middleware"
	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/repositories"
	"github.com/cliptide/backend/internal/tokens"
)

const maxRegisterFormMemory = 10 << 20

// AuthHandler implements account registration and the session credential lifecycle.
type AuthHandler struct {
	Accounts AccountStore
	Issuer   CredentialIssuer
	Verifier TokenVerifier
	Assets   AssetStorage
	Limiter  RateLimiter
	NowFunc  func() time.Time
}

// Register handles POST /api/v1/auth/register requests. The request is
// multipart/form-data: text fields plus a required avatar file and an
// optional coverImage file.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, span := logging.StartSpan(r.Context(), "auth.register")
	defer span.End()
	logger := logging.FromContext(ctx)

	if h.Accounts == nil || h.Assets == nil {
		logger.Error("registration dependencies unavailable", "hasAccounts", h.Accounts != nil, "hasAssets", h.Assets != nil)
		respondEnvelope(ctx, w, http.StatusInternalServerError, nil, "registration services unavailable")
		return
	}

	if !allowRequest(h.Limiter, r, "register") {
		respondEnvelope(ctx, w, http.StatusTooManyRequests, nil, "too many registration attempts")
		return
	}

	if err := r.ParseMultipartForm(maxRegisterFormMemory); err != nil {
		logger.Warn("invalid register payload", "error", err)
		respondEnvelope(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	username := strings.ToLower(strings.TrimSpace(r.FormValue("username")))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	fullName := strings.TrimSpace(r.FormValue("fullName"))
	password := strings.TrimSpace(r.FormValue("password"))

	if username == "" || email == "" || fullName == "" || password == "" {
		logger.Warn("register missing fields", "username", username, "email", email)
		respondEnvelope(ctx, w, http.StatusBadRequest, nil, "all fields are required")
		return
	}

	if _, err := h.Accounts.FindByLogin(ctx, username, email); err == nil {
		logger.Warn("register existing account", "username", username, "email", email)
		respondEnvelope(ctx, w, http.StatusConflict, nil, "account with that username or email already exists")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("register account lookup failed", "error", err)
		respondEnvelope(ctx, w, http.StatusInternalServerError, nil, "unable to verify existing accounts")
		return
	}

	avatarFile, avatarHeader, err := r.FormFile("avatar")
	if err != nil {
		logger.Warn("register missing avatar file", "error", err)
		respondEnvelope(ctx, w, http.StatusBadRequest, nil, "Avatar file is required")
		return
	}
	defer avatarFile.Close()

	avatarURL, err := h.Assets.Save(ctx, assetKey("avatars", avatarHeader.Filename), avatarFile)
	if err != nil {
		logger.Error("register avatar upload failed", "error", err)
		respondEnvelope(ctx, w, http.StatusBadRequest, nil, "Avatar file is required")
		return
	}

	// The cover image is optional and its upload is best-effort: a failure
	// leaves the reference empty rather than aborting registration.
	coverImageURL := ""
	if coverFile, coverHeader, err := r.FormFile("coverImage"); err == nil {
		url, err := h.Assets.Save(ctx, assetKey("covers", coverHeader.Filename), coverFile)
		if err != nil {
			logger.Warn("register cover image upload failed", "error", err)
		} else {
			coverImageURL = url
		}
		coverFile.Close()
	}

	now := h.now()
	account := models.Account{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         email,
		FullName:      fullName,
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := account.SetPassword(password); err != nil {
		logger.Error("register failed to hash password", "error", err)
		respondEnvelope(ctx, w, http.StatusInternalServerError, nil, "failed to secure password")
		return
	}

	if err := h.Accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			logger.Warn("register conflict", "username", username, "email", email)
			respondEnvelope(ctx, w, http.StatusConflict, nil, "account with that username or email already exists")
			return
		}
		logger.Error("register failed to create account", "error", err)
		respondEnvelope(ctx, w, http.StatusInternalServerError, nil, "failed to create account")
		return
	}

	// Consistency check against the just-completed write before responding.
	created, err := h.Accounts.FindByID(ctx, account.ID)
	if err != nil {
		logger.Error("register re-read failed", "accountId", account.ID, "error", err)
		respondEnvelope(ctx, w, http.StatusInternalServerError, nil, "internal error while registering the account")
		return
	}

	respondEnvelope(ctx, w, http.StatusCreated, created.Sanitized(), "account registered successfully")
}

// Login handles POST /api/v1/auth/login requests.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, span := logging.StartSpan(r.Context(), "auth.login")
	defer span.End()
	logger := logging.FromContext(ctx)

	if h.Accounts == nil || h.Issuer == nil {
		logger.Error("authentication dependencies unavailable", "hasAccounts", h.Accounts != nil, "hasIssuer", h.Issuer != nil)
		respondEnvelope(ctx, w, http.StatusInternalServerError, nil, "authentication services unavailable")
		return
	}

	if !allowRequest(h.Limiter, r, "login") {
		respondEnvelope(ctx, w, http.StatusTooManyRequests, nil, "too many login attempts")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondEnvelope(ctx, w, http.StatusBadRequest, nil, "invalid request body")
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// Either identifier is enough to look the account up.
	if req.Username == "" && req.Email == "" {
		logger.Warn("login missing identifier")
		respondEnvelope(ctx, w, http.StatusBadRequest, nil, "username or email is required")
		return
	}
	if req.Password == "" {
		logger.Warn("login missing password", "username", req.Username, "email", req.Email)
		respondEnvelope(ctx, w, http.StatusBadRequest, nil, "password is required")
		return
	}

	account, err := h.Accounts.FindByLogin(ctx, req.Username, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("login unknown account", "username", req.Username, "email", req.Email)
			respondEnvelope(ctx, w, http.StatusNotFound, nil, "account does not exist")
			return
		}
		logger.Error("login account lookup failed", "error", err)
		respondEnvelope(ctx, w, http.StatusInternalServerError, nil, "unable to verify credentials")
		return
	}

	if !account.VerifyPassword(req.Password) {
		logger.Warn("login password mismatch", "accountId", account.ID)
		respondEnvelope(ctx, w, http.StatusUnauthorized, nil, "invalid credentials")
		return
	}

	pair, err := h.Issuer.Issue(ctx, account.ID)
	if err != nil {
		logger.Error("login failed to issue session", "accountId", account.ID, "error", err)
		respondEnvelope(ctx, w, http.StatusInternalServerError, nil, "failed to create session")
		return
	}

	loggedIn, err := h.Accounts.FindByID(ctx, account.ID)
	if err != nil {
		logger.Error("login re-read failed", "accountId", account.ID, "error", err)
		respondEnvelope(ctx, w, http.StatusInternalServerError, nil, "failed to create session")
		return
	}

	setSessionCookies(w, pair)
	respondEnvelope(ctx, w, http.StatusOK, loginResponse{
		Account:      loggedIn.Sanitized(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "logged in successfully")
}

// Logout handles POST /api/v1/auth/logout requests. It runs behind
// middleware.RequireAuth, which places the trusted account identifier on the
// request context.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Accounts == nil {
		logger.Error("account store unavailable")
		respondEnvelope(ctx, w, http.StatusInternalServerError, nil, "authentication services unavailable")
		return
	}

	accountID := middleware.AccountIDFromContext(ctx)
	if accountID == "" {
		logger.Warn("logout without authenticated account")
		respondEnvelope(ctx, w, http.StatusUnauthorized, nil, "unauthorized request")
		return
	}

	// The account was authenticated moments ago; its absence now is an
	// internal inconsistency, not a caller error.
	if err := h.Accounts.ClearRefreshToken(ctx, accountID); err != nil {
		logger.Error("logout failed to clear refresh token", "accountId", accountID, "error", err)
		respondEnvelope(ctx, w, http.StatusInternalServerError, nil, "failed to end session")
		return
	}

	clearSessionCookies(w)
	respondEnvelope(ctx, w, http.StatusOK, struct{}{}, "logged out")
}

// Refresh handles POST /api/v1/auth/refresh requests, exchanging a valid
// refresh token for a new token pair. The presented token must match the one
// stored for the account, so a rotated-out or revoked token cannot be replayed.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Accounts == nil || h.Issuer == nil || h.Verifier == nil {
		logger.Error("refresh dependencies unavailable")
		respondEnvelope(ctx, w, http.StatusInternalServerError, nil, "authentication services unavailable")
		return
	}

	if !allowRequest(h.Limiter, r, "refresh") {
		respondEnvelope(ctx, w, http.StatusTooManyRequests, nil, "too many refresh attempts")
		return
	}

	token := refreshTokenFromRequest(r)
	if token == "" {
		logger.Warn("missing refresh token")
		respondEnvelope(ctx, w, http.StatusBadRequest, nil, "refresh token is required")
		return
	}

	accountID, err := h.Verifier.Verify(token, tokens.KindRefresh)
	if err != nil {
		logger.Warn("refresh token rejected", "error", err)
		respondEnvelope(ctx, w, http.StatusUnauthorized, nil, "invalid refresh token")
		return
	}

	stored, err := h.Accounts.GetRefreshToken(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRefreshToken) || errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("refresh token not on record", "accountId", accountID)
			respondEnvelope(ctx, w, http.StatusUnauthorized, nil, "invalid refresh token")
			return
		}
		logger.Error("refresh token lookup failed", "accountId", accountID, "error", err)
		respondEnvelope(ctx, w, http.StatusInternalServerError, nil, "unable to refresh session")
		return
	}

	if stored != token {
		logger.Warn("refresh token superseded", "accountId", accountID)
		respondEnvelope(ctx, w, http.StatusUnauthorized, nil, "invalid refresh token")
		return
	}

	pair, err := h.Issuer.Issue(ctx, accountID)
	if err != nil {
		logger.Error("refresh failed to issue session", "accountId", accountID, "error", err)
		respondEnvelope(ctx, w, http.StatusInternalServerError, nil, "unable to refresh session")
		return
	}

	setSessionCookies(w, pair)
	respondEnvelope(ctx, w, http.StatusOK, refreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "session refreshed")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Account      models.Profile `json:"account"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	return strings.TrimSpace(req.RefreshToken)
}

func assetKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return prefix + "/" + uuid.NewString() + ext
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
