package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cliptide/backend/internal/models"
	"github.com/cliptide/backend/internal/repositories"
	"github.com/cliptide/backend/internal/tokens"
)

type fakeAccountStore struct {
	accounts map[string]models.Account
	setErr   error
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[string]models.Account)}
}

func (s *fakeAccountStore) FindByID(_ context.Context, id string) (models.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return models.Account{}, repositories.ErrNotFound
	}
	return account, nil
}

func (s *fakeAccountStore) SetRefreshToken(_ context.Context, id, token string) error {
	if s.setErr != nil {
		return s.setErr
	}
	account, ok := s.accounts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	account.RefreshToken = token
	s.accounts[id] = account
	return nil
}

func newTestCodec(t *testing.T) *tokens.Codec {
	t.Helper()
	codec, err := tokens.NewCodec("access-secret", "refresh-secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func TestIssuerPersistsReturnedRefreshToken(t *testing.T) {
	store := newFakeAccountStore()
	store.accounts["acct-1"] = models.Account{ID: "acct-1", Username: "ana"}

	issuer := NewIssuer(store, newTestCodec(t))

	pair, err := issuer.Issue(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", pair)
	}
	if stored := store.accounts["acct-1"].RefreshToken; stored != pair.RefreshToken {
		t.Fatalf("stored refresh token %q does not match returned %q", stored, pair.RefreshToken)
	}
	if !pair.RefreshExpiresAt.After(pair.AccessExpiresAt) {
		t.Fatalf("expected refresh expiry after access expiry: %+v", pair)
	}
}

func TestIssuerReplacesPriorRefreshToken(t *testing.T) {
	store := newFakeAccountStore()
	store.accounts["acct-1"] = models.Account{ID: "acct-1", RefreshToken: "stale"}

	issuer := NewIssuer(store, newTestCodec(t))

	pair, err := issuer.Issue(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if stored := store.accounts["acct-1"].RefreshToken; stored == "stale" || stored != pair.RefreshToken {
		t.Fatalf("expected stored token replaced with %q, got %q", pair.RefreshToken, stored)
	}
}

func TestIssuerWrapsFailuresOpaquely(t *testing.T) {
	codec := newTestCodec(t)

	missing := newFakeAccountStore()
	issuer := NewIssuer(missing, codec)
	if _, err := issuer.Issue(context.Background(), "ghost"); !errors.Is(err, ErrIssuance) {
		t.Fatalf("expected ErrIssuance for missing account, got %v", err)
	}

	failing := newFakeAccountStore()
	failing.accounts["acct-1"] = models.Account{ID: "acct-1"}
	failing.setErr = errors.New("disk on fire")
	issuer = NewIssuer(failing, codec)
	_, err := issuer.Issue(context.Background(), "acct-1")
	if !errors.Is(err, ErrIssuance) {
		t.Fatalf("expected ErrIssuance, got %v", err)
	}
	if strings.Contains(err.Error(), "disk on fire") {
		t.Fatalf("expected opaque error, cause leaked: %v", err)
	}
}
