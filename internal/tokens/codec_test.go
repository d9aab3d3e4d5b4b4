package tokens

import (
	"errors"
	"testing"
	"time"
)

func newTestCodec(t *testing.T, accessTTL, refreshTTL time.Duration) *Codec {
	t.Helper()
	codec, err := NewCodec("access-secret", "refresh-secret", accessTTL, refreshTTL)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func TestCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)

	access, accessExp, err := codec.IssueAccess("acct-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	if access == "" || accessExp.Before(time.Now()) {
		t.Fatalf("expected future-dated access token, got expiry %v", accessExp)
	}

	refresh, refreshExp, err := codec.IssueRefresh("acct-1")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	if refreshExp.Before(accessExp) {
		t.Fatalf("expected refresh expiry %v after access expiry %v", refreshExp, accessExp)
	}

	id, err := codec.Verify(access, KindAccess)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if id != "acct-1" {
		t.Fatalf("expected account id acct-1, got %q", id)
	}

	if id, err := codec.Verify(refresh, KindRefresh); err != nil || id != "acct-1" {
		t.Fatalf("verify refresh: id=%q err=%v", id, err)
	}
}

func TestCodecMintsUniqueTokens(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)

	// Claim timestamps only have second granularity, so uniqueness must not
	// depend on the mint time.
	first, _, err := codec.IssueRefresh("acct-1")
	if err != nil {
		t.Fatalf("issue first refresh: %v", err)
	}
	second, _, err := codec.IssueRefresh("acct-1")
	if err != nil {
		t.Fatalf("issue second refresh: %v", err)
	}
	if first == second {
		t.Fatal("expected back-to-back refresh tokens to differ")
	}

	a1, _, err := codec.IssueAccess("acct-1")
	if err != nil {
		t.Fatalf("issue first access: %v", err)
	}
	a2, _, err := codec.IssueAccess("acct-1")
	if err != nil {
		t.Fatalf("issue second access: %v", err)
	}
	if a1 == a2 {
		t.Fatal("expected back-to-back access tokens to differ")
	}
}

func TestCodecRejectsKindMismatch(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)

	access, _, err := codec.IssueAccess("acct-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	if _, err := codec.Verify(access, KindRefresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for kind mismatch, got %v", err)
	}

	refresh, _, err := codec.IssueRefresh("acct-1")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	if _, err := codec.Verify(refresh, KindAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken verifying refresh as access, got %v", err)
	}
}

func TestCodecRejectsExpiredToken(t *testing.T) {
	codec := newTestCodec(t, time.Millisecond, time.Millisecond)

	access, _, err := codec.IssueAccess("acct-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := codec.Verify(access, KindAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestCodecRejectsForeignSignature(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)

	other, err := NewCodec("other-access", "other-refresh", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	forged, _, err := other.IssueAccess("acct-1")
	if err != nil {
		t.Fatalf("issue forged: %v", err)
	}

	if _, err := codec.Verify(forged, KindAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}

	if _, err := codec.Verify("not-a-token", KindAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage input, got %v", err)
	}
}

func TestNewCodecValidation(t *testing.T) {
	if _, err := NewCodec("", "refresh", time.Minute, time.Hour); err == nil {
		t.Fatal("expected error for empty access secret")
	}
	if _, err := NewCodec("access", "refresh", 0, time.Hour); err == nil {
		t.Fatal("expected error for zero access TTL")
	}
}

func TestCodecIssueRequiresAccountID(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)
	if _, _, err := codec.IssueAccess(""); err == nil {
		t.Fatal("expected error for empty account id")
	}
}
