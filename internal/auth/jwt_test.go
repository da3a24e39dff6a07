package auth_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
)

func int64p(v int64) *int64 { return &v }

func newManager() *auth.Manager {
	return auth.NewManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	m := newManager()

	identities := []auth.Identity{
		{UserID: 1, Email: "superadmin@perusahaan.com", Role: user.RoleSuperUser},
		{UserID: 2, Email: "entry.pabrik@perusahaan.com", Role: user.RoleEntryUser, UnitID: int64p(1)},
		{UserID: 3, Email: "user.keuangan@perusahaan.com", Role: user.RoleUser, UnitID: int64p(3)},
	}

	for _, want := range identities {
		pair, err := m.IssueTokenPair(want)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		if pair.AccessToken == pair.RefreshToken {
			t.Fatalf("access and refresh tokens must differ")
		}

		got, err := m.VerifyAccess(pair.AccessToken)
		if err != nil {
			t.Fatalf("verify access: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("access identity mismatch: got %+v, want %+v", got, want)
		}

		got, err = m.VerifyRefresh(pair.RefreshToken)
		if err != nil {
			t.Fatalf("verify refresh: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("refresh identity mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestExpiredAccessTokenIsExpiredNotInvalid(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	m := newManager().WithClock(func() time.Time { return issuedAt })

	pair, err := m.IssueTokenPair(auth.Identity{UserID: 1, Email: "a@b.c", Role: user.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	later := m.WithClock(func() time.Time { return issuedAt.Add(16 * time.Minute) })

	_, err = later.VerifyAccess(pair.AccessToken)
	if !errors.Is(err, auth.ErrExpiredToken) {
		t.Fatalf("got %v, want ErrExpiredToken", err)
	}
	if errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expired token must not be reported as invalid")
	}

	// refresh token is still within its 7 day window
	if _, err := later.VerifyRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("refresh should still be valid: %v", err)
	}
}

func TestRefreshWithAccessTokenIsInvalid(t *testing.T) {
	m := newManager()

	pair, err := m.IssueTokenPair(auth.Identity{UserID: 1, Email: "a@b.c", Role: user.RoleSuperUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = m.VerifyRefresh(pair.AccessToken)
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}

	_, err = m.VerifyAccess(pair.RefreshToken)
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestSameSecretsStillRejectWrongTokenType(t *testing.T) {
	m := auth.NewManager("shared", "shared", time.Minute, time.Hour)

	pair, err := m.IssueTokenPair(auth.Identity{UserID: 9, Email: "a@b.c", Role: user.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.VerifyRefresh(pair.AccessToken); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}

func TestTamperedTokenIsInvalid(t *testing.T) {
	m := newManager()

	pair, err := m.IssueTokenPair(auth.Identity{UserID: 1, Email: "a@b.c", Role: user.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(pair.AccessToken, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))

	if _, err := m.VerifyAccess(strings.Join(parts, ".")); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}

	if _, err := m.VerifyAccess("not-a-jwt"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("got %v, want ErrInvalidToken", err)
	}
}
