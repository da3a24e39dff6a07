package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/geocoder89/kinerjahub/internal/apperr"
)

var errSentinel = apperr.NotFound("thing_not_found", "Thing not found")

func TestIsMatchesWrappedCopies(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", errSentinel.Wrap(errors.New("no rows")))

	if !errors.Is(wrapped, errSentinel) {
		t.Fatalf("expected wrapped copy to match sentinel")
	}

	other := apperr.NotFound("other_not_found", "Other")
	if errors.Is(wrapped, other) {
		t.Fatalf("different codes must not match")
	}
}

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.KindValidation, http.StatusBadRequest},
		{apperr.KindForeignKey, http.StatusBadRequest},
		{apperr.KindAuthentication, http.StatusUnauthorized},
		{apperr.KindAuthorization, http.StatusForbidden},
		{apperr.KindNotFound, http.StatusNotFound},
		{apperr.KindConflict, http.StatusConflict},
		{apperr.KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.kind.Status(); got != tt.want {
			t.Fatalf("%s: got %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestKindOfUnknownErrorIsInternal(t *testing.T) {
	if got := apperr.KindOf(errors.New("boom")); got != apperr.KindInternal {
		t.Fatalf("got %s, want internal", got)
	}
	if got := apperr.KindOf(apperr.Validation("bad")); got != apperr.KindValidation {
		t.Fatalf("got %s, want validation", got)
	}
}
