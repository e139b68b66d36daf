package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Conflict("duplicate"), http.StatusConflict},
		{NotFound("missing"), http.StatusNotFound},
		{Upstream("n8n unreachable", nil), http.StatusServiceUnavailable},
		{Dispatch("call failed", nil), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := Conflict("tag in use")
	wrapped := fmt.Errorf("delete tag: %w", inner)

	if KindOf(wrapped) != KindConflict {
		t.Errorf("Kind should survive fmt.Errorf wrapping, got %v", KindOf(wrapped))
	}
	if HTTPStatus(wrapped) != http.StatusConflict {
		t.Errorf("Expected 409 through wrap, got %d", HTTPStatus(wrapped))
	}
}

func TestErrorMessage(t *testing.T) {
	plain := New(KindValidation, "field required")
	if plain.Error() != "field required" {
		t.Errorf("Unexpected message: %s", plain.Error())
	}

	cause := errors.New("connection refused")
	wrapped := Wrap(KindUpstreamUnavailable, "ragflow unreachable", cause)
	if wrapped.Error() != "ragflow unreachable: connection refused" {
		t.Errorf("Unexpected message: %s", wrapped.Error())
	}
	if !errors.Is(wrapped, cause) {
		t.Error("Unwrap chain should reach the cause")
	}
}
