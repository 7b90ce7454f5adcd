package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOf(t *testing.T) {
	err := NotFound("player %d not found", 7)
	if CodeOf(err) != CodeNotFound {
		t.Fatalf("CodeOf = %s, want NOT_FOUND", CodeOf(err))
	}
	if err.Error() != "player 7 not found" {
		t.Fatalf("message = %q", err.Error())
	}

	if CodeOf(errors.New("plain")) != CodeUnknown {
		t.Fatal("plain error should map to CodeUnknown")
	}
	if CodeOf(nil) != CodeUnknown {
		t.Fatal("nil error should map to CodeUnknown")
	}
}

func TestCodeSurvivesWrapping(t *testing.T) {
	inner := ConcurrencyConflict("lost the race")
	wrapped := fmt.Errorf("completing category: %w", inner)

	if !Is(wrapped, CodeConcurrencyConflict) {
		t.Fatalf("wrapped error lost its code: %v", wrapped)
	}
	if HTTPStatus(wrapped) != http.StatusConflict {
		t.Fatalf("HTTPStatus = %d, want 409", HTTPStatus(wrapped))
	}
}

func TestUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable(cause, "list submissions")

	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable through Unwrap")
	}
	if HTTPStatus(err) != http.StatusServiceUnavailable {
		t.Fatalf("HTTPStatus = %d, want 503", HTTPStatus(err))
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{InvalidArgument("x"), http.StatusBadRequest},
		{PreconditionFailed("x"), http.StatusConflict},
		{ConcurrencyConflict("x"), http.StatusConflict},
		{Unavailable(nil, "x"), http.StatusServiceUnavailable},
		{errors.New("x"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
