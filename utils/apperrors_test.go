package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusPerKind(t *testing.T) {
	cases := []struct {
		err    *ServiceError
		status int
	}{
		{NotFoundError("x"), http.StatusNotFound},
		{ConflictError("x"), http.StatusConflict},
		{UnprocessableError("x"), http.StatusUnprocessableEntity},
		{ForbiddenError("x"), http.StatusForbidden},
		{BadRequestError("x"), http.StatusBadRequest},
		{NotImplementedError("x"), http.StatusNotImplemented},
		{InternalError("x", errors.New("boom")), http.StatusInternalServerError},
	}

	for _, c := range cases {
		if got := c.err.HTTPStatus(); got != c.status {
			t.Fatalf("kind %d: expected status %d, got %d", c.err.Kind, c.status, got)
		}
	}
}

func TestAsServiceErrorWrapsUnknownErrors(t *testing.T) {
	plain := errors.New("database gone")
	svcErr := AsServiceError(plain)
	if svcErr.Kind != KindInternal {
		t.Fatalf("expected unknown errors to become internal, got kind %d", svcErr.Kind)
	}
	if !errors.Is(svcErr, plain) {
		t.Fatal("expected the original error to be preserved in the chain")
	}

	typed := NotFoundError("missing")
	if got := AsServiceError(typed); got != typed {
		t.Fatalf("expected the typed error to pass through, got %v", got)
	}
}

func TestIsKindSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loading assessment: %w", ConflictError("assessment not submitted"))
	if !IsKind(err, KindConflict) {
		t.Fatal("expected IsKind to unwrap the chain")
	}
	if IsKind(err, KindNotFound) {
		t.Fatal("expected kind mismatch to report false")
	}
	if IsKind(nil, KindConflict) {
		t.Fatal("expected nil to report false")
	}
}
