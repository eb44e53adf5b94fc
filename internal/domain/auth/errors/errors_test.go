package errors

import (
	"fmt"
	"testing"
)

func TestErrorHelpers(t *testing.T) {
	err := NewInvalidArgument("bad")
	if !IsInvalidArgument(err) {
		t.Fatal("expected invalid argument")
	}

	wrapped := WrapInternal(err, "ctx")
	if !IsInternal(wrapped) {
		t.Fatal("expected internal")
	}
}

func TestIsTokenError(t *testing.T) {
	for _, err := range []error{
		ErrMissingToken, ErrEmptyToken, ErrWrongTokenScheme,
		ErrMalformedToken, ErrInvalidSignature, ErrExpiredToken, ErrWrongTokenType,
	} {
		if !IsTokenError(fmt.Errorf("wrap: %w", err)) {
			t.Fatalf("expected token error for %v", err)
		}
	}
	if IsTokenError(ErrSessionTerminated) {
		t.Fatal("session terminated is not a token parse error")
	}
	if IsTokenError(nil) {
		t.Fatal("nil is not a token error")
	}
}
