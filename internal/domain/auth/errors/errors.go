package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInternal        = errors.New("internal error")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountDeleted     = errors.New("account deleted")
	ErrAccountInactive    = errors.New("account inactive")

	ErrMissingToken      = errors.New("missing token")
	ErrEmptyToken        = errors.New("empty token")
	ErrWrongTokenScheme  = errors.New("wrong token scheme")
	ErrMalformedToken    = errors.New("malformed token")
	ErrInvalidSignature  = errors.New("invalid token signature")
	ErrExpiredToken      = errors.New("token expired")
	ErrWrongTokenType    = errors.New("wrong token type")
	ErrSessionTerminated = errors.New("session terminated")
)

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountDeleted(err error) bool {
	return errors.Is(err, ErrAccountDeleted)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsSessionTerminated(err error) bool {
	return errors.Is(err, ErrSessionTerminated)
}

// IsTokenError reports whether err is any of the token parsing/validation
// kinds. The HTTP boundary maps all of them to 401.
func IsTokenError(err error) bool {
	for _, target := range []error{
		ErrMissingToken,
		ErrEmptyToken,
		ErrWrongTokenScheme,
		ErrMalformedToken,
		ErrInvalidSignature,
		ErrExpiredToken,
		ErrWrongTokenType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
