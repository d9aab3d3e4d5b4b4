package repositories

import "errors"

var (
	// ErrNotFound indicates the requested account does not exist.
	ErrNotFound = errors.New("account not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("account conflict")
	// ErrNoRefreshToken indicates the account exists but holds no refresh token.
	ErrNoRefreshToken = errors.New("no refresh token stored")
)
