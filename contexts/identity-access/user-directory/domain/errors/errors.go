package errors

import "errors"

var (
	ErrInvalidUserInput = errors.New("invalid user input")
	ErrUnknownRole      = errors.New("unknown role")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
)
