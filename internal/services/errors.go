package services

import "errors"

// Errors returned by the services; handlers map them to HTTP statuses.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("access denied")
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrLocked             = errors.New("too many failed login attempts")
	ErrUnsupportedMedia   = errors.New("only image and video files are allowed")
)
