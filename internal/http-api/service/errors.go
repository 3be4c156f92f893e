package service

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// status codes.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrNotAuthorized      = errors.New("not authorized to perform this action")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrEmailInUse         = errors.New("email already in use")
	ErrUsernameInUse      = errors.New("username already in use")
	ErrExternalService    = errors.New("external service unavailable")
)
