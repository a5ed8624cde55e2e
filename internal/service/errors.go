// Package service provides application-level services for managing
// users, topics, and cards.
package service

import "errors"

// Common service errors. Callers classify these with errors.Is; the
// API layer maps them to HTTP status codes.
var (
	// ErrInvalidCredentials indicates a failed username/password check.
	// Deliberately shared between "no such user" and "wrong password" so
	// responses cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
