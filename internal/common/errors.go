// Package common defines shared constants and sentinel errors used across
// the StoryShare client and delivery worker. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Local persistence failed (quota, locked database, missing file).
	// Non-fatal: callers surface a warning instead of aborting the action.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// Transport-level failure: the server could not be reached at all.
	// Distinguished from an application-level rejection, which carries the
	// server's own message.
	ErrUnavailable = errors.New("server unavailable")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token expired")
)
