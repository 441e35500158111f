package client

import "errors"

// Error kinds the sync layer maps boundary failures into. Callers
// discriminate with errors.Is; anything unrecognized stays wrapped.
var (
	// ErrAuthorizationDenied marks an HTTP 403 on the feed: the UI renders
	// an access-denied state instead of retrying.
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrInvalidCredentials covers wrong email/password on sign-in.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailInUse and ErrWeakSecret are the sign-up failure categories.
	ErrEmailInUse = errors.New("email already in use")
	ErrWeakSecret = errors.New("password too weak")

	// ErrEmptyMessage rejects blank sends before anything is inserted.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrSendInFlight rejects a second send while one is pending for the
	// same composer.
	ErrSendInFlight = errors.New("send already in flight")

	// ErrSendFailed wraps a failed message send after the optimistic entry
	// has been rolled back and the draft restored.
	ErrSendFailed = errors.New("send failed")
)
