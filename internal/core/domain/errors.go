package domain

import "errors"

// ErrMissingToken signals a login/registration reply without a token.
// It is a backend contract violation, not a user error.
var ErrMissingToken = errors.New("identity payload has no token")

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrNotAuthenticated = errors.New("not authenticated")
var ErrUnauthorized = errors.New("backend rejected token")
var ErrBusy = errors.New("action already in flight")
var ErrBackend = errors.New("backend request failed")
var ErrNoResetInProgress = errors.New("no password reset in progress")
var ErrInvalidKind = errors.New("unknown interaction kind")
var ErrNotFound = errors.New("not found")

// ErrRejected matches any RejectedError.
var ErrRejected = errors.New("backend rejected request")

// RejectedError is a 4xx reply caused by the user's input (taken email,
// wrong reset code, wrong old password). Message is the backend's wording.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return "rejected: " + e.Message
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}
