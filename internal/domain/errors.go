package domain

import "errors"

// Error kinds returned by the identity provider abstraction. The HTTP
// facade matches these with errors.Is and maps every one of them to a
// single generic notice; the concrete cause stays in server logs.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrWeakPassword    = errors.New("password does not meet policy")
)
