package api

import "fmt"

// AuthError is a failed login, register, or authenticated key operation.
// The message is safe to show to the user.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// ConnectivityError is a transport-level failure: the server was unreachable
// or did not answer within the request timeout. Timeout distinguishes the
// deadline case, which gets a different user-facing message than a refused
// connection or an HTTP error status.
type ConnectivityError struct {
	Timeout bool
	Err     error
}

func (e *ConnectivityError) Error() string {
	if e.Timeout {
		return "timeout: API did not respond"
	}
	return fmt.Sprintf("API unreachable: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx response. Message carries the server-provided
// error field when the body was parseable JSON, "HTTP <status>" otherwise.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// ResourceFetchError is a failed read of one resource endpoint. It clears
// that resource's data (device history excepted) without affecting others.
type ResourceFetchError struct {
	Resource string
	Err      error
}

func (e *ResourceFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Resource, e.Err)
}

func (e *ResourceFetchError) Unwrap() error {
	return e.Err
}

// MutationError is a failed write operation. Prior data is left untouched and
// the operation is not retried.
type MutationError struct {
	Op  string
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}
