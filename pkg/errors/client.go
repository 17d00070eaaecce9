package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// User facing texts for failures whose raw message is not shown.
const (
	MessageSessionExpired = "Your session has expired, please log in again"
	MessageTryAgain       = "Something went wrong, please try again"
)

// NetworkError reports a request that never produced an HTTP response.
type NetworkError struct {
	Method  string
	URL     string
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s %s: request timed out", e.Method, e.URL)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx response. Messages holds the server supplied
// message list, possibly empty.
type HTTPError struct {
	Status   int
	Messages []string
}

func (e *HTTPError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("http %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("http %d: %s", e.Status, http.StatusText(e.Status))
}

// Message joins the server messages for display.
func (e *HTTPError) Message() string {
	return strings.Join(e.Messages, ", ")
}

// ParseError reports a success response whose envelope could not be read.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// MutationKind groups failures the way they are shown to the user.
type MutationKind string

const (
	KindValidation MutationKind = "validation"
	KindAuth       MutationKind = "auth"
	KindServer     MutationKind = "server"
)

// MutationError is the user facing form of a failed write or read.
type MutationError struct {
	Kind    MutationKind
	Message string
	Err     error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *MutationError) Unwrap() error { return e.Err }

// Classify maps a transport level error onto the user facing taxonomy.
// Validation messages come from the server, auth and server failures use
// fixed texts.
func Classify(err error) *MutationError {
	if err == nil {
		return nil
	}
	var already *MutationError
	if errors.As(err, &already) {
		return already
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.Status == http.StatusUnauthorized || httpErr.Status == http.StatusForbidden:
			return &MutationError{Kind: KindAuth, Message: MessageSessionExpired, Err: err}
		case httpErr.Status >= 400 && httpErr.Status < 500:
			msg := httpErr.Message()
			if msg == "" {
				msg = http.StatusText(httpErr.Status)
			}
			return &MutationError{Kind: KindValidation, Message: msg, Err: err}
		}
	}
	return &MutationError{Kind: KindServer, Message: MessageTryAgain, Err: err}
}

// IsAuthFailure reports whether err means the stored credential is no longer
// accepted.
func IsAuthFailure(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status == http.StatusUnauthorized || httpErr.Status == http.StatusForbidden
	}
	var mutErr *MutationError
	if errors.As(err, &mutErr) {
		return mutErr.Kind == KindAuth
	}
	return false
}

// IsNotFound reports a 404 response.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound
}

// IsTimeout reports whether err came from a deadline.
func IsTimeout(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) && netErr.Timeout {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
