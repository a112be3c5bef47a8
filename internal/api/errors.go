package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed API interaction the way the UI reacts to it.
type Kind int

const (
	// KindTransient covers network failures, timeouts, 5xx responses and
	// anything the client could not make sense of.
	KindTransient Kind = iota
	KindValidation
	KindAuth
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	default:
		return "transient"
	}
}

// Generic messages used when the server did not supply one.
const (
	MsgGeneric   = "Something went wrong"
	MsgTransient = "Could not reach the server. Please try again."
)

// Error is the single shape every non-success API interaction is normalized to.
type Error struct {
	Kind     Kind
	Status   int
	Endpoint string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api %s returned status %d: %s", e.Endpoint, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("api %s: %s: %v", e.Endpoint, e.Message, e.Err)
	}
	return fmt.Sprintf("api %s: %s", e.Endpoint, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNoCredential is returned by authenticated calls made without a session.
// No request is sent.
var ErrNoCredential = &Error{Kind: KindAuth, Message: "Please log in to continue"}

// KindOf extracts the Kind of err. Errors that did not come from this package
// are transient.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransient
}

// IsNotFound reports whether err is a not-found API error.
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// IsAuth reports whether err is an authentication or authorization failure.
func IsAuth(err error) bool { return err != nil && KindOf(err) == KindAuth }

// UserMessage returns the text to show the viewer for err: the server message
// verbatim when one exists, otherwise fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		if apiErr.Kind == KindTransient && apiErr.Status == 0 && fallback != "" {
			return fallback
		}
		return apiErr.Message
	}
	if fallback == "" {
		return MsgGeneric
	}
	return fallback
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest || status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindTransient
	}
}

// statusError builds an Error from a non-2xx response body.
func statusError(endpoint string, status int, body []byte) *Error {
	msg := ""
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = firstNonEmpty(payload.Message, payload.Error)
	}
	if msg == "" {
		msg = MsgGeneric
	}
	return &Error{Kind: kindForStatus(status), Status: status, Endpoint: endpoint, Message: msg}
}

// transportError wraps failures that happened before a status was received.
func transportError(endpoint string, err error) *Error {
	msg := MsgTransient
	if errors.Is(err, context.Canceled) {
		msg = "Request cancelled"
	}
	return &Error{Kind: KindTransient, Endpoint: endpoint, Message: msg, Err: err}
}
