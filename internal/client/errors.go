package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// Kind is the user-facing class of a failed call
type Kind string

const (
	KindNetwork      Kind = "network"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindServer       Kind = "server"
	KindProtocol     Kind = "protocol"
)

// User-facing messages
const (
	MsgNetwork      = "Unable to reach the server. Please check your connection."
	MsgUnauthorized = "Session expired."
	MsgForbidden    = "You do not have permission to perform this action."
	MsgNotFound     = "The requested item was not found."
	MsgValidation   = "The request could not be completed."
	MsgServer       = "Something went wrong on our end. Please try again later."
	MsgProtocol     = "Unexpected response from server."
)

// CodeUsageLimitExceeded is the server code for a plan limit rejection.
// CanCreate reports the same code before a request is sent.
const CodeUsageLimitExceeded = "ERR_USAGE_LIMIT_EXCEEDED"

// APIError is a classified failure. Message is safe to show to the user.
type APIError struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *APIError) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.Err }

// Retryable reports whether a call with method may be repeated. Network
// failures always are; server failures only for GET.
func (e *APIError) Retryable(method string) bool {
	switch e.Kind {
	case KindNetwork:
		return true
	case KindServer:
		return method == http.MethodGet
	default:
		return false
	}
}

// Classify maps any error returned by the client to an APIError. It is the
// single place user-facing messages come from.
func Classify(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, ErrUnrecognizedEnvelope) {
		return &APIError{Kind: KindProtocol, Message: MsgProtocol, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return &APIError{Kind: KindNetwork, Message: MsgNetwork, Err: err}
	}
	return &APIError{Kind: KindProtocol, Message: MsgProtocol, Err: err}
}

// statusError classifies a non-2xx response. env may be nil when the body
// was not an envelope.
func statusError(status int, env *Envelope, cause error) *APIError {
	e := &APIError{Status: status, Err: cause}
	serverMsg := ""
	if env != nil && env.Error != nil {
		e.Code = env.Error.Code
		serverMsg = env.Error.Message
	}
	orDefault := func(def string) string {
		if serverMsg != "" {
			return serverMsg
		}
		return def
	}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind, e.Message = KindUnauthorized, MsgUnauthorized
	case status == http.StatusForbidden:
		e.Kind, e.Message = KindForbidden, orDefault(MsgForbidden)
	case status == http.StatusNotFound:
		e.Kind, e.Message = KindNotFound, orDefault(MsgNotFound)
	case status >= http.StatusInternalServerError:
		e.Kind, e.Message = KindServer, MsgServer
	default:
		e.Kind, e.Message = KindValidation, orDefault(MsgValidation)
	}
	return e
}
