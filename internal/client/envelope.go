package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnrecognizedEnvelope is returned for any response body that is not one
// of the three envelope shapes. Nothing is inferred from other shapes.
var ErrUnrecognizedEnvelope = errors.New("unrecognized response envelope")

// Envelope is a decoded API response
type Envelope struct {
	Success bool
	// Data is the raw payload of a success; it may be JSON null
	Data    json.RawMessage
	Message string
	Meta    *Meta
	// Error is set on failures. Code is empty for string errors.
	Error *EnvelopeError
}

// EnvelopeError is the error part of a failure envelope
type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta is pagination metadata on list responses
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// DecodeEnvelope accepts exactly three shapes:
//
//	{"success": true, "data": ...}
//	{"success": false, "error": {"code": "...", "message": "..."}}
//	{"success": false, "error": "..."}
//
// "message" and "meta" are optional on all of them. A failure may carry
// "data": null. Every other shape fails with ErrUnrecognizedEnvelope.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, unrecognized("body is not a JSON object")
	}

	rawSuccess, ok := fields["success"]
	if !ok {
		return nil, unrecognized("missing success flag")
	}
	env := &Envelope{}
	if err := json.Unmarshal(rawSuccess, &env.Success); err != nil {
		return nil, unrecognized("success is not a boolean")
	}
	if m, ok := present(fields, "message"); ok {
		if err := json.Unmarshal(m, &env.Message); err != nil {
			return nil, unrecognized("message is not a string")
		}
	}

	if env.Success {
		if _, ok := present(fields, "error"); ok {
			return nil, unrecognized("success carries an error")
		}
		data, ok := fields["data"]
		if !ok {
			return nil, unrecognized("success without data")
		}
		env.Data = data
		if m, ok := present(fields, "meta"); ok {
			env.Meta = &Meta{}
			if err := json.Unmarshal(m, env.Meta); err != nil {
				return nil, unrecognized("malformed meta")
			}
		}
		return env, nil
	}

	if _, ok := present(fields, "data"); ok {
		return nil, unrecognized("failure carries data")
	}
	rawErr, ok := present(fields, "error")
	if !ok {
		return nil, unrecognized("failure without error")
	}
	var text string
	if err := json.Unmarshal(rawErr, &text); err == nil {
		env.Error = &EnvelopeError{Message: text}
		return env, nil
	}
	var structured map[string]json.RawMessage
	if err := json.Unmarshal(rawErr, &structured); err != nil || structured == nil {
		return nil, unrecognized("error is neither a string nor an object")
	}
	env.Error = &EnvelopeError{}
	if err := stringField(structured, "code", &env.Error.Code); err != nil {
		return nil, err
	}
	if err := stringField(structured, "message", &env.Error.Message); err != nil {
		return nil, err
	}
	return env, nil
}

// present returns a field that exists and is not JSON null
func present(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	v, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false
	}
	return v, true
}

func stringField(fields map[string]json.RawMessage, name string, dst *string) error {
	v, ok := fields[name]
	if !ok {
		return unrecognized("error object without " + name)
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return unrecognized("error " + name + " is not a string")
	}
	return nil
}

func unrecognized(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnrecognizedEnvelope, reason)
}
