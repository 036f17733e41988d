package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

func WriteError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Status:  "error",
		Message: message,
		Code:    code,
	})
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// ErrorKind is the machine-readable class of a model client failure.
type ErrorKind string

const (
	KindAuthExpired       ErrorKind = "auth_expired"
	KindRateLimited       ErrorKind = "rate_limited"
	KindTransient         ErrorKind = "transient"
	KindNetwork           ErrorKind = "network"
	KindTimeout           ErrorKind = "timeout"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindInvalidRequest    ErrorKind = "invalid_request"
	KindUnknown           ErrorKind = "unknown"
)

// Retryable reports whether errors of this kind may succeed on a later attempt.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindRateLimited, KindTransient, KindNetwork, KindTimeout:
		return true
	default:
		return false
	}
}

// ModelError is returned by model clients for every failed completion.
type ModelError struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *ModelError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Provider)
	if e.Provider == "" {
		sb.WriteString("model")
	}
	sb.WriteString(": ")
	sb.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	} else if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError wraps err with a kind.
func NewModelError(provider string, kind ErrorKind, err error) *ModelError {
	return &ModelError{Provider: provider, Kind: kind, Err: err}
}

// KindOf extracts the error kind, KindUnknown for foreign errors.
func KindOf(err error) ErrorKind {
	var me *ModelError
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is a model error worth retrying.
func IsRetryable(err error) bool {
	var me *ModelError
	if errors.As(err, &me) {
		return me.Kind.Retryable()
	}
	return false
}

// RetryAfter returns the provider's suggested delay, if any.
func RetryAfter(err error) time.Duration {
	var me *ModelError
	if errors.As(err, &me) {
		return me.RetryAfter
	}
	return 0
}

// Suggestions returns recovery hints for the operator.
func Suggestions(err error) []string {
	switch KindOf(err) {
	case KindAuthExpired:
		return []string{"Refresh your API key and restart voo"}
	case KindRateLimited:
		return []string{"Wait a moment before sending the next message", "Check your API quota"}
	case KindTimeout, KindNetwork:
		return []string{"Check your network connection", "Try again, or raise model_timeout"}
	case KindMalformedResponse:
		return []string{"The provider returned an unexpected payload; try again"}
	default:
		return nil
	}
}

// FormatUserMessage formats an error for the terminal, with suggestions.
func FormatUserMessage(err error) string {
	if err == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(err.Error())
	if hints := Suggestions(err); len(hints) > 0 {
		sb.WriteString("\n\nSuggestions:")
		for _, h := range hints {
			sb.WriteString("\n  - ")
			sb.WriteString(h)
		}
	}
	return sb.String()
}
