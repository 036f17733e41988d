package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vooagent/voo/internal/models"
)

// ClassifyStatus maps an HTTP status and provider message to an error kind.
func ClassifyStatus(status int, message string) models.ErrorKind {
	lower := strings.ToLower(message)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return models.KindAuthExpired
	case status == http.StatusBadRequest && strings.Contains(lower, "api key") &&
		(strings.Contains(lower, "expired") || strings.Contains(lower, "not valid") || strings.Contains(lower, "invalid")):
		// Gemini reports bad or expired keys as 400
		return models.KindAuthExpired
	case status == http.StatusTooManyRequests:
		return models.KindRateLimited
	case status == http.StatusRequestTimeout:
		return models.KindTimeout
	case status >= 500:
		// includes Anthropic's 529 overloaded
		return models.KindTransient
	case status >= 400:
		return models.KindInvalidRequest
	default:
		return models.KindUnknown
	}
}

// ClassifyTransportError maps errors that carry no HTTP status.
func ClassifyTransportError(err error) models.ErrorKind {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		netErr    net.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.KindTimeout
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return models.KindMalformedResponse
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return models.KindTimeout
		}
		return models.KindNetwork
	default:
		return models.KindUnknown
	}
}

// parseRetryAfter reads a Retry-After header given in seconds or as a date.
func parseRetryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func malformed(provider, format string, args ...any) *models.ModelError {
	return &models.ModelError{
		Kind:     models.KindMalformedResponse,
		Provider: provider,
		Message:  fmt.Sprintf(format, args...),
	}
}
