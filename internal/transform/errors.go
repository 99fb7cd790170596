package transform

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrorKind classifies a failed provider call.
type ErrorKind string

const (
	KindAuth          ErrorKind = "auth"
	KindForbidden     ErrorKind = "forbidden"
	KindNotFound      ErrorKind = "not-found"
	KindBadRequest    ErrorKind = "bad-request"
	KindRateLimited   ErrorKind = "rate-limited"
	KindQuotaExceeded ErrorKind = "quota-exceeded"
	KindServerError   ErrorKind = "server-error"
	KindTimeout       ErrorKind = "timeout"
	KindNetworkError  ErrorKind = "network-error"
	KindUnknown       ErrorKind = "unknown"
)

// ProviderError wraps a transport failure from a transform provider
// with its classification and an optional retry-after hint.
type ProviderError struct {
	Provider   Provider
	Kind       ErrorKind
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Provider, e.Kind)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether the caller may resubmit the run,
// optionally after the RetryAfter delay.
func (e *ProviderError) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindServerError, KindTimeout, KindNetworkError:
		return true
	}
	return false
}

// ContentError marks a response the provider delivered but the run
// cannot use: empty, truncated, malformed, or naming unknown cues.
// Content errors are terminal for the batch, never retried.
type ContentError struct {
	Reason  string
	Preview string
}

func (e *ContentError) Error() string {
	if e.Preview != "" {
		return fmt.Sprintf("%s (response: %s)", e.Reason, e.Preview)
	}
	return e.Reason
}

// statusKind maps an HTTP status to an error kind. A 429 whose message
// points at billing is quota exhaustion rather than a transient rate
// limit.
func statusKind(status int, message string) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindAuth
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindBadRequest
	case http.StatusPaymentRequired:
		return KindQuotaExceeded
	case http.StatusTooManyRequests:
		lower := strings.ToLower(message)
		if strings.Contains(lower, "quota") || strings.Contains(lower, "billing") {
			return KindQuotaExceeded
		}
		return KindRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout
	}
	if status >= 500 {
		return KindServerError
	}
	return KindUnknown
}

// classifyTransport handles failures below the provider SDK layer.
// Cancellation passes through bare so callers can tell a cooperative
// abort from a hard error.
func classifyTransport(provider Provider, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Provider: provider, Kind: KindTimeout, Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		kind := KindNetworkError
		if urlErr.Timeout() {
			kind = KindTimeout
		}
		return &ProviderError{Provider: provider, Kind: kind, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		kind := KindNetworkError
		if netErr.Timeout() {
			kind = KindTimeout
		}
		return &ProviderError{Provider: provider, Kind: kind, Err: err}
	}

	return &ProviderError{Provider: provider, Kind: KindUnknown, Err: err}
}

// retryAfterHeader reads a Retry-After hint in seconds, the form both
// OpenAI and Anthropic send on rate limits.
func retryAfterHeader(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
