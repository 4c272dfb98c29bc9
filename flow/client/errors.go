package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned by Stack for concerns with no configured
// provider, and by providers for operations they cannot perform (e.g.
// translating binary input).
var ErrUnsupported = errors.New("operation not supported")

// ServiceError is a classified collaborator failure.
//
// Code values are stable strings ("rate_limited", "invalid_api_key",
// "quota_exceeded", "server_error", "network_error", "timeout",
// "api_error") so callers can branch without string-matching messages.
type ServiceError struct {
	Code      string
	Message   string
	Retryable bool
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return e.Code + ": " + e.Message
}

// MapError classifies a raw provider error into a ServiceError.
//
// Context cancellation passes through unchanged so errors.Is keeps
// working. Everything else is classified by the usual provider signal
// strings: auth and quota failures are permanent, rate limits and server
// or network trouble are retryable.
func MapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ServiceError{Code: "timeout", Message: provider + " request timed out", Retryable: true}
	}

	lower := strings.ToLower(err.Error())

	switch {
	case containsAny(lower, "rate limit", "rate_limit", "429", "too many requests"):
		return &ServiceError{Code: "rate_limited", Message: provider + " rate limit exceeded", Retryable: true}
	case containsAny(lower, "invalid api key", "incorrect api key", "401", "403", "unauthorized", "authentication"):
		return &ServiceError{Code: "invalid_api_key", Message: provider + " API key is invalid or expired", Retryable: false}
	case containsAny(lower, "quota", "insufficient_quota", "billing"):
		return &ServiceError{Code: "quota_exceeded", Message: provider + " quota exceeded", Retryable: false}
	case containsAny(lower, "500", "502", "503", "504", "internal server error", "bad gateway", "service unavailable", "gateway timeout"):
		return &ServiceError{Code: "server_error", Message: fmt.Sprintf("%s server error: %v", provider, err), Retryable: true}
	case containsAny(lower, "connection", "network", "timeout"):
		return &ServiceError{Code: "network_error", Message: fmt.Sprintf("network error calling %s: %v", provider, err), Retryable: true}
	default:
		return &ServiceError{Code: "api_error", Message: fmt.Sprintf("%s error: %v", provider, err), Retryable: false}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
