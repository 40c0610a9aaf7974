package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AuthError is a rejected oracle credential (401/403).
type AuthError struct{ *APIError }

func (e *AuthError) Error() string {
	return fmt.Sprintf("oracle rejected credentials: %s", e.APIError.Error())
}

// RateLimitError is a 429 from the oracle, with the advertised Retry-After if any.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("oracle rate limited, retry in %ds: %s", int(e.RetryAfter.Seconds()), e.APIError.Error())
	}
	return fmt.Sprintf("oracle rate limited: %s", e.APIError.Error())
}

// ModelNotFoundError means the configured model is not served by the provider.
type ModelNotFoundError struct{ *APIError }

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("oracle model not found: %s", e.APIError.Error())
}

// BadRequestError is any other 4xx answer to a completion request.
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("oracle rejected request: %s", e.APIError.Error())
}

// QuotaExceededError is a billing or credit failure (402 or quota codes).
type QuotaExceededError struct{ *APIError }

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("oracle quota exceeded: %s", e.APIError.Error())
}

// ServerError is a 5xx from the provider.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string {
	return fmt.Sprintf("oracle server error: %s", e.APIError.Error())
}

// UnreachableError means no HTTP exchange with the oracle endpoint happened.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "oracle unreachable"
	}
	if e.Host != "" {
		return fmt.Sprintf("oracle unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("oracle unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// Error kinds reported by Kind.
const (
	KindAuth          = "auth"
	KindRateLimit     = "rate_limit"
	KindModelNotFound = "model_not_found"
	KindBadRequest    = "bad_request"
	KindQuota         = "quota"
	KindServer        = "server"
	KindUnreachable   = "unreachable"
	KindTimeout       = "timeout"
	KindEmpty         = "empty"
	KindOther         = "other"
)

// Kind classifies an oracle error for logs and retry decisions.
func Kind(err error) string {
	var (
		auth  *AuthError
		rl    *RateLimitError
		nf    *ModelNotFoundError
		br    *BadRequestError
		quota *QuotaExceededError
		srv   *ServerError
		unr   *UnreachableError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &auth):
		return KindAuth
	case errors.As(err, &rl):
		return KindRateLimit
	case errors.As(err, &nf):
		return KindModelNotFound
	case errors.As(err, &br):
		return KindBadRequest
	case errors.As(err, &quota):
		return KindQuota
	case errors.As(err, &srv):
		return KindServer
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &unr):
		return KindUnreachable
	case errors.Is(err, ErrEmptyCompletion):
		return KindEmpty
	}
	return KindOther
}

// Permanent reports whether repeating the same request cannot succeed without
// a configuration change.
func Permanent(err error) bool {
	switch Kind(err) {
	case KindAuth, KindModelNotFound, KindBadRequest, KindQuota:
		return true
	}
	return false
}
