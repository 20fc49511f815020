// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package capability

import (
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures for retry decisions.
type ErrorKind string

const (
	// KindAuth marks invalid or missing credentials. Never retried.
	KindAuth ErrorKind = "auth"

	// KindRateLimited marks a rate-limit rejection. Retried with backoff.
	KindRateLimited ErrorKind = "rate_limited"

	// KindOther marks any other provider failure. Retried with backoff.
	KindOther ErrorKind = "other"
)

// ProviderError wraps a provider failure with its classification.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewAuthError reports invalid credentials for the named provider.
func NewAuthError(provider string, err error) error {
	return &ProviderError{Provider: provider, Kind: KindAuth, Err: err}
}

// NewRateLimitError reports a rate-limit rejection for the named provider.
func NewRateLimitError(provider string, err error) error {
	return &ProviderError{Provider: provider, Kind: KindRateLimited, Err: err}
}

// NewProviderError reports an unclassified failure for the named provider.
func NewProviderError(provider string, err error) error {
	return &ProviderError{Provider: provider, Kind: KindOther, Err: err}
}

// IsAuthError reports whether err is classified as a credential failure.
func IsAuthError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == KindAuth
}

// IsRateLimited reports whether err is classified as a rate-limit rejection.
func IsRateLimited(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == KindRateLimited
}
