package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LeonFTWANG/AIKG/internal/types"
)

// NewProviderNotFoundError creates an error for an unknown provider type.
func NewProviderNotFoundError(name string) *types.AIKGError {
	return types.NewError(types.PROVIDER_NOT_FOUND, "provider not found: "+name)
}

// NewAuthError creates an error for missing or rejected credentials.
func NewAuthError(provider string, cause error) *types.AIKGError {
	return types.WrapError(types.GENERATION_UNAVAILABLE,
		fmt.Sprintf("provider %q authentication failed", provider), cause)
}

// NewTimeoutError creates a retryable error for an expired generation.
func NewTimeoutError(provider string, cause error) *types.AIKGError {
	return types.WrapRetryableError(types.GENERATION_TIMEOUT,
		fmt.Sprintf("provider %q generation timed out", provider), cause)
}

// NewUnavailableError creates a retryable error for a provider that
// cannot currently serve requests.
func NewUnavailableError(provider string, cause error) *types.AIKGError {
	return types.WrapRetryableError(types.GENERATION_UNAVAILABLE,
		fmt.Sprintf("provider %q unavailable", provider), cause)
}

// TranslateError maps SDK and transport errors onto generation error
// codes. Errors that already carry a code pass through unchanged.
func TranslateError(provider string, err error) error {
	if err == nil {
		return nil
	}

	var kgErr *types.AIKGError
	if errors.As(err, &kgErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(provider, err)
	}
	if errors.Is(err, context.Canceled) {
		return types.WrapError(types.GENERATION_UNAVAILABLE,
			fmt.Sprintf("provider %q request canceled", provider), err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "authentication") || strings.Contains(msg, "api key"):
		return NewAuthError(provider, err)
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		return types.WrapRetryableError(types.GENERATION_UNAVAILABLE,
			fmt.Sprintf("provider %q rate limited", provider), err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return NewTimeoutError(provider, err)
	default:
		return NewUnavailableError(provider, err)
	}
}
