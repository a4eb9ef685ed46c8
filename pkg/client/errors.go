package client

import (
	"fmt"
)

// Envelope error codes. Input validation failures are detected before
// any network activity; the rest describe how a network call failed.
const (
	// CodeInvalidWallet means an address-shaped input failed validation.
	CodeInvalidWallet = "INVALID_WALLET"

	// CodeInvalidAmount means a transfer amount was not positive.
	CodeInvalidAmount = "INVALID_AMOUNT"

	// CodeNetworkError means the connection itself failed. Retryable.
	CodeNetworkError = "NETWORK_ERROR"

	// CodeRequestCancelled means the call was superseded by a newer call
	// for the same key or explicitly aborted. Never retried.
	CodeRequestCancelled = "REQUEST_CANCELLED"

	// CodeParseError means the response body was malformed.
	CodeParseError = "PARSE_ERROR"

	// CodeRequestFailed means an unexpected failure during execution;
	// the original error is attached as detail.
	CodeRequestFailed = "REQUEST_FAILED"

	// CodeRateLimited means the client-side limiter blocked the call.
	CodeRateLimited = "RATE_LIMITED"
)

// httpErrorCode builds the envelope code for an HTTP error status,
// e.g. "HTTP_503".
func httpErrorCode(status int) string {
	return fmt.Sprintf("HTTP_%d", status)
}

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents connection-level failures.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassCancelled represents superseded or aborted calls.
	ErrorClassCancelled ErrorClass = "cancelled"

	// ErrorClassParse represents malformed response bodies.
	ErrorClassParse ErrorClass = "parse"

	// ErrorClassInternal represents unexpected execution failures.
	ErrorClassInternal ErrorClass = "internal"
)

// shouldRetry determines if a failure class is transient.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassServer:
		// 5xx server errors are likely to succeed on retry
		return true
	case ErrorClassNetwork:
		// Connection-level failures are likely transient
		return true
	default:
		// Client errors, cancellation, and parse failures never retry
		return false
	}
}
