// Package types provides common type definitions for the TRON address info service.
package types

import "errors"

// Network represents a TRON network selector
type Network string

const (
	// NetworkMainnet represents the TRON mainnet
	NetworkMainnet Network = "mainnet"
	// NetworkShasta represents the Shasta test network
	NetworkShasta Network = "shasta"
)

// Endpoint returns the TronGrid HTTP endpoint for the network.
// Any value other than mainnet resolves to the Shasta test endpoint.
func (n Network) Endpoint() string {
	if n == NetworkMainnet {
		return "https://api.trongrid.io"
	}
	return "https://api.shasta.trongrid.io"
}

// Error codes used across the service
const (
	// CodeInvalidAddress indicates a syntactically invalid TRON address
	CodeInvalidAddress = "INVALID_ADDRESS_FORMAT"
	// CodeInvalidParameter indicates an out-of-range request parameter
	CodeInvalidParameter = "INVALID_PARAMETER"
	// CodeTronQueryFailed indicates the ledger node call failed or returned unusable data
	CodeTronQueryFailed = "TRON_QUERY_FAILED"
	// CodeDatabaseError indicates a persistence failure
	CodeDatabaseError = "DATABASE_ERROR"
)

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// IsValidationError reports whether the error is a client-input fault,
// unwrapping as needed.
func IsValidationError(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code == CodeInvalidAddress || svcErr.Code == CodeInvalidParameter
	}
	return false
}
