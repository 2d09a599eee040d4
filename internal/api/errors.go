package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tron-address-info/internal/types"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(ErrorResponse{Detail: detail})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// parseJSONBody parses JSON request body.
func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// mapServiceError maps service errors to HTTP status codes.
func mapServiceError(err error) (int, string) {
	var serviceErr *types.ServiceError
	if errors.As(err, &serviceErr) {
		switch serviceErr.Code {
		case types.CodeInvalidAddress, types.CodeInvalidParameter:
			return http.StatusBadRequest, serviceErr.Message
		case types.CodeTronQueryFailed:
			return http.StatusInternalServerError, serviceErr.Message
		case types.CodeDatabaseError:
			return http.StatusInternalServerError, serviceErr.Message
		}
	}

	// Default to internal server error
	return http.StatusInternalServerError, "An internal error occurred"
}
