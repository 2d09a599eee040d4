package api

import (
	"net/http"
	"strconv"

	"github.com/tron-address-info/internal/logging"
	"github.com/tron-address-info/internal/service"
	"github.com/tron-address-info/internal/types"
)

// handleAddressInfo handles POST /api/v1/address-info - look up an address
// on the TRON node and persist the result
func (s *Server) handleAddressInfo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := s.tronService.Lookup(r.Context(), req.Address)
	if err != nil {
		if !types.IsValidationError(err) {
			logging.FromContext(r.Context()).WithError(err).WithField("address", req.Address).Error("Address lookup failed")
		}
		statusCode, detail := mapServiceError(err)
		respondError(w, statusCode, detail)
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// handleListRequests handles GET /api/v1/requests - paginated lookup history
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := service.DefaultPage
	if pageStr := query.Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid page parameter: must be an integer")
			return
		}
		page = parsed
	}

	size := service.DefaultSize
	if sizeStr := query.Get("size"); sizeStr != "" {
		parsed, err := strconv.Atoi(sizeStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid size parameter: must be an integer")
			return
		}
		size = parsed
	}

	result, err := s.historyService.List(r.Context(), page, size)
	if err != nil {
		if !types.IsValidationError(err) {
			logging.FromContext(r.Context()).WithError(err).Error("History listing failed")
		}
		statusCode, detail := mapServiceError(err)
		respondError(w, statusCode, detail)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleRoot handles GET / - liveness message
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "TRON Address Info Service",
	})
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
