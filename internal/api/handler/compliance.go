package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/listingshield/internal/api/response"
	"github.com/kiranshivaraju/listingshield/pkg/models"
)

// maxListingBytes bounds the request body of a compliance check.
const maxListingBytes = 64 << 10

// ComplianceChecker defines the interface the compliance handler depends on.
type ComplianceChecker interface {
	Analyze(ctx context.Context, title, description string) models.ComplianceResult
}

// NewComplianceCheckHandler returns an http.HandlerFunc for POST /api/v1/compliance/check.
func NewComplianceCheckHandler(checker ComplianceChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxListingBytes)).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Description) == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "title or description is required", nil)
			return
		}

		response.JSON(w, checker.Analyze(r.Context(), req.Title, req.Description))
	}
}
