package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/listingshield/internal/api/middleware"
	"github.com/kiranshivaraju/listingshield/internal/api/response"
	"github.com/kiranshivaraju/listingshield/internal/policyjob"
	"github.com/kiranshivaraju/listingshield/pkg/models"
)

const maxJobListLimit = 50

// JobService defines the interface the policy job handlers depend on.
type JobService interface {
	StartAnalysis(ctx context.Context, accessToken string) policyjob.StartResult
	GetJobStatus(ctx context.Context, userID, jobID uuid.UUID) *models.PolicyAnalysisJob
	GetLatestJob(ctx context.Context, userID uuid.UUID) *models.PolicyAnalysisJob
	ListRecentJobs(ctx context.Context, userID uuid.UUID, limit int) []*models.PolicyAnalysisJob
}

// NewStartJobHandler returns an http.HandlerFunc for POST /api/v1/policy-jobs.
// A declined start is still a 200 so callers can read existingJobId.
func NewStartJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := svc.StartAnalysis(r.Context(), mw.GetAccessToken(r))
		if res.Success {
			response.Accepted(w, res)
			return
		}
		response.JSON(w, res)
	}
}

// NewListJobsHandler returns an http.HandlerFunc for GET /api/v1/policy-jobs.
func NewListJobsHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := mw.GetUser(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		limit := policyjob.DefaultListLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxJobListLimit {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be between 1 and 50", nil)
				return
			}
			limit = n
		}

		jobs := svc.ListRecentJobs(r.Context(), user.ID, limit)
		response.Collection(w, jobs, response.ListMeta{Limit: limit, Count: len(jobs)})
	}
}

// NewLatestJobHandler returns an http.HandlerFunc for GET /api/v1/policy-jobs/latest.
// No job yet is a 200 with null data.
func NewLatestJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := mw.GetUser(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}
		response.JSON(w, svc.GetLatestJob(r.Context(), user.ID))
	}
}

// NewGetJobHandler returns an http.HandlerFunc for GET /api/v1/policy-jobs/{jobID}.
func NewGetJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := mw.GetUser(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing user", nil)
			return
		}

		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid job ID", nil)
			return
		}

		job := svc.GetJobStatus(r.Context(), user.ID, jobID)
		if job == nil {
			response.Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "Job not found", nil)
			return
		}
		response.JSON(w, job)
	}
}
