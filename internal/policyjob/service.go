// Package policyjob starts remote policy analyses and reads back their job rows.
package policyjob

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/listingshield/internal/store"
	"github.com/kiranshivaraju/listingshield/pkg/models"
)

// StartFunction is the remote function that runs a policy analysis.
const StartFunction = "start-policy-analysis"

// DefaultListLimit is used when ListRecentJobs is called with a non-positive limit.
const DefaultListLimit = 10

const startFailedMessage = "Failed to start policy analysis"

// Invoker calls a remote function with the caller's access token.
type Invoker interface {
	InvokeFunction(ctx context.Context, name, accessToken string, body, out any) error
}

// JobStore is the subset of the data store the service reads from.
type JobStore interface {
	GetPolicyJob(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.PolicyAnalysisJob, error)
	ListPolicyJobs(ctx context.Context, userID uuid.UUID, limit int) ([]*models.PolicyAnalysisJob, error)
}

// StartResult is what the remote function reports back when asked to start.
type StartResult struct {
	Success       bool   `json:"success"`
	JobID         string `json:"jobId,omitempty"`
	Message       string `json:"message"`
	Error         string `json:"error,omitempty"`
	ExistingJobID string `json:"existingJobId,omitempty"`
}

// Service starts analyses and projects job rows for the calling user.
type Service struct {
	invoker Invoker
	store   JobStore
}

// NewService creates a new Service.
func NewService(inv Invoker, st JobStore) *Service {
	return &Service{invoker: inv, store: st}
}

// StartAnalysis asks the remote function to start a job. It performs no
// local dedup; the remote side decides whether a job is already running.
func (s *Service) StartAnalysis(ctx context.Context, accessToken string) StartResult {
	var res StartResult
	if err := s.invoker.InvokeFunction(ctx, StartFunction, accessToken, struct{}{}, &res); err != nil {
		slog.Error("start policy analysis failed", "error", err)
		return StartResult{Success: false, Message: startFailedMessage, Error: err.Error()}
	}
	return res
}

// GetJobStatus returns the job or nil when it is missing or cannot be read.
func (s *Service) GetJobStatus(ctx context.Context, userID, jobID uuid.UUID) *models.PolicyAnalysisJob {
	job, err := s.store.GetPolicyJob(ctx, jobID, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("get policy job failed", "error", err, "job_id", jobID)
		}
		return nil
	}
	return job
}

// GetLatestJob returns the caller's most recently created job, or nil.
func (s *Service) GetLatestJob(ctx context.Context, userID uuid.UUID) *models.PolicyAnalysisJob {
	jobs, err := s.store.ListPolicyJobs(ctx, userID, 1)
	if err != nil {
		slog.Error("get latest policy job failed", "error", err, "user_id", userID)
		return nil
	}
	if len(jobs) == 0 {
		return nil
	}
	return jobs[0]
}

// ListRecentJobs returns up to limit of the caller's jobs, newest first.
// Failures yield an empty slice.
func (s *Service) ListRecentJobs(ctx context.Context, userID uuid.UUID, limit int) []*models.PolicyAnalysisJob {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	jobs, err := s.store.ListPolicyJobs(ctx, userID, limit)
	if err != nil {
		slog.Error("list policy jobs failed", "error", err, "user_id", userID)
		return []*models.PolicyAnalysisJob{}
	}
	if jobs == nil {
		return []*models.PolicyAnalysisJob{}
	}
	return jobs
}
