package controller

import (
	"context"
	"errors"
	"fmt"

	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/events"
	"github.com/gartstein/jobboard/internal/jobboard/models"
)

// Apply records the caller's application to a job whose deadline has not
// passed. A student can apply to a job once.
func (s *JobService) Apply(ctx context.Context, caller models.Identity, jobID uint) (*models.Application, error) {
	if !caller.Is(models.RoleStudent) {
		return nil, fmt.Errorf("%w: only students can apply", e.ErrForbidden)
	}

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job.ApplicationDeadline.Before(s.today()) {
		return nil, fmt.Errorf("%w: applications for this job are closed", e.ErrInvalidInput)
	}

	app := &models.Application{JobID: job.ID, StudentID: caller.UserID}
	if err := s.repo.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, e.ErrAlreadyApplied) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	s.metrics.ApplicationsSubmitted.Inc()
	s.producer.Produce(events.NewEvent(events.ApplicationSubmitted, job, app))
	return app, nil
}

// ListMyApplications returns the caller's applications, most recent first.
func (s *JobService) ListMyApplications(ctx context.Context, caller models.Identity) ([]models.ApplicationListing, error) {
	if !caller.Is(models.RoleStudent) {
		return nil, fmt.Errorf("%w: only students have applications", e.ErrForbidden)
	}

	apps, err := s.repo.ListApplicationsByStudent(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// ListJobApplications returns the applications to a job owned by the caller.
// Foreign and missing jobs are reported identically.
func (s *JobService) ListJobApplications(ctx context.Context, caller models.Identity, jobID uint) ([]models.ApplicationListing, error) {
	if !caller.Is(models.RoleCompany) {
		return nil, fmt.Errorf("%w: only companies can review applications", e.ErrForbidden)
	}

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.ErrNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job.CompanyID != caller.UserID {
		return nil, e.ErrNotFoundOrUnauthorized
	}

	apps, err := s.repo.ListApplicationsForJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}
