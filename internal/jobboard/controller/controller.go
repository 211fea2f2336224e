// Package controller implements the core business logic (service layer)
// of the job board: validating postings, enforcing ownership, paginating
// listings and recording applications, and emitting lifecycle events.
package controller

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/events"
	"github.com/gartstein/jobboard/internal/jobboard/metrics"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"go.uber.org/zap"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps the row offset of the last reachable page inside int32.
	MaxPage = math.MaxInt32 / MaxLimit
)

type EventProducer interface {
	Produce(event events.Event)
}

// Repository defines the storage interface for jobs and applications.
type Repository interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uint) (*models.Job, error)
	ListJobs(ctx context.Context, q models.JobQuery) ([]models.JobListing, int64, error)
	ListJobsByCompany(ctx context.Context, companyID uint) ([]models.Job, error)
	UpdateJob(ctx context.Context, job *models.Job) (int64, error)
	DeleteJob(ctx context.Context, id, companyID uint) (int64, error)
	CreateApplication(ctx context.Context, app *models.Application) error
	ListApplicationsByStudent(ctx context.Context, studentID uint) ([]models.ApplicationListing, error)
	ListApplicationsForJob(ctx context.Context, jobID uint) ([]models.ApplicationListing, error)
}

// JobService provides methods to manage job postings and applications via
// repository operations and event production.
type JobService struct {
	repo      Repository
	producer  EventProducer
	metrics   *metrics.Metrics
	validator *inputValidator
	logger    *zap.Logger
	now       func() time.Time
}

// NewJobService constructs a JobService with a repository, an event
// producer, the service metrics and a logger.
func NewJobService(repo Repository, producer EventProducer, m *metrics.Metrics, logger *zap.Logger) *JobService {
	return &JobService{
		repo:      repo,
		producer:  producer,
		metrics:   m,
		validator: newInputValidator(),
		logger:    logger.Named("job_service"),
		now:       time.Now,
	}
}

// today returns the current UTC date at midnight.
func (s *JobService) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreateJob validates the payload and stores a new job owned by the caller.
func (s *JobService) CreateJob(ctx context.Context, caller models.Identity, input *models.JobInput) (*models.Job, error) {
	if !caller.Is(models.RoleCompany) {
		return nil, fmt.Errorf("%w: only companies can post jobs", e.ErrForbidden)
	}

	job, err := s.validator.job(input)
	if err != nil {
		return nil, err
	}
	if job.ApplicationDeadline.Before(s.today()) {
		return nil, fmt.Errorf("%w: application_deadline must not be in the past", e.ErrInvalidInput)
	}

	job.CompanyID = caller.UserID
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.metrics.JobsCreated.Inc()
	s.producer.Produce(events.NewEvent(events.JobCreated, job, nil))
	return job, nil
}

// ListJobs returns one page of the public listing. An empty result is not
// an error; TotalPages is never below one.
func (s *JobService) ListJobs(ctx context.Context, q models.JobQuery) (*models.JobPage, error) {
	q, err := normalizeQuery(q)
	if err != nil {
		return nil, err
	}

	jobs, total, err := s.repo.ListJobs(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	if jobs == nil {
		jobs = []models.JobListing{}
	}

	return &models.JobPage{
		Jobs:        jobs,
		Total:       total,
		TotalPages:  totalPages(total, q.Limit),
		CurrentPage: q.Page,
	}, nil
}

// normalizeQuery applies pagination defaults and rejects filters outside
// their enumerations.
func normalizeQuery(q models.JobQuery) (models.JobQuery, error) {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	switch q.Sort {
	case models.SortNewest, models.SortOldest, models.SortHighestSalary, models.SortLowestSalary,
		models.SortTitleAsc, models.SortTitleDesc:
	default:
		q.Sort = models.SortNewest
	}

	if q.Filter.JobType != "" && !q.Filter.JobType.Valid() {
		return q, fmt.Errorf("%w: unknown job type %q", e.ErrInvalidInput, q.Filter.JobType)
	}
	if q.Filter.MinSalary != nil && (math.IsNaN(*q.Filter.MinSalary) || math.IsInf(*q.Filter.MinSalary, 0)) {
		return q, fmt.Errorf("%w: minSalary must be a finite number", e.ErrInvalidInput)
	}
	return q, nil
}

func totalPages(total int64, limit int) int {
	pages := int(math.Ceil(float64(total) / float64(limit)))
	if pages < 1 {
		return 1
	}
	return pages
}

// ListCompanyJobs returns the caller's own postings, newest first.
func (s *JobService) ListCompanyJobs(ctx context.Context, caller models.Identity) ([]models.Job, error) {
	if !caller.Is(models.RoleCompany) {
		return nil, fmt.Errorf("%w: only companies own jobs", e.ErrForbidden)
	}

	jobs, err := s.repo.ListJobsByCompany(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list company jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJob replaces every mutable field of a job owned by the caller.
func (s *JobService) UpdateJob(ctx context.Context, caller models.Identity, id uint, input *models.JobInput) (*models.Job, error) {
	if !caller.Is(models.RoleCompany) {
		return nil, fmt.Errorf("%w: only companies can update jobs", e.ErrForbidden)
	}

	job, err := s.validator.job(input)
	if err != nil {
		return nil, err
	}
	job.ID = id
	job.CompanyID = caller.UserID

	affected, err := s.repo.UpdateJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	if affected == 0 {
		return nil, e.ErrNotFoundOrUnauthorized
	}

	updated, err := s.repo.GetJob(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get job for event",
			zap.Error(err),
			zap.Uint("job_id", id),
		)
		return job, nil
	}
	s.producer.Produce(events.NewEvent(events.JobUpdated, updated, nil))
	return updated, nil
}

// DeleteJob removes a job owned by the caller.
func (s *JobService) DeleteJob(ctx context.Context, caller models.Identity, id uint) error {
	if !caller.Is(models.RoleCompany) {
		return fmt.Errorf("%w: only companies can delete jobs", e.ErrForbidden)
	}

	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return e.ErrNotFoundOrUnauthorized
		}
		return fmt.Errorf("failed to get job for deletion: %w", err)
	}

	affected, err := s.repo.DeleteJob(ctx, id, caller.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if affected == 0 {
		return e.ErrNotFoundOrUnauthorized
	}

	s.producer.Produce(events.NewEvent(events.JobDeleted, job, nil))
	return nil
}
