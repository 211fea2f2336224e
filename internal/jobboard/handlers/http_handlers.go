package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gartstein/jobboard/internal/jobboard/auth"
	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// JobController defines the business logic interface that the HTTP
// handlers invoke.
type JobController interface {
	CreateJob(ctx context.Context, caller models.Identity, input *models.JobInput) (*models.Job, error)
	ListJobs(ctx context.Context, q models.JobQuery) (*models.JobPage, error)
	ListCompanyJobs(ctx context.Context, caller models.Identity) ([]models.Job, error)
	UpdateJob(ctx context.Context, caller models.Identity, id uint, input *models.JobInput) (*models.Job, error)
	DeleteJob(ctx context.Context, caller models.Identity, id uint) error
	Apply(ctx context.Context, caller models.Identity, jobID uint) (*models.Application, error)
	ListMyApplications(ctx context.Context, caller models.Identity) ([]models.ApplicationListing, error)
	ListJobApplications(ctx context.Context, caller models.Identity, jobID uint) ([]models.ApplicationListing, error)
}

// JobHandler implements the HTTP endpoints of the job board.
type JobHandler struct {
	controller JobController
	logger     *zap.Logger
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(controller JobController, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		controller: controller,
		logger:     logger.Named("job_handler"),
	}
}

// ListJobs handles GET /jobs.
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q, err := parseJobQuery(r.URL.Query())
	if err != nil {
		h.writeServiceError(w, err, "")
		return
	}

	page, err := h.controller.ListJobs(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(page))
}

// ListCompanyJobs handles GET /jobs/company.
func (h *JobHandler) ListCompanyJobs(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	caller, _ := auth.IdentityFromContext(r.Context())

	jobs, err := h.controller.ListCompanyJobs(r.Context(), caller)
	if err != nil {
		h.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, jobsToResponse(jobs))
}

// CreateJob handles POST /jobs.
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	caller, _ := auth.IdentityFromContext(r.Context())

	var input models.JobInput
	if err := decodeBody(w, r, &input); err != nil {
		h.writeServiceError(w, err, "")
		return
	}

	job, err := h.controller.CreateJob(r.Context(), caller, &input)
	if err != nil {
		h.writeServiceError(w, err, "")
		return
	}

	h.logger.Info("job created", zap.Uint("job_id", job.ID), zap.Uint("company_id", caller.UserID))
	writeJSON(w, http.StatusCreated, createdJobResponse{Message: "Job created successfully!", JobID: job.ID})
}

// UpdateJob handles PUT /jobs/{id}.
func (h *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	caller, _ := auth.IdentityFromContext(r.Context())

	id, err := parseID(pathParams["id"])
	if err != nil {
		h.writeServiceError(w, err, "")
		return
	}

	var input models.JobInput
	if err := decodeBody(w, r, &input); err != nil {
		h.writeServiceError(w, err, "")
		return
	}

	if _, err := h.controller.UpdateJob(r.Context(), caller, id, &input); err != nil {
		h.writeServiceError(w, err, "Job not found or unauthorized to update.")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Job updated successfully!"})
}

// DeleteJob handles DELETE /jobs/{id}.
func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	caller, _ := auth.IdentityFromContext(r.Context())

	id, err := parseID(pathParams["id"])
	if err != nil {
		h.writeServiceError(w, err, "")
		return
	}

	if err := h.controller.DeleteJob(r.Context(), caller, id); err != nil {
		h.writeServiceError(w, err, "Job not found or unauthorized to delete.")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Job deleted successfully!"})
}

// ListJobApplications handles GET /jobs/{id}/applications.
func (h *JobHandler) ListJobApplications(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	caller, _ := auth.IdentityFromContext(r.Context())

	id, err := parseID(pathParams["id"])
	if err != nil {
		h.writeServiceError(w, err, "")
		return
	}

	apps, err := h.controller.ListJobApplications(r.Context(), caller, id)
	if err != nil {
		h.writeServiceError(w, err, "Job not found or unauthorized.")
		return
	}
	writeJSON(w, http.StatusOK, applicationsResponse{Applications: applicationsToResponse(apps)})
}

// Apply handles POST /applications/apply.
func (h *JobHandler) Apply(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	caller, _ := auth.IdentityFromContext(r.Context())

	var req applyRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeServiceError(w, err, "")
		return
	}
	if req.JobID == 0 {
		h.writeServiceError(w, fmt.Errorf("%w: jobId is required", e.ErrInvalidInput), "")
		return
	}

	app, err := h.controller.Apply(r.Context(), caller, req.JobID)
	if err != nil {
		h.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, createdApplicationResponse{
		Message:       "Application submitted successfully!",
		ApplicationID: app.ID,
	})
}

// ListMyApplications handles GET /applications/my.
func (h *JobHandler) ListMyApplications(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	caller, _ := auth.IdentityFromContext(r.Context())

	apps, err := h.controller.ListMyApplications(r.Context(), caller)
	if err != nil {
		h.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, applicationsToResponse(apps))
}

// parseJobQuery reads pagination, sort and filter parameters. Unusable
// page and limit values fall back to their defaults; a minSalary that is
// not a number is rejected.
func parseJobQuery(values url.Values) (models.JobQuery, error) {
	q := models.JobQuery{
		Page:  atoiOrZero(values.Get("page")),
		Limit: atoiOrZero(values.Get("limit")),
		Sort:  models.SortOrder(values.Get("sort")),
		Filter: models.JobFilter{
			JobType:  models.JobType(strings.TrimSpace(values.Get("jobType"))),
			Location: strings.TrimSpace(values.Get("location")),
			Sector:   strings.TrimSpace(values.Get("sector")),
		},
	}

	if raw := strings.TrimSpace(values.Get("minSalary")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return q, fmt.Errorf("%w: minSalary must be a number", e.ErrInvalidInput)
		}
		q.Filter.MinSalary = &v
	}
	return q, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid job id %q", e.ErrInvalidInput, raw)
	}
	return uint(id), nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", e.ErrInvalidInput)
	}
	return nil
}

// writeServiceError maps domain errors to HTTP statuses. notFoundMessage,
// when set, replaces the message of ErrNotFoundOrUnauthorized. Internal
// errors are logged and answered with a generic message.
func (h *JobHandler) writeServiceError(w http.ResponseWriter, err error, notFoundMessage string) {
	status, message := h.mapServiceError(err)
	if notFoundMessage != "" && errors.Is(err, e.ErrNotFoundOrUnauthorized) {
		message = notFoundMessage
	}
	writeJSON(w, status, messageResponse{Message: message})
}

// mapServiceError maps domain or repository errors to HTTP status codes.
func (h *JobHandler) mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, e.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, e.ErrForbidden):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, e.ErrNotFoundOrUnauthorized):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, e.ErrAlreadyApplied):
		return http.StatusConflict, "You have already applied to this job."
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
