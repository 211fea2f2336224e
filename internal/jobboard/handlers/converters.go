package handlers

import (
	"time"

	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/samber/lo"
)

type jobResponse struct {
	ID                    uint    `json:"id"`
	CompanyID             uint    `json:"company_id"`
	CompanyEmail          string  `json:"company_email,omitempty"`
	Title                 string  `json:"title"`
	Description           string  `json:"description"`
	Sector                string  `json:"sector"`
	RoleResponsibilities  string  `json:"role_responsibilities"`
	Vacancies             int     `json:"vacancies"`
	Skills                string  `json:"skills"`
	EducationRequirements string  `json:"education_requirements"`
	JobType               string  `json:"job_type"`
	Location              string  `json:"location"`
	ApplicationDeadline   string  `json:"application_deadline"`
	Salary                float64 `json:"salary"`
	CreatedAt             string  `json:"created_at"`
}

type jobPageResponse struct {
	Jobs        []jobResponse `json:"jobs"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
}

type jobsResponse struct {
	Jobs []jobResponse `json:"jobs"`
}

type applicationResponse struct {
	ID           uint   `json:"id"`
	JobID        uint   `json:"job_id"`
	StudentID    uint   `json:"student_id"`
	Title        string `json:"title"`
	Location     string `json:"location"`
	StudentEmail string `json:"student_email,omitempty"`
	AppliedAt    string `json:"applied_at"`
}

type applicationsResponse struct {
	Applications []applicationResponse `json:"applications"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createdJobResponse struct {
	Message string `json:"message"`
	JobID   uint   `json:"jobId"`
}

type createdApplicationResponse struct {
	Message       string `json:"message"`
	ApplicationID uint   `json:"applicationId"`
}

type applyRequest struct {
	JobID uint `json:"jobId"`
}

// jobToResponse converts a Job into its JSON representation.
func jobToResponse(job *models.Job) jobResponse {
	return jobResponse{
		ID:                    job.ID,
		CompanyID:             job.CompanyID,
		Title:                 job.Title,
		Description:           job.Description,
		Sector:                job.Sector,
		RoleResponsibilities:  job.RoleResponsibilities,
		Vacancies:             job.Vacancies,
		Skills:                job.Skills,
		EducationRequirements: job.EducationRequirements,
		JobType:               string(job.JobType),
		Location:              job.Location,
		ApplicationDeadline:   job.ApplicationDeadline.Format(models.DateLayout),
		Salary:                job.Salary,
		CreatedAt:             job.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func listingToResponse(listing models.JobListing, _ int) jobResponse {
	resp := jobToResponse(&listing.Job)
	resp.CompanyEmail = listing.CompanyEmail
	return resp
}

func pageToResponse(page *models.JobPage) jobPageResponse {
	return jobPageResponse{
		Jobs:        lo.Map(page.Jobs, listingToResponse),
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	}
}

func jobsToResponse(jobs []models.Job) jobsResponse {
	return jobsResponse{
		Jobs: lo.Map(jobs, func(j models.Job, _ int) jobResponse { return jobToResponse(&j) }),
	}
}

func applicationToResponse(app models.ApplicationListing, _ int) applicationResponse {
	return applicationResponse{
		ID:           app.ID,
		JobID:        app.JobID,
		StudentID:    app.StudentID,
		Title:        app.JobTitle,
		Location:     app.JobLocation,
		StudentEmail: app.StudentEmail,
		AppliedAt:    app.AppliedAt.UTC().Format(time.RFC3339),
	}
}

func applicationsToResponse(apps []models.ApplicationListing) []applicationResponse {
	return lo.Map(apps, applicationToResponse)
}
