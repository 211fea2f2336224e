// Package models defines the core domain models of the job board:
// jobs, the users that own or apply to them, and applications.
package models

import (
	"time"
)

// JobType is the employment type of a job posting.
type JobType string

const (
	FullTime   JobType = "Full-time"
	PartTime   JobType = "Part-time"
	Internship JobType = "Internship"
	Remote     JobType = "Remote"
	Contract   JobType = "Contract"
	Temporary  JobType = "Temporary"
)

// JobTypes lists every accepted JobType.
var JobTypes = []JobType{FullTime, PartTime, Internship, Remote, Contract, Temporary}

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	for _, known := range JobTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Job defines the domain model for a job posting.
type Job struct {
	// ID is generated by the database on insert.
	ID uint `gorm:"primaryKey;autoIncrement"`
	// CompanyID references the owning company user. It never changes after creation.
	CompanyID uint `gorm:"not null;index;<-:create"`
	// Title is the headline of the posting.
	Title string `gorm:"size:255;not null"`
	// Description is the free-form body of the posting.
	Description string `gorm:"type:text"`
	// Sector is the industry the job belongs to.
	Sector string `gorm:"size:255;index"`
	// RoleResponsibilities describes what the hire will do.
	RoleResponsibilities string `gorm:"type:text"`
	// Vacancies is the number of open positions.
	Vacancies int `gorm:"not null;check:vacancies >= 1"`
	// Skills lists the expected skills.
	Skills string `gorm:"type:text"`
	// EducationRequirements lists the expected education.
	EducationRequirements string `gorm:"type:text"`
	// JobType is the employment type.
	JobType JobType `gorm:"size:32;index"`
	// ApplicationDeadline is the last day applications are accepted.
	ApplicationDeadline time.Time `gorm:"type:date"`
	// Salary is the offered salary.
	Salary float64 `gorm:"not null;check:salary >= 0;index"`
	// Location is where the job is based.
	Location string `gorm:"size:255"`
	// CreatedAt is set once on insert.
	CreatedAt time.Time `gorm:"autoCreateTime;<-:create;index"`
}

// JobListing is a Job as shown in the public listing, enriched with the
// owning company's contact email.
type JobListing struct {
	Job
	CompanyEmail string
}

// DateLayout is the wire format of ApplicationDeadline.
const DateLayout = "2006-01-02"

// JobInput is the unvalidated payload used to create or replace a job.
// Numeric fields are pointers so that a missing value can be told apart from zero.
type JobInput struct {
	Title                 string   `json:"title" validate:"required,max=255"`
	Sector                string   `json:"sector" validate:"required,max=255"`
	RoleResponsibilities  string   `json:"role_responsibilities" validate:"required"`
	Vacancies             *int     `json:"vacancies" validate:"required,gte=1"`
	Skills                string   `json:"skills" validate:"required"`
	EducationRequirements string   `json:"education_requirements" validate:"required"`
	JobType               JobType  `json:"job_type" validate:"required,jobtype"`
	Location              string   `json:"location" validate:"required,max=255"`
	Description           string   `json:"description" validate:"required"`
	ApplicationDeadline   string   `json:"application_deadline" validate:"required,datetime=2006-01-02"`
	Salary                *float64 `json:"salary" validate:"required,gte=0"`
}

// SortOrder selects one of the fixed listing orders.
type SortOrder string

const (
	SortNewest        SortOrder = "newest"
	SortOldest        SortOrder = "oldest"
	SortHighestSalary SortOrder = "highestSalary"
	SortLowestSalary  SortOrder = "lowestSalary"
	SortTitleAsc      SortOrder = "title_asc"
	SortTitleDesc     SortOrder = "title_desc"
)

// JobFilter holds the optional listing filters. Zero values mean "no filter".
type JobFilter struct {
	// JobType must match exactly.
	JobType JobType
	// Location is matched as a substring.
	Location string
	// Sector is matched as a substring.
	Sector string
	// MinSalary is an inclusive lower bound on Salary.
	MinSalary *float64
}

// JobQuery describes one page of the public listing.
type JobQuery struct {
	Filter JobFilter
	Sort   SortOrder
	Page   int
	Limit  int
}

// Offset returns the number of rows skipped before the requested page.
func (q JobQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// JobPage is one page of the public listing.
type JobPage struct {
	Jobs        []JobListing
	Total       int64
	TotalPages  int
	CurrentPage int
}
