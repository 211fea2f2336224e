package models

import (
	"time"
)

// Application links a student to a job they applied to.
type Application struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	JobID     uint      `gorm:"not null;uniqueIndex:idx_applications_job_student"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_applications_job_student;index"`
	AppliedAt time.Time `gorm:"autoCreateTime;<-:create"`
}

// ApplicationListing is an Application joined with its job title and the
// applicant's email.
type ApplicationListing struct {
	Application
	JobTitle     string
	JobLocation  string
	StudentEmail string
}
