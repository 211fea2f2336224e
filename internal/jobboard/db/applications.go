package db

import (
	"context"
	"errors"

	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"gorm.io/gorm"
)

func (r *Repository) CreateApplication(ctx context.Context, app *models.Application) error {
	result := r.db.WithContext(ctx).Create(app)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrAlreadyApplied
		}
		return result.Error
	}
	return nil
}

func (r *Repository) ListApplicationsByStudent(ctx context.Context, studentID uint) ([]models.ApplicationListing, error) {
	return r.listApplications(ctx, "applications.student_id = ?", studentID)
}

func (r *Repository) ListApplicationsForJob(ctx context.Context, jobID uint) ([]models.ApplicationListing, error) {
	return r.listApplications(ctx, "applications.job_id = ?", jobID)
}

func (r *Repository) listApplications(ctx context.Context, cond string, arg uint) ([]models.ApplicationListing, error) {
	listings := make([]models.ApplicationListing, 0)
	err := r.db.WithContext(ctx).
		Table("applications").
		Select("applications.*, jobs.title AS job_title, jobs.location AS job_location, users.email AS student_email").
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Joins("JOIN users ON users.id = applications.student_id").
		Where(cond, arg).
		Order("applications.applied_at DESC, applications.id DESC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}
