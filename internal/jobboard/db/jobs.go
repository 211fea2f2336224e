package db

import (
	"context"
	"errors"
	"strings"

	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"gorm.io/gorm"
)

// sortClauses maps every accepted sort order to a fixed ORDER BY clause.
// Ties are broken by id so pages are stable.
var sortClauses = map[models.SortOrder]string{
	models.SortNewest:        "jobs.created_at DESC, jobs.id DESC",
	models.SortOldest:        "jobs.created_at ASC, jobs.id ASC",
	models.SortHighestSalary: "jobs.salary DESC, jobs.id DESC",
	models.SortLowestSalary:  "jobs.salary ASC, jobs.id ASC",
	models.SortTitleAsc:      "jobs.title ASC, jobs.id ASC",
	models.SortTitleDesc:     "jobs.title DESC, jobs.id DESC",
}

func orderClause(sort models.SortOrder) string {
	if clause, ok := sortClauses[sort]; ok {
		return clause
	}
	return sortClauses[models.SortNewest]
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containing builds a LIKE pattern matching s anywhere in a column.
func containing(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// filterScope turns a JobFilter into WHERE conditions. Only values are bound;
// the SQL text is fixed per filter key.
func filterScope(f models.JobFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.JobType != "" {
			db = db.Where("jobs.job_type = ?", f.JobType)
		}
		if f.Location != "" {
			db = db.Where(`jobs.location LIKE ? ESCAPE '\'`, containing(f.Location))
		}
		if f.MinSalary != nil {
			db = db.Where("jobs.salary >= ?", *f.MinSalary)
		}
		if f.Sector != "" {
			db = db.Where(`jobs.sector LIKE ? ESCAPE '\'`, containing(f.Sector))
		}
		return db
	}
}

func (r *Repository) CreateJob(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repository) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	result := r.db.WithContext(ctx).First(&job, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &job, nil
}

// ListJobs returns one page of jobs matching q together with the number of
// matching jobs across all pages. The count and the page are separate
// statements, so the two may drift under concurrent writes.
func (r *Repository) ListJobs(ctx context.Context, q models.JobQuery) ([]models.JobListing, int64, error) {
	filter := filterScope(q.Filter)

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Job{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listings := make([]models.JobListing, 0, q.Limit)
	if total == 0 {
		return listings, 0, nil
	}

	err := r.db.WithContext(ctx).
		Table("jobs").
		Select("jobs.*, users.email AS company_email").
		Joins("JOIN users ON users.id = jobs.company_id").
		Scopes(filter).
		Order(orderClause(q.Sort)).
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *Repository) ListJobsByCompany(ctx context.Context, companyID uint) ([]models.Job, error) {
	jobs := make([]models.Job, 0)
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order(orderClause(models.SortNewest)).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateJob overwrites every mutable column of the job identified by
// job.ID, provided it belongs to job.CompanyID. It returns the number of rows
// changed; zero means the job is missing or owned by someone else.
func (r *Repository) UpdateJob(ctx context.Context, job *models.Job) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND company_id = ?", job.ID, job.CompanyID).
		Updates(map[string]interface{}{
			"title":                  job.Title,
			"description":            job.Description,
			"sector":                 job.Sector,
			"role_responsibilities":  job.RoleResponsibilities,
			"vacancies":              job.Vacancies,
			"skills":                 job.Skills,
			"education_requirements": job.EducationRequirements,
			"job_type":               job.JobType,
			"application_deadline":   job.ApplicationDeadline,
			"salary":                 job.Salary,
			"location":               job.Location,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteJob removes the job and its applications when it belongs to
// companyID. It returns the number of jobs removed.
func (r *Repository) DeleteJob(ctx context.Context, id, companyID uint) (int64, error) {
	var affected int64
	err := r.WithTransaction(ctx, func(tx *Repository) error {
		result := tx.db.Where("id = ? AND company_id = ?", id, companyID).Delete(&models.Job{})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		if affected == 0 {
			return nil
		}
		return tx.db.Where("job_id = ?", id).Delete(&models.Application{}).Error
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}
