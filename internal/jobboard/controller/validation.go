package controller

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

type inputValidator struct {
	validate *validator.Validate
}

func newInputValidator() *inputValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("jobtype", func(fl validator.FieldLevel) bool {
		return models.JobType(fl.Field().String()).Valid()
	})
	return &inputValidator{validate: v}
}

// job checks every required field and range of input and converts it into
// a Job without owner or ID.
func (v *inputValidator) job(input *models.JobInput) (*models.Job, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: job data required", e.ErrInvalidInput)
	}

	trimmed := trim(*input)
	input = &trimmed

	if err := v.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("%w: %s", e.ErrInvalidInput, describe(fieldErrs))
		}
		return nil, fmt.Errorf("%w: %v", e.ErrInvalidInput, err)
	}

	deadline, err := time.Parse(models.DateLayout, input.ApplicationDeadline)
	if err != nil {
		return nil, fmt.Errorf("%w: application_deadline must be a date (YYYY-MM-DD)", e.ErrInvalidInput)
	}

	return &models.Job{
		Title:                 input.Title,
		Description:           input.Description,
		Sector:                input.Sector,
		RoleResponsibilities:  input.RoleResponsibilities,
		Vacancies:             *input.Vacancies,
		Skills:                input.Skills,
		EducationRequirements: input.EducationRequirements,
		JobType:               input.JobType,
		ApplicationDeadline:   deadline,
		Salary:                *input.Salary,
		Location:              input.Location,
	}, nil
}

// trim strips surrounding whitespace from every text field, so that a
// blank value fails the required check.
func trim(in models.JobInput) models.JobInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Sector = strings.TrimSpace(in.Sector)
	in.RoleResponsibilities = strings.TrimSpace(in.RoleResponsibilities)
	in.Skills = strings.TrimSpace(in.Skills)
	in.EducationRequirements = strings.TrimSpace(in.EducationRequirements)
	in.JobType = models.JobType(strings.TrimSpace(string(in.JobType)))
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	in.ApplicationDeadline = strings.TrimSpace(in.ApplicationDeadline)
	return in
}

func describe(fieldErrs validator.ValidationErrors) string {
	return strings.Join(lo.Map([]validator.FieldError(fieldErrs), func(fe validator.FieldError, _ int) string {
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "gte":
			return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		case "max":
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		case "datetime":
			return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", fe.Field())
		case "jobtype":
			return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.Join(lo.Map(models.JobTypes, func(t models.JobType, _ int) string {
				return string(t)
			}), ", "))
		default:
			return fmt.Sprintf("%s is invalid", fe.Field())
		}
	}), "; ")
}
