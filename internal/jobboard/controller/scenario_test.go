package controller

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/gartstein/jobboard/internal/jobboard/db"
	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
)

// ScenarioSuite drives the service against a real in-memory database.
type ScenarioSuite struct {
	suite.Suite
	repo     *db.Repository
	producer *MockProducer
	svc      *JobService
	company1 models.Identity
	company2 models.Identity
	student  models.Identity
}

func (s *ScenarioSuite) SetupTest() {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	repo, err := db.Open(sqlite.Open(dsn))
	s.Require().NoError(err)
	s.repo = repo
	s.producer = &MockProducer{}
	s.svc = newTestService(s.T(), repo, s.producer)

	s.company1 = s.register("hr@acme.test", models.RoleCompany)
	s.company2 = s.register("jobs@globex.test", models.RoleCompany)
	s.student = s.register("ada@uni.test", models.RoleStudent)
}

func (s *ScenarioSuite) TearDownTest() {
	s.NoError(s.repo.Close())
}

func (s *ScenarioSuite) register(email string, role models.Role) models.Identity {
	u := &models.User{Email: email, Role: role}
	s.Require().NoError(s.repo.CreateUser(context.Background(), u))
	return models.Identity{UserID: u.ID, Role: role}
}

func (s *ScenarioSuite) post(caller models.Identity, title string, salary float64) *models.Job {
	in := validInput()
	in.Title = title
	in.Salary = lo.ToPtr(salary)
	job, err := s.svc.CreateJob(context.Background(), caller, in)
	s.Require().NoError(err)
	return job
}

func (s *ScenarioSuite) TestSortAndForeignDelete() {
	ctx := context.Background()
	jobA := s.post(s.company1, "A", 50000)
	jobB := s.post(s.company1, "B", 80000)

	page, err := s.svc.ListJobs(ctx, models.JobQuery{Sort: models.SortHighestSalary})
	s.Require().NoError(err)
	s.Equal([]uint{jobB.ID, jobA.ID}, lo.Map(page.Jobs, func(j models.JobListing, _ int) uint { return j.ID }))
	s.Equal(1, page.TotalPages)
	s.Equal(1, page.CurrentPage)
	s.Equal("hr@acme.test", page.Jobs[0].CompanyEmail)

	err = s.svc.DeleteJob(ctx, s.company2, jobA.ID)
	s.ErrorIs(err, e.ErrNotFoundOrUnauthorized)

	stillThere, err := s.repo.GetJob(ctx, jobA.ID)
	s.Require().NoError(err)
	s.Equal("A", stillThere.Title)
}

func (s *ScenarioSuite) TestForeignUpdateLeavesJobUntouched() {
	ctx := context.Background()
	job := s.post(s.company1, "Original", 50000)

	in := validInput()
	in.Title = "Hijacked"
	_, err := s.svc.UpdateJob(ctx, s.company2, job.ID, in)
	s.ErrorIs(err, e.ErrNotFoundOrUnauthorized)

	got, err := s.repo.GetJob(ctx, job.ID)
	s.Require().NoError(err)
	s.Equal("Original", got.Title)

	in.Title = "Renamed"
	updated, err := s.svc.UpdateJob(ctx, s.company1, job.ID, in)
	s.Require().NoError(err)
	s.Equal("Renamed", updated.Title)
	s.Equal(job.CreatedAt.Unix(), updated.CreatedAt.Unix(), "created_at is never rewritten")
}

func (s *ScenarioSuite) TestApplicationLifecycle() {
	ctx := context.Background()
	job := s.post(s.company1, "Intern", 20000)

	_, err := s.svc.Apply(ctx, s.student, job.ID)
	s.Require().NoError(err)

	_, err = s.svc.Apply(ctx, s.student, job.ID)
	s.ErrorIs(err, e.ErrAlreadyApplied)

	mine, err := s.svc.ListMyApplications(ctx, s.student)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal("Intern", mine[0].JobTitle)

	received, err := s.svc.ListJobApplications(ctx, s.company1, job.ID)
	s.Require().NoError(err)
	s.Require().Len(received, 1)
	s.Equal("ada@uni.test", received[0].StudentEmail)

	s.Require().NoError(s.svc.DeleteJob(ctx, s.company1, job.ID))

	mine, err = s.svc.ListMyApplications(ctx, s.student)
	s.Require().NoError(err)
	s.Empty(mine, "deleting a job removes its applications")
}

func (s *ScenarioSuite) TestEmptyListing() {
	page, err := s.svc.ListJobs(context.Background(), models.JobQuery{
		Filter: models.JobFilter{Location: "Atlantis"},
	})
	s.Require().NoError(err)
	s.Empty(page.Jobs)
	s.NotNil(page.Jobs)
	s.Equal(1, page.TotalPages)
}

func (s *ScenarioSuite) TestPageBeyondEndIsEmpty() {
	s.post(s.company1, "Backend Engineer", 70000)
	s.post(s.company2, "Data Analyst", 50000)

	for _, p := range []int{2, 1 << 30, math.MaxInt} {
		page, err := s.svc.ListJobs(context.Background(), models.JobQuery{Page: p, Limit: 10})
		s.Require().NoError(err)
		s.Empty(page.Jobs, "page %d", p)
		s.NotNil(page.Jobs)
		s.Equal(int64(2), page.Total)
		s.Equal(1, page.TotalPages)
	}
}

func (s *ScenarioSuite) TestTitleSort() {
	s.post(s.company1, "Cloud Architect", 90000)
	s.post(s.company2, "Analyst", 40000)
	s.post(s.company1, "Backend Engineer", 70000)

	titles := func(sort models.SortOrder) []string {
		page, err := s.svc.ListJobs(context.Background(), models.JobQuery{Sort: sort})
		s.Require().NoError(err)
		return lo.Map(page.Jobs, func(j models.JobListing, _ int) string { return j.Title })
	}

	s.Equal([]string{"Analyst", "Backend Engineer", "Cloud Architect"}, titles(models.SortTitleAsc))
	s.Equal([]string{"Cloud Architect", "Backend Engineer", "Analyst"}, titles(models.SortTitleDesc))
}

func TestScenarioSuite(t *testing.T) {
	suite.Run(t, new(ScenarioSuite))
}

func TestScenarioPaginationCoversEveryJobOnce(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	repo, err := db.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	owner := &models.User{Email: "owner@acme.test", Role: models.RoleCompany}
	require.NoError(t, repo.CreateUser(context.Background(), owner))
	caller := models.Identity{UserID: owner.ID, Role: models.RoleCompany}

	svc := newTestService(t, repo, &MockProducer{})
	for i := 0; i < 23; i++ {
		in := validInput()
		in.Title = fmt.Sprintf("Job %02d", i)
		in.Salary = lo.ToPtr(float64(1000 * (i % 5)))
		_, err := svc.CreateJob(context.Background(), caller, in)
		require.NoError(t, err)
	}

	seen := map[uint]int{}
	for page := 1; page <= 3; page++ {
		res, err := svc.ListJobs(context.Background(), models.JobQuery{Page: page, Limit: 10, Sort: models.SortLowestSalary})
		require.NoError(t, err)
		assert.Equal(t, 3, res.TotalPages)
		for _, j := range res.Jobs {
			seen[j.ID]++
		}
	}
	assert.Len(t, seen, 23)
	for id, n := range seen {
		assert.Equal(t, 1, n, "job %d listed more than once", id)
	}
}
