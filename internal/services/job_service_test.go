package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"tradehub_backend/database"
	"tradehub_backend/internal/appErrors"
	"tradehub_backend/internal/events"
	"tradehub_backend/internal/models"
	"tradehub_backend/internal/repositories"
	"tradehub_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// одно соединение: и для :memory:, и чтобы конкурентные тесты
	// сериализовались на уровне пула вместо "database is locked"
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

type jobTestEnv struct {
	db          *gorm.DB
	svc         JobService
	jobRepo     repositories.JobRepository
	profileRepo repositories.ProfileRepository
	userRepo    repositories.UserRepository
}

func newJobTestEnv(t *testing.T) *jobTestEnv {
	t.Helper()
	db := newTestDB(t)

	jobRepo := repositories.NewJobRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	userRepo := repositories.NewUserRepository(db)

	return &jobTestEnv{
		db:          db,
		svc:         NewJobService(db, jobRepo, profileRepo, userRepo, events.NoopBus{}),
		jobRepo:     jobRepo,
		profileRepo: profileRepo,
		userRepo:    userRepo,
	}
}

func (e *jobTestEnv) createCustomer(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{
		FirstName:    "Carol",
		LastName:     "Customer",
		Email:        email,
		PasswordHash: "hash",
		Role:         models.UserRoleCustomer,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, e.userRepo.Create(user))
	return user
}

func (e *jobTestEnv) createTradesperson(t *testing.T, email string, credits int) *models.User {
	t.Helper()
	user := &models.User{
		FirstName:    "Tom",
		LastName:     "Tradesperson",
		Email:        email,
		PasswordHash: "hash",
		Role:         models.UserRoleTradesperson,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, e.userRepo.Create(user))
	require.NoError(t, e.profileRepo.Create(&models.TradespersonProfile{
		UserID:        user.ID,
		SelectedTrade: "Plumber",
		Credits:       credits,
	}))
	return user
}

func (e *jobTestEnv) createJob(t *testing.T, customerID string) *models.Job {
	t.Helper()
	resp, err := e.svc.Create(customerID, dto.CreateJobRequest{
		JobTitle:    "Fix leaking kitchen sink",
		JobCategory: "Plumber",
		JobAbout:    "The sink has been leaking for a week and needs urgent repair.",
		JobLocation: "Manchester",
	})
	require.NoError(t, err)

	job, err := e.jobRepo.FindByID(resp.ID)
	require.NoError(t, err)
	return job
}

func TestApplyDeductsOneCreditAndRecordsApplicant(t *testing.T) {
	env := newJobTestEnv(t)
	customer := env.createCustomer(t, "carol@example.com")
	tp := env.createTradesperson(t, "tom@example.com", 2)
	job := env.createJob(t, customer.ID)

	resp, err := env.svc.Apply(job.ID, tp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RemainingCredits)

	count, err := env.jobRepo.CountApplicants(job.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	credits, err := env.profileRepo.Credits(tp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, credits)
}

func TestApplyWithoutCreditsLeavesNoTrace(t *testing.T) {
	env := newJobTestEnv(t)
	customer := env.createCustomer(t, "carol@example.com")
	tp := env.createTradesperson(t, "tom@example.com", 0)
	job := env.createJob(t, customer.ID)

	_, err := env.svc.Apply(job.ID, tp.ID)
	assert.ErrorIs(t, err, appErrors.ErrInsufficientCredits)

	// отказ не оставляет частичного состояния
	count, err := env.jobRepo.CountApplicants(job.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	credits, err := env.profileRepo.Credits(tp.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, credits)
}

func TestApplyFourthApplicantRejectedWithoutCreditLoss(t *testing.T) {
	env := newJobTestEnv(t)
	customer := env.createCustomer(t, "carol@example.com")
	job := env.createJob(t, customer.ID)

	for i := 0; i < models.MaxApplicantsPerJob; i++ {
		tp := env.createTradesperson(t, fmt.Sprintf("tp%d@example.com", i), 1)
		_, err := env.svc.Apply(job.ID, tp.ID)
		require.NoError(t, err)
	}

	late := env.createTradesperson(t, "late@example.com", 1)
	_, err := env.svc.Apply(job.ID, late.ID)
	assert.ErrorIs(t, err, appErrors.ErrJobFull)

	// кредит опоздавшего не тронут
	credits, err := env.profileRepo.Credits(late.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, credits)

	count, err := env.jobRepo.CountApplicants(job.ID)
	require.NoError(t, err)
	assert.EqualValues(t, models.MaxApplicantsPerJob, count)
}

func TestApplyTwiceRejectedWithoutSecondDeduction(t *testing.T) {
	env := newJobTestEnv(t)
	customer := env.createCustomer(t, "carol@example.com")
	tp := env.createTradesperson(t, "tom@example.com", 5)
	job := env.createJob(t, customer.ID)

	_, err := env.svc.Apply(job.ID, tp.ID)
	require.NoError(t, err)

	_, err = env.svc.Apply(job.ID, tp.ID)
	assert.ErrorIs(t, err, appErrors.ErrAlreadyApplied)

	credits, err := env.profileRepo.Credits(tp.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, credits)
}

func TestApplyToClosedJobRejected(t *testing.T) {
	env := newJobTestEnv(t)
	customer := env.createCustomer(t, "carol@example.com")
	tp := env.createTradesperson(t, "tom@example.com", 1)
	job := env.createJob(t, customer.ID)

	_, err := env.svc.UpdateStatus(job.ID, customer.ID, models.JobStatusCancelled)
	require.NoError(t, err)

	_, err = env.svc.Apply(job.ID, tp.ID)
	assert.ErrorIs(t, err, appErrors.ErrJobNotOpen)

	credits, err := env.profileRepo.Credits(tp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, credits)
}

func TestApplyToOwnJobForbidden(t *testing.T) {
	env := newJobTestEnv(t)
	owner := env.createTradesperson(t, "owner@example.com", 3)
	job := env.createJob(t, owner.ID)

	_, err := env.svc.Apply(job.ID, owner.ID)
	require.Error(t, err)

	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.CodeForbidden, appErr.Code)
}

func TestConcurrentAppliesNeverExceedCap(t *testing.T) {
	env := newJobTestEnv(t)
	customer := env.createCustomer(t, "carol@example.com")
	job := env.createJob(t, customer.ID)

	const contenders = 6
	tradespeople := make([]*models.User, contenders)
	for i := range tradespeople {
		tradespeople[i] = env.createTradesperson(t, fmt.Sprintf("tp%d@example.com", i), 1)
	}

	var wg sync.WaitGroup
	results := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = env.svc.Apply(job.ID, tradespeople[i].ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range results {
		credits, cErr := env.profileRepo.Credits(tradespeople[i].ID)
		require.NoError(t, cErr)
		if err == nil {
			succeeded++
			assert.Equal(t, 0, credits, "winner %d must pay one credit", i)
		} else {
			assert.ErrorIs(t, err, appErrors.ErrJobFull)
			assert.Equal(t, 1, credits, "loser %d must keep its credit", i)
		}
	}
	assert.Equal(t, models.MaxApplicantsPerJob, succeeded)

	count, err := env.jobRepo.CountApplicants(job.ID)
	require.NoError(t, err)
	assert.EqualValues(t, models.MaxApplicantsPerJob, count)
}

func TestDecideAcceptAssignsTradespersonAndRejectsRest(t *testing.T) {
	env := newJobTestEnv(t)
	customer := env.createCustomer(t, "carol@example.com")
	job := env.createJob(t, customer.ID)

	first := env.createTradesperson(t, "first@example.com", 1)
	second := env.createTradesperson(t, "second@example.com", 1)
	_, err := env.svc.Apply(job.ID, first.ID)
	require.NoError(t, err)
	_, err = env.svc.Apply(job.ID, second.ID)
	require.NoError(t, err)

	loaded, err := env.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	var chosen models.JobApplicant
	for _, a := range loaded.Applicants {
		if a.TradespersonID == first.ID {
			chosen = a
		}
	}
	require.NotEmpty(t, chosen.ID)

	resp, err := env.svc.DecideApplicant(job.ID, chosen.ID, customer.ID, models.ApplicantStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, string(models.JobStatusInProgress), resp.Status)
	require.NotNil(t, resp.AssignedTradespersonID)
	assert.Equal(t, first.ID, *resp.AssignedTradespersonID)

	// вторая заявка автоматически отклонена, кредит не возвращается
	loaded, err = env.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	for _, a := range loaded.Applicants {
		if a.TradespersonID == second.ID {
			assert.Equal(t, models.ApplicantStatusRejected, a.Status)
		}
	}
	credits, err := env.profileRepo.Credits(second.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, credits)
}

func TestDecideRejectKeepsJobOpen(t *testing.T) {
	env := newJobTestEnv(t)
	customer := env.createCustomer(t, "carol@example.com")
	job := env.createJob(t, customer.ID)
	tp := env.createTradesperson(t, "tom@example.com", 1)

	_, err := env.svc.Apply(job.ID, tp.ID)
	require.NoError(t, err)

	loaded, err := env.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Applicants, 1)

	resp, err := env.svc.DecideApplicant(job.ID, loaded.Applicants[0].ID, customer.ID, models.ApplicantStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, string(models.JobStatusPending), resp.Status)
	assert.Nil(t, resp.AssignedTradespersonID)

	// отклоненную заявку нельзя решить повторно
	_, err = env.svc.DecideApplicant(job.ID, loaded.Applicants[0].ID, customer.ID, models.ApplicantStatusAccepted)
	require.Error(t, err)
}

func TestDecideByNonOwnerForbidden(t *testing.T) {
	env := newJobTestEnv(t)
	customer := env.createCustomer(t, "carol@example.com")
	stranger := env.createCustomer(t, "stranger@example.com")
	job := env.createJob(t, customer.ID)
	tp := env.createTradesperson(t, "tom@example.com", 1)

	_, err := env.svc.Apply(job.ID, tp.ID)
	require.NoError(t, err)

	loaded, err := env.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Applicants, 1)

	_, err = env.svc.DecideApplicant(job.ID, loaded.Applicants[0].ID, stranger.ID, models.ApplicantStatusAccepted)
	var appErr *appErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.CodeForbidden, appErr.Code)
}

func TestUpdateStatusFollowsTransitionTable(t *testing.T) {
	env := newJobTestEnv(t)
	customer := env.createCustomer(t, "carol@example.com")
	tp := env.createTradesperson(t, "tom@example.com", 1)

	// pending -> completed запрещен
	job := env.createJob(t, customer.ID)
	_, err := env.svc.UpdateStatus(job.ID, customer.ID, models.JobStatusCompleted)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	// pending -> cancelled разрешен и терминален
	resp, err := env.svc.UpdateStatus(job.ID, customer.ID, models.JobStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, string(models.JobStatusCancelled), resp.Status)
	_, err = env.svc.UpdateStatus(job.ID, customer.ID, models.JobStatusPending)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	// inProgress -> completed ставит дату завершения
	job = env.createJob(t, customer.ID)
	_, err = env.svc.Apply(job.ID, tp.ID)
	require.NoError(t, err)
	loaded, err := env.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	_, err = env.svc.DecideApplicant(job.ID, loaded.Applicants[0].ID, customer.ID, models.ApplicantStatusAccepted)
	require.NoError(t, err)

	resp, err = env.svc.UpdateStatus(job.ID, customer.ID, models.JobStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, string(models.JobStatusCompleted), resp.Status)
	assert.NotNil(t, resp.CompletionDate)
}

func TestListFiltersByCategoryAndStatus(t *testing.T) {
	env := newJobTestEnv(t)
	customer := env.createCustomer(t, "carol@example.com")

	_, err := env.svc.Create(customer.ID, dto.CreateJobRequest{
		JobTitle:    "Rewire the garage",
		JobCategory: "Electrician",
		JobAbout:    "Full rewiring of a detached garage including new consumer unit.",
		JobLocation: "Leeds",
	})
	require.NoError(t, err)
	env.createJob(t, customer.ID) // Plumber job

	resp, err := env.svc.List(dto.JobListQuery{Category: "Electrician"})
	require.NoError(t, err)
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, "Rewire the garage", resp.Jobs[0].JobTitle)
	assert.EqualValues(t, 1, resp.Total)

	resp, err = env.svc.List(dto.JobListQuery{Status: string(models.JobStatusPending)})
	require.NoError(t, err)
	assert.Len(t, resp.Jobs, 2)
}

func TestApplyToUnknownJobNotFound(t *testing.T) {
	env := newJobTestEnv(t)
	tp := env.createTradesperson(t, "tom@example.com", 1)

	_, err := env.svc.Apply("00000000-0000-0000-0000-000000000000", tp.ID)
	assert.ErrorIs(t, err, appErrors.ErrJobNotFound)

	credits, err := env.profileRepo.Credits(tp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, credits)
}

func TestDecideAcceptTwiceYieldsSameState(t *testing.T) {
	env := newJobTestEnv(t)
	customer := env.createCustomer(t, "carol@example.com")
	job := env.createJob(t, customer.ID)
	tp := env.createTradesperson(t, "tom@example.com", 1)

	_, err := env.svc.Apply(job.ID, tp.ID)
	require.NoError(t, err)

	loaded, err := env.jobRepo.FindByID(job.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Applicants, 1)
	applicantID := loaded.Applicants[0].ID

	first, err := env.svc.DecideApplicant(job.ID, applicantID, customer.ID, models.ApplicantStatusAccepted)
	require.NoError(t, err)

	// повторное принятие того же мастера - то же конечное состояние
	second, err := env.svc.DecideApplicant(job.ID, applicantID, customer.ID, models.ApplicantStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	require.NotNil(t, second.AssignedTradespersonID)
	assert.Equal(t, tp.ID, *second.AssignedTradespersonID)

	// а смена решения после принятия - конфликт
	_, err = env.svc.DecideApplicant(job.ID, applicantID, customer.ID, models.ApplicantStatusRejected)
	assert.Error(t, err)
}

func TestRetryableTxErrorDetection(t *testing.T) {
	assert.True(t, isRetryableTxError(errors.New("ERROR: could not serialize access due to read/write dependencies among transactions (SQLSTATE 40001)")))
	assert.True(t, isRetryableTxError(errors.New("deadlock detected")))
	assert.True(t, isRetryableTxError(errors.New("database is locked")))
	assert.False(t, isRetryableTxError(repositories.ErrJobFull))
	assert.False(t, isRetryableTxError(repositories.ErrInsufficientCredits))
	assert.False(t, isRetryableTxError(nil))
}
