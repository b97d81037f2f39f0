package repositories

import (
	"fmt"
	"testing"
	"time"

	"tradehub_backend/database"
	"tradehub_backend/internal/models"

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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, emailAddr string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        emailAddr,
		PasswordHash: "hash",
		Role:         role,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedJob(t *testing.T, db *gorm.DB, customerID string) *models.Job {
	t.Helper()
	job := &models.Job{
		CustomerID: customerID,
		Title:      "Fit a new bathroom",
		Category:   "Plumber",
		About:      "Complete refit of a small family bathroom.",
		Location:   "Bristol",
		Status:     models.JobStatusPending,
	}
	require.NoError(t, db.Create(job).Error)
	return job
}

func TestInsertApplicantGuardedEnforcesCap(t *testing.T) {
	db := newTestDB(t)
	repo := NewJobRepository(db)

	customer := seedUser(t, db, "customer@example.com", models.UserRoleCustomer)
	job := seedJob(t, db, customer.ID)

	for i := 0; i < models.MaxApplicantsPerJob; i++ {
		tp := seedUser(t, db, fmt.Sprintf("tp%d@example.com", i), models.UserRoleTradesperson)
		err := repo.InsertApplicantGuarded(db, &models.JobApplicant{
			JobID:          job.ID,
			TradespersonID: tp.ID,
			Status:         models.ApplicantStatusPending,
			AppliedAt:      time.Now(),
		})
		require.NoError(t, err)
	}

	late := seedUser(t, db, "late@example.com", models.UserRoleTradesperson)
	err := repo.InsertApplicantGuarded(db, &models.JobApplicant{
		JobID:          job.ID,
		TradespersonID: late.ID,
		Status:         models.ApplicantStatusPending,
		AppliedAt:      time.Now(),
	})
	assert.ErrorIs(t, err, ErrJobFull)

	count, err := repo.CountApplicants(job.ID)
	require.NoError(t, err)
	assert.EqualValues(t, models.MaxApplicantsPerJob, count)
}

func TestInsertApplicantGuardedRejectsDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewJobRepository(db)

	customer := seedUser(t, db, "customer@example.com", models.UserRoleCustomer)
	tp := seedUser(t, db, "tp@example.com", models.UserRoleTradesperson)
	job := seedJob(t, db, customer.ID)

	applicant := &models.JobApplicant{
		JobID:          job.ID,
		TradespersonID: tp.ID,
		Status:         models.ApplicantStatusPending,
		AppliedAt:      time.Now(),
	}
	require.NoError(t, repo.InsertApplicantGuarded(db, applicant))

	err := repo.InsertApplicantGuarded(db, &models.JobApplicant{
		JobID:          job.ID,
		TradespersonID: tp.ID,
		Status:         models.ApplicantStatusPending,
		AppliedAt:      time.Now(),
	})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestDebitCreditGuardsAgainstNegativeBalance(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepository(db)

	tp := seedUser(t, db, "tp@example.com", models.UserRoleTradesperson)
	require.NoError(t, repo.Create(&models.TradespersonProfile{
		UserID:  tp.ID,
		Credits: 1,
	}))

	require.NoError(t, repo.DebitCredit(db, tp.ID))

	err := repo.DebitCredit(db, tp.ID)
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	credits, err := repo.Credits(tp.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, credits)
}

func TestAddCreditsAccumulates(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepository(db)

	tp := seedUser(t, db, "tp@example.com", models.UserRoleTradesperson)
	require.NoError(t, repo.Create(&models.TradespersonProfile{UserID: tp.ID}))

	require.NoError(t, repo.AddCredits(tp.ID, 5))
	require.NoError(t, repo.AddCredits(tp.ID, 12))

	credits, err := repo.Credits(tp.ID)
	require.NoError(t, err)
	assert.Equal(t, 17, credits)
}

func TestListFiltersAndPaginates(t *testing.T) {
	db := newTestDB(t)
	repo := NewJobRepository(db)

	customer := seedUser(t, db, "customer@example.com", models.UserRoleCustomer)
	for i := 0; i < 5; i++ {
		seedJob(t, db, customer.ID)
	}
	electrical := &models.Job{
		CustomerID: customer.ID,
		Title:      "Replace fuse board",
		Category:   "Electrician",
		About:      "Old fuse board needs replacing with a modern consumer unit.",
		Location:   "Central Bristol",
		Status:     models.JobStatusPending,
	}
	require.NoError(t, db.Create(electrical).Error)

	jobs, total, err := repo.List(JobFilter{Category: "Plumber", Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, jobs, 3)

	jobs, total, err = repo.List(JobFilter{Location: "central", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Replace fuse board", jobs[0].Title)
}

func TestUserRepositoryLockBookkeeping(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	user := seedUser(t, db, "carol@example.com", models.UserRoleCustomer)

	until := time.Now().Add(-time.Minute) // уже истекшая блокировка
	require.NoError(t, repo.RegisterFailedLogin(user.ID, &until))

	cleared, err := repo.ClearExpiredLocks()
	require.NoError(t, err)
	assert.EqualValues(t, 1, cleared)

	loaded, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.False(t, loaded.IsLocked())
	assert.Equal(t, 0, loaded.LoginAttempts)
}
