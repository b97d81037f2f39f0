package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tradehub_backend/database"
	"tradehub_backend/internal/events"
	"tradehub_backend/internal/middleware"
	"tradehub_backend/internal/models"
	"tradehub_backend/internal/repositories"
	"tradehub_backend/internal/services"
	"tradehub_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type handlerTestEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

// asUser подменяет auth middleware: кладет пользователя в контекст
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, user.ID)
		c.Set(middleware.ContextRole, string(user.Role))
		c.Next()
	}
}

func newHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	return &handlerTestEnv{db: db}
}

func (e *handlerTestEnv) jobHandler() *JobHandler {
	jobRepo := repositories.NewJobRepository(e.db)
	profileRepo := repositories.NewProfileRepository(e.db)
	userRepo := repositories.NewUserRepository(e.db)
	svc := services.NewJobService(e.db, jobRepo, profileRepo, userRepo, events.NoopBus{})
	return NewJobHandler(NewBaseHandler(validator.New()), svc)
}

func (e *handlerTestEnv) seedUser(t *testing.T, emailAddr string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		FirstName: "Test", LastName: "User",
		Email: emailAddr, PasswordHash: "hash",
		Role: role, Status: models.UserStatusActive,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *handlerTestEnv) seedTradesperson(t *testing.T, emailAddr string, credits int) *models.User {
	t.Helper()
	user := e.seedUser(t, emailAddr, models.UserRoleTradesperson)
	require.NoError(t, e.db.Create(&models.TradespersonProfile{
		UserID:  user.ID,
		Credits: credits,
	}).Error)
	return user
}

func (e *handlerTestEnv) seedJob(t *testing.T, customerID string) *models.Job {
	t.Helper()
	job := &models.Job{
		CustomerID: customerID,
		Title:      "Paint the hallway",
		Category:   "Painter",
		About:      "Two coats of paint for a long entrance hallway.",
		Location:   "York",
		Status:     models.JobStatusPending,
	}
	require.NoError(t, e.db.Create(job).Error)
	return job
}

func TestApplyEndpointReturnsRemainingCredits(t *testing.T) {
	env := newHandlerTestEnv(t)
	h := env.jobHandler()

	customer := env.seedUser(t, "customer@example.com", models.UserRoleCustomer)
	tp := env.seedTradesperson(t, "tp@example.com", 3)
	job := env.seedJob(t, customer.ID)

	r := gin.New()
	r.POST("/jobs/:id/apply", asUser(tp), h.Apply)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/jobs/%s/apply", job.ID), nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Message          string `json:"message"`
		RemainingCredits int    `json:"remainingCredits"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.RemainingCredits)
	assert.NotEmpty(t, body.Message)
}

func TestApplyEndpointErrorEnvelope(t *testing.T) {
	env := newHandlerTestEnv(t)
	h := env.jobHandler()

	customer := env.seedUser(t, "customer@example.com", models.UserRoleCustomer)
	job := env.seedJob(t, customer.ID)

	// заполняем работу до лимита
	for i := 0; i < models.MaxApplicantsPerJob; i++ {
		tp := env.seedTradesperson(t, fmt.Sprintf("tp%d@example.com", i), 1)
		r := gin.New()
		r.POST("/jobs/:id/apply", asUser(tp), h.Apply)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/jobs/%s/apply", job.ID), nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	late := env.seedTradesperson(t, "late@example.com", 1)
	r := gin.New()
	r.POST("/jobs/:id/apply", asUser(late), h.Apply)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/jobs/%s/apply", job.ID), nil))

	require.Equal(t, http.StatusConflict, w.Code)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "JOB_FULL", body.Error.Code)
	assert.Contains(t, body.Error.Message, "3")
}

func TestCreateJobEndpointValidatesBody(t *testing.T) {
	env := newHandlerTestEnv(t)
	h := env.jobHandler()
	customer := env.seedUser(t, "customer@example.com", models.UserRoleCustomer)

	r := gin.New()
	r.POST("/jobs", asUser(customer), h.Create)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(`{"jobTitle":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
}

func TestUpdateStatusEndpointRejectsInvalidTransition(t *testing.T) {
	env := newHandlerTestEnv(t)
	h := env.jobHandler()

	customer := env.seedUser(t, "customer@example.com", models.UserRoleCustomer)
	job := env.seedJob(t, customer.ID)

	r := gin.New()
	r.PATCH("/jobs/:id/status", asUser(customer), h.UpdateStatus)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch,
		fmt.Sprintf("/jobs/%s/status", job.ID),
		strings.NewReader(`{"status":"completed"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDecisionEndpointBindsStatusField(t *testing.T) {
	env := newHandlerTestEnv(t)
	h := env.jobHandler()

	customer := env.seedUser(t, "customer@example.com", models.UserRoleCustomer)
	tp := env.seedTradesperson(t, "tp@example.com", 1)
	job := env.seedJob(t, customer.ID)

	r := gin.New()
	r.POST("/jobs/:id/apply", asUser(tp), h.Apply)
	r.POST("/jobs/:id/applications/:applicantId/decision", asUser(customer), h.DecideApplicant)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/jobs/%s/apply", job.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var applicant models.JobApplicant
	require.NoError(t, env.db.First(&applicant, "job_id = ?", job.ID).Error)

	url := fmt.Sprintf("/jobs/%s/applications/%s/decision", job.ID, applicant.ID)

	// тело решения - {"status": ...}
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(`{"status":"accepted"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status                 string  `json:"status"`
		AssignedTradespersonID *string `json:"assignedTradespersonId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(models.JobStatusInProgress), body.Status)
	require.NotNil(t, body.AssignedTradespersonID)
	assert.Equal(t, tp.ID, *body.AssignedTradespersonID)

	// повторное принятие возвращает то же состояние
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, url, strings.NewReader(`{"status":"accepted"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// иные ключи тела не проходят валидацию
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, url, strings.NewReader(`{"decision":"accepted"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
