package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tradehub_backend/internal/appErrors"
	"tradehub_backend/internal/events"
	"tradehub_backend/internal/logger"
	"tradehub_backend/internal/models"
	"tradehub_backend/internal/repositories"
	"tradehub_backend/internal/services/dto"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// число повторов транзакции отклика при конфликте сериализации
const applyRetries = 3

type JobService interface {
	Create(customerID string, req dto.CreateJobRequest) (*dto.JobResponse, error)
	GetByID(id string, viewerID string, viewerRole models.UserRole) (*dto.JobResponse, error)
	Update(jobID, customerID string, req dto.UpdateJobRequest) (*dto.JobResponse, error)
	List(q dto.JobListQuery) (*dto.JobListResponse, error)
	ListByCustomer(customerID string) ([]dto.JobResponse, error)
	ListAppliedBy(tradespersonID string) ([]dto.JobResponse, error)

	// Apply - основной сценарий: мастер откликается на работу,
	// списывается один кредит. Все проверки и записи - одна транзакция.
	Apply(jobID, tradespersonID string) (*dto.ApplyResponse, error)

	// DecideApplicant - заказчик принимает или отклоняет заявку.
	// Принятие назначает мастера и переводит работу в inProgress.
	DecideApplicant(jobID, applicantID, customerID string, decision models.ApplicantStatus) (*dto.JobResponse, error)

	UpdateStatus(jobID, customerID string, target models.JobStatus) (*dto.JobResponse, error)
}

type JobServiceImpl struct {
	db          *gorm.DB
	jobRepo     repositories.JobRepository
	profileRepo repositories.ProfileRepository
	userRepo    repositories.UserRepository
	bus         events.EventBus
	log         *slog.Logger
}

func NewJobService(
	db *gorm.DB,
	jobRepo repositories.JobRepository,
	profileRepo repositories.ProfileRepository,
	userRepo repositories.UserRepository,
	bus events.EventBus,
) JobService {
	return &JobServiceImpl{
		db:          db,
		jobRepo:     jobRepo,
		profileRepo: profileRepo,
		userRepo:    userRepo,
		bus:         bus,
		log:         logger.GetLogger(),
	}
}

func (s *JobServiceImpl) Create(customerID string, req dto.CreateJobRequest) (*dto.JobResponse, error) {
	urgency := models.JobUrgencyMedium
	if req.Urgency != "" {
		urgency = models.JobUrgency(req.Urgency)
	}

	job := &models.Job{
		CustomerID: customerID,
		Title:      req.JobTitle,
		Category:   req.JobCategory,
		About:      req.JobAbout,
		Location:   req.JobLocation,
		Deadline:   req.Deadline,
		Urgency:    urgency,
		Status:     models.JobStatusPending,
	}
	if req.Budget != nil {
		job.Budget = *req.Budget
	}
	if len(req.Images) > 0 {
		job.Images = mustJSON(req.Images)
	}
	if len(req.Requirements) > 0 {
		job.Requirements = mustJSON(req.Requirements)
	}

	if err := s.jobRepo.Create(job); err != nil {
		return nil, appErrors.InternalError(err)
	}

	s.publish(events.SubjectJobCreated, events.JobEvent{
		JobID:      job.ID,
		JobTitle:   job.Title,
		Category:   job.Category,
		CustomerID: job.CustomerID,
	})

	return s.toResponse(job, true), nil
}

func (s *JobServiceImpl) GetByID(id string, viewerID string, viewerRole models.UserRole) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(id)
	if err != nil {
		return nil, mapJobError(err)
	}
	// список заявок виден только владельцу работы и админу
	withApplicants := viewerRole == models.UserRoleAdmin || viewerID == job.CustomerID
	return s.toResponse(job, withApplicants), nil
}

func (s *JobServiceImpl) Update(jobID, customerID string, req dto.UpdateJobRequest) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, mapJobError(err)
	}
	if job.CustomerID != customerID {
		return nil, appErrors.NewForbiddenError("You can only edit your own jobs")
	}
	if job.Status != models.JobStatusPending {
		return nil, appErrors.NewConflictError("Only pending jobs can be edited")
	}

	if req.JobTitle != nil {
		job.Title = *req.JobTitle
	}
	if req.JobAbout != nil {
		job.About = *req.JobAbout
	}
	if req.JobLocation != nil {
		job.Location = *req.JobLocation
	}
	if req.Deadline != nil {
		job.Deadline = req.Deadline
	}
	if req.Urgency != nil {
		job.Urgency = models.JobUrgency(*req.Urgency)
	}
	if req.Budget != nil {
		job.Budget = *req.Budget
	}
	if req.Requirements != nil {
		job.Requirements = mustJSON(req.Requirements)
	}

	if err := s.jobRepo.Update(job); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return s.toResponse(job, true), nil
}

func (s *JobServiceImpl) List(q dto.JobListQuery) (*dto.JobListResponse, error) {
	filter := repositories.JobFilter{
		Category:  q.Category,
		Location:  q.Location,
		Urgency:   models.JobUrgency(q.Urgency),
		Status:    models.JobStatus(q.Status),
		MinBudget: q.MinBudget,
		MaxBudget: q.MaxBudget,
		Page:      q.Page,
		PageSize:  q.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}

	jobs, total, err := s.jobRepo.List(filter)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	out := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, *s.toResponse(&jobs[i], false))
	}
	return &dto.JobListResponse{
		Jobs:     out,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (s *JobServiceImpl) ListByCustomer(customerID string) ([]dto.JobResponse, error) {
	jobs, err := s.jobRepo.ListByCustomer(customerID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	out := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, *s.toResponse(&jobs[i], true))
	}
	return out, nil
}

func (s *JobServiceImpl) ListAppliedBy(tradespersonID string) ([]dto.JobResponse, error) {
	jobs, err := s.jobRepo.ListAppliedBy(tradespersonID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	out := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, *s.toResponse(&jobs[i], false))
	}
	return out, nil
}

func (s *JobServiceImpl) Apply(jobID, tradespersonID string) (*dto.ApplyResponse, error) {
	// проверки вне транзакции: роль, статус работы, свой job.
	// Повторяются охранными условиями внутри транзакции - здесь
	// они только дают ранний понятный отказ.
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, mapJobError(err)
	}
	if job.Status != models.JobStatusPending {
		return nil, appErrors.ErrJobNotOpen
	}
	if job.CustomerID == tradespersonID {
		return nil, appErrors.NewForbiddenError("You cannot apply for your own job")
	}
	if _, err := s.profileRepo.FindByUserID(tradespersonID); err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, appErrors.ErrProfileNotFound
		}
		return nil, appErrors.InternalError(err)
	}

	var lastErr error
	for attempt := 0; attempt < applyRetries; attempt++ {
		// сериализуемая изоляция: два одновременных отклика на одну
		// работу не проходят COUNT-охрану оба, проигравший получает
		// ошибку сериализации и попытка повторяется
		err = s.db.Transaction(func(tx *gorm.DB) error {
			// статус перечитывается в транзакции: работа могла
			// закрыться между предварительной проверкой и записью
			var current struct{ Status models.JobStatus }
			if err := tx.Model(&models.Job{}).Select("status").Where("id = ?", jobID).First(&current).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return repositories.ErrJobNotFound
				}
				return err
			}
			if current.Status != models.JobStatusPending {
				return appErrors.ErrJobNotOpen
			}

			applicant := &models.JobApplicant{
				JobID:          jobID,
				TradespersonID: tradespersonID,
				Status:         models.ApplicantStatusPending,
				AppliedAt:      time.Now(),
			}
			if err := s.jobRepo.InsertApplicantGuarded(tx, applicant); err != nil {
				return err
			}
			// кредит списывается после успешной вставки: откат
			// транзакции возвращает обе записи разом
			return s.profileRepo.DebitCredit(tx, tradespersonID)
		}, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err == nil {
			break
		}
		lastErr = err
		if !isRetryableTxError(err) {
			break
		}
	}
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrJobFull):
			return nil, appErrors.ErrJobFull
		case errors.Is(err, repositories.ErrAlreadyApplied):
			return nil, appErrors.ErrAlreadyApplied
		case errors.Is(err, repositories.ErrInsufficientCredits):
			return nil, appErrors.ErrInsufficientCredits
		case errors.Is(err, repositories.ErrJobNotFound):
			return nil, appErrors.ErrJobNotFound
		default:
			var appErr *appErrors.AppError
			if errors.As(err, &appErr) {
				return nil, appErr
			}
			if isRetryableTxError(lastErr) {
				return nil, appErrors.ErrConcurrentConflict
			}
			return nil, appErrors.InternalError(err)
		}
	}

	remaining, err := s.profileRepo.Credits(tradespersonID)
	if err != nil {
		s.log.Warn("failed to read credit balance after apply", "error", err)
	}

	s.publish(events.SubjectJobApplied, events.JobEvent{
		JobID:          job.ID,
		JobTitle:       job.Title,
		Category:       job.Category,
		CustomerID:     job.CustomerID,
		TradespersonID: tradespersonID,
	})

	return &dto.ApplyResponse{
		Message:          "Application submitted successfully",
		RemainingCredits: remaining,
	}, nil
}

func (s *JobServiceImpl) DecideApplicant(jobID, applicantID, customerID string, decision models.ApplicantStatus) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, mapJobError(err)
	}
	if job.CustomerID != customerID {
		return nil, appErrors.NewForbiddenError("You can only manage applicants of your own jobs")
	}

	applicant, err := s.jobRepo.FindApplicant(jobID, applicantID)
	if err != nil {
		return nil, mapJobError(err)
	}
	if applicant.Status != models.ApplicantStatusPending {
		// повторное принятие того же мастера идемпотентно:
		// состояние уже целевое, возвращается как есть
		if applicant.Status == decision && decision == models.ApplicantStatusAccepted {
			return s.toResponse(job, true), nil
		}
		return nil, appErrors.NewConflictError("Applicant has already been decided")
	}

	switch decision {
	case models.ApplicantStatusAccepted:
		if job.Status != models.JobStatusPending {
			return nil, appErrors.NewConflictError("Job already has an assigned tradesperson")
		}
		err = s.db.Transaction(func(tx *gorm.DB) error {
			applicant.Status = models.ApplicantStatusAccepted
			if err := s.jobRepo.UpdateApplicant(tx, applicant); err != nil {
				return err
			}
			// остальные ожидающие заявки отклоняются
			if err := tx.Model(&models.JobApplicant{}).
				Where("job_id = ? AND id != ? AND status = ?", jobID, applicant.ID, models.ApplicantStatusPending).
				Update("status", models.ApplicantStatusRejected).Error; err != nil {
				return err
			}
			return s.jobRepo.AssignTradesperson(tx, jobID, applicant.TradespersonID)
		})
	case models.ApplicantStatusRejected:
		applicant.Status = models.ApplicantStatusRejected
		err = s.jobRepo.UpdateApplicant(s.db, applicant)
	default:
		return nil, appErrors.NewBadRequestError("Decision must be accepted or rejected")
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	s.publish(events.SubjectJobDecided, events.JobEvent{
		JobID:          job.ID,
		JobTitle:       job.Title,
		CustomerID:     job.CustomerID,
		TradespersonID: applicant.TradespersonID,
		Decision:       string(decision),
	})

	job, err = s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, mapJobError(err)
	}
	return s.toResponse(job, true), nil
}

func (s *JobServiceImpl) UpdateStatus(jobID, customerID string, target models.JobStatus) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, mapJobError(err)
	}
	if job.CustomerID != customerID {
		return nil, appErrors.NewForbiddenError("You can only manage your own jobs")
	}
	if !models.CanTransitionJob(job.Status, target) {
		return nil, appErrors.ErrInvalidTransition.WithDetails(map[string]string{
			"from": string(job.Status),
			"to":   string(target),
		})
	}

	var completion *time.Time
	if target == models.JobStatusCompleted {
		now := time.Now()
		completion = &now
	}
	if err := s.jobRepo.UpdateStatus(jobID, target, completion); err != nil {
		return nil, appErrors.InternalError(err)
	}

	job.Status = target
	job.CompletionDate = completion
	return s.toResponse(job, true), nil
}

func (s *JobServiceImpl) publish(subject string, ev events.JobEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(context.Background(), subject, ev); err != nil {
		s.log.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func (s *JobServiceImpl) toResponse(job *models.Job, withApplicants bool) *dto.JobResponse {
	resp := &dto.JobResponse{
		ID:                     job.ID,
		CustomerID:             job.CustomerID,
		JobTitle:               job.Title,
		JobCategory:            job.Category,
		JobAbout:               job.About,
		JobLocation:            job.Location,
		Deadline:               job.Deadline,
		Urgency:                string(job.Urgency),
		Status:                 string(job.Status),
		AssignedTradespersonID: job.AssignedTradespersonID,
		CompletionDate:         job.CompletionDate,
		ApplicantCount:         len(job.Applicants),
		CreatedAt:              job.CreatedAt,
	}
	if job.Budget > 0 {
		b := job.Budget
		resp.Budget = &b
	}
	resp.Images = fromJSON(job.Images)
	resp.Requirements = fromJSON(job.Requirements)

	if withApplicants {
		for _, a := range job.Applicants {
			ar := dto.ApplicantResponse{
				ID:             a.ID,
				TradespersonID: a.TradespersonID,
				Status:         string(a.Status),
				AppliedAt:      a.AppliedAt,
			}
			if a.Tradesperson != nil {
				ar.Name = a.Tradesperson.FirstName + " " + a.Tradesperson.LastName
			}
			resp.Applicants = append(resp.Applicants, ar)
		}
	}
	return resp
}

func mapJobError(err error) *appErrors.AppError {
	switch {
	case errors.Is(err, repositories.ErrJobNotFound):
		return appErrors.ErrJobNotFound
	case errors.Is(err, repositories.ErrApplicantNotFound):
		return appErrors.ErrApplicantNotFound
	default:
		return appErrors.InternalError(err)
	}
}

// isRetryableTxError - конфликты сериализации/блокировок, которые имеет
// смысл повторить. Доменные отказы (лимит, дубль, кредиты) не повторяются.
func isRetryableTxError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, repositories.ErrJobFull) ||
		errors.Is(err, repositories.ErrAlreadyApplied) ||
		errors.Is(err, repositories.ErrInsufficientCredits) ||
		errors.Is(err, repositories.ErrJobNotFound) {
		return false
	}
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"deadlock", "could not serialize", "database is locked"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func mustJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func fromJSON(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
