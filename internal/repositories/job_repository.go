package repositories

import (
	"errors"
	"strings"
	"time"

	"tradehub_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrApplicantNotFound = errors.New("applicant not found")
	ErrJobFull           = errors.New("job applicant list is full")
	ErrAlreadyApplied    = errors.New("tradesperson already applied for this job")
)

// JobFilter - критерии выборки списка работ
type JobFilter struct {
	Category  string
	Location  string
	Urgency   models.JobUrgency
	Status    models.JobStatus
	MinBudget *float64
	MaxBudget *float64
	Page      int
	PageSize  int
}

type JobRepository interface {
	Create(job *models.Job) error
	FindByID(id string) (*models.Job, error)
	Update(job *models.Job) error
	List(filter JobFilter) ([]models.Job, int64, error)
	ListByCustomer(customerID string) ([]models.Job, error)
	ListAppliedBy(tradespersonID string) ([]models.Job, error)

	FindApplicant(jobID, applicantID string) (*models.JobApplicant, error)
	CountApplicants(jobID string) (int64, error)

	// InsertApplicantGuarded вставляет заявку только если текущее число
	// заявок на работу меньше лимита. Проверка и вставка - одно SQL
	// выражение, выполняется внутри переданной транзакции.
	InsertApplicantGuarded(tx *gorm.DB, applicant *models.JobApplicant) error

	UpdateApplicant(tx *gorm.DB, applicant *models.JobApplicant) error
	AssignTradesperson(tx *gorm.DB, jobID, tradespersonID string) error
	UpdateStatus(jobID string, status models.JobStatus, completionDate *time.Time) error
}

type JobRepositoryImpl struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &JobRepositoryImpl{db: db}
}

func (r *JobRepositoryImpl) Create(job *models.Job) error {
	return r.db.Create(job).Error
}

func (r *JobRepositoryImpl) FindByID(id string) (*models.Job, error) {
	var job models.Job
	err := r.db.Preload("Applicants").Preload("Customer").First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepositoryImpl) Update(job *models.Job) error {
	return r.db.Save(job).Error
}

func (r *JobRepositoryImpl) List(filter JobFilter) ([]models.Job, int64, error) {
	query := r.db.Model(&models.Job{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(filter.Location)+"%")
	}
	if filter.Urgency != "" {
		query = query.Where("urgency = ?", filter.Urgency)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MinBudget != nil {
		query = query.Where("budget >= ?", *filter.MinBudget)
	}
	if filter.MaxBudget != nil {
		query = query.Where("budget <= ?", *filter.MaxBudget)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	var jobs []models.Job
	err := query.Preload("Customer").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&jobs).Error

	return jobs, total, err
}

func (r *JobRepositoryImpl) ListByCustomer(customerID string) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.Preload("Applicants").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

func (r *JobRepositoryImpl) ListAppliedBy(tradespersonID string) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.
		Joins("JOIN job_applicants ON job_applicants.job_id = jobs.id").
		Where("job_applicants.tradesperson_id = ?", tradespersonID).
		Order("jobs.created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

func (r *JobRepositoryImpl) FindApplicant(jobID, applicantID string) (*models.JobApplicant, error) {
	var applicant models.JobApplicant
	err := r.db.First(&applicant, "id = ? AND job_id = ?", applicantID, jobID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicantNotFound
		}
		return nil, err
	}
	return &applicant, nil
}

func (r *JobRepositoryImpl) CountApplicants(jobID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.JobApplicant{}).Where("job_id = ?", jobID).Count(&count).Error
	return count, err
}

func (r *JobRepositoryImpl) InsertApplicantGuarded(tx *gorm.DB, applicant *models.JobApplicant) error {
	if applicant.ID == "" {
		applicant.ID = uuid.NewString()
	}
	now := time.Now()

	// INSERT ... SELECT с охраной по COUNT: лимит проверяется тем же
	// выражением, что и вставка. Уникальный индекс (job_id,
	// tradesperson_id) закрывает повторные отклики.
	result := tx.Exec(`
		INSERT INTO job_applicants (id, created_at, updated_at, job_id, tradesperson_id, status, applied_at)
		SELECT ?, ?, ?, ?, ?, ?, ?
		WHERE (SELECT COUNT(*) FROM job_applicants WHERE job_id = ?) < ?`,
		applicant.ID, now, now, applicant.JobID, applicant.TradespersonID,
		applicant.Status, applicant.AppliedAt,
		applicant.JobID, models.MaxApplicantsPerJob,
	)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrAlreadyApplied
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobFull
	}
	return nil
}

func (r *JobRepositoryImpl) UpdateApplicant(tx *gorm.DB, applicant *models.JobApplicant) error {
	return tx.Save(applicant).Error
}

func (r *JobRepositoryImpl) AssignTradesperson(tx *gorm.DB, jobID, tradespersonID string) error {
	result := tx.Model(&models.Job{}).Where("id = ?", jobID).Updates(map[string]interface{}{
		"assigned_tradesperson_id": tradespersonID,
		"status":                   models.JobStatusInProgress,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *JobRepositoryImpl) UpdateStatus(jobID string, status models.JobStatus, completionDate *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if completionDate != nil {
		updates["completion_date"] = *completionDate
	}
	result := r.db.Model(&models.Job{}).Where("id = ?", jobID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}
