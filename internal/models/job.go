package models

import (
	"time"

	"gorm.io/datatypes"
)

// MaxApplicantsPerJob - жесткий лимит заявок на одну работу
const MaxApplicantsPerJob = 3

type Job struct {
	BaseModel
	CustomerID string `gorm:"not null;index" json:"customerId"`

	Title    string         `gorm:"not null" json:"jobTitle"`
	Category string         `gorm:"not null;index" json:"jobCategory"`
	About    string         `gorm:"not null" json:"jobAbout"`
	Location string         `gorm:"not null" json:"jobLocation"`
	Deadline *time.Time     `json:"jobDeadline,omitempty"`
	Urgency  JobUrgency     `gorm:"type:varchar(10);default:'Medium'" json:"jobUrgency"`
	Images   datatypes.JSON `gorm:"type:jsonb" json:"jobImages"`
	Status   JobStatus      `gorm:"type:varchar(20);default:'pending';index" json:"jobStatus"`

	Budget       float64        `json:"budget"`
	Requirements datatypes.JSON `gorm:"type:jsonb" json:"requirements"`

	AssignedTradespersonID *string    `gorm:"index" json:"assignedTradesperson,omitempty"`
	CompletionDate         *time.Time `json:"completionDate,omitempty"`

	Customer   *User          `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Applicants []JobApplicant `gorm:"foreignKey:JobID" json:"applicants,omitempty"`
}

// JobApplicant - строка заявки. В исходной системе заявки были вложенным
// списком в документе работы; реляционная таблица позволяет атомарно
// держать лимит и уникальность (job, tradesperson).
type JobApplicant struct {
	BaseModel
	JobID          string          `gorm:"not null;index:idx_job_tradesperson,unique" json:"jobId"`
	TradespersonID string          `gorm:"not null;index:idx_job_tradesperson,unique" json:"tradesPerson"`
	Status         ApplicantStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	AppliedAt      time.Time       `gorm:"not null" json:"appliedAt"`

	Tradesperson *User `gorm:"foreignKey:TradespersonID" json:"tradespersonUser,omitempty"`
}
