package dto

import "time"

type CreateJobRequest struct {
	JobTitle     string     `json:"jobTitle" validate:"required,min=3,max=200"`
	JobCategory  string     `json:"jobCategory" validate:"required"`
	JobAbout     string     `json:"jobAbout" validate:"required,min=10,max=5000"`
	JobLocation  string     `json:"jobLocation" validate:"required,max=200"`
	Deadline     *time.Time `json:"deadline" validate:"omitempty"`
	Urgency      string     `json:"urgency" validate:"omitempty,is-job-urgency"`
	Budget       *float64   `json:"budget" validate:"omitempty,min=0"`
	Images       []string   `json:"images" validate:"omitempty,max=10,dive,url"`
	Requirements []string   `json:"requirements" validate:"omitempty,max=20"`
}

type UpdateJobRequest struct {
	JobTitle     *string    `json:"jobTitle" validate:"omitempty,min=3,max=200"`
	JobAbout     *string    `json:"jobAbout" validate:"omitempty,min=10,max=5000"`
	JobLocation  *string    `json:"jobLocation" validate:"omitempty,max=200"`
	Deadline     *time.Time `json:"deadline" validate:"omitempty"`
	Urgency      *string    `json:"urgency" validate:"omitempty,is-job-urgency"`
	Budget       *float64   `json:"budget" validate:"omitempty,min=0"`
	Requirements []string   `json:"requirements" validate:"omitempty,max=20"`
}

type JobListQuery struct {
	Category  string   `form:"category"`
	Location  string   `form:"location"`
	Urgency   string   `form:"urgency" validate:"omitempty,is-job-urgency"`
	Status    string   `form:"status" validate:"omitempty,is-job-status"`
	MinBudget *float64 `form:"minBudget" validate:"omitempty,min=0"`
	MaxBudget *float64 `form:"maxBudget" validate:"omitempty,min=0"`
	Page      int      `form:"page" validate:"omitempty,min=1"`
	PageSize  int      `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type UpdateJobStatusRequest struct {
	Status string `json:"status" validate:"required,is-job-status"`
}

type DecideApplicantRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

type ApplyResponse struct {
	Message          string `json:"message"`
	RemainingCredits int    `json:"remainingCredits"`
}

type ApplicantResponse struct {
	ID             string    `json:"id"`
	TradespersonID string    `json:"tradespersonId"`
	Status         string    `json:"status"`
	AppliedAt      time.Time `json:"appliedAt"`
	Name           string    `json:"name,omitempty"`
}

type JobResponse struct {
	ID                     string              `json:"id"`
	CustomerID             string              `json:"customerId"`
	JobTitle               string              `json:"jobTitle"`
	JobCategory            string              `json:"jobCategory"`
	JobAbout               string              `json:"jobAbout"`
	JobLocation            string              `json:"jobLocation"`
	Deadline               *time.Time          `json:"deadline,omitempty"`
	Urgency                string              `json:"urgency"`
	Status                 string              `json:"status"`
	Budget                 *float64            `json:"budget,omitempty"`
	Images                 []string            `json:"images,omitempty"`
	Requirements           []string            `json:"requirements,omitempty"`
	AssignedTradespersonID *string             `json:"assignedTradespersonId,omitempty"`
	CompletionDate         *time.Time          `json:"completionDate,omitempty"`
	Applicants             []ApplicantResponse `json:"applicants,omitempty"`
	ApplicantCount         int                 `json:"applicantCount"`
	CreatedAt              time.Time           `json:"createdAt"`
}

type JobListResponse struct {
	Jobs     []JobResponse `json:"jobs"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}
