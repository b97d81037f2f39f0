package handlers

import (
	"net/http"

	"tradehub_backend/internal/middleware"
	"tradehub_backend/internal/models"
	"tradehub_backend/internal/services"
	"tradehub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	BaseHandler
	jobService services.JobService
}

func NewJobHandler(base BaseHandler, jobService services.JobService) *JobHandler {
	return &JobHandler{BaseHandler: base, jobService: jobService}
}

// Create godoc
// @Summary Post a new job
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body dto.CreateJobRequest true "Job data"
// @Success 201 {object} dto.JobResponse
// @Security BearerAuth
// @Router /jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	job, err := h.jobService.Create(userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// List godoc
// @Summary Browse jobs with filters
// @Tags jobs
// @Produce json
// @Success 200 {object} dto.JobListResponse
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	var q dto.JobListQuery
	if !h.BindAndValidateQuery(c, &q) {
		return
	}

	resp, err := h.jobService.List(q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get a single job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} dto.JobResponse
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	viewerID, _ := middleware.GetUserID(c)
	job, err := h.jobService.GetByID(c.Param("id"), viewerID, middleware.GetUserRole(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Update godoc
// @Summary Edit a pending job
// @Tags jobs
// @Security BearerAuth
// @Router /jobs/{id} [put]
func (h *JobHandler) Update(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateJobRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	job, err := h.jobService.Update(c.Param("id"), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// MyJobs godoc
// @Summary Jobs posted by the current customer
// @Tags jobs
// @Security BearerAuth
// @Router /jobs/mine [get]
func (h *JobHandler) MyJobs(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.ListByCustomer(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// AppliedJobs godoc
// @Summary Jobs the current tradesperson applied for
// @Tags jobs
// @Security BearerAuth
// @Router /jobs/applied [get]
func (h *JobHandler) AppliedJobs(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.ListAppliedBy(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// Apply godoc
// @Summary Apply for a job (deducts one credit)
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} dto.ApplyResponse
// @Security BearerAuth
// @Router /jobs/{id}/apply [post]
func (h *JobHandler) Apply(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	resp, err := h.jobService.Apply(c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DecideApplicant godoc
// @Summary Accept or reject a job applicant
// @Tags jobs
// @Param id path string true "Job ID"
// @Param applicantId path string true "Applicant ID"
// @Security BearerAuth
// @Router /jobs/{id}/applications/{applicantId}/decision [post]
func (h *JobHandler) DecideApplicant(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.DecideApplicantRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	job, err := h.jobService.DecideApplicant(
		c.Param("id"),
		c.Param("applicantId"),
		userID,
		models.ApplicantStatus(req.Status),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// UpdateStatus godoc
// @Summary Transition job status
// @Tags jobs
// @Param id path string true "Job ID"
// @Security BearerAuth
// @Router /jobs/{id}/status [patch]
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateJobStatusRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	job, err := h.jobService.UpdateStatus(c.Param("id"), userID, models.JobStatus(req.Status))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
