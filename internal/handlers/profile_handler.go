package handlers

import (
	"net/http"

	"tradehub_backend/internal/appErrors"
	"tradehub_backend/internal/services"
	"tradehub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// ограничение размера загружаемого файла
const maxUploadSize = 10 << 20 // 10 MB

type ProfileHandler struct {
	BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(base BaseHandler, profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{BaseHandler: base, profileService: profileService}
}

// GetMine godoc
// @Summary Current tradesperson profile
// @Tags profiles
// @Security BearerAuth
// @Router /profiles/me [get]
func (h *ProfileHandler) GetMine(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetByUserID(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetPublic godoc
// @Summary Public view of a tradesperson profile
// @Tags profiles
// @Router /profiles/{id} [get]
func (h *ProfileHandler) GetPublic(c *gin.Context) {
	profile, err := h.profileService.GetPublic(c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Update godoc
// @Summary Update current tradesperson profile
// @Tags profiles
// @Security BearerAuth
// @Router /profiles/me [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	profile, err := h.profileService.Update(userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Credits godoc
// @Summary Current credit balance
// @Tags profiles
// @Security BearerAuth
// @Router /profiles/me/credits [get]
func (h *ProfileHandler) Credits(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	credits, err := h.profileService.Credits(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CreditsResponse{Credits: credits})
}

// UploadDocument godoc
// @Summary Upload a certification or insurance document
// @Tags profiles
// @Accept multipart/form-data
// @Param kind path string true "certification or insurance"
// @Security BearerAuth
// @Router /profiles/me/documents/{kind} [post]
func (h *ProfileHandler) UploadDocument(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		appErrors.HandleError(c, appErrors.NewBadRequestError("File is required"))
		return
	}
	if file.Size > maxUploadSize {
		appErrors.HandleError(c, appErrors.NewBadRequestError("File exceeds maximum allowed size"))
		return
	}

	profile, err := h.profileService.UploadDocument(c.Request.Context(), userID, c.Param("kind"), file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// AddGalleryImage godoc
// @Summary Add an image to the work gallery
// @Tags profiles
// @Accept multipart/form-data
// @Security BearerAuth
// @Router /profiles/me/gallery [post]
func (h *ProfileHandler) AddGalleryImage(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		appErrors.HandleError(c, appErrors.NewBadRequestError("File is required"))
		return
	}
	if file.Size > maxUploadSize {
		appErrors.HandleError(c, appErrors.NewBadRequestError("File exceeds maximum allowed size"))
		return
	}

	profile, err := h.profileService.AddGalleryImage(c.Request.Context(), userID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// RemoveGalleryImage godoc
// @Summary Remove an image from the work gallery
// @Tags profiles
// @Security BearerAuth
// @Router /profiles/me/gallery [delete]
func (h *ProfileHandler) RemoveGalleryImage(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	var req struct {
		URL string `json:"url" validate:"required,url"`
	}
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	profile, err := h.profileService.RemoveGalleryImage(userID, req.URL)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
