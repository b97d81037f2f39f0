package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"

	"tradehub_backend/internal/appErrors"
	"tradehub_backend/internal/logger"
	"tradehub_backend/internal/models"
	"tradehub_backend/internal/repositories"
	"tradehub_backend/internal/services/dto"
	"tradehub_backend/internal/storage"
)

type ProfileService interface {
	GetByUserID(userID string) (*dto.ProfileResponse, error)
	GetPublic(profileID string) (*dto.ProfileResponse, error)
	Update(userID string, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	Credits(userID string) (int, error)

	UploadDocument(ctx context.Context, userID, kind string, file *multipart.FileHeader) (*dto.ProfileResponse, error)
	AddGalleryImage(ctx context.Context, userID string, file *multipart.FileHeader) (*dto.ProfileResponse, error)
	RemoveGalleryImage(userID, imageURL string) (*dto.ProfileResponse, error)
}

type ProfileServiceImpl struct {
	profileRepo repositories.ProfileRepository
	store       storage.Storage
	baseURL     string
	log         *slog.Logger
}

func NewProfileService(profileRepo repositories.ProfileRepository, store storage.Storage, baseURL string) ProfileService {
	return &ProfileServiceImpl{
		profileRepo: profileRepo,
		store:       store,
		baseURL:     baseURL,
		log:         logger.GetLogger(),
	}
}

func (s *ProfileServiceImpl) GetByUserID(userID string) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		return nil, mapProfileError(err)
	}
	return toProfileResponse(profile, true), nil
}

func (s *ProfileServiceImpl) GetPublic(profileID string) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindByID(profileID)
	if err != nil {
		return nil, mapProfileError(err)
	}
	return toProfileResponse(profile, false), nil
}

func (s *ProfileServiceImpl) Update(userID string, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		return nil, mapProfileError(err)
	}

	if req.SelectedTrade != nil {
		profile.SelectedTrade = *req.SelectedTrade
	}
	if req.Experience != nil {
		profile.Experience = *req.Experience
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.CompanyName != nil {
		profile.CompanyName = *req.CompanyName
	}
	if req.CompanyRegistrationNumber != nil {
		profile.CompanyRegistrationNumber = *req.CompanyRegistrationNumber
	}
	if req.BusinessType != nil {
		profile.BusinessType = *req.BusinessType
	}
	if req.EmployeeCount != nil {
		profile.EmployeeCount = *req.EmployeeCount
	}
	if req.CompanyWebsiteURL != nil {
		profile.CompanyWebsiteURL = *req.CompanyWebsiteURL
	}
	if req.Skills != nil {
		profile.Skills = mustJSON(req.Skills)
	}
	if req.AddressLine1 != nil {
		profile.AddressLine1 = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		profile.AddressLine2 = *req.AddressLine2
	}
	if req.Town != nil {
		profile.Town = *req.Town
	}
	if req.Country != nil {
		profile.Country = *req.Country
	}
	if req.Postcode != nil {
		profile.Postcode = *req.Postcode
	}

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return toProfileResponse(profile, true), nil
}

func (s *ProfileServiceImpl) Credits(userID string) (int, error) {
	credits, err := s.profileRepo.Credits(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return 0, appErrors.ErrProfileNotFound
		}
		return 0, appErrors.InternalError(err)
	}
	return credits, nil
}

func (s *ProfileServiceImpl) UploadDocument(ctx context.Context, userID, kind string, file *multipart.FileHeader) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		return nil, mapProfileError(err)
	}

	var folder string
	switch kind {
	case "certification":
		folder = "certifications"
	case "insurance":
		folder = "insurance"
	default:
		return nil, appErrors.NewBadRequestError("Unknown document type")
	}

	obj, err := s.saveUpload(ctx, file, folder)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "certification":
		profile.CertificationImage = obj.URL
	case "insurance":
		profile.InsuranceImage = obj.URL
	}
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return toProfileResponse(profile, true), nil
}

func (s *ProfileServiceImpl) AddGalleryImage(ctx context.Context, userID string, file *multipart.FileHeader) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		return nil, mapProfileError(err)
	}

	obj, err := s.saveUpload(ctx, file, "gallery")
	if err != nil {
		return nil, err
	}

	images := fromJSON(profile.GalleryImages)
	images = append(images, obj.URL)
	profile.GalleryImages = mustJSON(images)

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, appErrors.InternalError(err)
	}
	return toProfileResponse(profile, true), nil
}

func (s *ProfileServiceImpl) RemoveGalleryImage(userID, imageURL string) (*dto.ProfileResponse, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		return nil, mapProfileError(err)
	}

	images := fromJSON(profile.GalleryImages)
	kept := images[:0]
	found := false
	for _, img := range images {
		if img == imageURL {
			found = true
			continue
		}
		kept = append(kept, img)
	}
	if !found {
		return nil, appErrors.NewNotFoundError("Image not found in gallery")
	}

	profile.GalleryImages = mustJSON(kept)
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, appErrors.InternalError(err)
	}

	// удаление объекта из хранилища - best effort
	if key, ok := storage.KeyFromURL(s.baseURL, imageURL); ok {
		if err := s.store.Delete(context.Background(), key); err != nil {
			s.log.Warn("failed to delete gallery object", "key", key, "error", err)
		}
	}
	return toProfileResponse(profile, true), nil
}

func (s *ProfileServiceImpl) saveUpload(ctx context.Context, file *multipart.FileHeader, folder string) (*storage.StoredObject, error) {
	src, err := file.Open()
	if err != nil {
		return nil, appErrors.NewBadRequestError("Cannot read uploaded file")
	}
	defer src.Close()

	buf := make([]byte, file.Size)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, appErrors.InternalError(err)
	}

	obj, err := storage.Store(ctx, s.store, storage.StoreInput{
		Bytes:       buf,
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
	}, folder)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return obj, nil
}

func toProfileResponse(p *models.TradespersonProfile, private bool) *dto.ProfileResponse {
	resp := &dto.ProfileResponse{
		ID:                 p.ID,
		UserID:             p.UserID,
		SelectedTrade:      p.SelectedTrade,
		Experience:         p.Experience,
		Bio:                p.Bio,
		CompanyName:        p.CompanyName,
		BusinessType:       p.BusinessType,
		EmployeeCount:      p.EmployeeCount,
		CompanyWebsiteURL:  p.CompanyWebsiteURL,
		CertificationImage: p.CertificationImage,
		InsuranceImage:     p.InsuranceImage,
		GalleryImages:      fromJSON(p.GalleryImages),
		Skills:             fromJSON(p.Skills),
		Town:               p.Town,
		Postcode:           p.Postcode,
		RatingAverage:      p.RatingAverage,
		RatingCount:        p.RatingCount,
	}
	if private {
		resp.Credits = p.Credits
		resp.SubscriptionPlan = p.SubscriptionPlan
		resp.SubscriptionStatus = string(p.SubscriptionStatus)
	}
	return resp
}

func mapProfileError(err error) *appErrors.AppError {
	if errors.Is(err, repositories.ErrProfileNotFound) {
		return appErrors.ErrProfileNotFound
	}
	return appErrors.InternalError(err)
}
