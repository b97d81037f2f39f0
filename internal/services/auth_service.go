package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tradehub_backend/internal/appErrors"
	"tradehub_backend/internal/auth"
	"tradehub_backend/internal/config"
	"tradehub_backend/internal/email"
	"tradehub_backend/internal/logger"
	"tradehub_backend/internal/models"
	"tradehub_backend/internal/repositories"
	"tradehub_backend/internal/services/dto"
)

const (
	maxLoginAttempts   = 5
	loginLockDuration  = time.Hour
	verificationExpiry = 24 * time.Hour
	resetExpiry        = time.Hour
)

type AuthService interface {
	RegisterCustomer(req dto.RegisterCustomerRequest) (*dto.UserResponse, error)
	RegisterTradesperson(req dto.RegisterTradespersonRequest) (*dto.UserResponse, error)
	Login(req dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(refreshToken string) (*dto.AuthResponse, error)
	Logout(refreshToken string) error
	VerifyEmail(token string) error
	ResendVerification(email string) error
	ForgotPassword(email string) error
	ResetPassword(token, newPassword string) error
	CurrentUser(userID string) (*dto.UserResponse, error)

	// admin operations
	ChangeUserStatus(userID string, status models.UserStatus) error
	ListUsers(page, pageSize int) ([]dto.UserResponse, int64, error)
	EnsureAdmin(adminEmail, adminPassword string) error
}

type AuthServiceImpl struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	tradeRepo   repositories.TradeRepository
	tokenRepo   repositories.RefreshTokenRepository
	mailer      email.Provider
	log         *slog.Logger
}

func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	tradeRepo repositories.TradeRepository,
	tokenRepo repositories.RefreshTokenRepository,
	mailer email.Provider,
) AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		tradeRepo:   tradeRepo,
		tokenRepo:   tokenRepo,
		mailer:      mailer,
		log:         logger.GetLogger(),
	}
}

func (s *AuthServiceImpl) RegisterCustomer(req dto.RegisterCustomerRequest) (*dto.UserResponse, error) {
	user, err := s.createUser(req.FirstName, req.LastName, req.Email, req.Phone, req.Postcode, req.Password, models.UserRoleCustomer)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *AuthServiceImpl) RegisterTradesperson(req dto.RegisterTradespersonRequest) (*dto.UserResponse, error) {
	// ремесло должно существовать в каталоге
	trade, err := s.tradeRepo.FindByName(req.SelectedTrade)
	if err != nil {
		if errors.Is(err, repositories.ErrTradeNotFound) {
			return nil, appErrors.ErrTradeNotFound
		}
		return nil, appErrors.InternalError(err)
	}
	if !trade.IsActive {
		return nil, appErrors.NewBadRequestError("Selected trade is not available")
	}

	user, err := s.createUser(req.FirstName, req.LastName, req.Email, req.Phone, req.Postcode, req.Password, models.UserRoleTradesperson)
	if err != nil {
		return nil, err
	}

	profile := &models.TradespersonProfile{
		UserID:        user.ID,
		SelectedTrade: trade.Name,
		Experience:    req.Experience,
		CompanyName:   req.CompanyName,
		BusinessType:  req.BusinessType,
		Postcode:      req.Postcode,
	}
	if err := s.profileRepo.Create(profile); err != nil {
		s.log.Error("failed to create tradesperson profile", "userId", user.ID, "error", err)
		return nil, appErrors.InternalError(err)
	}
	return toUserResponse(user), nil
}

func (s *AuthServiceImpl) createUser(firstName, lastName, emailAddr, phone, postcode, password string, role models.UserRole) (*models.User, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return nil, appErrors.ErrWeakPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	verifyExpires := time.Now().Add(verificationExpiry)
	user := &models.User{
		FirstName:           firstName,
		LastName:            lastName,
		Email:               emailAddr,
		Phone:               phone,
		Postcode:            postcode,
		PasswordHash:        hash,
		Role:                role,
		Status:              models.UserStatusPending,
		VerificationToken:   auth.GenerateRandomToken(),
		VerificationExpires: &verifyExpires,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, appErrors.ErrEmailAlreadyExists
		}
		return nil, appErrors.InternalError(err)
	}

	s.sendVerificationEmail(user)
	return user, nil
}

func (s *AuthServiceImpl) sendVerificationEmail(user *models.User) {
	cfg := config.GetConfig()
	link := fmt.Sprintf("%s/verify-email?token=%s", cfg.Frontend.BaseURL, user.VerificationToken)
	err := s.mailer.SendTemplate(user.Email, email.TemplateVerification, email.TemplateData{
		"Name": user.FirstName,
		"Link": link,
	})
	if err != nil {
		// письмо не блокирует регистрацию
		s.log.Warn("failed to send verification email", "userId", user.ID, "error", err)
	}
}

func (s *AuthServiceImpl) Login(req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.InternalError(err)
	}

	if user.IsLocked() {
		return nil, appErrors.ErrAccountLocked
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		var lockUntil *time.Time
		if user.LoginAttempts+1 >= maxLoginAttempts {
			until := time.Now().Add(loginLockDuration)
			lockUntil = &until
		}
		if err := s.userRepo.RegisterFailedLogin(user.ID, lockUntil); err != nil {
			s.log.Error("failed to register failed login", "userId", user.ID, "error", err)
		}
		if lockUntil != nil {
			return nil, appErrors.ErrAccountLocked
		}
		return nil, appErrors.ErrInvalidCredentials
	}

	switch user.Status {
	case models.UserStatusActive:
		// ok
	case models.UserStatusPending, models.UserStatusNotVerified:
		return nil, appErrors.ErrUserNotVerified
	case models.UserStatusSuspended:
		return nil, appErrors.ErrUserSuspended
	default:
		return nil, appErrors.ErrUserSuspended
	}

	if err := s.userRepo.ResetLoginAttempts(user.ID); err != nil {
		s.log.Error("failed to reset login attempts", "userId", user.ID, "error", err)
	}

	return s.issueTokens(user)
}

func (s *AuthServiceImpl) issueTokens(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	cfg := config.GetConfig()
	refresh := &models.RefreshToken{
		UserID:    user.ID,
		Token:     auth.GenerateRandomToken(),
		ExpiresAt: time.Now().Add(time.Duration(cfg.JWT.RefreshTTL) * time.Hour),
	}
	if err := s.tokenRepo.Create(refresh); err != nil {
		return nil, appErrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		User:         *toUserResponse(user),
	}, nil
}

func (s *AuthServiceImpl) Refresh(refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.tokenRepo.Find(refreshToken)
	if err != nil {
		return nil, appErrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(stored.UserID)
	if err != nil {
		return nil, appErrors.ErrInvalidToken
	}
	if user.Status != models.UserStatusActive {
		return nil, appErrors.ErrUserSuspended
	}

	// ротация: старый refresh-токен отзывается
	if err := s.tokenRepo.Delete(refreshToken); err != nil {
		s.log.Warn("failed to delete rotated refresh token", "error", err)
	}
	return s.issueTokens(user)
}

func (s *AuthServiceImpl) Logout(refreshToken string) error {
	if err := s.tokenRepo.Delete(refreshToken); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil
		}
		return appErrors.InternalError(err)
	}
	return nil
}

func (s *AuthServiceImpl) VerifyEmail(token string) error {
	user, err := s.userRepo.FindByVerificationToken(token)
	if err != nil {
		return appErrors.ErrInvalidToken
	}

	user.EmailVerified = true
	user.Status = models.UserStatusActive
	user.VerificationToken = ""
	user.VerificationExpires = nil
	if err := s.userRepo.Update(user); err != nil {
		return appErrors.InternalError(err)
	}

	if err := s.mailer.SendTemplate(user.Email, email.TemplateWelcome, email.TemplateData{
		"Name": user.FirstName,
	}); err != nil {
		s.log.Warn("failed to send welcome email", "userId", user.ID, "error", err)
	}
	return nil
}

func (s *AuthServiceImpl) ResendVerification(emailAddr string) error {
	user, err := s.userRepo.FindByEmail(emailAddr)
	if err != nil {
		// не раскрываем, существует ли адрес
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return appErrors.InternalError(err)
	}
	if user.EmailVerified {
		return nil
	}

	verifyExpires := time.Now().Add(verificationExpiry)
	user.VerificationToken = auth.GenerateRandomToken()
	user.VerificationExpires = &verifyExpires
	if err := s.userRepo.Update(user); err != nil {
		return appErrors.InternalError(err)
	}

	s.sendVerificationEmail(user)
	return nil
}

func (s *AuthServiceImpl) CurrentUser(userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, appErrors.ErrUserNotFound
		}
		return nil, appErrors.InternalError(err)
	}
	return toUserResponse(user), nil
}

func (s *AuthServiceImpl) ForgotPassword(emailAddr string) error {
	user, err := s.userRepo.FindByEmail(emailAddr)
	if err != nil {
		// не раскрываем, существует ли адрес
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return appErrors.InternalError(err)
	}

	expires := time.Now().Add(resetExpiry)
	user.ResetToken = auth.GenerateRandomToken()
	user.ResetExpires = &expires
	if err := s.userRepo.Update(user); err != nil {
		return appErrors.InternalError(err)
	}

	cfg := config.GetConfig()
	link := fmt.Sprintf("%s/reset-password?token=%s", cfg.Frontend.BaseURL, user.ResetToken)
	if err := s.mailer.SendTemplate(user.Email, email.TemplatePasswordReset, email.TemplateData{
		"Name": user.FirstName,
		"Link": link,
	}); err != nil {
		s.log.Warn("failed to send password reset email", "userId", user.ID, "error", err)
	}
	return nil
}

func (s *AuthServiceImpl) ResetPassword(token, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return appErrors.ErrWeakPassword
	}

	user, err := s.userRepo.FindByResetToken(token)
	if err != nil {
		return appErrors.ErrInvalidToken
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return appErrors.InternalError(err)
	}

	user.PasswordHash = hash
	user.ResetToken = ""
	user.ResetExpires = nil
	user.LoginAttempts = 0
	user.LockUntil = nil
	if err := s.userRepo.Update(user); err != nil {
		return appErrors.InternalError(err)
	}

	// все сессии пользователя сбрасываются
	if err := s.tokenRepo.DeleteByUser(user.ID); err != nil {
		s.log.Warn("failed to revoke refresh tokens after password reset", "userId", user.ID, "error", err)
	}
	return nil
}

func (s *AuthServiceImpl) ChangeUserStatus(userID string, status models.UserStatus) error {
	if !models.ValidUserStatus(status) {
		return appErrors.NewBadRequestError("Invalid user status")
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return appErrors.ErrUserNotFound
		}
		return appErrors.InternalError(err)
	}
	if user.Status != status && !models.CanTransitionUser(user.Status, status) {
		return appErrors.ErrInvalidTransition.WithDetails(map[string]string{
			"from": string(user.Status),
			"to":   string(status),
		})
	}
	if err := s.userRepo.UpdateStatus(userID, status); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return appErrors.ErrUserNotFound
		}
		return appErrors.InternalError(err)
	}
	if status == models.UserStatusSuspended || status == models.UserStatusInactive {
		if err := s.tokenRepo.DeleteByUser(userID); err != nil {
			s.log.Warn("failed to revoke tokens for deactivated user", "userId", userID, "error", err)
		}
	}
	return nil
}

func (s *AuthServiceImpl) ListUsers(page, pageSize int) ([]dto.UserResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	users, err := s.userRepo.FindAll(pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, appErrors.InternalError(err)
	}
	total, err := s.userRepo.CountAll()
	if err != nil {
		return nil, 0, appErrors.InternalError(err)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *toUserResponse(&users[i]))
	}
	return out, total, nil
}

// EnsureAdmin создает admin-пользователя при первом старте
func (s *AuthServiceImpl) EnsureAdmin(adminEmail, adminPassword string) error {
	if adminEmail == "" || adminPassword == "" {
		return nil
	}
	if _, err := s.userRepo.FindByEmail(adminEmail); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return err
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}
	admin := &models.User{
		FirstName:     "Admin",
		LastName:      "User",
		Email:         adminEmail,
		PasswordHash:  hash,
		Role:          models.UserRoleAdmin,
		Status:        models.UserStatusActive,
		EmailVerified: true,
	}
	return s.userRepo.Create(admin)
}

func toUserResponse(user *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:             user.ID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Email:          user.Email,
		Phone:          user.Phone,
		Postcode:       user.Postcode,
		Role:           string(user.Role),
		Status:         string(user.Status),
		EmailVerified:  user.EmailVerified,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
	}
}
