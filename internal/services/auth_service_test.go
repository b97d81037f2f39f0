package services

import (
	"testing"
	"time"

	"tradehub_backend/internal/appErrors"
	"tradehub_backend/internal/config"
	"tradehub_backend/internal/email"
	"tradehub_backend/internal/models"
	"tradehub_backend/internal/repositories"
	"tradehub_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db       *gorm.DB
	svc      AuthService
	mailer   *email.MockProvider
	userRepo repositories.UserRepository
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	cfg.JWT.RefreshTTL = 24
	cfg.Frontend.BaseURL = "http://localhost:3000"
	config.AppConfig = cfg

	db := newTestDB(t)
	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	tradeRepo := repositories.NewTradeRepository(db)
	tokenRepo := repositories.NewRefreshTokenRepository(db)
	mailer := email.NewMockProvider()

	require.NoError(t, tradeRepo.Create(&models.Trade{Name: "Plumber", IsActive: true}))

	return &authTestEnv{
		db:       db,
		svc:      NewAuthService(userRepo, profileRepo, tradeRepo, tokenRepo, mailer),
		mailer:   mailer,
		userRepo: userRepo,
	}
}

func (e *authTestEnv) registerVerified(t *testing.T, emailAddr, password string) *models.User {
	t.Helper()
	_, err := e.svc.RegisterCustomer(dto.RegisterCustomerRequest{
		FirstName: "Carol",
		LastName:  "Customer",
		Email:     emailAddr,
		Password:  password,
	})
	require.NoError(t, err)

	user, err := e.userRepo.FindByEmail(emailAddr)
	require.NoError(t, err)
	require.NoError(t, e.svc.VerifyEmail(user.VerificationToken))

	user, err = e.userRepo.FindByEmail(emailAddr)
	require.NoError(t, err)
	return user
}

func TestRegisterCustomerSendsVerificationEmail(t *testing.T) {
	env := newAuthTestEnv(t)

	resp, err := env.svc.RegisterCustomer(dto.RegisterCustomerRequest{
		FirstName: "Carol",
		LastName:  "Customer",
		Email:     "carol@example.com",
		Password:  "sup3rsecret",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.UserStatusPending), resp.Status)
	assert.False(t, resp.EmailVerified)

	require.Len(t, env.mailer.SentTo("carol@example.com"), 1)
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	env := newAuthTestEnv(t)
	env.registerVerified(t, "carol@example.com", "sup3rsecret")

	_, err := env.svc.RegisterCustomer(dto.RegisterCustomerRequest{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "carol@example.com",
		Password:  "sup3rsecret",
	})
	assert.ErrorIs(t, err, appErrors.ErrEmailAlreadyExists)
}

func TestRegisterTradespersonCreatesProfile(t *testing.T) {
	env := newAuthTestEnv(t)

	resp, err := env.svc.RegisterTradesperson(dto.RegisterTradespersonRequest{
		FirstName:     "Tom",
		LastName:      "Tradesperson",
		Email:         "tom@example.com",
		Password:      "sup3rsecret",
		SelectedTrade: "Plumber",
		Experience:    "5 years",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.UserRoleTradesperson), resp.Role)

	profileRepo := repositories.NewProfileRepository(env.db)
	profile, err := profileRepo.FindByUserID(resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plumber", profile.SelectedTrade)
	// новый профиль начинает без кредитов
	assert.Equal(t, 0, profile.Credits)
}

func TestRegisterTradespersonUnknownTradeRejected(t *testing.T) {
	env := newAuthTestEnv(t)

	_, err := env.svc.RegisterTradesperson(dto.RegisterTradespersonRequest{
		FirstName:     "Tom",
		LastName:      "Tradesperson",
		Email:         "tom@example.com",
		Password:      "sup3rsecret",
		SelectedTrade: "Astronaut",
	})
	assert.ErrorIs(t, err, appErrors.ErrTradeNotFound)
}

func TestLoginBeforeVerificationRejected(t *testing.T) {
	env := newAuthTestEnv(t)
	_, err := env.svc.RegisterCustomer(dto.RegisterCustomerRequest{
		FirstName: "Carol",
		LastName:  "Customer",
		Email:     "carol@example.com",
		Password:  "sup3rsecret",
	})
	require.NoError(t, err)

	_, err = env.svc.Login(dto.LoginRequest{Email: "carol@example.com", Password: "sup3rsecret"})
	assert.ErrorIs(t, err, appErrors.ErrUserNotVerified)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	env := newAuthTestEnv(t)
	env.registerVerified(t, "carol@example.com", "sup3rsecret")

	resp, err := env.svc.Login(dto.LoginRequest{Email: "carol@example.com", Password: "sup3rsecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "carol@example.com", resp.User.Email)
}

func TestLoginLocksAccountAfterRepeatedFailures(t *testing.T) {
	env := newAuthTestEnv(t)
	env.registerVerified(t, "carol@example.com", "sup3rsecret")

	for i := 0; i < 4; i++ {
		_, err := env.svc.Login(dto.LoginRequest{Email: "carol@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	}

	// пятая неудача блокирует аккаунт
	_, err := env.svc.Login(dto.LoginRequest{Email: "carol@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrAccountLocked)

	// правильный пароль тоже не проходит пока висит блокировка
	_, err = env.svc.Login(dto.LoginRequest{Email: "carol@example.com", Password: "sup3rsecret"})
	assert.ErrorIs(t, err, appErrors.ErrAccountLocked)
}

func TestSuccessfulLoginResetsFailureCounter(t *testing.T) {
	env := newAuthTestEnv(t)
	env.registerVerified(t, "carol@example.com", "sup3rsecret")

	for i := 0; i < 3; i++ {
		_, err := env.svc.Login(dto.LoginRequest{Email: "carol@example.com", Password: "wrong"})
		require.Error(t, err)
	}
	_, err := env.svc.Login(dto.LoginRequest{Email: "carol@example.com", Password: "sup3rsecret"})
	require.NoError(t, err)

	user, err := env.userRepo.FindByEmail("carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, user.LoginAttempts)
	assert.NotNil(t, user.LastLogin)
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newAuthTestEnv(t)
	env.registerVerified(t, "carol@example.com", "sup3rsecret")

	first, err := env.svc.Login(dto.LoginRequest{Email: "carol@example.com", Password: "sup3rsecret"})
	require.NoError(t, err)

	second, err := env.svc.Refresh(first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// старый токен отозван
	_, err = env.svc.Refresh(first.RefreshToken)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestPasswordResetFlow(t *testing.T) {
	env := newAuthTestEnv(t)
	env.registerVerified(t, "carol@example.com", "sup3rsecret")

	require.NoError(t, env.svc.ForgotPassword("carol@example.com"))

	user, err := env.userRepo.FindByEmail("carol@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, user.ResetToken)

	require.NoError(t, env.svc.ResetPassword(user.ResetToken, "brandNewPass1"))

	_, err = env.svc.Login(dto.LoginRequest{Email: "carol@example.com", Password: "sup3rsecret"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	_, err = env.svc.Login(dto.LoginRequest{Email: "carol@example.com", Password: "brandNewPass1"})
	assert.NoError(t, err)
}

func TestForgotPasswordSilentForUnknownEmail(t *testing.T) {
	env := newAuthTestEnv(t)
	assert.NoError(t, env.svc.ForgotPassword("nobody@example.com"))
	assert.Empty(t, env.mailer.Sent)
}

func TestSuspendedUserCannotLogin(t *testing.T) {
	env := newAuthTestEnv(t)
	user := env.registerVerified(t, "carol@example.com", "sup3rsecret")

	require.NoError(t, env.svc.ChangeUserStatus(user.ID, models.UserStatusSuspended))

	_, err := env.svc.Login(dto.LoginRequest{Email: "carol@example.com", Password: "sup3rsecret"})
	assert.ErrorIs(t, err, appErrors.ErrUserSuspended)
}

func TestExpiredVerificationTokenRejected(t *testing.T) {
	env := newAuthTestEnv(t)
	_, err := env.svc.RegisterCustomer(dto.RegisterCustomerRequest{
		FirstName: "Carol",
		LastName:  "Customer",
		Email:     "carol@example.com",
		Password:  "sup3rsecret",
	})
	require.NoError(t, err)

	user, err := env.userRepo.FindByEmail("carol@example.com")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Hour)
	user.VerificationExpires = &expired
	require.NoError(t, env.userRepo.Update(user))

	err = env.svc.VerifyEmail(user.VerificationToken)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestResendVerificationIssuesFreshToken(t *testing.T) {
	env := newAuthTestEnv(t)
	_, err := env.svc.RegisterCustomer(dto.RegisterCustomerRequest{
		FirstName: "Carol",
		LastName:  "Customer",
		Email:     "carol@example.com",
		Password:  "sup3rsecret",
	})
	require.NoError(t, err)

	before, err := env.userRepo.FindByEmail("carol@example.com")
	require.NoError(t, err)

	require.NoError(t, env.svc.ResendVerification("carol@example.com"))

	after, err := env.userRepo.FindByEmail("carol@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, before.VerificationToken, after.VerificationToken)
	assert.Len(t, env.mailer.SentTo("carol@example.com"), 2)

	// уже подтвержденный адрес и неизвестный адрес - тихий no-op
	require.NoError(t, env.svc.VerifyEmail(after.VerificationToken))
	require.NoError(t, env.svc.ResendVerification("carol@example.com"))
	require.NoError(t, env.svc.ResendVerification("nobody@example.com"))
	assert.Len(t, env.mailer.SentTo("carol@example.com"), 3) // +welcome, без повторной верификации
}

func TestCurrentUserReturnsProfileData(t *testing.T) {
	env := newAuthTestEnv(t)
	user := env.registerVerified(t, "carol@example.com", "sup3rsecret")

	resp, err := env.svc.CurrentUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", resp.Email)
	assert.Equal(t, string(models.UserRoleCustomer), resp.Role)

	_, err = env.svc.CurrentUser("00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, appErrors.ErrUserNotFound)
}

func TestChangeUserStatusFollowsTransitionTable(t *testing.T) {
	env := newAuthTestEnv(t)
	user := env.registerVerified(t, "carol@example.com", "sup3rsecret")

	err := env.svc.ChangeUserStatus(user.ID, models.UserStatusPending)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	require.NoError(t, env.svc.ChangeUserStatus(user.ID, models.UserStatusSuspended))
	require.NoError(t, env.svc.ChangeUserStatus(user.ID, models.UserStatusActive))
}
