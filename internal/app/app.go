package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradehub_backend/database"
	"tradehub_backend/internal/config"
	"tradehub_backend/internal/email"
	"tradehub_backend/internal/events"
	"tradehub_backend/internal/handlers"
	"tradehub_backend/internal/logger"
	"tradehub_backend/internal/middleware"
	"tradehub_backend/internal/repositories"
	"tradehub_backend/internal/routes"
	"tradehub_backend/internal/services"
	"tradehub_backend/internal/storage"
	"tradehub_backend/internal/validator"
	"tradehub_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Run поднимает приложение целиком: конфиг, БД, зависимости, роуты,
// фоновые воркеры, и блокируется до сигнала остановки.
func Run() {
	config.LoadConfig()
	cfg := config.GetConfig()

	logger.Init(cfg.Server.Env)
	log := logger.GetLogger()

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Fatal("database connection failed", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("database migration failed", "error", err)
	}

	deps, cleanup := buildDependencies(cfg, db)
	defer cleanup()

	if err := seed(db, deps); err != nil {
		logger.Fatal("seeding failed", "error", err)
	}

	router := SetupRouter(cfg, deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startWorkers(ctx, deps)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("server starting", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// Dependencies - собранный граф зависимостей приложения
type Dependencies struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Bus         events.EventBus
	Mailer      email.Provider
	Store       storage.Storage
	UserRepo    repositories.UserRepository
	ProfileRepo repositories.ProfileRepository
	TradeRepo   repositories.TradeRepository
	TokenRepo   repositories.RefreshTokenRepository
	JobRepo     repositories.JobRepository
	AuthService services.AuthService
	JobService  services.JobService
	Handlers    *handlers.AppHandlers
}

func buildDependencies(cfg *config.Config, db *gorm.DB) (*Dependencies, func()) {
	log := logger.GetLogger()

	var bus events.EventBus = events.NoopBus{}
	if cfg.NATS.Enabled {
		natsBus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			// шина не критична для запуска
			log.Warn("nats unavailable, events disabled", "url", cfg.NATS.URL, "error", err)
		} else {
			bus = natsBus
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	}

	mailer := newMailer(cfg)
	if err := mailer.Validate(); err != nil {
		log.Warn("email provider misconfigured", "provider", cfg.Email.Provider, "error", err)
	}

	store, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		logger.Fatal("storage initialisation failed", "error", err)
	}

	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	tradeRepo := repositories.NewTradeRepository(db)
	tokenRepo := repositories.NewRefreshTokenRepository(db)
	jobRepo := repositories.NewJobRepository(db)

	authService := services.NewAuthService(userRepo, profileRepo, tradeRepo, tokenRepo, mailer)
	jobService := services.NewJobService(db, jobRepo, profileRepo, userRepo, bus)
	profileService := services.NewProfileService(profileRepo, store, cfg.Storage.BaseURL)
	tradeService := services.NewTradeService(tradeRepo)
	billingService := services.NewBillingService(
		profileRepo, userRepo,
		cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, cfg.Frontend.BaseURL,
	)

	v := validator.New()
	base := handlers.NewBaseHandler(v)

	deps := &Dependencies{
		DB:          db,
		Redis:       redisClient,
		Bus:         bus,
		Mailer:      mailer,
		Store:       store,
		UserRepo:    userRepo,
		ProfileRepo: profileRepo,
		TradeRepo:   tradeRepo,
		TokenRepo:   tokenRepo,
		JobRepo:     jobRepo,
		AuthService: authService,
		JobService:  jobService,
		Handlers: &handlers.AppHandlers{
			Auth:    handlers.NewAuthHandler(base, authService),
			Job:     handlers.NewJobHandler(base, jobService),
			Profile: handlers.NewProfileHandler(base, profileService),
			Trade:   handlers.NewTradeHandler(base, tradeService),
			Admin:   handlers.NewAdminHandler(base, authService),
			Billing: handlers.NewBillingHandler(base, billingService),
		},
	}

	cleanup := func() {
		if err := bus.Close(); err != nil {
			log.Warn("event bus close failed", "error", err)
		}
		if err := mailer.Close(); err != nil {
			log.Warn("mailer close failed", "error", err)
		}
		if redisClient != nil {
			redisClient.Close()
		}
	}
	return deps, cleanup
}

func newMailer(cfg *config.Config) email.Provider {
	switch cfg.Email.Provider {
	case "smtp":
		return email.NewSMTPProvider(&email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
	case "mailersend":
		return email.NewMailerSendProvider(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	default:
		return email.NewMockProvider()
	}
}

// SetupRouter собирает gin-роутер с middleware и маршрутами
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.CORS())

	routes.RegisterRoutes(r, deps.Handlers, deps.Redis)
	return r
}

func startWorkers(ctx context.Context, deps *Dependencies) {
	notifier := workers.NewNotificationWorker(deps.Bus, deps.Mailer, deps.UserRepo, deps.ProfileRepo)
	if err := notifier.Start(); err != nil {
		logger.GetLogger().Warn("notification worker failed to start", "error", err)
	}

	maintenance := workers.NewMaintenanceWorker(deps.UserRepo, deps.TokenRepo, deps.ProfileRepo)
	go maintenance.Start(ctx)
}
