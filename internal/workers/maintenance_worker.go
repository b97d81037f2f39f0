package workers

import (
	"context"
	"time"

	"tradehub_backend/internal/logger"
	"tradehub_backend/internal/repositories"
)

// MaintenanceWorker периодически чистит протухшее состояние:
// истекшие блокировки логина, просроченные verification-токены,
// старые refresh-токены и закончившиеся подписки.
type MaintenanceWorker struct {
	userRepo    repositories.UserRepository
	tokenRepo   repositories.RefreshTokenRepository
	profileRepo repositories.ProfileRepository
	interval    time.Duration
}

func NewMaintenanceWorker(
	userRepo repositories.UserRepository,
	tokenRepo repositories.RefreshTokenRepository,
	profileRepo repositories.ProfileRepository,
) *MaintenanceWorker {
	return &MaintenanceWorker{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		profileRepo: profileRepo,
		interval:    15 * time.Minute,
	}
}

// Start крутит цикл до отмены контекста
func (w *MaintenanceWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// первый проход сразу при старте
	w.runOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce()
		}
	}
}

func (w *MaintenanceWorker) runOnce() {
	if _, err := w.userRepo.ClearExpiredLocks(); err != nil {
		logger.WorkerLog("maintenance", "clear expired login locks", err)
	}
	if _, err := w.userRepo.ExpireStaleVerificationTokens(); err != nil {
		logger.WorkerLog("maintenance", "expire stale verification tokens", err)
	}
	if _, err := w.tokenRepo.DeleteExpired(); err != nil {
		logger.WorkerLog("maintenance", "delete expired refresh tokens", err)
	}
	if _, err := w.profileRepo.MarkExpiredSubscriptions(); err != nil {
		logger.WorkerLog("maintenance", "mark expired subscriptions", err)
	}
	logger.WorkerLog("maintenance", "sweep", nil)
}
