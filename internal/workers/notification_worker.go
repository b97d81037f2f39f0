package workers

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"tradehub_backend/internal/config"
	"tradehub_backend/internal/email"
	"tradehub_backend/internal/events"
	"tradehub_backend/internal/logger"
	"tradehub_backend/internal/repositories"
)

// очередь подписки: несколько инстансов делят поток событий
const notificationQueue = "notifications"

// NotificationWorker слушает события жизненного цикла работ и рассылает
// письма. Отправка всегда best-effort: ошибка логируется и не
// ретраится, основной воркфлоу от нее не зависит.
type NotificationWorker struct {
	bus         events.EventBus
	mailer      email.Provider
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	log         *slog.Logger
}

func NewNotificationWorker(
	bus events.EventBus,
	mailer email.Provider,
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
) *NotificationWorker {
	return &NotificationWorker{
		bus:         bus,
		mailer:      mailer,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		log:         logger.GetLogger(),
	}
}

// Start подписывает воркер на события. Возвращает ошибку только если
// подписка не удалась.
func (w *NotificationWorker) Start() error {
	if err := w.bus.QueueSubscribe(events.SubjectJobCreated, notificationQueue, w.onJobCreated); err != nil {
		return err
	}
	if err := w.bus.QueueSubscribe(events.SubjectJobApplied, notificationQueue, w.onJobApplied); err != nil {
		return err
	}
	return w.bus.QueueSubscribe(events.SubjectJobDecided, notificationQueue, w.onJobDecided)
}

func (w *NotificationWorker) onJobCreated(msg *events.Message) {
	ev, ok := w.decode(msg)
	if !ok {
		return
	}

	// оповещаются активные мастера категории работы
	profiles, err := w.profileRepo.FindByTrade(ev.Category)
	if err != nil {
		logger.WorkerLog("notifications", "find tradespeople for job alert", err)
		return
	}

	for i := range profiles {
		if profiles[i].User == nil {
			continue
		}
		err := w.mailer.SendTemplate(profiles[i].User.Email, email.TemplateNewJobAlert, email.TemplateData{
			"Name":     profiles[i].User.FirstName,
			"JobTitle": ev.JobTitle,
			"Category": ev.Category,
			"Link":     jobLink(ev.JobID),
		})
		if err != nil {
			w.log.Warn("failed to send job alert", "userId", profiles[i].UserID, "error", err)
		}
	}
	logger.WorkerLog("notifications", "job created alerts", nil)
}

func (w *NotificationWorker) onJobApplied(msg *events.Message) {
	ev, ok := w.decode(msg)
	if !ok {
		return
	}

	customer, err := w.userRepo.FindByID(ev.CustomerID)
	if err != nil {
		logger.WorkerLog("notifications", "find customer for application alert", err)
		return
	}

	err = w.mailer.SendTemplate(customer.Email, email.TemplateApplicationReceived, email.TemplateData{
		"Name":     customer.FirstName,
		"JobTitle": ev.JobTitle,
		"Link":     jobLink(ev.JobID),
	})
	if err != nil {
		w.log.Warn("failed to send application alert", "userId", customer.ID, "error", err)
	}
}

func (w *NotificationWorker) onJobDecided(msg *events.Message) {
	ev, ok := w.decode(msg)
	if !ok {
		return
	}

	tradesperson, err := w.userRepo.FindByID(ev.TradespersonID)
	if err != nil {
		logger.WorkerLog("notifications", "find tradesperson for decision alert", err)
		return
	}

	err = w.mailer.SendTemplate(tradesperson.Email, email.TemplateApplicationDecision, email.TemplateData{
		"Name":     tradesperson.FirstName,
		"JobTitle": ev.JobTitle,
		"Decision": ev.Decision,
	})
	if err != nil {
		w.log.Warn("failed to send decision alert", "userId", tradesperson.ID, "error", err)
	}
}

func (w *NotificationWorker) decode(msg *events.Message) (events.JobEvent, bool) {
	var ev events.JobEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		w.log.Warn("malformed event payload", "subject", msg.Subject, "error", err)
		return ev, false
	}
	return ev, true
}

func jobLink(jobID string) string {
	return fmt.Sprintf("%s/jobs/%s", config.GetConfig().Frontend.BaseURL, jobID)
}
