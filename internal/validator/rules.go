package validator

import (
	"log"

	"tradehub_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует кастомные функции валидации
// в переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Если правило не удалось зарегистрировать, приложение
			// не должно запускаться.
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// Правила на основе statuses.go
	mustRegister("is-job-status", validateJobStatus)
	mustRegister("is-applicant-status", validateApplicantStatus)
	mustRegister("is-job-urgency", validateJobUrgency)
	mustRegister("is-user-status", validateUserStatus)
}

func validateJobStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // пустые проверяет 'required'
	}
	return models.ValidJobStatus(models.JobStatus(value))
}

func validateApplicantStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.ValidApplicantStatus(models.ApplicantStatus(value))
}

func validateJobUrgency(fl validator.FieldLevel) bool {
	switch models.JobUrgency(fl.Field().String()) {
	case "", models.JobUrgencyLow, models.JobUrgencyMedium, models.JobUrgencyHigh:
		return true
	default:
		return false
	}
}

func validateUserStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.ValidUserStatus(models.UserStatus(value))
}
