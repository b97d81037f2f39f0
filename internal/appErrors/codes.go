package appErrors

// Коды ошибок сгруппированные по доменам
const (
	// Аутентификация и авторизация
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	CodeAccountLocked      ErrorCode = "ACCOUNT_LOCKED"

	// Валидация
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeWeakPassword     ErrorCode = "WEAK_PASSWORD"

	// Ресурсы
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	CodeProfileNotFound   ErrorCode = "PROFILE_NOT_FOUND"
	CodeTradeNotFound     ErrorCode = "TRADE_NOT_FOUND"
	CodeJobNotFound       ErrorCode = "JOB_NOT_FOUND"
	CodeApplicantNotFound ErrorCode = "APPLICANT_NOT_FOUND"

	// Бизнес-логика
	CodeEmailAlreadyExists  ErrorCode = "EMAIL_ALREADY_EXISTS"
	CodeUserNotVerified     ErrorCode = "USER_NOT_VERIFIED"
	CodeUserSuspended       ErrorCode = "USER_SUSPENDED"
	CodeConflict            ErrorCode = "CONFLICT"
	CodeInsufficientCredits ErrorCode = "INSUFFICIENT_CREDITS"
	CodeJobFull             ErrorCode = "JOB_FULL"
	CodeAlreadyApplied      ErrorCode = "ALREADY_APPLIED"
	CodeInvalidTransition   ErrorCode = "INVALID_STATUS_TRANSITION"

	// Системные ошибки
	CodeRateLimited          ErrorCode = "RATE_LIMITED"
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
)
