package handlers

// AppHandlers собирает все HTTP-обработчики приложения
type AppHandlers struct {
	Auth    *AuthHandler
	Job     *JobHandler
	Profile *ProfileHandler
	Trade   *TradeHandler
	Admin   *AdminHandler
	Billing *BillingHandler
}
