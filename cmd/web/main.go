package main

import "tradehub_backend/internal/app"

// @title TradeHub API
// @version 1.0
// @description Marketplace backend connecting customers with tradespeople.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
