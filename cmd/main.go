package main

import (
	api "Foresight"
)

// @title Foresight API
// @version 1.0
// @description API for prediction events, follows, chat rooms, and staking
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Provide a valid JWT as: Bearer <token>
func main() {
	api.Run()
}
