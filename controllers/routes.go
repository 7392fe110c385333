package controllers

import (
	"Foresight/middlewares"
)

func (s *Server) initializeRoutes() {

	v1 := s.Router.Group("/api/v1")
	{
		// Wallet auth routes
		v1.POST("/auth/nonce", middlewares.WriteRateLimitMiddleware(), s.IssueLoginNonce)
		v1.POST("/login", middlewares.WriteRateLimitMiddleware(), s.Login)

		// Prediction routes
		v1.GET("/predictions", s.GetPredictions)
		v1.POST("/predictions", middlewares.WalletAuthMiddleware(), s.CreatePrediction)
		v1.GET("/predictions/:id", middlewares.OptionalWalletMiddleware(), s.GetPrediction)
		v1.PATCH("/predictions/:id/status", middlewares.WalletAuthMiddleware(), s.UpdatePredictionStatus)

		// Follow routes
		v1.GET("/predictions/:id/follow", middlewares.OptionalWalletMiddleware(), s.GetFollowStatus)
		v1.POST("/predictions/:id/follow", middlewares.WalletAuthMiddleware(), middlewares.WriteRateLimitMiddleware(), s.ToggleFollow)
		v1.GET("/predictions/:id/followers", s.GetFollowers)
		v1.GET("/predictions/:id/follow/stream", middlewares.OptionalWalletMiddleware(), s.StreamFollows)

		// Chat routes
		v1.GET("/predictions/:id/chat", s.GetChatMessages)
		v1.POST("/predictions/:id/chat", middlewares.WalletAuthMiddleware(), middlewares.WriteRateLimitMiddleware(), s.PostChatMessage)
		v1.GET("/predictions/:id/chat/stream", s.StreamChatMessages)

		// Stake routes
		v1.POST("/predictions/:id/stake/preflight", middlewares.WalletAuthMiddleware(), s.StakePreflight)
		v1.POST("/predictions/:id/stakes", middlewares.WalletAuthMiddleware(), middlewares.WriteRateLimitMiddleware(), s.RecordStake)

		// Viewer routes
		v1.GET("/users/me/recent", middlewares.WalletAuthMiddleware(), s.GetRecentlyViewed)
	}
}
