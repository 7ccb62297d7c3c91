package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Account routes
	s.echo.POST("/auth/register", s.handleRegister)
	s.echo.POST("/auth/login", s.handleLogin)
	s.echo.GET("/auth/me", s.handleMe, s.requireAuth)

	// Article routes
	s.echo.POST("/articles", s.handleCreateArticle, s.requireAuth)
	s.echo.GET("/articles", s.handleListArticles, s.requireAuth)
	s.echo.GET("/articles/mine", s.handleListOwnArticles, s.requireAuth)
	s.echo.GET("/articles/:id", s.handleGetArticle, s.requireAuth)
	s.echo.PUT("/articles/:id", s.handleUpdateArticle, s.requireAuth)
	s.echo.POST("/articles/:id/approve", s.handleApproveArticle, s.requireAuth, s.requireReviewer)
	s.echo.POST("/articles/:id/reject", s.handleRejectArticle, s.requireAuth, s.requireReviewer)
	s.echo.GET("/articles/:id/messages", s.handleListMessages, s.requireAuth)

	// Suggestion routes
	s.echo.POST("/suggestions", s.handleCreateSuggestion, s.requireAuth)
	s.echo.GET("/suggestions", s.handleListSuggestions, s.requireAuth)
	s.echo.POST("/suggestions/:id/vote", s.handleVoteSuggestion, s.requireAuth)

	// Realtime endpoints. The WebSocket route authenticates after the
	// upgrade so failures surface as close frames, not HTTP statuses.
	s.echo.GET("/ws/articles/:id", s.handleTopicChannel)
	s.echo.GET("/notifications/stream", s.handleNotificationStream, s.requireAuth, s.requireReviewer)
}
