package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/reelhub/backend/internal/handlers"
	"github.com/reelhub/backend/internal/middleware"
	"github.com/reelhub/backend/internal/repositories"
	"github.com/reelhub/backend/internal/services"
	"github.com/sirupsen/logrus"
)

// Dependencies are the components the routes are served by
type Dependencies struct {
	Reels     *services.ReelService
	Users     repositories.UserRepository
	Generator services.MediaGenerator

	// RequireAuth guards caller-scoped routes; JWT or Firebase middleware.
	RequireAuth  echo.MiddlewareFunc
	FirebaseAuth middleware.TokenVerifier // optional, enables Firebase login and linking
	JWTSecret    string
	JWTTTL       time.Duration
	Log          *logrus.Logger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	log := deps.Log

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api")

	authHandler := handlers.NewAuthHandler(deps.Users, deps.FirebaseAuth, deps.JWTSecret, deps.JWTTTL)
	authHandler.RegisterAuthRoutes(api)
	log.Debug("Auth routes configured.")

	userHandler := handlers.NewUserHandler(deps.Users, deps.FirebaseAuth)
	userHandler.RegisterUserRoutes(api)
	log.Debug("User routes configured.")

	reelHandler := handlers.NewReelHandler(deps.Reels)
	reelHandler.RegisterReelRoutes(api, deps.RequireAuth)
	log.Debug("Reel routes configured.")

	aiHandler := handlers.NewAIHandler(deps.Generator)
	aiHandler.RegisterAIRoutes(api)
	log.Debug("AI routes configured.")

	log.WithField("routes", len(e.Routes())).Info("All routes configured.")
}
