package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/srushti128/kodbank/docs"
	"github.com/srushti128/kodbank/internal/api/handler"
	"github.com/srushti128/kodbank/internal/api/middleware"
	"github.com/srushti128/kodbank/internal/core/domain"
	"github.com/srushti128/kodbank/internal/core/service"
	"github.com/srushti128/kodbank/internal/core/token"
	mongodb "github.com/srushti128/kodbank/internal/infrastructure/db/mongo"
	"github.com/srushti128/kodbank/internal/infrastructure/http/handlers"
	"github.com/srushti128/kodbank/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// It fails when the signing secret is unusable so a misconfigured process
// never starts serving.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("kodbank"))

	// --- Dependencies ---
	codec, err := token.NewCodec(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	userRepo := mongodb.NewUserRepository(db)
	sessionRepo := mongodb.NewSessionRepository(db)

	authService := service.NewAuthService(userRepo, sessionRepo, codec, cfg.TokenTTL, log)
	userService := service.NewUserService(userRepo, sessionRepo, log)

	authHandler := handler.NewAuthHandler(authService, cfg.TokenTTL)
	userHandler := handler.NewUserHandler(userService)
	requireAuth := middleware.Auth(authService, log)

	// --- Auth routes ---
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/logout", authHandler.Logout)

	// --- Protected routes ---
	e.GET("/api/user/balance", userHandler.Balance, requireAuth)
	e.DELETE("/api/admin/users/:username", userHandler.Remove, requireAuth, middleware.RBAC(domain.RoleAdmin))

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e, nil
}
