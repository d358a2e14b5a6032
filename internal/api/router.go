package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shopstack/customer-service/internal/api/handler"
	"github.com/shopstack/customer-service/internal/api/middleware"
	"github.com/shopstack/customer-service/internal/core/service"
	mongodb "github.com/shopstack/customer-service/internal/infrastructure/db/mongo"
	redisdb "github.com/shopstack/customer-service/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("customer"))

	// --- Dependencies (explicit construction, no ambient container) ---
	customerRepo := mongodb.NewCustomerRepository(db)
	tokenCache := redisdb.NewTokenCache(rdb)
	customerService := service.NewCustomerService(customerRepo, tokenCache, jwtSecret, tokenTTL, log)
	customerHandler := handler.NewCustomerHandler(customerService)
	authMiddleware := middleware.Auth(jwtSecret)

	// --- Public routes ---
	e.POST("/customers/register", customerHandler.Register)
	e.POST("/customers/login", customerHandler.Login)

	// --- Authenticated routes ---
	e.GET("/customers/profile", customerHandler.GetProfile, authMiddleware)
	e.PATCH("/customers/profile", customerHandler.UpdateProfile, authMiddleware)
	e.POST("/customers/logout", customerHandler.Logout, authMiddleware)
	e.GET("/customers", customerHandler.List, authMiddleware)
	e.GET("/customers/:customer_id", customerHandler.GetByID, authMiddleware)
	e.DELETE("/customers/:customer_id", customerHandler.Delete, authMiddleware)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
