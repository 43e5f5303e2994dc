package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/ledger_engine/cmd/docs"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// MetricsExporter observes HTTP requests and serves the collected metrics.
type MetricsExporter interface {
	middleware.HTTPObserver
	Handler() http.Handler
}

// Infrastructure carries the optional collaborators of the router.
// A nil field switches the matching feature off.
type Infrastructure struct {
	DB          Pinger
	Metrics     MetricsExporter
	Limiter     *limiter.Limiter
	Idempotency portsrepo.IdempotencyStore
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	infra Infrastructure,
) {
	registerValidators()

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader, middleware.IdempotencyHeader},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	if infra.Metrics != nil {
		r.Use(middleware.Metrics(infra.Metrics))
		r.GET("/metrics", gin.WrapH(infra.Metrics.Handler()))
	}

	r.GET("/health", healthCheck(infra.DB))

	setupAPIV1Routes(r, cfg, services, infra)

	// Swagger routes (only outside production)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	infra Infrastructure,
) {
	v1 := r.Group("/api/v1")
	if infra.Limiter != nil {
		v1.Use(middleware.RateLimit(infra.Limiter))
	}

	var writeGuards []gin.HandlerFunc
	if infra.Idempotency != nil {
		writeGuards = append(writeGuards, middleware.Idempotency(infra.Idempotency, cfg.IdempotencyTTL))
	}

	registerAccountRoutes(v1, services.Account, services.Balance)
	registerTransactionRoutes(v1, services.Transaction, writeGuards...)
	registerReportingRoutes(v1, services.Reporting)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
