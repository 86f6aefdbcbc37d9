package router

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/polkiloo/fosgateway/internal/config"
	"github.com/polkiloo/fosgateway/internal/domain/model"
	"github.com/polkiloo/fosgateway/internal/metrics"
	"github.com/polkiloo/fosgateway/internal/server/http/handlers"
	"github.com/polkiloo/fosgateway/internal/server/http/middleware"
)

// Params are the router dependencies.
type Params struct {
	fx.In

	Facade   handlers.GatewayFacade
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	if !p.Config.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger.Named("http"), p.Metrics))
	engine.Use(corsMiddleware(p.Config.AllowedOrigins))
	engine.Use(middleware.Compression())
	engine.Use(middleware.LimitRequestBody())

	authHandler := handlers.NewAuthHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	viewHandler := handlers.NewViewHandler(p.Facade)
	healthHandler := handlers.NewHealthHandler(p.Facade)

	engine.GET("/healthz", handlers.Liveness)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{})))

	api := engine.Group("/api")
	api.POST("/auth/login", authHandler.Login)
	api.GET("/home", viewHandler.Home)
	api.GET("/health", healthHandler.Snapshot)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(p.Facade))
	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/auth/session", authHandler.Session)
	authed.GET("/orders/:id", orderHandler.Get)

	staff := authed.Group("")
	staff.Use(middleware.RequireRole(model.RoleStaff, model.RoleAdmin))
	staff.GET("/orders/:id/next-action", orderHandler.NextAction)
	staff.PUT("/orders/:id/status", orderHandler.UpdateStatus)

	admin := authed.Group("")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/admin/dashboard", viewHandler.Dashboard)
	admin.POST("/health/refresh", healthHandler.Refresh)

	return engine
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Encoding", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	var explicit []string
	for _, o := range origins {
		if o = strings.TrimSpace(o); o == "*" {
			explicit = nil
			break
		} else if o != "" {
			explicit = append(explicit, o)
		}
	}
	if len(explicit) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = explicit
	}
	return cors.New(cfg)
}
