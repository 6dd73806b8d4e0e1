// Package app wires repositories, services and handlers into the HTTP API.
package app

import (
	"context"
	"net/http"
	"time"

	"gearvault/internal/config"
	"gearvault/internal/middleware"
	"gearvault/internal/modules/access"
	"gearvault/internal/modules/auth"
	"gearvault/internal/modules/catalog"
	"gearvault/internal/modules/equipment"
	"gearvault/internal/modules/events"
	"gearvault/internal/modules/maintenance"
	"gearvault/internal/pkg/jwt"
	"gearvault/internal/pkg/metrics"
	"gearvault/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Config  *config.Config
	Store   *repository.Store
	Tokens  *jwt.Service
	Limiter auth.AttemptLimiter
	Hub     *events.Hub
	Log     *zap.Logger
}

// App is the assembled API. Reminders is shared with the cron scheduler.
type App struct {
	Router    *gin.Engine
	Reminders *maintenance.ReminderJob
}

func New(d Deps) *App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Limiter == nil {
		d.Limiter = auth.NewMemoryLimiter(d.Config.LoginMaxAttempts, d.Config.LoginLockout)
	}
	var publisher events.Publisher = events.Nop{}
	if d.Hub != nil {
		publisher = d.Hub
	}

	guard := access.NewGuard(d.Log.Named("access"))
	engine := equipment.NewEngine()
	identity := auth.NewIdentity(d.Tokens)

	authService := auth.NewService(d.Store.Users(), d.Tokens, d.Limiter, d.Tokens.TTL(), d.Log.Named("auth"))
	equipmentService := equipment.NewService(d.Store, guard, engine, publisher, d.Log.Named("equipment"))
	maintenanceService := maintenance.NewService(d.Store, guard, engine, publisher, d.Config.MaintenanceInterval, d.Log.Named("maintenance"))
	catalogService := catalog.NewService(d.Store, guard, d.Log.Named("catalog"))

	authHandler := auth.NewHandler(authService, d.Log)
	equipmentHandler := equipment.NewHandler(equipmentService, d.Log)
	maintenanceHandler := maintenance.NewHandler(maintenanceService, d.Log)
	catalogHandler := catalog.NewHandler(catalogService, d.Log)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(d.Config.CORSAllowedOrigins))
	r.Use(metrics.Middleware())

	r.GET("/health", healthHandler(d.Store))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)

		if d.Hub != nil {
			events.NewWSHandler(d.Hub, identity, d.Config.CORSAllowedOrigins, d.Log.Named("ws")).RegisterRoutes(v1)
		}

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(identity))
		{
			authHandler.RegisterProtectedRoutes(protected)
			equipmentHandler.RegisterRoutes(protected)
			maintenanceHandler.RegisterRoutes(protected)
			catalogHandler.RegisterRoutes(protected)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(identity), middleware.AdminOnly())
		{
			authHandler.RegisterAdminRoutes(admin)
		}
	}

	return &App{
		Router:    r,
		Reminders: maintenance.NewReminderJob(d.Store, publisher, d.Config.MaintenanceInterval, d.Log.Named("reminders")),
	}
}

func healthHandler(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "ok", http.StatusOK
		if err := store.Ping(ctx); err != nil {
			status, code = "unavailable", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
