package http

import (
	"todo_backend/internal/config"
	"todo_backend/internal/http/handlers"
	"todo_backend/internal/http/middleware"
	"todo_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires the full route table. Every /api endpoint runs behind
// the error normalizer so all failures leave as the uniform envelope.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, tokens *service.TokenService, version string) {
	h := handlers.NewHandler(db, tokens)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting, no envelope)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// Unmatched routes and methods still answer JSON for API clients.
	r.NoRoute(middleware.NotFoundJSON())
	r.NoMethod(middleware.MethodNotAllowedJSON())
	r.HandleMethodNotAllowed = true

	api := r.Group("/api")
	api.Use(
		middleware.ErrorHandler(),
		middleware.Metrics(),
		middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow),
	)

	registerAPIRoutes(api, h, tokens, cfg)
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, tokens *service.TokenService, cfg *config.Config) {
	authRL := middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow)
	authJWT := middleware.JWT(tokens)

	// Auth and token lifecycle
	api.POST("/token/", authRL, h.Token)
	api.POST("/refresh/", authRL, h.Refresh)
	api.POST("/register/", authRL, h.Register)
	api.POST("/logout/", authJWT, h.Logout)

	// Tasks, owner-scoped
	tasks := api.Group("/tasks", authJWT)
	{
		tasks.GET("/", h.ListTasks)
		tasks.POST("/", h.CreateTask)
		tasks.GET("/:id/", h.RetrieveTask)
		tasks.PUT("/:id/", h.UpdateTask)
		tasks.DELETE("/:id/", h.DeleteTask)
	}
}
