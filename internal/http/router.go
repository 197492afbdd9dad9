package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/finance"
	"fintrack/internal/httputil"
	"fintrack/internal/logging"
	"fintrack/internal/metrics"
	"fintrack/internal/user"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	authHandler *auth.Handler,
	authMiddleware *auth.Middleware,
	userHandler *user.Handler,
	financeHandler *finance.Handler,
	m *metrics.Metrics,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))
	r.Use(m.Middleware)

	// Public routes
	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	// Auth routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Get("/verify/{token}", authHandler.Verify)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Use(authMiddleware.RequireActive)
			r.Post("/logout", authHandler.Logout)
		})

		// Verification can be requested by any authenticated account,
		// soft-deleted ones included; it is how a pre-verification user
		// becomes verified.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Get("/request_for_verify", authHandler.RequestVerify)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Use(authMiddleware.RequireActive)
			r.Use(authMiddleware.RequireVerified)
			r.Post("/abort", authHandler.Abort)
		})
	})

	// User routes
	r.Route("/users", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireActive)
			r.Get("/me", userHandler.Me)
			r.Patch("/me", userHandler.UpdateMyPassword)
			r.Delete("/me", userHandler.DeleteMe)
			r.Post("/me/profile", userHandler.CreateProfile)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireActive)
			r.Use(authMiddleware.RequireVerified)
			r.Put("/me/profile", userHandler.UpdateProfile)
			r.Delete("/me/profile", userHandler.DeleteProfile)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireSuperuser)
			r.Get("/", userHandler.List)
			r.Get("/{id}", userHandler.Get)
			r.Patch("/{id}", userHandler.UpdateFlags)
			r.Delete("/{id}", userHandler.Delete)
		})
	})

	// Finance routes
	r.Route("/finance", func(r chi.Router) {
		r.Get("/", financeHandler.GetCurrencies)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Use(authMiddleware.RequireActive)
			r.Use(authMiddleware.RequireVerified)
			r.Get("/{kind}/category", financeHandler.GetCategories)
			r.Post("/{kind}/category", financeHandler.AddCategory)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Use(authMiddleware.RequireActive)
			r.Get("/{kind}", financeHandler.ListRecords)
			r.Post("/{kind}", financeHandler.CreateRecord)
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
