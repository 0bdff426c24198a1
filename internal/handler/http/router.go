package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avekarev/identity/internal/auth"
	"github.com/avekarev/identity/internal/service"
	"github.com/avekarev/identity/pkg/health"
	"github.com/avekarev/identity/pkg/middleware"
)

// NewRouter creates a chi router with all identity service routes registered.
func NewRouter(
	registrationService *service.RegistrationService,
	authService *service.AuthService,
	profileService *service.ProfileService,
	tokenManager *auth.TokenManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("identity"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator that bridges to the internal TokenManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := tokenManager.ValidateAccess(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
		}, nil
	}

	// Auth endpoints (public)
	authHandler := NewAuthHandler(registrationService, authService, logger)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Get("/activate/{link}", authHandler.Activate)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/registration-code", authHandler.IssueCode)
			r.Post("/registration-code/verify", authHandler.VerifyCode)
			r.Post("/signup", authHandler.SignUp)
			r.Post("/signin", authHandler.SignIn)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})
	})

	// Profile endpoints (auth required)
	userHandler := NewUserHandler(profileService, logger)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/me", userHandler.GetProfile)
		r.Put("/me", userHandler.UpdateProfile)
		r.Put("/me/password", userHandler.UpdatePassword)
	})

	return r
}
