package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rolo-app/rolo/internal/health"
	"github.com/rolo-app/rolo/internal/http/handler"
	"github.com/rolo-app/rolo/internal/http/middleware"
	"github.com/rolo-app/rolo/internal/http/response"
	"github.com/rolo-app/rolo/internal/service"
)

type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	ContactHandler     *handler.ContactHandler
	InteractionHandler *handler.InteractionHandler
	ExportHandler      *handler.ExportHandler
	AuthService        *service.AuthService
	CORSOrigins        []string
	APIRateLimitRPM    int
	AuthRateLimitRPM   int
	Readiness          *health.ProbeRunner
	EnableOTelHTTP     bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())

	authLimiter := middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute).Middleware()
	requireUser := middleware.SessionAuth(dep.AuthService)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter).Post("/register", dep.AuthHandler.Register)
			r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
			r.Post("/logout", dep.AuthHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Get("/me", dep.AuthHandler.Me)

			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", dep.ContactHandler.List)
				r.Get("/search", dep.ContactHandler.Search)
				r.Post("/", dep.ContactHandler.Create)
				r.Get("/{id}", dep.ContactHandler.Get)
				r.Patch("/{id}", dep.ContactHandler.Update)
				r.Get("/{id}/interactions", dep.ContactHandler.Interactions)
			})

			r.Route("/interactions", func(r chi.Router) {
				r.Get("/", dep.InteractionHandler.List)
				r.Post("/", dep.InteractionHandler.Create)
				r.Get("/stats", dep.InteractionHandler.Stats)
				r.Patch("/{id}", dep.InteractionHandler.Update)
				r.Delete("/{id}", dep.InteractionHandler.Delete)
			})

			r.Get("/export", dep.ExportHandler.Export)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
