package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/tasktrack-be/internal/api/handlers"
	"github.com/isdelr/tasktrack-be/internal/api/respond"
	"github.com/isdelr/tasktrack-be/internal/apperror"
	"github.com/isdelr/tasktrack-be/internal/auth"
	"github.com/isdelr/tasktrack-be/internal/logger"
	"github.com/isdelr/tasktrack-be/internal/models"
	"github.com/isdelr/tasktrack-be/internal/services"
	"github.com/isdelr/tasktrack-be/internal/validation"
	"github.com/isdelr/tasktrack-be/internal/websocket"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Users    services.UserServiceProvider
	Projects services.ProjectServiceProvider
	Tasks    services.TaskServiceProvider
	Events   services.EventServiceProvider

	Issuer  *auth.Issuer
	Revoker auth.Revoker
	Hub     *websocket.Hub
	Store   handlers.Pinger

	AllowedOrigins []string
	SecureCookies  bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(logger.Middleware())
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, apperror.NotFound("Route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, apperror.BadRequest("Method not allowed").WithStatus(http.StatusMethodNotAllowed))
	})

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Issuer, deps.Revoker, deps.SecureCookies)
	projectHandler := handlers.NewProjectHandler(deps.Projects)
	taskHandler := handlers.NewTaskHandler(deps.Tasks)
	activityHandler := handlers.NewActivityHandler(deps.Events)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)
	healthHandler := handlers.NewHealthHandler(deps.Store)

	protect := auth.Middleware(deps.Issuer, deps.Users, deps.Revoker)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Check)

		r.Route("/auth", func(r chi.Router) {
			r.With(validation.Body[models.SignupRequest]()).Post("/signup", authHandler.Signup)
			r.With(validation.Body[models.LoginRequest]()).Post("/login", authHandler.Login)
			r.With(protect).Post("/logout", authHandler.Logout)
			r.With(protect).Get("/me", authHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(protect)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.GetAll)
				r.With(validation.Body[models.ProjectRequest]()).Post("/", projectHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", projectHandler.Get)
					r.With(validation.Body[models.ProjectUpdateRequest]()).Put("/", projectHandler.Update)
					r.Delete("/", projectHandler.Delete)
					r.Get("/tasks", taskHandler.GetForProject)
					r.With(validation.Body[models.TaskRequest]()).Post("/tasks", taskHandler.Create)
				})
			})

			r.Route("/tasks/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.Get)
				r.With(validation.Body[models.TaskUpdateRequest]()).Put("/", taskHandler.Update)
				r.Delete("/", taskHandler.Delete)
			})

			r.Get("/activity", activityHandler.GetRecent)
			r.Get("/ws", wsHandler.Serve)
		})
	})

	return r
}
