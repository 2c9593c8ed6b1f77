package api

import (
	"net/http"

	"github.com/dom/jbf-storefront/internal/api/handlers"
	"github.com/dom/jbf-storefront/internal/api/middleware"
	"github.com/dom/jbf-storefront/internal/config"
	"github.com/dom/jbf-storefront/internal/service"
	"github.com/dom/jbf-storefront/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Deps are the non-service collaborators the router wires into handlers.
type Deps struct {
	Hub          *websocket.Hub
	MailPinger   handlers.Pinger
	MailNotifier service.Notifier
	Logger       *zap.Logger
}

func NewRouter(services *service.Services, deps Deps, cfg *config.Config) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	if cfg.TrustProxy {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handlers.NewAuthHandler(services.Auth, logger)
	categoryHandler := handlers.NewCategoryHandler(services.Category, logger)
	productHandler := handlers.NewProductHandler(services.Product, logger)
	contactHandler := handlers.NewContactHandler(services.Contact, logger)
	mailHandler := handlers.NewMailHandler(deps.MailPinger, deps.MailNotifier, handlers.MailSettings{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		User:       cfg.SMTPUser,
		AdminEmail: cfg.AdminEmail,
		Timeout:    cfg.MailTimeout,
	}, logger)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, services.Auth, cfg.CORSAllowedOrigins, logger)

	requireAdmin := middleware.Auth(services.Auth, logger.Named("auth"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Public catalogue reads; an admin token widens product visibility.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(services.Auth))
			r.Get("/categories", categoryHandler.List)
			r.Get("/categories/{id}", categoryHandler.Get)
			r.Get("/products", productHandler.List)
			r.Get("/products/{id}", productHandler.Get)
			r.Get("/products/{id}/similar", productHandler.Similar)
		})

		r.Post("/contact", contactHandler.Submit)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)

			r.Post("/categories", categoryHandler.Create)
			r.Put("/categories/{id}", categoryHandler.Update)
			r.Delete("/categories/{id}", categoryHandler.Delete)

			r.Post("/products", productHandler.Create)
			r.Put("/products/{id}", productHandler.Update)
			r.Delete("/products/{id}", productHandler.Delete)

			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", contactHandler.List)
				r.Get("/{id}", contactHandler.Get)
				r.Put("/{id}", contactHandler.MarkRead)
				r.Delete("/{id}", contactHandler.Delete)
			})

			r.Route("/mail", func(r chi.Router) {
				r.Get("/status", mailHandler.Status)
				r.Post("/test", mailHandler.Test)
			})
		})

		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
