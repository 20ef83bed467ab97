package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/baechuer/paradies-dashboard/internal/api/handlers"
	"github.com/baechuer/paradies-dashboard/internal/config"
	"github.com/baechuer/paradies-dashboard/internal/logbook"
	"github.com/baechuer/paradies-dashboard/internal/logger"
	"github.com/baechuer/paradies-dashboard/internal/proxy"
	"github.com/baechuer/paradies-dashboard/internal/session"
	"github.com/baechuer/paradies-dashboard/middleware"
)

const (
	loginPath = "/login"
	// loginAttemptsPerMinute bounds credential guessing per client IP.
	loginAttemptsPerMinute = 10
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Store       session.Store
	Decoder     *session.Decoder
	Auth        handlers.LoginAPI
	Logbook     *logbook.Service
	Readiness   *handlers.ReadinessHandler
	RateLimiter *middleware.RedisRateLimiter
}

func NewRouter(cfg *config.Config, deps Deps) (http.Handler, error) {
	views, err := handlers.NewViews()
	if err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}
	apiProxy, err := proxy.New(cfg.APIEndpoint, "/api", "")
	if err != nil {
		return nil, fmt.Errorf("invalid API endpoint: %w", err)
	}

	var screens handlers.ScreenForgetter
	if deps.Logbook != nil {
		screens = deps.Logbook
	}
	authH := handlers.NewAuthHandler(deps.Auth, deps.Store, deps.Decoder, screens, views)
	pageH := handlers.NewPageHandler(views, cfg.CookieSecure)
	logbookH := handlers.NewLogbookHandler(deps.Logbook, views, cfg.CookieSecure)
	readiness := deps.Readiness
	if readiness == nil {
		readiness = handlers.NewReadinessHandler()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Tracing("dashboard-bff"))
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders)

	r.Get("/healthz", readiness.Healthz)
	r.Get("/readyz", readiness.Readyz)
	r.Handle("/metrics", middleware.MetricsHandler())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	r.Get(loginPath, authH.LoginPage)
	r.Group(func(r chi.Router) {
		if cfg.RateLimitEnabled {
			r.Use(httprate.Limit(
				loginAttemptsPerMinute,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
			))
		}
		r.Post(loginPath, authH.Login)
	})
	r.Post("/logout", authH.Logout)

	r.Group(func(r chi.Router) {
		r.Use(session.Guard(deps.Store, deps.Decoder, loginPath))

		r.Get("/dashboard", pageH.Dashboard)
		r.Get("/profile", pageH.Profile)
		r.Get("/settings", pageH.Settings)

		r.Route("/dashboard/logbook", func(r chi.Router) {
			r.Get("/", logbookH.Show)
			r.Post("/dialog/close", logbookH.Close)

			r.Group(func(r chi.Router) {
				if cfg.RateLimitEnabled {
					r.Use(deps.RateLimiter.Middleware(middleware.RateLimitConfig{
						Scope:  "logbook",
						Limit:  cfg.RateLimitRPM,
						Window: time.Minute,
						KeyFn:  middleware.KeyByCookie(cfg.SessionCookieName),
					}))
				}
				r.Post("/users", logbookH.Create)
				r.Post("/users/{id}", logbookH.Update)
				r.Post("/users/{id}/delete", logbookH.Delete)
			})
		})
	})

	// The API passthrough answers CORS preflights before the guard sees them.
	r.Route("/api", func(r chi.Router) {
		if len(cfg.CORSAllowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   cfg.CORSAllowedOrigins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type", middleware.HeaderXRequestID},
				ExposedHeaders:   []string{middleware.HeaderXRequestID},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}
		r.Use(session.Guard(deps.Store, deps.Decoder, loginPath))
		r.Handle("/*", apiProxy)
	})

	logger.Log.Info().
		Str("api", cfg.APIEndpoint).
		Msg("routes_mounted")

	return r, nil
}
