package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/podology-frontdesk/internal/appointments"
	"github.com/wolfman30/podology-frontdesk/internal/calendar"
	httpmiddleware "github.com/wolfman30/podology-frontdesk/internal/http/middleware"
	"github.com/wolfman30/podology-frontdesk/internal/reminders"
	"github.com/wolfman30/podology-frontdesk/pkg/logging"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	CalendarHandler     *calendar.Handler
	RemindersHandler    *reminders.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// StaffJWTSecret protects /api when set. Empty leaves the API open for local use.
	StaffJWTSecret string

	// RateLimitRPS limits mark-sent per client. Zero disables the limiter.
	RateLimitRPS   float64
	RateLimitBurst int

	// Readiness dependencies (optional)
	DB    Pinger
	Cache Pinger
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		public.Get("/ready", readinessCheck(cfg.DB, cfg.Cache))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Route("/api", func(api chi.Router) {
		// Preflights carry no Authorization header; answer them before the token check.
		if len(cfg.CORSAllowedOrigins) > 0 {
			api.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
		}
		if cfg.StaffJWTSecret != "" {
			api.Use(httpmiddleware.StaffJWT(cfg.StaffJWTSecret))
		}
		if cfg.AppointmentsHandler != nil {
			cfg.AppointmentsHandler.RegisterRoutes(api)
		}
		if cfg.CalendarHandler != nil {
			cfg.CalendarHandler.RegisterRoutes(api)
		}
		if cfg.RemindersHandler != nil {
			cfg.RemindersHandler.RegisterRoutes(api)
			markSent := http.Handler(http.HandlerFunc(cfg.RemindersHandler.MarkSent))
			if cfg.RateLimitRPS > 0 {
				markSent = httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)(markSent)
			}
			api.Method(http.MethodPost, "/notifications/{id}/mark-sent", markSent)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readinessCheck(db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		status := http.StatusOK
		for name, dep := range map[string]Pinger{"database": db, "redis": cache} {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		state := "ready"
		if status != http.StatusOK {
			state = "degraded"
		}
		writeJSON(w, status, map[string]any{"status": state, "checks": checks})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
