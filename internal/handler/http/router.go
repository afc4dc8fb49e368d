package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/attendance-ledger/internal/config"
	"github.com/cmlabs-hris/attendance-ledger/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	cfg *config.Config,
	JWTService jwt.Service,
	ledgerHandler LedgerHandler,
	approvalHandler ApprovalHandler,
	segmentHandler SegmentHandler,
	eventHandler EventHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-ledger"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.SlogLevel(),
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// SSE authenticates with a short-lived token in the query string
		r.Get("/events/stream", eventHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/events/token", eventHandler.GetSSEToken)

			r.Route("/attendance", func(r chi.Router) {
				r.Use(chiMiddleware.AllowContentType("application/json"))

				r.Get("/", ledgerHandler.Get)
				r.Get("/by-submission", ledgerHandler.GetBySubmittedAt)
				r.Post("/clock-in", ledgerHandler.ClockIn)
				r.Post("/clock-out", ledgerHandler.ClockOut)
				r.Put("/", ledgerHandler.Upsert)
				r.Post("/overtime/preview", ledgerHandler.PreviewOvertime)

				// Approver or admin
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(jwt.RoleApprover, jwt.RoleAdmin))
					r.Post("/approve", approvalHandler.Approve)
					r.Post("/approve/latest", approvalHandler.ApproveLatest)
					r.Post("/deny", approvalHandler.Deny)
				})
			})

			r.Route("/segments", func(r chi.Router) {
				r.Get("/{year}/{month}/records", ledgerHandler.List)
				r.Get("/{year}/{month}/latest", ledgerHandler.Latest)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(jwt.RoleAdmin))
					r.Post("/", segmentHandler.Provision)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	return r
}
