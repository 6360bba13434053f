package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/timecard-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

func NewRouter(JWTService jwt.Service, timecardHandler TimecardHandler, reportHandler ReportHandler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/timecards", func(r chi.Router) {
				r.Get("/", timecardHandler.List)
				r.Post("/check-in", timecardHandler.CheckIn)
				r.Post("/check-out", timecardHandler.CheckOut)
				r.Post("/bulk-approve", timecardHandler.BulkApprove)
				r.Get("/hour-bank", timecardHandler.HourBank)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", timecardHandler.Get)
					r.Get("/validation", timecardHandler.Validate)
					r.Get("/history", timecardHandler.History)
					r.Get("/can-approve", timecardHandler.CanApprove)
					r.Post("/approve", timecardHandler.Approve)
					r.Post("/reject", timecardHandler.Reject)
				})
			})

			r.Get("/reports/{kind}", reportHandler.Get)
		})
	})
	return r
}

// NewLogger builds the JSON logger used for access logs, in the ECS schema.
func NewLogger(app, version, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app),
		slog.String("version", version),
		slog.String("env", env),
	)
}
