package http

import (
	"log/slog"
	"os"

	"github.com/construtek/nomina-backend-go/internal/config"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

func NewRouter(
	cfg *config.Config,
	weekHandler WeekHandler,
	payrollHandler PayrollHandler,
	reconcileHandler ReconcileHandler,
	auditHandler AuditHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "nomina-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Actor-Id"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.App.SlogLevel(),
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/weeks", func(r chi.Router) {
			r.Post("/resolve", weekHandler.Resolve)
			r.Post("/seed/{year}", weekHandler.SeedYear)
			r.Get("/", weekHandler.List)
			r.Get("/current", weekHandler.Current)
			r.Get("/{id}", weekHandler.GetByID)
			r.Patch("/{id}/state", weekHandler.Transition)
			r.Get("/{id}/totals", payrollHandler.WeekTotals)
		})

		r.Route("/payroll/records", func(r chi.Router) {
			r.Put("/", payrollHandler.UpsertRecord)
			r.Get("/", payrollHandler.ListRecords)
			r.Get("/{id}", payrollHandler.GetRecord)
			r.Get("/{id}/snapshot", payrollHandler.Snapshot)
			r.Post("/{id}/pay", payrollHandler.MarkPaid)
			r.Post("/{id}/partial-payment", payrollHandler.RegisterPartialPayment)
			r.Patch("/{id}/state", payrollHandler.ChangeState)
		})

		r.Route("/debts", func(r chi.Router) {
			r.Get("/", payrollHandler.ListDebts)
			r.Post("/{id}/settle", payrollHandler.SettleDebt)
		})

		r.Route("/reconcile", func(r chi.Router) {
			r.Get("/audit", reconcileHandler.Audit)
			r.Post("/repair", reconcileHandler.Repair)
			r.Post("/dedupe", reconcileHandler.Dedupe)
			r.Post("/run", reconcileHandler.Run)
		})

		r.Get("/audit/entries", auditHandler.List)
	})
	return r
}
