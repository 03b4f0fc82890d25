package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/construtek/nomina-backend-go/internal/config"
	appHTTP "github.com/construtek/nomina-backend-go/internal/handler/http"
	"github.com/construtek/nomina-backend-go/internal/pkg/cron"
	"github.com/construtek/nomina-backend-go/internal/pkg/database"
	"github.com/construtek/nomina-backend-go/internal/repository/postgresql"
	payrollService "github.com/construtek/nomina-backend-go/internal/service/payroll"
	reconcileService "github.com/construtek/nomina-backend-go/internal/service/reconcile"
	weekService "github.com/construtek/nomina-backend-go/internal/service/week"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn, cfg.Database.QueryTimeout)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.SlogLevel(),
	}))
	slog.SetDefault(logger)

	weekRepo := postgresql.NewWeekRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)

	weekSvc := weekService.NewWeekService(db, weekRepo, auditRepo)
	payrollSvc := payrollService.NewPayrollService(db, payrollRepo, weekSvc, auditRepo)
	reconcileSvc := reconcileService.NewReconcileService(db, weekRepo, payrollRepo, auditRepo, logger)

	weekHandler := appHTTP.NewWeekHandler(weekSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	reconcileHandler := appHTTP.NewReconcileHandler(reconcileSvc)
	auditHandler := appHTTP.NewAuditHandler(auditRepo)

	scheduler := cron.NewScheduler(logger)
	cron.NewReconcileJobs(reconcileSvc, cfg.Reconcile.Interval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		cfg,
		weekHandler,
		payrollHandler,
		reconcileHandler,
		auditHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{Addr: port, Handler: router}

	go func() {
		slog.Info("Server running", "addr", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	if err := server.Close(); err != nil {
		slog.Error("Server close error", "error", err)
	}
}
