package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-ledger/internal/config"
	"github.com/cmlabs-hris/attendance-ledger/internal/domain/ledger"
	domainNotification "github.com/cmlabs-hris/attendance-ledger/internal/domain/notification"
	appHTTP "github.com/cmlabs-hris/attendance-ledger/internal/handler/http"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/keylock"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/localdate"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/sheet"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-ledger/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-ledger/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-ledger/internal/repository/spreadsheet"
	approvalService "github.com/cmlabs-hris/attendance-ledger/internal/service/approval"
	ledgerService "github.com/cmlabs-hris/attendance-ledger/internal/service/ledger"
	notificationService "github.com/cmlabs-hris/attendance-ledger/internal/service/notification"
	"github.com/cmlabs-hris/attendance-ledger/internal/service/overtime"
	"github.com/cmlabs-hris/attendance-ledger/internal/service/segment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx := context.Background()

	// Backing spreadsheet
	var backend sheet.Backend
	switch cfg.Ledger.Store {
	case config.StoreXLSX:
		workbook, err := sheet.OpenWorkbook(cfg.Ledger.WorkbookPath)
		if err != nil {
			slog.Error("failed to open workbook", "path", cfg.Ledger.WorkbookPath, "error", err)
			os.Exit(1)
		}
		defer workbook.Close()
		backend = workbook
	case config.StoreMemory:
		backend = sheet.NewMemory()
	}

	// Schema registry
	var registry ledger.SchemaRegistry
	var archive domainNotification.Sink
	switch cfg.Ledger.SchemaRegistry {
	case config.RegistryPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgresql.Migrate(ctx, db); err != nil {
			slog.Error("failed to migrate schema registry", "error", err)
			os.Exit(1)
		}
		registry = postgresql.NewSegmentSchemaRepository(db)
		archive = postgresql.NewNotificationSink(db)
	default:
		registry = memory.NewSegmentSchemaRepository()
	}

	names := ledger.ParseNameMatch(cfg.Ledger.NameMatch)
	days := localdate.NewDayNamer(cfg.Ledger.Language)

	codec := spreadsheet.NewCodec(days)
	detector := spreadsheet.NewSchemaDetector(backend, registry)
	locator := spreadsheet.NewRecordLocator(backend, codec, names)
	ledgerRepo := spreadsheet.NewLedgerRepository(backend, detector, locator, codec)

	// Notifications
	hub := sse.NewHub(domainNotification.TopicAll)
	dedup := notificationService.NewDeduplicator(cfg.Notify.DedupSize, cfg.Notify.DedupWindow)
	sinks := []domainNotification.Sink{
		notificationService.NewHubSink(hub),
		notificationService.NewLogSink(slog.Default()),
	}
	if archive != nil {
		sinks = append(sinks, archive)
	}
	notifService := notificationService.NewNotificationService(hub, dedup, sinks, notificationService.Config{
		WorkerCount: cfg.Notify.Workers,
		QueueSize:   cfg.Notify.QueueSize,
	})

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	locks := keylock.New()
	calc := overtime.NewCalculator()
	provisioner := segment.NewProvisioner(backend, registry, ledgerRepo, notifService)
	writer := ledgerService.NewWriter(ledgerRepo, provisioner, calc, locks, days, ledgerService.WriterConfig{
		Epoch:              localdate.ParseEpoch(cfg.Ledger.YearEpoch),
		NameMatch:          names,
		VerifyBeforeAppend: cfg.Ledger.VerifyBeforeAppend,
		AutoProvision:      cfg.Ledger.AutoProvision,
	})
	attendanceLedger := ledgerService.NewLedgerService(writer, ledgerRepo, calc, notifService, names)
	approvals := approvalService.NewApprovalService(ledgerRepo, locks, names, notifService)

	// Background jobs
	scheduler := cron.NewScheduler()
	if cfg.Ledger.AutoProvision {
		cron.NewSegmentJobs(provisioner).RegisterJobs(scheduler)
	}
	scheduler.Start()

	router := appHTTP.NewRouter(
		cfg,
		JWTService,
		appHTTP.NewLedgerHandler(attendanceLedger),
		appHTTP.NewApprovalHandler(approvals),
		appHTTP.NewSegmentHandler(provisioner),
		appHTTP.NewEventHandler(notifService, JWTService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server running", "addr", fmt.Sprintf("http://localhost%s", server.Addr), "store", cfg.Ledger.Store, "registry", cfg.Ledger.SchemaRegistry)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	scheduler.Stop()
	notifService.Stop()
}
