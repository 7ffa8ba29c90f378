// Zapdesk - tenant lifecycle & subscription enforcement backend
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zapdesk/zapdesk/internal/billing"
	"github.com/zapdesk/zapdesk/internal/config"
	"github.com/zapdesk/zapdesk/internal/health"
	"github.com/zapdesk/zapdesk/internal/lifecycle"
	"github.com/zapdesk/zapdesk/internal/logging"
	"github.com/zapdesk/zapdesk/internal/messenger"
	"github.com/zapdesk/zapdesk/internal/metrics"
	"github.com/zapdesk/zapdesk/internal/notify"
	"github.com/zapdesk/zapdesk/internal/plan"
	"github.com/zapdesk/zapdesk/internal/tenant"
)

// Build info - set by ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	logger := logging.New("info", "text")

	logger.Info("starting zapdesk lifecycle engine",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = logging.New(cfg.LogLevel, cfg.LogFmt)

	metrics.Register()

	healthReg := health.NewRegistry()

	// Stores: Postgres when configured, in-memory otherwise (dev only).
	var (
		tenants  tenant.Store
		plans    plan.Store
		payments billing.Store
		ledger   notify.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		if err := db.PingContext(context.Background()); err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		tenants = tenant.NewPostgresStore(db)
		plans = plan.NewPostgresStore(db)
		payments = billing.NewPostgresStore(db)
		ledger = notify.NewPostgresStore(db)
		healthReg.Register("database", health.DatabaseChecker("database", db))
		logger.Info("using postgres stores")
	} else {
		if cfg.IsProduction() {
			logger.Error("DATABASE_URL is required in production")
			os.Exit(1)
		}
		tenants = tenant.NewMemoryStore()
		plans = plan.NewMemoryStore()
		payments = billing.NewMemoryStore()
		ledger = notify.NewMemoryStore()
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var mailer notify.Mailer
	if cfg.MailerURL != "" {
		mailer = notify.NewHTTPMailer(cfg.MailerURL, cfg.MailerAPIKey)
	} else {
		mailer = &notify.LogMailer{Logger: logger}
		logger.Warn("MAILER_URL not set, notifications will only be logged")
	}
	notifier := notify.NewService(ledger, mailer, cfg.DedupWindow)

	gateway := billing.NewAsaasClient(cfg.AsaasBaseURL, cfg.AsaasAPIKey)
	provider := messenger.NewClient(cfg.WAProviderURL, cfg.WAProviderToken)

	engine := lifecycle.NewEngine(tenants, plans, payments, gateway, notifier, provider, logger,
		lifecycle.Options{
			Grace:          cfg.Grace(),
			RenewalTerm:    cfg.RenewalTerm(),
			RenewalCharges: cfg.RenewalChargesEnabled,
		})

	scheduler := lifecycle.NewScheduler(engine, cfg.BillingInterval, cfg.RetentionInterval, logger)
	healthReg.Register("scheduler", health.BoolChecker("scheduler", scheduler.Running))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go scheduler.Start(ctx)

	// Ops-only HTTP surface; the admin CRUD API is a separate service.
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", func(c *gin.Context) {
		healthy, statuses := healthReg.CheckAll(c.Request.Context())
		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"healthy": healthy, "checks": statuses})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("ops server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ops server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("ops server shutdown", "error", err)
	}
}
