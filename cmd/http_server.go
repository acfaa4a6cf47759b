package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/audit"
	auditPostgres "github.com/frahmantamala/worklog-management/internal/audit/postgres"
	"github.com/frahmantamala/worklog-management/internal/auth"
	authPostgres "github.com/frahmantamala/worklog-management/internal/auth/postgres"
	"github.com/frahmantamala/worklog-management/internal/authz"
	"github.com/frahmantamala/worklog-management/internal/cache"
	"github.com/frahmantamala/worklog-management/internal/company"
	companyPostgres "github.com/frahmantamala/worklog-management/internal/company/postgres"
	"github.com/frahmantamala/worklog-management/internal/core/events"
	"github.com/frahmantamala/worklog-management/internal/holiday"
	holidayPostgres "github.com/frahmantamala/worklog-management/internal/holiday/postgres"
	"github.com/frahmantamala/worklog-management/internal/notification"
	notificationPostgres "github.com/frahmantamala/worklog-management/internal/notification/postgres"
	"github.com/frahmantamala/worklog-management/internal/obs"
	"github.com/frahmantamala/worklog-management/internal/project"
	projectPostgres "github.com/frahmantamala/worklog-management/internal/project/postgres"
	"github.com/frahmantamala/worklog-management/internal/team"
	teamPostgres "github.com/frahmantamala/worklog-management/internal/team/postgres"
	"github.com/frahmantamala/worklog-management/internal/timeentry"
	timeentryPostgres "github.com/frahmantamala/worklog-management/internal/timeentry/postgres"
	"github.com/frahmantamala/worklog-management/internal/transport/middleware"
	"github.com/frahmantamala/worklog-management/internal/transport/rest"
	"github.com/frahmantamala/worklog-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func startHTTPServer() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Format)
	log := logger.L()
	obs.Init()

	sqlxDB, err := initDB(cfg.Database)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Error("failed to initialize orm", "error", err)
		os.Exit(1)
	}

	// Shared infrastructure
	gate := authz.NewGate()
	recorder := audit.NewRecorder(auditPostgres.NewAuditRepository(gormDB), log)
	invalidator := cache.NewRouteVersions(log)
	eventBus := events.NewEventBus(log)
	validator := timeentry.NewValidator(timeentry.ValidatorConfig{
		MaxHoursPerEntry:  cfg.Timesheet.MaxHoursPerEntry,
		DailyHoursCeiling: cfg.Timesheet.DailyHoursCeiling,
		HardDailyCap:      cfg.Timesheet.HardDailyCap,
		FutureGrace:       cfg.Timesheet.FutureGrace,
		DurationTolerance: cfg.Timesheet.DurationTolerance,
	})

	// Feature services
	authRepo := authPostgres.NewRepository(gormDB)
	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen)
	portalTokens := auth.NewPortalTokenService(cfg.Portal.TokenSecret, cfg.Portal.TokenDuration)

	projectRepo := projectPostgres.NewProjectRepository(gormDB)
	projectService := project.NewService(projectRepo, gate, recorder, invalidator, eventBus, log)

	companyRepo := companyPostgres.NewCompanyRepository(gormDB)
	companyService := company.NewService(companyRepo, gate, recorder, invalidator, log)

	entryRepo := timeentryPostgres.NewTimeEntryRepository(gormDB)
	entryService := timeentry.NewService(entryRepo, projectRepo, companyRepo, gate, validator, recorder, invalidator, eventBus, log)

	teamService := team.NewService(teamPostgres.NewTeamRepository(gormDB), gate, recorder, invalidator, log)
	holidayService := holiday.NewService(holidayPostgres.NewHolidayRepository(gormDB), gate, recorder, invalidator, log)

	messageRepo := notificationPostgres.NewMessageRepository(gormDB)
	notificationService := notification.NewService(messageRepo, gate, log)

	// Project changes stale both the project list and any timesheet view
	// showing project context.
	eventBus.Subscribe(events.ProjectChanged, func(ctx context.Context, event events.Event) error {
		invalidator.Invalidate(project.RouteProjects)
		invalidator.Invalidate(timeentry.RouteTimesheet)
		return nil
	})

	eventBus.Subscribe(events.TimeEntryCreated, func(ctx context.Context, event events.Event) error {
		log.Debug("time entry created", "event_id", event.EventID())
		return nil
	})

	router := chi.NewRouter()
	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)

	rest.RegisterAllRoutes(router, sqlxDB.DB, rest.Handlers{
		Auth:         auth.NewHandler(authService, portalTokens, authRepo),
		TimeEntry:    timeentry.NewHandler(log, entryService),
		Project:      project.NewHandler(log, projectService),
		Team:         team.NewHandler(log, teamService),
		Holiday:      holiday.NewHandler(log, holidayService),
		Company:      company.NewHandler(log, companyService),
		Notification: notification.NewHandler(log, notificationService),
	}, rateLimiter, log)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
		if err := sqlxDB.Close(); err != nil {
			log.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	log.Info("server stopped")
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
