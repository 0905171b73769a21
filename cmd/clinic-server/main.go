package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Lucklimp/eva-2/internal/config"
	"github.com/Lucklimp/eva-2/internal/domain/consultation"
	"github.com/Lucklimp/eva-2/internal/domain/identity"
	"github.com/Lucklimp/eva-2/internal/domain/medication"
	"github.com/Lucklimp/eva-2/internal/domain/organization"
	"github.com/Lucklimp/eva-2/internal/platform/db"
	"github.com/Lucklimp/eva-2/internal/platform/events"
	"github.com/Lucklimp/eva-2/internal/platform/middleware"
	"github.com/Lucklimp/eva-2/internal/platform/openapi"
	"github.com/Lucklimp/eva-2/internal/platform/web"
	"github.com/Lucklimp/eva-2/migrations"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Salud Vital clinic back office",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTML and JSON API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, schema, closeFn, err := openMigrator(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			fmt.Fprintf(cmd.OutOrStdout(), "Running migrations on schema: %s\n", schema)
			count, err := migrator.Up(cmd.Context(), schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	addMigrateFlags(upCmd)
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, schema, closeFn, err := openMigrator(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			statuses, err := migrator.Status(cmd.Context(), schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printStatus(cmd, schema, statuses)
			return nil
		},
	}
	addMigrateFlags(statusCmd)
	cmd.AddCommand(statusCmd)

	return cmd
}

func addMigrateFlags(cmd *cobra.Command) {
	cmd.Flags().String("schema", "", "Target schema for migrations (default DB_SCHEMA)")
	cmd.Flags().String("dir", "", "Read migrations from this directory instead of the embedded set")
}

// migrationSource returns the embedded migrations unless dir names a directory.
func migrationSource(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

func openMigrator(cmd *cobra.Command) (*db.Migrator, string, func(), error) {
	schema, _ := cmd.Flags().GetString("schema")
	dir, _ := cmd.Flags().GetString("dir")

	cfg, err := config.Load()
	if err != nil {
		return nil, "", nil, err
	}
	if schema == "" {
		schema = cfg.DBSchema
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	// The migrator sets search_path per transaction, so the pool stays on public.
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.DefaultSchema, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, "", nil, err
	}
	return db.NewMigrator(pool, migrationSource(dir)), schema, pool.Close, nil
}

func printStatus(cmd *cobra.Command, schema string, statuses []db.MigrationStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Migration status for schema: %s\n", schema)
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}
	return logger
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBSchema, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")

	var pub events.Publisher = events.NewLogPublisher(logger)
	if cfg.EventsEnabled() {
		kafkaPub := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() {
			if err := kafkaPub.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close kafka writer")
			}
		}()
		pub = kafkaPub
		logger.Info().Stringer("publisher", kafkaPub).Msg("publishing change events")
	}

	e, err := newServer(cfg, pool, pub, logger)
	if err != nil {
		return err
	}
	e.GET("/health/db", db.PoolHealthHandler(pool))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// newServer builds the Echo instance with every route except the database
// health check.
func newServer(cfg *config.Config, q db.Querier, pub events.Publisher, logger zerolog.Logger) (*echo.Echo, error) {
	ui, err := web.New(logger)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = ui

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders("/api/"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	api := e.Group("/api/v1")
	site := e.Group("")
	if cfg.RateLimitRPS > 0 {
		rl := middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			BurstSize:         cfg.RateLimitBurst,
		})
		api.Use(rl)
	}
	docs := openapi.NewGenerator("Salud Vital API", version, "/api/v1")

	// Organization
	deptRepo := organization.NewDepartmentRepoPG(q)
	specRepo := organization.NewSpecialtyRepoPG(q)
	deptSvc := organization.NewDepartmentService(deptRepo)
	specSvc := organization.NewSpecialtyService(specRepo, deptRepo)
	organization.NewHandler(deptSvc, specSvc, pub).RegisterRoutes(api, site, ui, docs)

	// Identity
	patientSvc := identity.NewPatientService(identity.NewPatientRepoPG(q))
	doctorSvc := identity.NewDoctorService(identity.NewDoctorRepoPG(q), specSvc)
	identity.NewHandler(patientSvc, doctorSvc, specSvc, pub).RegisterRoutes(api, site, ui, docs)

	// Consultation
	consultRepo := consultation.NewConsultationRepoPG(q)
	consultSvc := consultation.NewConsultationService(consultRepo, patientSvc, doctorSvc)
	treatSvc := consultation.NewTreatmentService(consultation.NewTreatmentRepoPG(q), consultRepo)
	consultation.NewHandler(consultSvc, treatSvc, patientSvc, doctorSvc, pub).RegisterRoutes(api, site, ui, docs)

	// Medication
	medRepo := medication.NewMedicationRepoPG(q)
	medSvc := medication.NewMedicationService(medRepo)
	rxSvc := medication.NewPrescriptionService(medication.NewPrescriptionRepoPG(q), medRepo, consultSvc)
	medication.NewHandler(medSvc, rxSvc, consultSvc, pub).RegisterRoutes(api, site, ui, docs)

	ui.RegisterHome(site)
	docs.RegisterRoutes(api)

	logger.Info().Int("routes", len(e.Routes())).Msg("routes registered")
	return e, nil
}
