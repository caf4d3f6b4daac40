package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/whitecross/server/internal/config"
	"github.com/whitecross/server/internal/domain/account"
	"github.com/whitecross/server/internal/domain/healthrecord"
	"github.com/whitecross/server/internal/domain/medication"
	"github.com/whitecross/server/internal/domain/student"
	"github.com/whitecross/server/internal/platform/auth"
	"github.com/whitecross/server/internal/platform/db"
	"github.com/whitecross/server/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "whitecross-server",
		Short: "White Cross school health API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
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
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			fmt.Println("Restore from a database backup instead.")
			return nil
		},
	})

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")
			firstName, _ := cmd.Flags().GetString("first-name")
			lastName, _ := cmd.Flags().GetString("last-name")
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
			signingKey, err := resolveSigningKey(cfg.AuthSigningKey)
			if err != nil {
				return err
			}
			tokens := auth.NewTokenIssuer(signingKey, cfg.AuthIssuer, cfg.AuthAudience, cfg.SessionTTL())
			revoked := auth.NewRevocationList()
			defer revoked.Close()
			sessions := auth.NewMemorySessionStore()

			svc := account.NewService(
				account.NewUserRepo(pool),
				account.NewHasher(cfg.BcryptCost),
				tokens, sessions, revoked,
				cfg.DefaultLanding, logger,
			)
			user, err := svc.CreateUser(ctx, account.CreateUserRequest{
				Email:     email,
				Password:  password,
				Role:      auth.Role(role),
				FirstName: firstName,
				LastName:  lastName,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created user %s (%s) with role %s\n", user.Email, user.ID, user.Role)
			return nil
		},
	}
	createCmd.Flags().String("email", "", "Login email")
	createCmd.Flags().String("password", "", "Initial password")
	createCmd.Flags().String("role", "READ_ONLY", "Role (ADMIN, NURSE, COUNSELOR, READ_ONLY)")
	createCmd.Flags().String("first-name", "", "First name")
	createCmd.Flags().String("last-name", "", "Last name")

	cmd.AddCommand(createCmd)
	return cmd
}

// resolveSigningKey accepts the key as hex (preferred) or raw bytes.
func resolveSigningKey(value string) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("AUTH_SIGNING_KEY is required")
	}
	if decoded, err := hex.DecodeString(value); err == nil {
		return decoded, nil
	}
	if len(value) < 32 {
		return nil, fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 bytes (or hex-encoded)")
	}
	return []byte(value), nil
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Auth plumbing
	signingKey, err := resolveSigningKey(cfg.AuthSigningKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid signing key")
	}
	tokens := auth.NewTokenIssuer(signingKey, cfg.AuthIssuer, cfg.AuthAudience, cfg.SessionTTL())
	revoked := auth.NewRevocationList()
	defer revoked.Close()

	var sessions auth.SessionStore
	switch cfg.SessionBackend {
	case "postgres":
		pgSessions := auth.NewPGSessionStoreFromPool(pool)
		sessions = pgSessions
		go func() {
			ticker := time.NewTicker(10 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				if err := pgSessions.PurgeExpired(context.Background()); err != nil {
					logger.Warn().Err(err).Msg("session purge failed")
				}
			}
		}()
	default:
		sessions = auth.NewMemorySessionStore()
	}
	guard := auth.NewGuard(tokens, sessions, revoked)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	e.Use(middleware.RateLimit(rateLimitCfg))

	e.Use(middleware.Audit(logger))
	e.Use(auth.SessionGuard(guard, auth.GuardSkipper))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Domain handlers
	apiV1 := e.Group("/api/v1")

	accountSvc := account.NewService(
		account.NewUserRepo(pool),
		account.NewHasher(cfg.BcryptCost),
		tokens, sessions, revoked,
		cfg.DefaultLanding, logger,
	)
	account.NewHandler(accountSvc).RegisterRoutes(apiV1)

	studentSvc := student.NewService(student.NewStudentRepo(pool), student.NewContactRepo(pool))
	student.NewHandler(studentSvc).RegisterRoutes(apiV1)

	medicationSvc := medication.NewService(medication.NewMedicationRepo(pool), medication.NewAdministrationRepo(pool))
	medication.NewHandler(medicationSvc).RegisterRoutes(apiV1)

	recordSvc := healthrecord.NewService(healthrecord.NewRecordRepo(pool), healthrecord.NewAllergyRepo(pool))
	healthrecord.NewHandler(recordSvc).RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
