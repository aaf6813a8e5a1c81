package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"clinic-appointments-server/internal/config"
	"clinic-appointments-server/internal/logger"
	"clinic-appointments-server/internal/middleware"
	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/routes"
)

const shutdownTimeout = 30 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic appointment lifecycle server",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; real environment variables win
			_ = godotenv.Load()
		},
		SilenceUsage: true,
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
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			return withDB(db, func(db *gorm.DB) error {
				if err := models.Migrate(db); err != nil {
					return err
				}
				log.Info().Str("driver", cfg.Database.Driver).Msg("migrations applied")
				return nil
			})
		},
	}
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage directory accounts",
	}

	var email, password, role, firstName, lastName, phone string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin, doctor or patient account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			db, err := models.InitDB(dbConfig(cfg))
			if err != nil {
				return err
			}
			return withDB(db, func(db *gorm.DB) error {
				user, err := createUser(db, email, password, models.Role(strings.ToLower(role)), firstName, lastName, phone)
				if err != nil {
					return err
				}
				log.Info().Str("user_id", user.ID).Str("email", user.Email).Str("role", string(user.Role)).Msg("user created")
				fmt.Fprintln(cmd.OutOrStdout(), user.ID)
				return nil
			})
		},
	}
	createCmd.Flags().StringVar(&email, "email", "", "login email (required)")
	createCmd.Flags().StringVar(&password, "password", "", "initial password, at least 8 characters (required)")
	createCmd.Flags().StringVar(&role, "role", string(models.RolePatient), "admin, doctor or patient")
	createCmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	createCmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	createCmd.Flags().StringVar(&phone, "phone", "", "phone number")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")

	cmd.AddCommand(createCmd)
	return cmd
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid config: %w", err)
	}
	return cfg, logger.New(cfg.LogLevel, cfg.Environment), nil
}

func dbConfig(cfg *config.Config) models.DatabaseConfig {
	return models.DatabaseConfig{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		LogSQL:       cfg.IsDev() && cfg.LogLevel == "debug",
	}
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	return models.OpenDB(dbConfig(cfg))
}

// withDB runs fn and closes the pool behind db afterwards.
func withDB(db *gorm.DB, fn func(*gorm.DB) error) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return fn(db)
}

func createUser(db *gorm.DB, email, password string, role models.Role, firstName, lastName, phone string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, errors.New("email is required")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	user := &models.User{
		Email:       email,
		FirstName:   firstName,
		LastName:    lastName,
		Role:        role,
		PhoneNumber: phone,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func newRouter(cfg *config.Config, db *gorm.DB, log zerolog.Logger) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(log), middleware.Recovery(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, db, cfg, log)
	return router
}

func runServer() error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	db, err := models.InitDB(dbConfig(cfg))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, db, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Str("driver", cfg.Database.Driver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}
