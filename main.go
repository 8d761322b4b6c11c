package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "go.uber.org/automaxprocs"

	"print-shop-mis/app"
	"print-shop-mis/config"
	"print-shop-mis/db"
	"print-shop-mis/logger"
	"print-shop-mis/models"
	"print-shop-mis/repository"
	"print-shop-mis/service"
)

const (
	appName         = "print-shop-mis"
	shutdownTimeout = 10 * time.Second
)

var (
	cfg        *config.Config
	syncLogger func()
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Print shop management backend",
	Long: `Backend for a print shop: customers, departments and member holdings,
digital and offset print orders with printable bills, expenses and a finance ledger.

Without a subcommand the HTTP server is started.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: .env file not loaded (%v), using system environment variables\n", err)
		}
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		syncLogger = logger.Init(logger.Config{
			App:   appName,
			Level: cfg.Log.Level,
			Dir:   cfg.Log.Dir,
			File:  cfg.Log.File || cfg.IsProduction(),
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if syncLogger != nil {
			syncLogger()
		}
	},
	RunE: serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  serve,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := db.InitDB(ctx, cfg.Database); err != nil {
			return err
		}
		defer db.CloseDB()

		n, err := db.Migrate(ctx, db.DB)
		if err != nil {
			return err
		}
		zap.S().Infof("✅ %d migration(s) applied", n)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage console accounts",
}

var (
	newUser models.CreateUserRequest
)

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a console account",
	Example: `  print-shop-mis user create --fullname "Sara" --email sara@example.com --password secret1 --role admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := db.InitDB(ctx, cfg.Database); err != nil {
			return err
		}
		defer db.CloseDB()

		auth := service.NewAuthService(repository.NewUserRepository(db.DB), service.NewMemorySessionStore(), cfg.Session.TTL)
		u, err := auth.CreateUser(ctx, &newUser)
		if err != nil {
			return err
		}
		zap.S().Infof("✅ User created: id=%d email=%s role=%s", u.ID, u.Email, u.Role)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded outside production")

	userCreateCmd.Flags().StringVar(&newUser.Fullname, "fullname", "", "full name")
	userCreateCmd.Flags().StringVar(&newUser.Email, "email", "", "email used to sign in")
	userCreateCmd.Flags().StringVar(&newUser.Password, "password", "", "password (min 6 characters)")
	userCreateCmd.Flags().StringVar(&newUser.Role, "role", models.RoleAdmin, "admin or reception")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, userCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.Initialize(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker)
	addr := "0.0.0.0:" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           application.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.S().Infof("🚀 Server starting on %s (env=%s)", addr, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.S().Infof("🛑 Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
