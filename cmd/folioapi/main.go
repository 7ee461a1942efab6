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

	"folioterm/internal/config"
	"folioterm/internal/gmail"
	"folioterm/internal/logging"
	"folioterm/internal/server"
	"folioterm/internal/store"
)

var (
	// Global flags
	configPath string
	addr       string
	dbURL      string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "folioapi",
	Short: "Development backend for the folioterm contact form",
	Long: `folioapi serves the contact endpoints folioterm talks to, storing messages
in SQLite (or PostgreSQL when DATABASE_URL is a postgres:// URL). When a Gmail
credentials directory is configured, submitters are emailed when their message
is accepted or rejected.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		var err error
		logger, err = logging.New("stderr", level)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: serve,
}

var gmailAuthCmd = &cobra.Command{
	Use:   "gmail-auth",
	Short: "Authorise folioapi to send notification emails through Gmail",
	Long: `gmail-auth reads client_secret.json from the Gmail directory
(FOLIOAPI_GMAIL_DIR or server.gmail_dir), runs the browser consent flow and
caches the token next to it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		dir := cfg.Server.GmailDir
		if dir == "" {
			dir = config.Dir()
		}
		return gmail.Authorize(cmd.Context(), dir, cmd.InOrStdin(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&addr, "addr", "", "Listen address (or FOLIOAPI_ADDR)")
	rootCmd.Flags().StringVar(&dbURL, "db", "", "SQLite path or postgres:// URL (or DATABASE_URL)")
	rootCmd.AddCommand(gmailAuthCmd)
}

func notifier(ctx context.Context, cfg config.ServerConfig) (server.Notifier, error) {
	if cfg.GmailDir == "" {
		return nil, nil
	}
	svc, err := gmail.NewService(ctx, cfg.GmailDir)
	if err != nil {
		return nil, fmt.Errorf("gmail notifications: %w", err)
	}
	return gmail.NewNotifier(svc, cfg.NotifyFrom, logger.Named("gmail")), nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = addr
	}
	if cmd.Flags().Changed("db") {
		cfg.Server.DatabaseURL = dbURL
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Server.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithAllowOrigin(cfg.Server.AllowOrigin),
		server.WithRateLimit(cfg.Server.RateLimit, cfg.Server.Window()),
		server.WithTrustedProxies(cfg.Server.TrustedProxies),
	}
	n, err := notifier(ctx, cfg.Server)
	if err != nil {
		return err
	}
	if n != nil {
		opts = append(opts, server.WithNotifier(n))
	}
	api := server.New(st, opts...)
	defer api.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", cfg.Server.Addr),
			zap.Bool("postgres", store.IsPostgres(cfg.Server.DatabaseURL)),
			zap.Bool("notifications", n != nil),
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
