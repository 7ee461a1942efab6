package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"folioterm/internal/api"
	"folioterm/internal/config"
	"folioterm/internal/content"
	"folioterm/internal/logging"
	"folioterm/internal/tui"
)

var (
	// Global flags
	configPath  string
	apiURL      string
	admin       bool
	contentPath string
	watch       bool
)

var rootCmd = &cobra.Command{
	Use:   "folioterm",
	Short: "A portfolio in the terminal, with a contact form and message review",
	Long: `folioterm shows the portfolio (about, skills, projects, education) and a
contact form that posts to the portfolio API. With --admin it also shows the
message review table, where submitted messages are accepted or rejected.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file")
	rootCmd.Flags().StringVar(&apiURL, "api-url", "", "Portfolio API base URL (or FOLIO_API_URL)")
	rootCmd.Flags().BoolVar(&admin, "admin", false, "Show the message review table (or FOLIO_ADMIN)")
	rootCmd.Flags().StringVar(&contentPath, "content", "", "YAML content file replacing the built in portfolio (or FOLIO_CONTENT)")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "Reload the content file when it changes")
}

// loadConfig layers flags that were set on top of the file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("api-url") {
		cfg.APIURL = apiURL
	}
	if cmd.Flags().Changed("admin") {
		cfg.Admin = admin
	}
	if cmd.Flags().Changed("content") {
		cfg.ContentFile = contentPath
	}
	return cfg, nil
}

func loadContent(path string) (*content.Content, error) {
	if path == "" {
		return content.Default()
	}
	return content.Load(path)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if watch && cfg.ContentFile == "" {
		return fmt.Errorf("--watch needs a content file (--content or FOLIO_CONTENT)")
	}

	logger, err := logging.New(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c, err := loadContent(cfg.ContentFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := api.NewClient(cfg.APIURL, api.WithLogger(logger.Named("api")))
	logger.Info("starting",
		zap.String("api_url", client.BaseURL()),
		zap.Bool("admin", cfg.Admin),
		zap.String("content", cfg.ContentFile),
	)

	appModel := tui.NewAppModel(tui.Config{
		Content:       c,
		ContentPath:   cfg.ContentFile,
		Watch:         watch,
		Submitter:     client,
		Reviewer:      client,
		Admin:         cfg.Admin,
		NavBreakpoint: cfg.NavBreakpoint,
		Context:       ctx,
		Logger:        logger,
	})
	p := tea.NewProgram(&appModel, tea.WithAltScreen(), tea.WithMouseCellMotion())
	appModel.SetProgram(p)
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	if m, ok := finalModel.(*tui.AppModel); ok && m.Err != nil {
		return m.Err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
