// Package cli implements the jobtracker command line: scraping, application
// tracking, reports, assistant prompts and the Telegram bot.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"linkedin-job-tracker/internal/app"
	"linkedin-job-tracker/internal/config"
	"linkedin-job-tracker/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand().ExecuteContext(ctx)
}

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "jobtracker",
		Short: "Scrape LinkedIn job postings and track applications",
		Long: `jobtracker scrapes public LinkedIn job postings into normalized records,
scores them against your keywords and tracks what you did about each one.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().String("log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(
		newScrapeCommand(),
		newNormalizeCommand(),
		newUpdateCommand(),
		newPriorityCommand(),
		newReminderCommand(),
		newFollowUpsCommand(),
		newBulkUpdateCommand(),
		newFilterCommand(),
		newStatsCommand(),
		newReportCommand(),
		newExportCommand(),
		newPromptCommand(),
		newBotCommand(),
	)

	return root
}

// setup loads the configuration, lets the command adjust it and builds the
// application. The returned func releases everything setup opened.
func setup(cmd *cobra.Command, adjust ...func(cfg *config.Config)) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = strings.ToLower(lvl)
	}
	for _, fn := range adjust {
		fn(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		log.Sync()
		return nil, nil, err
	}

	cleanup := func() {
		if err := a.Close(); err != nil {
			log.Warn("failed to close storage", zap.Error(err))
		}
		log.Sync()
	}

	return a, cleanup, nil
}

// parseDate accepts 2006-01-02 or RFC 3339. An empty string is nil.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}

	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return &t, nil
}
