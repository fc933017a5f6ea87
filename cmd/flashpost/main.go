package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"flashpost/internal/app"
	"flashpost/internal/config"
	"flashpost/internal/logging"
)

var (
	configPath string
	pollMode   bool
)

var rootCmd = &cobra.Command{
	Use:   "flashpost",
	Short: "Polls the newsflash feed and schedules translated social posts",
	Long: `flashpost fetches the newest newsflash from the content API, summarizes it
per configured language, scrapes the article's source link, and schedules one
post per language through the drafts API. Processed article ids are persisted
so nothing is posted twice.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load(configPath)
		logger := logging.New(cfg.Logging.Level)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		application, err := app.New(cfg, logger)
		if err != nil {
			// Scheduled-job policy: log and exit clean, monitoring reads logs.
			logger.Error("startup failed", "error", err)
			return
		}
		defer application.Close()

		if pollMode {
			if err := application.Poll(ctx); err != nil {
				logger.Error("poll mode stopped", "error", err)
			}
			return
		}

		outcome, err := application.RunOnce(ctx)
		if err != nil {
			logger.Error("run finished with error", "outcome", outcome, "error", err)
			return
		}
		logger.Info("run finished", "outcome", outcome)
	},
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.Flags().BoolVar(&pollMode, "poll", false, "Keep running on a fixed polling cadence")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
