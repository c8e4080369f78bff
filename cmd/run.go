package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dmetrikx/goCharacterChatter/internal/bot"
	"github.com/Dmetrikx/goCharacterChatter/internal/config"
	"github.com/Dmetrikx/goCharacterChatter/internal/logging"
)

const shutdownTimeout = 30 * time.Second

var runCmd = &cobra.Command{
	Use:   "run [flags]",
	Short: "Connects to Discord and answers until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := logging.New(cfg.LogFormat, cfg.LogLevel)
		slog.SetDefault(logger)

		return run(cmd.Context(), cfg, logger)
	},
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	b, err := bot.NewBot(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("error creating bot: %w", err)
	}

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("error starting bot: %w", err)
	}

	if cfg.MetricsListen != "" {
		// Serve logs its own failure; the bot keeps running without metrics
		go func() { _ = b.Metrics().Serve(ctx, cfg.MetricsListen, logger) }()
	}

	logger.InfoContext(ctx, "bot is now running, press CTRL-C to exit",
		"provider", cfg.AIProvider,
		"model", cfg.AIModel)
	<-ctx.Done()

	logger.Info("shutting down bot")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return b.Close(shutdownCtx)
}

func init() {
	rootCmd.AddCommand(runCmd)
}
