package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/vacancy-bot/internal/health"
	"github.com/spigell/vacancy-bot/internal/logger"
	"github.com/spigell/vacancy-bot/internal/telegram"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Telegram bot",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("no-health", false, "do not start the liveness endpoint")
	viper.BindPFlag("no-health", runCmd.Flags().Lookup("no-health"))
}

func newLogger() *zap.Logger {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), viper.GetString("log-file"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return logger
}

func mustConfig(logger *zap.Logger) *Config {
	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return config
}

// redacted returns a copy of config safe to print.
func redacted(config *Config) Config {
	c := *config

	tg := *config.Telegram
	if tg.Token != "" {
		tg.Token = "***"
	}
	c.Telegram = &tg

	sh := *config.Sheets
	if sh.Credentials != "" {
		sh.Credentials = "***"
	}
	c.Sheets = &sh

	return c
}

// run is the main command for the bot.
func run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	config := mustConfig(logger)

	logger.Info("starting the vacancy-bot", zap.String("version", version))

	token, err := resolveToken(config)
	if err != nil {
		logger.Fatal("loading telegram token",
			zap.Error(err),
			zap.String("hint", "set BOT_TOKEN, VACANCY_BOT_TELEGRAM_TOKEN_FILE or telegram.token-file"),
		)
	}

	c, err := buildMachine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the bot", zap.Error(err))
	}
	defer c.close(logger)

	logger.Info("catalog filters", zap.Any("steps", c.index.Steps()))

	bot, err := telegram.New(&telegram.Config{
		Token:       token,
		PollTimeout: config.Telegram.PollTimeout,
		Debug:       config.Telegram.Debug,
	}, &telegram.Deps{
		Handler: c.machine,
		Logger:  logger.Named("telegram"),
	})
	if err != nil {
		logger.Fatal("creating the telegram bot", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Run(gctx)
	})

	if config.Health.Enabled && !viper.GetBool("no-health") {
		server := health.New(config.Health.Listen, logger.Named("health"))
		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("exiting", zap.Error(err))
		return
	}

	logger.Info("exiting", zap.String("reason", "shutdown requested"))
}
