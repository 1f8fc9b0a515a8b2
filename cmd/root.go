package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/vacancy-bot/internal/catalog"
	"github.com/spigell/vacancy-bot/internal/sheets"
)

const (
	app = "vacancy-bot"

	envTelegramToken     = "BOT_TOKEN"
	envTelegramTokenFile = "VACANCY_BOT_TELEGRAM_TOKEN_FILE"
	envCredentials       = "GOOGLE_CREDENTIALS"
	envCredentialsFile   = "VACANCY_BOT_SHEETS_CREDENTIALS_FILE"
)

type Config struct {
	Telegram *TelegramConfig `mapstructure:"telegram"`
	Sheets   *SheetsConfig   `mapstructure:"sheets"`
	Catalog  *CatalogConfig  `mapstructure:"catalog"`
	Sink     *SinkConfig     `mapstructure:"sink"`
	Session  *SessionConfig  `mapstructure:"session"`
	Health   *HealthConfig   `mapstructure:"health"`
	// Messages overrides single bot texts by key, e.g. "not-found".
	Messages map[string]any `mapstructure:"messages"`
}

type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	TokenFile   string `mapstructure:"token-file"`
	PollTimeout int    `mapstructure:"poll-timeout"`
	Debug       bool   `mapstructure:"debug"`
}

type SheetsConfig struct {
	SpreadsheetID   string        `mapstructure:"spreadsheet-id"`
	Credentials     string        `mapstructure:"credentials"`
	CredentialsFile string        `mapstructure:"credentials-file"`
	VacanciesSheet  string        `mapstructure:"vacancies-sheet"`
	QuestionsSheet  string        `mapstructure:"questions-sheet"`
	ResponsesSheet  string        `mapstructure:"responses-sheet"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max-retries"`
	RetryDelay      time.Duration `mapstructure:"retry-delay"`
}

type CatalogConfig struct {
	// Driver is "sheets" or "file".
	Driver               string          `mapstructure:"driver"`
	File                 string          `mapstructure:"file"`
	OpenStatuses         []string        `mapstructure:"open-statuses"`
	FilterSearchByStatus bool            `mapstructure:"filter-search-by-status"`
	Columns              catalog.Columns `mapstructure:"columns"`
}

type SinkConfig struct {
	// Driver is "sheets" or "sqlite".
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite-path"`
	NoHandle   string `mapstructure:"no-handle"`
	TimeLayout string `mapstructure:"time-layout"`
}

type SessionConfig struct {
	// TTL of an idle session, 0 keeps sessions forever.
	TTL          time.Duration `mapstructure:"ttl"`
	NamePattern  string        `mapstructure:"name-pattern"`
	PhonePattern string        `mapstructure:"phone-pattern"`
}

type HealthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "vacancy-bot is a Telegram bot for finding vacancies and collecting applications",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"telegram.token":          envTelegramToken,
		"telegram.token-file":     envTelegramTokenFile,
		"sheets.credentials":      envCredentials,
		"sheets.credentials-file": envCredentialsFile,
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("sheets.questions-sheet", sheets.DefaultQuestionsSheet)
	viper.SetDefault("catalog.driver", driverSheets)
	viper.SetDefault("catalog.filter-search-by-status", true)
	viper.SetDefault("sink.driver", driverSheets)
	viper.SetDefault("sink.sqlite-path", app+".db")
	viper.SetDefault("session.ttl", "24h")
	viper.SetDefault("health.enabled", true)
	viper.SetDefault("health.listen", ":8080")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is vacancy-bot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-file", "", "also write json logs into a rotating file")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
}

func initConfig() {
	// version does not need any configuration
	if versionCmd.CalledAs() != "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Without a config file the bot still runs on defaults and environment.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	if config.Telegram == nil {
		config.Telegram = &TelegramConfig{}
	}

	if config.Sheets == nil {
		config.Sheets = &SheetsConfig{}
	}

	if config.Catalog == nil {
		config.Catalog = &CatalogConfig{Driver: driverSheets, FilterSearchByStatus: true}
	}

	if config.Sink == nil {
		config.Sink = &SinkConfig{Driver: driverSheets}
	}

	if config.Session == nil {
		config.Session = &SessionConfig{}
	}

	if config.Health == nil {
		config.Health = &HealthConfig{}
	}

	return config, nil
}
