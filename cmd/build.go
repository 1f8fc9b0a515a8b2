package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/local"
	"github.com/spigell/vacancy-bot/internal/search"
	"github.com/spigell/vacancy-bot/internal/secrets"
	"github.com/spigell/vacancy-bot/internal/session"
	"github.com/spigell/vacancy-bot/internal/sheets"
	"github.com/spigell/vacancy-bot/internal/submit"
)

const (
	driverSheets = "sheets"
	driverFile   = "file"
	driverSQLite = "sqlite"
)

// components holds what the commands share. close releases local resources.
type components struct {
	index   *search.Index
	machine *session.Machine
	closers []func() error
	sheets  *sheets.Client
}

func (c *components) close(logger *zap.Logger) {
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			logger.Warn("closing component", zap.Error(err))
		}
	}
}

func buildIndex(ctx context.Context, config *Config, logger *zap.Logger) (*components, error) {
	c := &components{}

	deps := &search.Deps{Logger: logger.Named("search")}

	switch driver := strings.ToLower(config.Catalog.Driver); driver {
	case driverSheets:
		client, err := c.sheetsClient(ctx, config, logger)
		if err != nil {
			return nil, err
		}
		deps.Source = client
		// FAQ stays a nil interface without a questions sheet
		if client.HasQuestions() {
			deps.FAQ = client
		}
	case driverFile:
		file, err := local.NewFileCatalog(config.Catalog.File)
		if err != nil {
			return nil, err
		}
		deps.Source = file
		deps.FAQ = file
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q", config.Catalog.Driver)
	}

	index, err := search.New(&search.Config{
		OpenStatuses:         config.Catalog.OpenStatuses,
		FilterSearchByStatus: config.Catalog.FilterSearchByStatus,
		Columns:              config.Catalog.Columns,
	}, deps)
	if err != nil {
		return nil, fmt.Errorf("building catalog index: %w", err)
	}
	c.index = index

	return c, nil
}

func buildMachine(ctx context.Context, config *Config, logger *zap.Logger) (*components, error) {
	c, err := buildIndex(ctx, config, logger)
	if err != nil {
		return nil, err
	}

	sink, err := c.sink(ctx, config, logger)
	if err != nil {
		c.close(logger)
		return nil, err
	}

	submitter, err := submit.New(&submit.Config{
		TimeLayout: config.Sink.TimeLayout,
		NoHandle:   config.Sink.NoHandle,
	}, sink, logger.Named("submit"))
	if err != nil {
		c.close(logger)
		return nil, fmt.Errorf("building submitter: %w", err)
	}

	messages, err := session.DefaultMessages().Override(config.Messages)
	if err != nil {
		c.close(logger)
		return nil, err
	}

	machine, err := session.New(&session.Config{
		NamePattern:  config.Session.NamePattern,
		PhonePattern: config.Session.PhonePattern,
		SessionTTL:   config.Session.TTL,
		Messages:     &messages,
	}, &session.Deps{
		Catalog:   c.index,
		Submitter: submitter,
		Logger:    logger.Named("session"),
	})
	if err != nil {
		c.close(logger)
		return nil, fmt.Errorf("building session machine: %w", err)
	}
	c.machine = machine

	return c, nil
}

func (c *components) sink(ctx context.Context, config *Config, logger *zap.Logger) (submit.Sink, error) {
	switch driver := strings.ToLower(config.Sink.Driver); driver {
	case driverSheets:
		return c.sheetsClient(ctx, config, logger)
	case driverSQLite:
		sink, err := local.NewSQLiteSink(config.Sink.SQLitePath)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, sink.Close)
		return sink, nil
	default:
		return nil, fmt.Errorf("unsupported sink driver %q", config.Sink.Driver)
	}
}

// sheetsClient is shared by the catalog and the sink.
func (c *components) sheetsClient(ctx context.Context, config *Config, logger *zap.Logger) (*sheets.Client, error) {
	if c.sheets != nil {
		return c.sheets, nil
	}

	credentials, err := secrets.Load(secrets.Source{
		Name:  "google service account credentials",
		Value: config.Sheets.Credentials,
		Env:   envCredentials,
		File:  config.Sheets.CredentialsFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (or set %s)", err, envCredentialsFile)
	}

	client, err := sheets.New(ctx, &sheets.Config{
		SpreadsheetID:  config.Sheets.SpreadsheetID,
		Credentials:    credentials,
		VacanciesSheet: config.Sheets.VacanciesSheet,
		QuestionsSheet: config.Sheets.QuestionsSheet,
		ResponsesSheet: config.Sheets.ResponsesSheet,
		Timeout:        config.Sheets.Timeout,
		MaxRetries:     config.Sheets.MaxRetries,
		RetryDelay:     config.Sheets.RetryDelay,
	}, logger.Named("sheets"))
	if err != nil {
		return nil, err
	}
	c.sheets = client

	return client, nil
}

func resolveToken(config *Config) (string, error) {
	if config == nil || config.Telegram == nil {
		return "", errors.New("telegram configuration is required")
	}

	return secrets.Load(secrets.Source{
		Name:  "telegram bot token",
		Value: config.Telegram.Token,
		Env:   envTelegramToken,
		File:  config.Telegram.TokenFile,
	})
}
