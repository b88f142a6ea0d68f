package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"tradeJournal/config"
	"tradeJournal/internal/adapters/binanceclient"
	"tradeJournal/internal/adapters/logger"
	"tradeJournal/internal/adapters/restapi"
	"tradeJournal/internal/adapters/sqlite"
	"tradeJournal/internal/adapters/supabase"
	"tradeJournal/internal/app"
	"tradeJournal/internal/ports"
)

// Bootstrap wires the production adapters selected by the environment configuration.
func Bootstrap(ctx context.Context, flags GlobalFlags) (*Env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if flags.UserID != "" {
		cfg.UserID = flags.UserID
	}
	if flags.Strict {
		cfg.StrictNormalization = true
	}
	if flags.MarkToMarket {
		cfg.MarkToMarket = true
	}

	appLogger := logger.New(logger.Options{Level: cfg.LogLevel, Console: cfg.LogFormat == "console", Output: os.Stderr})
	appLogger.Debug(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "source": cfg.Source})

	instruments, err := config.LoadInstruments(cfg.InstrumentsFile)
	if err != nil {
		return nil, err
	}
	opts := app.Options{Instruments: instruments, StrictNormalization: cfg.StrictNormalization}

	var (
		source  ports.TradeSource
		closers []func() error
	)
	switch cfg.Source {
	case config.SourceSupabase:
		store, err := supabase.Open(supabase.Config{DSN: cfg.DatabaseURL, Logger: appLogger})
		if err != nil {
			return nil, err
		}
		source = store
		closers = append(closers, store.Close)
	case config.SourceREST:
		client, err := restapi.New(restapi.Config{
			BaseURL:    cfg.RESTBaseURL,
			Token:      cfg.RESTToken,
			Timeout:    cfg.HTTPTimeout,
			MaxRetries: 3,
			Logger:     appLogger,
		})
		if err != nil {
			return nil, err
		}
		source = client
	case config.SourceSQLite:
		repo, err := sqlite.NewRepository(sqlite.Config{
			DBPath:         cfg.DBPath,
			Logger:         appLogger,
			PrecisionLimit: cfg.PrecisionLimit,
		})
		if err != nil {
			return nil, err
		}
		source = repo
		opts.Writer = repo
		closers = append(closers, repo.Close)
	default:
		return nil, fmt.Errorf("unsupported trade source %q: %w", cfg.Source, ports.ErrConfigurationError)
	}

	if cfg.MarkToMarket {
		prices, err := binanceclient.New(binanceclient.Config{
			APIKey:     cfg.APIKey,
			SecretKey:  cfg.SecretKey,
			UseTestnet: cfg.IsTestnet,
			Symbols:    instruments.Symbols(),
			Logger:     appLogger,
		})
		if err != nil {
			return nil, err
		}
		if err := prices.Ping(ctx); err != nil {
			appLogger.Warn(ctx, "Price source unreachable, open trades will not be marked", map[string]interface{}{"error": err.Error()})
		}
		opts.Prices = prices
	}

	svc, err := app.NewJournalService(source, appLogger, opts)
	if err != nil {
		return nil, err
	}

	return &Env{
		Service: svc,
		UserID:  cfg.UserID,
		Close: func() error {
			var errs []error
			for _, c := range closers {
				errs = append(errs, c())
			}
			return errors.Join(errs...)
		},
	}, nil
}
