package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"walletscore/internal/alerting"
	"walletscore/internal/config"
	"walletscore/internal/ingest"
	"walletscore/internal/pipeline"
	"walletscore/internal/report"
	"walletscore/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newPipeline(workers int) *pipeline.Pipeline {
	return pipeline.New(pipeline.Options{
		Assets:  a.Config.Assets,
		Params:  a.Config.Scoring,
		Workers: a.Config.ResolveWorkers(workers),
	}, a.Logger)
}

func (a *App) newSource(path string) ingest.Source {
	return ingest.NewFileSource(path, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}

	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) reportOptions() report.Options {
	return report.Options{
		BucketSize: a.Config.Report.BucketSize,
		TopN:       a.Config.Report.TopN,
		ScoreMin:   a.Config.Scoring.ScoreMin,
		ScoreMax:   a.Config.Scoring.ScoreMax,
	}
}

// ScoreOptions hold parameters for a one-shot scoring run.
type ScoreOptions struct {
	InputPath   string
	CSVPath     string
	XLSXPath    string
	ParquetPath string
	PNGPath     string
	Summary     bool
	Store       bool
	Workers     int
}

// ReportOptions configure the report command.
type ReportOptions struct {
	PNGPath string
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit     int
	Ascending bool
}

// WatchOptions configure the periodic rescoring service.
type WatchOptions struct {
	InputPath string
	Store     bool
	PNGPath   string
	Workers   int
}
