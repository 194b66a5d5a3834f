package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"walletscore/internal/pipeline"
	"walletscore/internal/report"
	"walletscore/internal/scheduler"
	"walletscore/internal/service"
	"walletscore/internal/storage"
)

// Watch runs the periodic rescoring service until interrupted.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	if opts.InputPath == "" {
		return errors.New("--input is required")
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var scoreStore storage.WalletScoreStore
	if opts.Store {
		store, closeStore, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("database not configured; cannot store scores")
		}
		defer closeStore()
		scoreStore = store
	} else if a.Config.Alerting.Enabled {
		a.Logger.Warn().Msg("alerting requires --store for a score baseline; alerts disabled")
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Watch.Interval,
		AlignToStart: a.Config.Watch.AlignToBucket,
		StartupDelay: a.Config.Watch.StartupDelay,
		Immediate:    a.Config.Watch.RunImmediately,
	}, a.Logger)

	var hook service.ResultHook
	if opts.PNGPath != "" {
		pngPath := opts.PNGPath
		hook = func(ctx context.Context, res *pipeline.Result) error {
			sum := report.Summarize(res.Records, a.reportOptions())
			return writeHistogramPNG(pngPath, sum)
		}
	}

	svc := service.New(
		a.Config,
		sched,
		a.newSource(opts.InputPath),
		a.newPipeline(opts.Workers),
		scoreStore,
		a.newNotifier(),
		hook,
		a.Logger,
	)

	a.Logger.Info().
		Str("input", opts.InputPath).
		Dur("interval", a.Config.Watch.Interval).
		Msg("starting watch service")

	err := svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch service terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch service stopped")
	return nil
}
