package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"walletscore/internal/alerting"
	"walletscore/internal/config"
	"walletscore/internal/ingest"
	"walletscore/internal/pipeline"
	"walletscore/internal/scheduler"
	"walletscore/internal/storage"
)

// ResultHook runs after every successful scoring tick, e.g. to refresh
// exported artifacts.
type ResultHook func(ctx context.Context, res *pipeline.Result) error

// Service orchestrates periodic rescoring, persistence, and alerting.
type Service struct {
	scheduler *scheduler.Scheduler
	source    ingest.Source
	pipe      *pipeline.Pipeline
	store     storage.WalletScoreStore
	notifier  alerting.Notifier
	hook      ResultHook
	logger    zerolog.Logger

	scoreFloor float64
	channels   []string
	alertsOn   bool
	locker     storage.AdvisoryLocker
	lockKey    int64
}

// New constructs the watch service.
func New(cfg *config.Config, sched *scheduler.Scheduler, source ingest.Source, pipe *pipeline.Pipeline, store storage.WalletScoreStore, notifier alerting.Notifier, hook ResultHook, logger zerolog.Logger) *Service {
	var locker storage.AdvisoryLocker
	if l, ok := store.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		scheduler:  sched,
		source:     source,
		pipe:       pipe,
		store:      store,
		notifier:   notifier,
		hook:       hook,
		logger:     logger.With().Str("component", "service").Logger(),
		scoreFloor: cfg.Alerting.ScoreFloor,
		channels:   cfg.Alerting.Channels,
		alertsOn:   cfg.Alerting.Enabled,
		locker:     locker,
		lockKey:    cfg.Watch.AdvisoryLockKey,
	}
}

// Run begins the periodic rescoring loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessTick)
}

// ProcessTick 执行单个时间桶的重评分逻辑。
func (s *Service) ProcessTick(ctx context.Context, bucket time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("bucket", bucket).Msg("skip bucket because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	return s.executeTick(ctx, bucket)
}

func (s *Service) executeTick(ctx context.Context, bucket time.Time) error {
	records, malformed, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	res, err := s.pipe.Run(ctx, records, malformed)
	if err != nil {
		return fmt.Errorf("score wallets: %w", err)
	}

	// Previous scores are read before the upsert so floor crossings can be
	// detected against the prior run.
	var baseline map[string]float64
	if s.store != nil {
		wallets := make([]string, len(res.Records))
		for i, rec := range res.Records {
			wallets[i] = rec.Wallet
		}
		baseline, err = s.store.GetScores(ctx, wallets)
		if err != nil {
			s.logger.Error().Err(err).Time("bucket", bucket).Msg("failed to read score baseline")
			baseline = nil
		}

		if err := s.store.UpsertScores(ctx, res.RunID, res.Records); err != nil {
			s.logger.Error().Err(err).Time("bucket", bucket).Msg("failed to upsert scores")
		}
	}

	s.logger.Info().Time("bucket", bucket).
		Str("run_id", res.RunID).
		Int("wallets", len(res.Records)).
		Int("dropped", res.Drops.Dropped()).
		Dur("elapsed", res.Elapsed).
		Msg("rescoring complete")

	if s.alertsOn && s.notifier != nil && baseline != nil {
		s.dispatchAlerts(ctx, res, baseline)
	}

	if s.hook != nil {
		if err := s.hook(ctx, res); err != nil {
			s.logger.Error().Err(err).Time("bucket", bucket).Msg("result hook failed")
		}
	}

	return nil
}

// dispatchAlerts notifies on wallets whose score fell through the floor
// since the previous stored run.
func (s *Service) dispatchAlerts(ctx context.Context, res *pipeline.Result, baseline map[string]float64) {
	for _, rec := range res.Records {
		prev, seen := baseline[rec.Wallet]
		if !seen {
			continue
		}
		if prev < s.scoreFloor || rec.Score >= s.scoreFloor {
			continue
		}

		note := alerting.Notification{
			Wallet:     rec.Wallet,
			PrevScore:  prev,
			NewScore:   rec.Score,
			ScoreFloor: s.scoreFloor,
			RunID:      res.RunID,
			Channels:   s.channels,
		}
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.logger.Error().Err(err).Str("wallet", rec.Wallet).Msg("failed to dispatch alert")
		}
	}
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
