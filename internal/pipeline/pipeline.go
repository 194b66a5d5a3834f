// Package pipeline wires normalization, feature extraction, and scoring
// into a single deterministic run over a batch of raw records.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"walletscore/internal/domain"
	"walletscore/internal/feature"
	"walletscore/internal/ingest"
	"walletscore/internal/normalize"
	"walletscore/internal/scoring"
)

// Options carries everything a pipeline needs to run.
type Options struct {
	Assets  normalize.Config
	Params  scoring.Params
	Workers int
}

// Result is the outcome of one scoring run.
type Result struct {
	RunID   string
	Records []domain.ScoreRecord
	Drops   normalize.DropStats
	Elapsed time.Duration
}

// Pipeline scores wallets from raw transaction records.
type Pipeline struct {
	normalizer *normalize.Normalizer
	scorer     *scoring.Scorer
	workers    int
	logger     zerolog.Logger
}

// New builds a pipeline. Workers below 1 are treated as 1.
func New(opts Options, logger zerolog.Logger) *Pipeline {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		normalizer: normalize.New(normalize.NewAssetTable(opts.Assets), logger),
		scorer:     scoring.New(opts.Params),
		workers:    workers,
		logger:     logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run normalizes the raw records, groups them per wallet, and scores every
// wallet. Records come back in wallet first-appearance order regardless of
// the worker count.
func (p *Pipeline) Run(ctx context.Context, records []ingest.RawRecord, malformed int) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	txs, drops, err := p.normalizer.Run(records, malformed)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("no scoreable transactions (%s)", drops.Summary())
	}

	groups := feature.GroupByWallet(txs)
	scored, err := p.scoreGroups(ctx, groups)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	p.logger.Info().
		Str("run_id", runID).
		Int("wallets", len(scored)).
		Int("transactions", len(txs)).
		Dur("elapsed", elapsed).
		Msg("scoring run complete")

	return &Result{
		RunID:   runID,
		Records: scored,
		Drops:   drops,
		Elapsed: elapsed,
	}, nil
}

// scoreGroups fans wallet groups out over a fixed worker pool. Each worker
// writes into its own slot of the results slice, so output order matches
// input order without locking.
func (p *Pipeline) scoreGroups(ctx context.Context, groups []feature.Group) ([]domain.ScoreRecord, error) {
	results := make([]domain.ScoreRecord, len(groups))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				g := groups[i]
				fv := feature.Build(g)
				results[i] = p.scorer.Score(g.Wallet, fv)
			}
		}()
	}

	var cancelled bool
feed:
	for i := range groups {
		select {
		case jobs <- i:
		case <-ctx.Done():
			cancelled = true
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled {
		return nil, ctx.Err()
	}
	return results, nil
}
