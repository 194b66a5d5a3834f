package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"walletscore/internal/domain"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	createWalletScoresSQL = `CREATE TABLE IF NOT EXISTS wallet_scores (
        wallet             TEXT PRIMARY KEY,
        score              DOUBLE PRECISION NOT NULL,
        total_transactions INTEGER NOT NULL,
        unique_assets      INTEGER NOT NULL,
        total_usd_volume   DOUBLE PRECISION NOT NULL,
        consistent_usage   DOUBLE PRECISION NOT NULL,
        risk_indicators    DOUBLE PRECISION NOT NULL,
        repayment_behavior DOUBLE PRECISION NOT NULL,
        run_id             TEXT NOT NULL,
        scored_at          TIMESTAMPTZ NOT NULL DEFAULT now()
    );`

	upsertScoreSQL = `INSERT INTO wallet_scores (
        wallet,
        score,
        total_transactions,
        unique_assets,
        total_usd_volume,
        consistent_usage,
        risk_indicators,
        repayment_behavior,
        run_id,
        scored_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
    )
    ON CONFLICT (wallet) DO UPDATE
    SET
        score              = EXCLUDED.score,
        total_transactions = EXCLUDED.total_transactions,
        unique_assets      = EXCLUDED.unique_assets,
        total_usd_volume   = EXCLUDED.total_usd_volume,
        consistent_usage   = EXCLUDED.consistent_usage,
        risk_indicators    = EXCLUDED.risk_indicators,
        repayment_behavior = EXCLUDED.repayment_behavior,
        run_id             = EXCLUDED.run_id,
        scored_at          = EXCLUDED.scored_at;`

	getScoresSQL = `SELECT wallet, score FROM wallet_scores WHERE wallet = ANY($1);`

	listScoresDescSQL = `SELECT
        wallet,
        score,
        total_transactions,
        unique_assets,
        total_usd_volume,
        consistent_usage,
        risk_indicators,
        repayment_behavior,
        run_id,
        scored_at
    FROM wallet_scores
    ORDER BY score DESC, wallet
    LIMIT $1;`

	listScoresAscSQL = `SELECT
        wallet,
        score,
        total_transactions,
        unique_assets,
        total_usd_volume,
        consistent_usage,
        risk_indicators,
        repayment_behavior,
        run_id,
        scored_at
    FROM wallet_scores
    ORDER BY score ASC, wallet
    LIMIT $1;`

	listAllScoresSQL = `SELECT
        wallet,
        score,
        total_transactions,
        unique_assets,
        total_usd_volume,
        consistent_usage,
        risk_indicators,
        repayment_behavior,
        run_id,
        scored_at
    FROM wallet_scores
    ORDER BY score DESC, wallet;`

	countScoresSQL = `SELECT COUNT(*) FROM wallet_scores;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// WalletScoreStore defines operations for score persistence.
type WalletScoreStore interface {
	EnsureSchema(ctx context.Context) error
	UpsertScores(ctx context.Context, runID string, records []domain.ScoreRecord) error
	GetScores(ctx context.Context, wallets []string) (map[string]float64, error)
	ListScores(ctx context.Context, limit int, ascending bool) ([]ScoreRow, error)
	ListAllScores(ctx context.Context) ([]ScoreRow, error)
	CountScores(ctx context.Context) (int64, error)
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store provides PostgreSQL-backed score persistence.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// EnsureSchema creates the wallet_scores table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, createWalletScoresSQL); execErr != nil {
		return fmt.Errorf("ensure schema: %w", execErr)
	}
	return nil
}

// UpsertScores writes one run's scores in a single batch. Every wallet keeps
// only its latest row.
func (s *Store) UpsertScores(ctx context.Context, runID string, records []domain.ScoreRecord) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	scoredAt := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(upsertScoreSQL,
			rec.Wallet,
			rec.Score,
			rec.Features.TotalTransactions,
			rec.Features.UniqueAssets,
			rec.Features.TotalUSDVolume,
			rec.Features.ConsistentUsage,
			rec.Features.RiskIndicators,
			rec.Features.RepaymentBehavior,
			runID,
			scoredAt,
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, execErr := results.Exec(); execErr != nil {
			return fmt.Errorf("upsert wallet score: %w", execErr)
		}
	}
	return nil
}

// GetScores fetches the stored score for each requested wallet. Wallets
// without a stored row are simply absent from the result.
func (s *Store) GetScores(ctx context.Context, wallets []string) (map[string]float64, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}
	if len(wallets) == 0 {
		return map[string]float64{}, nil
	}

	rows, queryErr := pool.Query(ctx, getScoresSQL, wallets)
	if queryErr != nil {
		return nil, fmt.Errorf("get scores: %w", queryErr)
	}
	defer rows.Close()

	scores := make(map[string]float64, len(wallets))
	for rows.Next() {
		var wallet string
		var score float64
		if scanErr := rows.Scan(&wallet, &score); scanErr != nil {
			return nil, scanErr
		}
		scores[wallet] = score
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return scores, nil
}

// ListScores lists stored scores ordered by score, best first unless
// ascending is set.
func (s *Store) ListScores(ctx context.Context, limit int, ascending bool) ([]ScoreRow, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	query := listScoresDescSQL
	if ascending {
		query = listScoresAscSQL
	}

	rows, queryErr := pool.Query(ctx, query, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list scores: %w", queryErr)
	}
	defer rows.Close()

	return collectScoreRows(rows)
}

// ListAllScores returns every stored score row.
func (s *Store) ListAllScores(ctx context.Context) ([]ScoreRow, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listAllScoresSQL)
	if queryErr != nil {
		return nil, fmt.Errorf("list all scores: %w", queryErr)
	}
	defer rows.Close()

	return collectScoreRows(rows)
}

// CountScores counts stored wallet rows.
func (s *Store) CountScores(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countScoresSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count scores: %w", scanErr)
	}
	return count, nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctxUnlock, advisoryUnlockSQL, key); err != nil {
			// unlock best effort; log omitted in storage package
		}
		conn.Release()
	}
	return unlock, true, nil
}

func collectScoreRows(rows pgx.Rows) ([]ScoreRow, error) {
	out := make([]ScoreRow, 0)
	for rows.Next() {
		var row ScoreRow
		if err := rows.Scan(
			&row.Wallet,
			&row.Score,
			&row.TotalTransactions,
			&row.UniqueAssets,
			&row.TotalUSDVolume,
			&row.ConsistentUsage,
			&row.RiskIndicators,
			&row.RepaymentBehavior,
			&row.RunID,
			&row.ScoredAt,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
