package storage

import "time"

// ScoreRow is the persisted score for one wallet. Only the latest run's
// values are kept; each new run overwrites the wallet's previous row.
type ScoreRow struct {
	Wallet            string
	Score             float64
	TotalTransactions int
	UniqueAssets      int
	TotalUSDVolume    float64
	ConsistentUsage   float64
	RiskIndicators    float64
	RepaymentBehavior float64
	RunID             string
	ScoredAt          time.Time
}
