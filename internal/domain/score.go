package domain

// SubScores breaks a final score into its bounded components. Every field is
// non-negative; RiskPenalty is the only subtractive term.
type SubScores struct {
	Volume          float64
	Consistency     float64
	Diversification float64
	Repayment       float64
	Leverage        float64
	ActivityBonus   float64
	AssetBonus      float64
	RiskPenalty     float64
}

// ScoreRecord pairs a wallet with its credit score and the evidence behind
// it, so every number in a report can be traced back to features.
type ScoreRecord struct {
	Wallet   string
	Score    float64
	Features FeatureVector
	Sub      SubScores
}
