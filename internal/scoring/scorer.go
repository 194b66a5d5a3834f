package scoring

import "walletscore/internal/domain"

// Scorer turns feature vectors into bounded credit scores. It holds no state
// beyond its parameters: identical input always yields an identical record.
type Scorer struct {
	params Params
}

// New constructs a Scorer. Params are assumed validated at config load.
func New(params Params) *Scorer {
	return &Scorer{params: params}
}

// Score computes the final score and its component breakdown for one wallet.
func (s *Scorer) Score(wallet string, fv domain.FeatureVector) domain.ScoreRecord {
	sub := domain.SubScores{
		Volume:          volumeScore(fv, s.params),
		Consistency:     consistencyScore(fv, s.params),
		Diversification: diversificationScore(fv, s.params),
		Repayment:       repaymentScore(fv, s.params),
		Leverage:        leverageScore(fv, s.params),
		ActivityBonus:   activityBonus(fv, s.params),
		AssetBonus:      assetBonus(fv, s.params),
		RiskPenalty:     riskPenalty(fv, s.params),
	}

	total := sub.Volume + sub.Consistency + sub.Diversification + sub.Repayment +
		sub.Leverage + sub.ActivityBonus + sub.AssetBonus - sub.RiskPenalty

	return domain.ScoreRecord{
		Wallet:   wallet,
		Score:    clamp(total, s.params.ScoreMin, s.params.ScoreMax),
		Features: fv,
		Sub:      sub,
	}
}
