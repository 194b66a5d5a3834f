package scoring

import (
	"math"

	"walletscore/internal/domain"
)

// Each estimator is a pure function of the feature vector, returning a value
// already clamped to its configured range.

// volumeScore rewards lifetime USD volume on a log curve that saturates
// after VolumeLogSpan decades.
func volumeScore(fv domain.FeatureVector, p Params) float64 {
	saturation := math.Log10(fv.TotalUSDVolume+1) / p.VolumeLogSpan
	return clamp(saturation, 0, 1) * p.VolumeMax
}

func consistencyScore(fv domain.FeatureVector, p Params) float64 {
	return clamp(fv.ConsistentUsage, 0, 1) * p.ConsistencyMax
}

func diversificationScore(fv domain.FeatureVector, p Params) float64 {
	return clamp(fv.DiversificationScore, 0, 1) * p.DiversificationMax
}

func repaymentScore(fv domain.FeatureVector, p Params) float64 {
	return clamp(fv.RepaymentBehavior, 0, 1) * p.RepaymentMax
}

// leverageScore clamps the indicator before weighting, so the -1
// borrow-without-collateral flag floors at zero instead of subtracting;
// that pattern is penalized through the risk term.
func leverageScore(fv domain.FeatureVector, p Params) float64 {
	return clamp(fv.LeverageIndicator, 0, 1) * p.LeverageMax
}

func activityBonus(fv domain.FeatureVector, p Params) float64 {
	return math.Min(fv.TransactionFrequency*p.ActivityRate, p.ActivityMax)
}

func assetBonus(fv domain.FeatureVector, p Params) float64 {
	return math.Min(float64(fv.UniqueAssets)*p.AssetStep, p.AssetMax)
}

// riskPenalty is the only subtractive term and is never negative itself.
func riskPenalty(fv domain.FeatureVector, p Params) float64 {
	return clamp(fv.RiskIndicators, 0, 1) * p.RiskPenaltyMax
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
