package scoring

import "fmt"

// Params carries every scoring constant: sub-score caps, bonus rates, the
// volume saturation span, and the final clamp bounds. Loaded from the
// scoring section of the runtime configuration.
type Params struct {
	VolumeMax     float64 `mapstructure:"volume_max"`
	VolumeLogSpan float64 `mapstructure:"volume_log_span"`

	ConsistencyMax     float64 `mapstructure:"consistency_max"`
	DiversificationMax float64 `mapstructure:"diversification_max"`
	RepaymentMax       float64 `mapstructure:"repayment_max"`
	LeverageMax        float64 `mapstructure:"leverage_max"`

	ActivityRate float64 `mapstructure:"activity_rate"`
	ActivityMax  float64 `mapstructure:"activity_max"`
	AssetStep    float64 `mapstructure:"asset_step"`
	AssetMax     float64 `mapstructure:"asset_max"`

	RiskPenaltyMax float64 `mapstructure:"risk_penalty_max"`

	ScoreMin float64 `mapstructure:"score_min"`
	ScoreMax float64 `mapstructure:"score_max"`
}

// DefaultParams returns the calibrated production weights.
func DefaultParams() Params {
	return Params{
		VolumeMax:          200,
		VolumeLogSpan:      5,
		ConsistencyMax:     200,
		DiversificationMax: 150,
		RepaymentMax:       200,
		LeverageMax:        150,
		ActivityRate:       10,
		ActivityMax:        50,
		AssetStep:          20,
		AssetMax:           100,
		RiskPenaltyMax:     200,
		ScoreMin:           0,
		ScoreMax:           1000,
	}
}

// Validate rejects weight sets that cannot produce a meaningful score.
func (p Params) Validate() error {
	caps := []struct {
		name  string
		value float64
	}{
		{"volume_max", p.VolumeMax},
		{"consistency_max", p.ConsistencyMax},
		{"diversification_max", p.DiversificationMax},
		{"repayment_max", p.RepaymentMax},
		{"leverage_max", p.LeverageMax},
		{"activity_rate", p.ActivityRate},
		{"activity_max", p.ActivityMax},
		{"asset_step", p.AssetStep},
		{"asset_max", p.AssetMax},
		{"risk_penalty_max", p.RiskPenaltyMax},
	}
	for _, c := range caps {
		if c.value < 0 {
			return fmt.Errorf("scoring.%s cannot be negative", c.name)
		}
	}

	if p.VolumeLogSpan <= 0 {
		return fmt.Errorf("scoring.volume_log_span must be greater than zero")
	}
	if p.ScoreMax <= p.ScoreMin {
		return fmt.Errorf("scoring.score_max must be greater than scoring.score_min")
	}
	return nil
}
