package domain

// FeatureVector condenses one wallet's full transaction history into the
// fixed-width inputs of the scoring stage. Built once per wallet and never
// mutated afterwards.
//
// All ratio and behavioral fields are bounded to [0,1] except
// LeverageIndicator, which uses -1 to flag borrowing without any deposited
// collateral.
type FeatureVector struct {
	TotalTransactions     int
	UniqueAssets          int
	TotalUSDVolume        float64
	AvgTransactionSize    float64
	MedianTransactionSize float64

	DepositRatio     float64
	BorrowRatio      float64
	RepayRatio       float64
	RedeemRatio      float64
	LiquidationRatio float64

	ActivityDurationDays float64
	TransactionFrequency float64

	ConsistentUsage      float64
	RiskIndicators       float64
	LeverageIndicator    float64
	RepaymentBehavior    float64
	DiversificationScore float64
}
