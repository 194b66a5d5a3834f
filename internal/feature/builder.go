package feature

import (
	"math"
	"sort"

	"walletscore/internal/domain"
)

const (
	epsilon       = 1e-10
	secondsPerDay = 86400.0

	// burst: more than burstMinTxs transactions inside burstWindowSec.
	burstWindowSec = 3600
	burstMinTxs    = 10

	// erratic sizing: size deviation beyond erraticStdMult times the mean.
	erraticStdMult = 5.0

	// diversification entropy is normalized against at most this many assets.
	entropyAssetCap = 10

	neutralConsistency = 0.5
	neutralRepayment   = 0.8
)

// Risk component weights. The liquidation term is graded by ratio so a fully
// liquidated wallet saturates the penalty together with the single-action
// term.
const (
	riskBurst        = 0.3
	riskErraticSize  = 0.2
	riskLiquidation  = 0.5
	riskSingleAction = 0.5
)

// Group collects one wallet's surviving transactions in input order.
type Group struct {
	Wallet string
	Txs    []domain.Transaction
}

// GroupByWallet splits transactions per wallet, preserving wallet
// first-appearance order and per-wallet input order.
func GroupByWallet(txs []domain.Transaction) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)
	for _, tx := range txs {
		i, ok := index[tx.Wallet]
		if !ok {
			i = len(groups)
			index[tx.Wallet] = i
			groups = append(groups, Group{Wallet: tx.Wallet})
		}
		groups[i].Txs = append(groups[i].Txs, tx)
	}
	return groups
}

// Build derives the feature vector for one wallet. The group's transactions
// are sorted by timestamp first; ties keep their input order.
func Build(g Group) domain.FeatureVector {
	txs := make([]domain.Transaction, len(g.Txs))
	copy(txs, g.Txs)
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Timestamp < txs[j].Timestamp })

	n := len(txs)
	total := float64(n)
	usd := make([]float64, n)
	actionCounts := make(map[domain.Action]int)
	assetCounts := make(map[string]int)

	var volume, depositUSD, borrowUSD float64
	for i, tx := range txs {
		usd[i] = tx.AmountUSD
		volume += tx.AmountUSD
		actionCounts[tx.Action]++
		assetCounts[tx.Asset]++

		switch tx.Action {
		case domain.ActionDeposit:
			depositUSD += tx.AmountUSD
		case domain.ActionBorrow:
			borrowUSD += tx.AmountUSD
		}
	}

	durationDays := float64(txs[n-1].Timestamp-txs[0].Timestamp) / secondsPerDay

	return domain.FeatureVector{
		TotalTransactions:     n,
		UniqueAssets:          len(assetCounts),
		TotalUSDVolume:        volume,
		AvgTransactionSize:    volume / total,
		MedianTransactionSize: median(usd),

		DepositRatio:     float64(actionCounts[domain.ActionDeposit]) / total,
		BorrowRatio:      float64(actionCounts[domain.ActionBorrow]) / total,
		RepayRatio:       float64(actionCounts[domain.ActionRepay]) / total,
		RedeemRatio:      float64(actionCounts[domain.ActionRedeem]) / total,
		LiquidationRatio: float64(actionCounts[domain.ActionLiquidation]) / total,

		ActivityDurationDays: durationDays,
		TransactionFrequency: total / math.Max(durationDays, 1),

		ConsistentUsage:      consistentUsage(txs, usd),
		RiskIndicators:       riskIndicators(txs, usd, actionCounts),
		LeverageIndicator:    leverageIndicator(depositUSD, borrowUSD),
		RepaymentBehavior:    repaymentBehavior(actionCounts[domain.ActionBorrow], actionCounts[domain.ActionRepay]),
		DiversificationScore: diversification(assetCounts, n),
	}
}

// consistentUsage averages timing regularity and sizing regularity. Wallets
// with a single transaction sit at the neutral midpoint.
func consistentUsage(txs []domain.Transaction, usd []float64) float64 {
	if len(txs) < 2 {
		return neutralConsistency
	}

	gaps := make([]float64, len(txs)-1)
	for i := 1; i < len(txs); i++ {
		gaps[i-1] = float64(txs[i].Timestamp - txs[i-1].Timestamp)
	}

	timeScore := 1 - populationStd(gaps)/(mean(gaps)+epsilon)
	sizeScore := 1 - sampleStd(usd)/(mean(usd)+epsilon)
	return clamp01((timeScore + sizeScore) / 2)
}

// riskIndicators composes the red flags: bot-like bursts, erratic sizing,
// liquidation exposure, and single-action wallets with no collateral.
func riskIndicators(txs []domain.Transaction, usd []float64, actionCounts map[domain.Action]int) float64 {
	risk := 0.0
	n := len(txs)

	if span := txs[n-1].Timestamp - txs[0].Timestamp; n > burstMinTxs && span < burstWindowSec {
		risk += riskBurst
	}

	if sampleStd(usd) > erraticStdMult*mean(usd) {
		risk += riskErraticSize
	}

	risk += riskLiquidation * float64(actionCounts[domain.ActionLiquidation]) / float64(n)

	if len(actionCounts) == 1 && actionCounts[domain.ActionDeposit] == 0 {
		risk += riskSingleAction
	}

	return clamp01(risk)
}

// diversification is the Shannon entropy of per-asset activity, normalized
// by the maximum entropy of an even spread over min(assets, cap).
func diversification(assetCounts map[string]int, total int) float64 {
	unique := len(assetCounts)
	if unique <= 1 {
		return 0
	}

	// Summation order is fixed so repeated runs produce bit-identical
	// entropy despite map iteration being randomized.
	symbols := make([]string, 0, unique)
	for symbol := range assetCounts {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	entropy := 0.0
	for _, symbol := range symbols {
		p := float64(assetCounts[symbol]) / float64(total)
		entropy -= p * math.Log2(p)
	}

	capped := unique
	if capped > entropyAssetCap {
		capped = entropyAssetCap
	}
	return clamp01(entropy / math.Log2(float64(capped)))
}

// leverageIndicator tiers borrowed USD against deposited USD. Borrowing with
// no deposits at all returns -1; the scoring stage decides what that costs.
func leverageIndicator(depositUSD, borrowUSD float64) float64 {
	if depositUSD == 0 {
		if borrowUSD == 0 {
			return 0
		}
		return -1
	}

	switch ratio := borrowUSD / depositUSD; {
	case ratio <= 0.5:
		return 0.8
	case ratio <= 1.0:
		return 1.0
	case ratio <= 2.0:
		return 0.6
	default:
		return 0.2
	}
}

// repaymentBehavior relates repay count to borrow count. Wallets that never
// borrowed get a neutral value rather than a perfect one.
func repaymentBehavior(borrows, repays int) float64 {
	if borrows == 0 {
		return neutralRepayment
	}
	return clamp01(float64(repays) / float64(borrows))
}
