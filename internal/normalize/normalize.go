package normalize

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"walletscore/internal/domain"
	"walletscore/internal/ingest"
)

// Normalizer converts raw dump records into canonical transactions. Records
// that cannot be parsed are dropped and counted, never zero-filled.
type Normalizer struct {
	assets AssetTable
	logger zerolog.Logger
}

// New constructs a Normalizer over an asset precision table.
func New(assets AssetTable, logger zerolog.Logger) *Normalizer {
	return &Normalizer{
		assets: assets,
		logger: logger.With().Str("component", "normalize").Logger(),
	}
}

// Run normalizes records in input order. The malformed argument carries the
// count of array elements the decoder already discarded, so the returned
// DropStats cover the whole input. A required field missing from every
// record aborts with a SchemaError.
func (n *Normalizer) Run(records []ingest.RawRecord, malformed int) ([]domain.Transaction, DropStats, error) {
	stats := DropStats{
		Total:           len(records) + malformed,
		MalformedRecord: malformed,
	}

	var counts schemaCounts
	txs := make([]domain.Transaction, 0, len(records))

	for _, rec := range records {
		counts.observe(rec)

		wallet := strings.TrimSpace(rec.UserWallet)
		if wallet == "" {
			stats.MissingWallet++
			continue
		}

		action, ok := canonicalAction(rec.Action)
		if !ok {
			stats.UnknownAction++
			continue
		}

		if rec.Timestamp <= 0 {
			stats.BadTimestamp++
			continue
		}

		amount, err := decimal.NewFromString(string(rec.ActionData.Amount))
		if err != nil || amount.IsNegative() {
			stats.BadAmount++
			continue
		}

		price, err := decimal.NewFromString(string(rec.ActionData.AssetPriceUSD))
		if err != nil || price.IsNegative() {
			stats.BadPrice++
			continue
		}

		symbol := strings.ToUpper(strings.TrimSpace(rec.ActionData.AssetSymbol))
		usd := amount.Shift(-int32(n.assets.DecimalsFor(symbol))).Mul(price)

		txs = append(txs, domain.Transaction{
			Wallet:    CanonicalWallet(wallet),
			Action:    action,
			AmountUSD: usd.InexactFloat64(),
			Asset:     symbol,
			Timestamp: int64(rec.Timestamp),
		})
	}

	if field, absent := counts.allMissing(len(records)); absent {
		return nil, stats, &ingest.SchemaError{
			Detail: fmt.Sprintf("required field %s missing from all %d records", field, len(records)),
		}
	}

	stats.Kept = len(txs)
	if stats.Dropped() > 0 {
		n.logger.Warn().
			Int("malformed", stats.MalformedRecord).
			Int("missing_wallet", stats.MissingWallet).
			Int("unknown_action", stats.UnknownAction).
			Int("bad_timestamp", stats.BadTimestamp).
			Int("bad_amount", stats.BadAmount).
			Int("bad_price", stats.BadPrice).
			Msg(stats.Summary())
	}

	return txs, stats, nil
}

// CanonicalWallet folds hex address case variants into one identity using the
// EIP-55 checksum rendering, so the same wallet never scores twice.
// Identifiers that are not hex addresses pass through unchanged.
func CanonicalWallet(raw string) string {
	if common.IsHexAddress(raw) {
		return common.HexToAddress(raw).Hex()
	}
	return raw
}

func canonicalAction(raw string) (domain.Action, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "deposit":
		return domain.ActionDeposit, true
	case "borrow":
		return domain.ActionBorrow, true
	case "repay":
		return domain.ActionRepay, true
	case "redeemunderlying", "redeem":
		return domain.ActionRedeem, true
	case "liquidationcall", "liquidation":
		return domain.ActionLiquidation, true
	default:
		return "", false
	}
}

// schemaCounts tallies how often each required field is missing, independent
// of whether the record was dropped for an earlier reason.
type schemaCounts struct {
	wallet    int
	action    int
	timestamp int
	amount    int
	price     int
}

func (c *schemaCounts) observe(rec ingest.RawRecord) {
	if strings.TrimSpace(rec.UserWallet) == "" {
		c.wallet++
	}
	if strings.TrimSpace(rec.Action) == "" {
		c.action++
	}
	if rec.Timestamp == 0 {
		c.timestamp++
	}
	if rec.ActionData.Amount == "" {
		c.amount++
	}
	if rec.ActionData.AssetPriceUSD == "" {
		c.price++
	}
}

func (c schemaCounts) allMissing(total int) (string, bool) {
	if total == 0 {
		return "", false
	}
	checks := []struct {
		name    string
		missing int
	}{
		{"userWallet", c.wallet},
		{"action", c.action},
		{"timestamp", c.timestamp},
		{"actionData.amount", c.amount},
		{"actionData.assetPriceUSD", c.price},
	}
	for _, check := range checks {
		if check.missing == total {
			return check.name, true
		}
	}
	return "", false
}
