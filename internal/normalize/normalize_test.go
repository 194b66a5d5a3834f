package normalize

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"walletscore/internal/domain"
	"walletscore/internal/ingest"
)

func testTable() AssetTable {
	return NewAssetTable(Config{
		DefaultDecimals: 18,
		Decimals:        map[string]int{"USDC": 6, "USDT": 6, "WBTC": 8, "WETH": 18, "WMATIC": 18, "DAI": 18},
	})
}

func record(wallet, action string, ts int64, amount, symbol, price string) ingest.RawRecord {
	return ingest.RawRecord{
		UserWallet: wallet,
		Action:     action,
		Timestamp:  ingest.FlexInt64(ts),
		ActionData: ingest.ActionData{
			Amount:        ingest.FlexString(amount),
			AssetSymbol:   symbol,
			AssetPriceUSD: ingest.FlexString(price),
		},
	}
}

func TestRunScalesByAssetDecimals(t *testing.T) {
	n := New(testTable(), zerolog.Nop())

	txs, stats, err := n.Run([]ingest.RawRecord{
		record("0xabc", "deposit", 1629178166, "2000000000", "USDC", "0.9938"),
		record("0xabc", "borrow", 1629178266, "1000000000000000000", "UNLISTED", "2.5"),
	}, 0)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Dropped() != 0 || stats.Kept != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if got, want := txs[0].AmountUSD, 2000*0.9938; math.Abs(got-want) > 1e-9 {
		t.Fatalf("USDC scaling wrong: got %v want %v", got, want)
	}
	// unknown symbol falls back to 18 decimals
	if got, want := txs[1].AmountUSD, 2.5; math.Abs(got-want) > 1e-9 {
		t.Fatalf("default scaling wrong: got %v want %v", got, want)
	}
}

func TestRunMapsRawActionNames(t *testing.T) {
	n := New(testTable(), zerolog.Nop())

	txs, _, err := n.Run([]ingest.RawRecord{
		record("0xabc", "redeemunderlying", 10, "1", "DAI", "1"),
		record("0xabc", "LiquidationCall", 20, "1", "DAI", "1"),
		record("0xabc", "Deposit", 30, "1", "DAI", "1"),
	}, 0)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []domain.Action{domain.ActionRedeem, domain.ActionLiquidation, domain.ActionDeposit}
	for i, tx := range txs {
		if tx.Action != want[i] {
			t.Fatalf("action %d: got %s want %s", i, tx.Action, want[i])
		}
	}
}

func TestRunDropsAndCounts(t *testing.T) {
	n := New(testTable(), zerolog.Nop())

	txs, stats, err := n.Run([]ingest.RawRecord{
		record("0xabc", "deposit", 10, "100", "DAI", "1"),
		record("", "deposit", 10, "100", "DAI", "1"),
		record("0xabc", "flashloan", 10, "100", "DAI", "1"),
		record("0xabc", "deposit", 0, "100", "DAI", "1"),
		record("0xabc", "deposit", 10, "not-a-number", "DAI", "1"),
		record("0xabc", "deposit", 10, "-5", "DAI", "1"),
		record("0xabc", "deposit", 10, "100", "DAI", ""),
		record("0xabc", "deposit", 10, "100", "DAI", "-0.5"),
	}, 3)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(txs) != 1 {
		t.Fatalf("expected 1 surviving tx, got %d", len(txs))
	}
	if stats.MissingWallet != 1 || stats.UnknownAction != 1 || stats.BadTimestamp != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.BadAmount != 2 || stats.BadPrice != 2 || stats.MalformedRecord != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// conservation: every input record is either kept or counted once
	if stats.Kept+stats.Dropped() != stats.Total {
		t.Fatalf("conservation violated: %+v", stats)
	}
	if stats.Total != 11 {
		t.Fatalf("total should include malformed elements: %+v", stats)
	}
}

func TestRunKeepsZeroPrice(t *testing.T) {
	n := New(testTable(), zerolog.Nop())

	txs, stats, err := n.Run([]ingest.RawRecord{
		record("0xabc", "deposit", 10, "100", "DAI", "0"),
	}, 0)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Dropped() != 0 || len(txs) != 1 || txs[0].AmountUSD != 0 {
		t.Fatalf("zero price should survive with zero USD: %+v txs=%v", stats, txs)
	}
}

func TestRunSchemaErrorWhenFieldAbsentEverywhere(t *testing.T) {
	n := New(testTable(), zerolog.Nop())

	_, _, err := n.Run([]ingest.RawRecord{
		record("", "deposit", 10, "100", "DAI", "1"),
		record("", "borrow", 20, "100", "DAI", "1"),
	}, 0)
	if err == nil {
		t.Fatal("expected schema error")
	}
	var schemaErr *ingest.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %T: %v", err, err)
	}
}

func TestRunPartiallyMissingFieldIsNotSchemaError(t *testing.T) {
	n := New(testTable(), zerolog.Nop())

	txs, stats, err := n.Run([]ingest.RawRecord{
		record("", "deposit", 10, "100", "DAI", "1"),
		record("0xabc", "borrow", 20, "100", "DAI", "1"),
	}, 0)
	if err != nil {
		t.Fatalf("partial absence must not be fatal: %v", err)
	}
	if len(txs) != 1 || stats.MissingWallet != 1 {
		t.Fatalf("unexpected result: txs=%d stats=%+v", len(txs), stats)
	}
}

func TestCanonicalWalletMergesCaseVariants(t *testing.T) {
	lower := CanonicalWallet("0x00000000219ab540356cbb839cbe05303d7705fa")
	upper := CanonicalWallet("0x00000000219AB540356CBB839CBE05303D7705FA")
	if lower != upper {
		t.Fatalf("case variants should merge: %s vs %s", lower, upper)
	}

	opaque := CanonicalWallet("wallet-42")
	if opaque != "wallet-42" {
		t.Fatalf("non-hex id should pass through, got %s", opaque)
	}
}
