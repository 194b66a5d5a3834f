package app

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"walletscore/internal/domain"
	"walletscore/internal/report"
)

func sampleRecords() []domain.ScoreRecord {
	return []domain.ScoreRecord{
		{
			Wallet: "0x00000000219ab540356cBB839Cbe05303d7705Fa",
			Score:  250.5,
			Features: domain.FeatureVector{
				TotalTransactions:    3,
				UniqueAssets:         2,
				TotalUSDVolume:       1250.75,
				AvgTransactionSize:   416.92,
				DepositRatio:         0.333333,
				LiquidationRatio:     0.333333,
				ActivityDurationDays: 12.5,
				TransactionFrequency: 0.24,
				ConsistentUsage:      0.41,
				RiskIndicators:       0.7,
				LeverageIndicator:    -1,
				RepaymentBehavior:    0.8,
			},
			Sub: domain.SubScores{Volume: 124.2, Repayment: 160, RiskPenalty: 140},
		},
		{
			Wallet: "wallet-plain",
			Score:  812,
			Features: domain.FeatureVector{
				TotalTransactions: 60,
				UniqueAssets:      4,
				TotalUSDVolume:    60000,
			},
			Sub: domain.SubScores{Volume: 191.12, Consistency: 200},
		},
	}
}

func TestWriteScoresCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "scores.csv")
	if err := writeScoresCSV(path, sampleRecords()); err != nil {
		t.Fatalf("writeScoresCSV: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "wallet" || rows[0][1] != "score" {
		t.Errorf("header starts %v", rows[0][:2])
	}
	if len(rows[0]) != len(exportHeader) {
		t.Errorf("header width = %d, want %d", len(rows[0]), len(exportHeader))
	}
	if rows[1][0] != "0x00000000219ab540356cBB839Cbe05303d7705Fa" {
		t.Errorf("wallet cell = %q", rows[1][0])
	}
	if rows[1][1] != "250.50" {
		t.Errorf("score cell = %q, want 250.50", rows[1][1])
	}
	// Leverage of -1 marks borrowing without deposits and must survive export.
	leverageIdx := -1
	for i, name := range exportHeader {
		if name == "leverage_indicator" {
			leverageIdx = i
		}
	}
	if leverageIdx < 0 {
		t.Fatal("leverage_indicator column missing")
	}
	if got := rows[1][leverageIdx]; got != "-1.000000" {
		t.Errorf("leverage cell = %q, want -1.000000", got)
	}
}

func TestWriteScoresXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.xlsx")
	if err := writeScoresXLSX(path, sampleRecords()); err != nil {
		t.Fatalf("writeScoresXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("Scores", "A1"); got != "wallet" {
		t.Errorf("A1 = %q, want wallet", got)
	}
	if got, _ := f.GetCellValue("Scores", "B2"); got != "250.5" {
		t.Errorf("B2 = %q, want 250.5", got)
	}
	if got, _ := f.GetCellValue("Scores", "A3"); got != "wallet-plain" {
		t.Errorf("A3 = %q, want wallet-plain", got)
	}
}

func TestWriteScoresParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.parquet")
	if err := writeScoresParquet(path, sampleRecords()); err != nil {
		t.Fatalf("writeScoresParquet: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 8 {
		t.Fatalf("parquet file too small: %d bytes", len(data))
	}
	if string(data[:4]) != "PAR1" || string(data[len(data)-4:]) != "PAR1" {
		t.Error("missing parquet magic bytes")
	}
}

func TestWriteHistogramPNG(t *testing.T) {
	records := sampleRecords()
	sum := report.Summarize(records, report.Options{BucketSize: 100, TopN: 5, ScoreMin: 0, ScoreMax: 1000})

	path := filepath.Join(t.TempDir(), "hist.png")
	if err := writeHistogramPNG(path, sum); err != nil {
		t.Fatalf("writeHistogramPNG: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data[1:4]), "PNG") {
		t.Error("output is not a png")
	}
}
