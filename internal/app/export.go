package app

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"github.com/xuri/excelize/v2"

	"walletscore/internal/domain"
	"walletscore/internal/report"
)

// exportHeader lists the flat columns shared by the CSV and XLSX exports.
var exportHeader = []string{
	"wallet",
	"score",
	"total_transactions",
	"unique_assets",
	"total_usd_volume",
	"avg_transaction_size",
	"median_transaction_size",
	"deposit_ratio",
	"borrow_ratio",
	"repay_ratio",
	"redeem_ratio",
	"liquidation_ratio",
	"activity_duration_days",
	"transaction_frequency",
	"consistent_usage",
	"risk_indicators",
	"leverage_indicator",
	"repayment_behavior",
	"diversification_score",
	"score_volume",
	"score_consistency",
	"score_diversification",
	"score_repayment",
	"score_leverage",
	"score_activity_bonus",
	"score_asset_bonus",
	"score_risk_penalty",
}

func exportRow(rec domain.ScoreRecord) []string {
	fv := rec.Features
	return []string{
		rec.Wallet,
		strconv.FormatFloat(rec.Score, 'f', 2, 64),
		strconv.Itoa(fv.TotalTransactions),
		strconv.Itoa(fv.UniqueAssets),
		strconv.FormatFloat(fv.TotalUSDVolume, 'f', 2, 64),
		strconv.FormatFloat(fv.AvgTransactionSize, 'f', 2, 64),
		strconv.FormatFloat(fv.MedianTransactionSize, 'f', 2, 64),
		strconv.FormatFloat(fv.DepositRatio, 'f', 6, 64),
		strconv.FormatFloat(fv.BorrowRatio, 'f', 6, 64),
		strconv.FormatFloat(fv.RepayRatio, 'f', 6, 64),
		strconv.FormatFloat(fv.RedeemRatio, 'f', 6, 64),
		strconv.FormatFloat(fv.LiquidationRatio, 'f', 6, 64),
		strconv.FormatFloat(fv.ActivityDurationDays, 'f', 4, 64),
		strconv.FormatFloat(fv.TransactionFrequency, 'f', 4, 64),
		strconv.FormatFloat(fv.ConsistentUsage, 'f', 6, 64),
		strconv.FormatFloat(fv.RiskIndicators, 'f', 6, 64),
		strconv.FormatFloat(fv.LeverageIndicator, 'f', 6, 64),
		strconv.FormatFloat(fv.RepaymentBehavior, 'f', 6, 64),
		strconv.FormatFloat(fv.DiversificationScore, 'f', 6, 64),
		strconv.FormatFloat(rec.Sub.Volume, 'f', 2, 64),
		strconv.FormatFloat(rec.Sub.Consistency, 'f', 2, 64),
		strconv.FormatFloat(rec.Sub.Diversification, 'f', 2, 64),
		strconv.FormatFloat(rec.Sub.Repayment, 'f', 2, 64),
		strconv.FormatFloat(rec.Sub.Leverage, 'f', 2, 64),
		strconv.FormatFloat(rec.Sub.ActivityBonus, 'f', 2, 64),
		strconv.FormatFloat(rec.Sub.AssetBonus, 'f', 2, 64),
		strconv.FormatFloat(rec.Sub.RiskPenalty, 'f', 2, 64),
	}
}

func writeScoresCSV(path string, records []domain.ScoreRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(exportRow(rec)); err != nil {
			return err
		}
	}
	return w.Error()
}

func writeScoresXLSX(path string, records []domain.ScoreRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Scores"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(exportHeader))
	for i, name := range exportHeader {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, rec := range records {
		fv := rec.Features
		row := []interface{}{
			rec.Wallet,
			rec.Score,
			fv.TotalTransactions,
			fv.UniqueAssets,
			fv.TotalUSDVolume,
			fv.AvgTransactionSize,
			fv.MedianTransactionSize,
			fv.DepositRatio,
			fv.BorrowRatio,
			fv.RepayRatio,
			fv.RedeemRatio,
			fv.LiquidationRatio,
			fv.ActivityDurationDays,
			fv.TransactionFrequency,
			fv.ConsistentUsage,
			fv.RiskIndicators,
			fv.LeverageIndicator,
			fv.RepaymentBehavior,
			fv.DiversificationScore,
			rec.Sub.Volume,
			rec.Sub.Consistency,
			rec.Sub.Diversification,
			rec.Sub.Repayment,
			rec.Sub.Leverage,
			rec.Sub.ActivityBonus,
			rec.Sub.AssetBonus,
			rec.Sub.RiskPenalty,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// parquetScoreRow defines the schema for scores stored in parquet.
type parquetScoreRow struct {
	Wallet                string  `parquet:"name=wallet, type=BYTE_ARRAY, convertedtype=UTF8"`
	Score                 float64 `parquet:"name=score, type=DOUBLE"`
	TotalTransactions     int64   `parquet:"name=total_transactions, type=INT64"`
	UniqueAssets          int64   `parquet:"name=unique_assets, type=INT64"`
	TotalUSDVolume        float64 `parquet:"name=total_usd_volume, type=DOUBLE"`
	AvgTransactionSize    float64 `parquet:"name=avg_transaction_size, type=DOUBLE"`
	MedianTransactionSize float64 `parquet:"name=median_transaction_size, type=DOUBLE"`
	DepositRatio          float64 `parquet:"name=deposit_ratio, type=DOUBLE"`
	BorrowRatio           float64 `parquet:"name=borrow_ratio, type=DOUBLE"`
	RepayRatio            float64 `parquet:"name=repay_ratio, type=DOUBLE"`
	RedeemRatio           float64 `parquet:"name=redeem_ratio, type=DOUBLE"`
	LiquidationRatio      float64 `parquet:"name=liquidation_ratio, type=DOUBLE"`
	ActivityDurationDays  float64 `parquet:"name=activity_duration_days, type=DOUBLE"`
	TransactionFrequency  float64 `parquet:"name=transaction_frequency, type=DOUBLE"`
	ConsistentUsage       float64 `parquet:"name=consistent_usage, type=DOUBLE"`
	RiskIndicators        float64 `parquet:"name=risk_indicators, type=DOUBLE"`
	LeverageIndicator     float64 `parquet:"name=leverage_indicator, type=DOUBLE"`
	RepaymentBehavior     float64 `parquet:"name=repayment_behavior, type=DOUBLE"`
	DiversificationScore  float64 `parquet:"name=diversification_score, type=DOUBLE"`
	ScoreVolume           float64 `parquet:"name=score_volume, type=DOUBLE"`
	ScoreConsistency      float64 `parquet:"name=score_consistency, type=DOUBLE"`
	ScoreDiversification  float64 `parquet:"name=score_diversification, type=DOUBLE"`
	ScoreRepayment        float64 `parquet:"name=score_repayment, type=DOUBLE"`
	ScoreLeverage         float64 `parquet:"name=score_leverage, type=DOUBLE"`
	ScoreActivityBonus    float64 `parquet:"name=score_activity_bonus, type=DOUBLE"`
	ScoreAssetBonus       float64 `parquet:"name=score_asset_bonus, type=DOUBLE"`
	ScoreRiskPenalty      float64 `parquet:"name=score_risk_penalty, type=DOUBLE"`
}

func writeScoresParquet(path string, records []domain.ScoreRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(parquetScoreRow), 1)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, rec := range records {
		fv := rec.Features
		row := parquetScoreRow{
			Wallet:                rec.Wallet,
			Score:                 rec.Score,
			TotalTransactions:     int64(fv.TotalTransactions),
			UniqueAssets:          int64(fv.UniqueAssets),
			TotalUSDVolume:        fv.TotalUSDVolume,
			AvgTransactionSize:    fv.AvgTransactionSize,
			MedianTransactionSize: fv.MedianTransactionSize,
			DepositRatio:          fv.DepositRatio,
			BorrowRatio:           fv.BorrowRatio,
			RepayRatio:            fv.RepayRatio,
			RedeemRatio:           fv.RedeemRatio,
			LiquidationRatio:      fv.LiquidationRatio,
			ActivityDurationDays:  fv.ActivityDurationDays,
			TransactionFrequency:  fv.TransactionFrequency,
			ConsistentUsage:       fv.ConsistentUsage,
			RiskIndicators:        fv.RiskIndicators,
			LeverageIndicator:     fv.LeverageIndicator,
			RepaymentBehavior:     fv.RepaymentBehavior,
			DiversificationScore:  fv.DiversificationScore,
			ScoreVolume:           rec.Sub.Volume,
			ScoreConsistency:      rec.Sub.Consistency,
			ScoreDiversification:  rec.Sub.Diversification,
			ScoreRepayment:        rec.Sub.Repayment,
			ScoreLeverage:         rec.Sub.Leverage,
			ScoreActivityBonus:    rec.Sub.ActivityBonus,
			ScoreAssetBonus:       rec.Sub.AssetBonus,
			ScoreRiskPenalty:      rec.Sub.RiskPenalty,
		}
		if err := pw.Write(row); err != nil {
			return err
		}
	}

	return pw.WriteStop()
}

// writeHistogramPNG renders the score distribution as a bar chart.
func writeHistogramPNG(path string, sum report.Summary) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	bars := make([]chart.Value, len(sum.Ranges))
	for i, r := range sum.Ranges {
		bars[i] = chart.Value{
			Label: r.Label,
			Value: float64(r.Count),
		}
	}

	graph := chart.BarChart{
		Title:    "Wallet Credit Score Distribution",
		Width:    1280,
		Height:   720,
		BarWidth: 80,
		XAxis: chart.Style{
			TextRotationDegrees: 45,
		},
		YAxis: chart.YAxis{
			Name: "Wallets",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.0f")
			},
		},
		Bars: bars,
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
