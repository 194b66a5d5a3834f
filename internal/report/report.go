// Package report derives distribution statistics and cohort comparisons
// from a batch of scored wallets.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	"walletscore/internal/domain"
)

// Cohort cut points. Wallets below LowCut are treated as high risk,
// wallets at or above HighCut as prime.
const (
	LowCut  = 300.0
	HighCut = 700.0
)

// Options controls bucketing and ranking depth.
type Options struct {
	BucketSize int
	TopN       int
	ScoreMin   float64
	ScoreMax   float64
}

// RangeCount is one bucket of the score distribution.
type RangeCount struct {
	Label string
	Lo    float64
	Hi    float64
	Count int
}

// Cohort aggregates behavioral averages for a score band.
type Cohort struct {
	Count              int
	Share              float64
	AvgScore           float64
	AvgTransactions    float64
	AvgVolumeUSD       float64
	AvgRiskIndicators  float64
	AvgConsistentUsage float64
	AvgRepayment       float64
}

// Ranked pairs a wallet with its score for top/bottom listings.
type Ranked struct {
	Wallet string
	Score  float64
}

// Summary is the full statistics report for one scoring run.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
	Ranges []RangeCount
	Low    Cohort
	High   Cohort
	Top    []Ranked
	Bottom []Ranked
}

// Summarize computes the report for a set of score records. Ties in the
// rankings break on wallet so the output is stable across runs.
func Summarize(records []domain.ScoreRecord, opts Options) Summary {
	if opts.BucketSize <= 0 {
		opts.BucketSize = 100
	}
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	if opts.ScoreMax <= opts.ScoreMin {
		opts.ScoreMin, opts.ScoreMax = 0, 1000
	}

	s := Summary{Count: len(records)}
	if len(records) == 0 {
		return s
	}

	scores := make([]float64, len(records))
	for i, rec := range records {
		scores[i] = rec.Score
	}
	sort.Float64s(scores)

	s.Min = scores[0]
	s.Max = scores[len(scores)-1]
	s.Mean = mean(scores)
	s.Median = medianSorted(scores)
	s.StdDev = sampleStd(scores, s.Mean)
	s.Ranges = bucketize(scores, opts)
	s.Low = cohort(records, func(r domain.ScoreRecord) bool { return r.Score < LowCut })
	s.High = cohort(records, func(r domain.ScoreRecord) bool { return r.Score >= HighCut })

	ranked := make([]Ranked, len(records))
	for i, rec := range records {
		ranked[i] = Ranked{Wallet: rec.Wallet, Score: rec.Score}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Wallet < ranked[j].Wallet
	})

	n := opts.TopN
	if n > len(ranked) {
		n = len(ranked)
	}
	s.Top = append([]Ranked(nil), ranked[:n]...)

	bottom := make([]Ranked, n)
	for i := 0; i < n; i++ {
		bottom[i] = ranked[len(ranked)-1-i]
	}
	s.Bottom = bottom

	return s
}

func bucketize(sorted []float64, opts Options) []RangeCount {
	size := float64(opts.BucketSize)
	span := opts.ScoreMax - opts.ScoreMin
	buckets := int(math.Ceil(span / size))
	if buckets < 1 {
		buckets = 1
	}

	ranges := make([]RangeCount, buckets)
	for i := range ranges {
		lo := opts.ScoreMin + float64(i)*size
		hi := lo + size
		if hi > opts.ScoreMax {
			hi = opts.ScoreMax
		}
		ranges[i] = RangeCount{
			Label: fmt.Sprintf("%d-%d", int(lo), int(hi)),
			Lo:    lo,
			Hi:    hi,
		}
	}

	for _, score := range sorted {
		idx := int((score - opts.ScoreMin) / size)
		if idx < 0 {
			idx = 0
		}
		if idx >= buckets {
			idx = buckets - 1
		}
		ranges[idx].Count++
	}
	return ranges
}

func cohort(records []domain.ScoreRecord, member func(domain.ScoreRecord) bool) Cohort {
	var c Cohort
	for _, rec := range records {
		if !member(rec) {
			continue
		}
		c.Count++
		c.AvgScore += rec.Score
		c.AvgTransactions += float64(rec.Features.TotalTransactions)
		c.AvgVolumeUSD += rec.Features.TotalUSDVolume
		c.AvgRiskIndicators += rec.Features.RiskIndicators
		c.AvgConsistentUsage += rec.Features.ConsistentUsage
		c.AvgRepayment += rec.Features.RepaymentBehavior
	}
	if c.Count == 0 {
		return c
	}

	n := float64(c.Count)
	c.Share = n / float64(len(records))
	c.AvgScore /= n
	c.AvgTransactions /= n
	c.AvgVolumeUSD /= n
	c.AvgRiskIndicators /= n
	c.AvgConsistentUsage /= n
	c.AvgRepayment /= n
	return c
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func sampleStd(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// WriteText renders the summary as a plain-text report.
func WriteText(w io.Writer, s Summary) error {
	if s.Count == 0 {
		_, err := fmt.Fprintln(w, "no wallets scored")
		return err
	}

	fmt.Fprintln(w, "Wallet Credit Score Report")
	fmt.Fprintln(w, "==========================")
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Wallets scored:\t%d\n", s.Count)
	fmt.Fprintf(tw, "Mean score:\t%.2f\n", s.Mean)
	fmt.Fprintf(tw, "Median score:\t%.2f\n", s.Median)
	fmt.Fprintf(tw, "Std deviation:\t%.2f\n", s.StdDev)
	fmt.Fprintf(tw, "Min score:\t%.2f\n", s.Min)
	fmt.Fprintf(tw, "Max score:\t%.2f\n", s.Max)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Score distribution")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, r := range s.Ranges {
		share := float64(r.Count) / float64(s.Count) * 100
		fmt.Fprintf(tw, "  %s\t%d\t(%.1f%%)\t\n", r.Label, r.Count, share)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Top %d wallets\n", len(s.Top))
	for i, r := range s.Top {
		fmt.Fprintf(w, "  %d. %s  %.2f\n", i+1, r.Wallet, r.Score)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Bottom %d wallets\n", len(s.Bottom))
	for i, r := range s.Bottom {
		fmt.Fprintf(w, "  %d. %s  %.2f\n", i+1, r.Wallet, r.Score)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Cohort comparison (low < %.0f, high >= %.0f)\n", LowCut, HighCut)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "  \tlow\thigh\t\n")
	fmt.Fprintf(tw, "  wallets\t%d\t%d\t\n", s.Low.Count, s.High.Count)
	fmt.Fprintf(tw, "  share\t%.1f%%\t%.1f%%\t\n", s.Low.Share*100, s.High.Share*100)
	fmt.Fprintf(tw, "  avg score\t%.2f\t%.2f\t\n", s.Low.AvgScore, s.High.AvgScore)
	fmt.Fprintf(tw, "  avg transactions\t%.1f\t%.1f\t\n", s.Low.AvgTransactions, s.High.AvgTransactions)
	fmt.Fprintf(tw, "  avg volume (USD)\t%.2f\t%.2f\t\n", s.Low.AvgVolumeUSD, s.High.AvgVolumeUSD)
	fmt.Fprintf(tw, "  avg risk\t%.3f\t%.3f\t\n", s.Low.AvgRiskIndicators, s.High.AvgRiskIndicators)
	fmt.Fprintf(tw, "  avg consistency\t%.3f\t%.3f\t\n", s.Low.AvgConsistentUsage, s.High.AvgConsistentUsage)
	fmt.Fprintf(tw, "  avg repayment\t%.3f\t%.3f\t\n", s.Low.AvgRepayment, s.High.AvgRepayment)
	return tw.Flush()
}
