package normalize

import "fmt"

// DropStats accounts for every input record that did not survive
// normalization. Kept plus Dropped always equals Total.
type DropStats struct {
	Total int
	Kept  int

	MalformedRecord int
	MissingWallet   int
	UnknownAction   int
	BadTimestamp    int
	BadAmount       int
	BadPrice        int
}

// Dropped returns the number of discarded records.
func (s DropStats) Dropped() int {
	return s.MalformedRecord + s.MissingWallet + s.UnknownAction + s.BadTimestamp + s.BadAmount + s.BadPrice
}

// Summary renders the short human-readable form used in logs and reports.
func (s DropStats) Summary() string {
	return fmt.Sprintf("%d of %d records dropped", s.Dropped(), s.Total)
}
