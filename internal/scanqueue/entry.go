package scanqueue

import "time"

// Hardware scanners emit a whole barcode in a burst; humans type far slower.
const defaultScannerGap = 150 * time.Millisecond

// EntryClassifier distinguishes rapid scanner input from manual typing by the
// interval between consecutive submissions. Best-effort only.
type EntryClassifier struct {
	gap  time.Duration
	last time.Time
}

// NewEntryClassifier builds a classifier; gap <= 0 uses the default.
func NewEntryClassifier(gap time.Duration) *EntryClassifier {
	if gap <= 0 {
		gap = defaultScannerGap
	}
	return &EntryClassifier{gap: gap}
}

// Classify records a submission at the given instant and reports whether it
// looks manually typed. The first submission is always treated as manual.
func (c *EntryClassifier) Classify(at time.Time) bool {
	manual := c.last.IsZero() || at.Sub(c.last) > c.gap
	c.last = at
	return manual
}
