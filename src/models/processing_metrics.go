package models

// MProcessingMetrics describes one poll of the tick source.
type MProcessingMetrics struct {
	PollTimeSeconds float64 `json:"poll_time_seconds"`
	Symbols         int     `json:"symbols"`
	NewTicks        int     `json:"new_ticks"`
	SkippedClosed   int     `json:"skipped_closed"`
}
