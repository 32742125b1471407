package models

// MTickBatch is what the tick source hands to the gateway loop on every poll.
type MTickBatch struct {
	Ticks     []MTick            `json:"ticks"`
	FetchedAt int64              `json:"fetched_at"`
	Metrics   MProcessingMetrics `json:"metrics"`
}
