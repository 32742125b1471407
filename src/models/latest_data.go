package models

// -----------------------------------------------------------------------------
// Gateway snapshot pushed to WebSocket clients
// -----------------------------------------------------------------------------

type MLatestData struct {
	Type              string             `json:"type"` // "INITIAL" or "UPDATE"
	Ticks             map[string]MTick   `json:"ticks"`
	Timestamp         int64              `json:"timestamp"`
	ProcessingMetrics MProcessingMetrics `json:"processing_metrics"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string   `json:"command"` // "subscribe" | "unsubscribe"
	Symbols []string `json:"symbols"`
}
