package network

import (
	"fmt"

	"xapi-connector/src/interfaces"
	"xapi-connector/src/models"
)

// NewTransport builds the transport selected in the configuration. stream
// picks the streaming endpoint instead of the command endpoint.
func NewTransport(cfg *models.MXapiConfig, stream bool) (interfaces.ITransport, error) {
	switch cfg.Transport {
	case "", "socket":
		port := cfg.Port
		if stream {
			port = cfg.StreamPort
		}
		return NewSocketTransport(cfg.Host, port, cfg), nil
	case "websocket":
		url := cfg.URL
		if stream {
			url = cfg.StreamURL
		}
		return NewWebSocketTransport(url, cfg), nil
	}
	return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
}
