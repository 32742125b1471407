package models

import "encoding/json"

// -----------------------------------------------------------------------------
// Request / Response envelopes
// -----------------------------------------------------------------------------

// MRequest is one command sent to the server. Stream subscriptions set Flat:
// the stream protocol expects the arguments next to "command" rather than
// nested under "arguments".
type MRequest struct {
	Command         string         `json:"command"`
	Arguments       map[string]any `json:"arguments,omitempty"`
	StreamSessionID string         `json:"streamSessionId,omitempty"`
	CustomTag       string         `json:"customTag,omitempty"`
	Flat            bool           `json:"-"`
}

func (r MRequest) MarshalJSON() ([]byte, error) {
	if !r.Flat {
		type plain MRequest
		return json.Marshal(plain(r))
	}

	out := make(map[string]any, len(r.Arguments)+3)
	for k, v := range r.Arguments {
		out[k] = v
	}
	out["command"] = r.Command
	if r.StreamSessionID != "" {
		out["streamSessionId"] = r.StreamSessionID
	}
	if r.CustomTag != "" {
		out["customTag"] = r.CustomTag
	}
	return json.Marshal(out)
}

// MResponse is the server reply. ReturnData is left raw; the decoder turns
// it into records.
type MResponse struct {
	Status          bool            `json:"status"`
	ReturnData      json.RawMessage `json:"returnData,omitempty"`
	ErrorCode       string          `json:"errorCode,omitempty"`
	ErrorDescr      string          `json:"errorDescr,omitempty"`
	StreamSessionID string          `json:"streamSessionId,omitempty"`
	CustomTag       string          `json:"customTag,omitempty"`
}

// MStreamMessage is one push from the streaming server.
type MStreamMessage struct {
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data"`
}

// -----------------------------------------------------------------------------
// Session results
// -----------------------------------------------------------------------------

type MLoginResult struct {
	Status          bool   `json:"status"`
	StreamSessionID string `json:"streamSessionId"`
}

type MLogoutResult struct {
	Status bool `json:"status"`
}
