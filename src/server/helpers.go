package server

import (
	"errors"
	"net/http"

	"xapi-connector/src/helpers"
	"xapi-connector/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Error mapping
// -----------------------------------------------------------------------------

// writeError maps client errors to HTTP: no usable session is 503, anything
// the server said or sent that could not be used is 502.
func (s *GatewayServer) writeError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error(), "kind": helpers.ErrorKind(err)}

	var apiErr *helpers.ApiError
	var decodeErr *helpers.DecodeError
	var socketErr *helpers.SocketError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &socketErr):
		status = http.StatusServiceUnavailable
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
		body["code"] = apiErr.Code
		body["description"] = apiErr.Description
	case errors.As(err, &decodeErr):
		status = http.StatusBadGateway
		body["record"] = decodeErr.Record
		body["field"] = decodeErr.Field
	}

	if status == http.StatusInternalServerError {
		s.Logger.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		s.Logger.Warning("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, body)
}

// -----------------------------------------------------------------------------
// Snapshot helpers
// -----------------------------------------------------------------------------

// toLatestData accepts what the gateway loop hands over: a poll batch or a
// ready snapshot.
func toLatestData(payload interface{}) (*models.MLatestData, bool) {
	switch v := payload.(type) {
	case *models.MLatestData:
		return v, v != nil
	case models.MLatestData:
		return &v, true
	case models.MTickBatch:
		return batchToLatestData(v), true
	case *models.MTickBatch:
		if v == nil {
			return nil, false
		}
		return batchToLatestData(*v), true
	}
	return nil, false
}

// batchToLatestData keeps the newest base-level quote of every symbol.
func batchToLatestData(batch models.MTickBatch) *models.MLatestData {
	ticks := make(map[string]models.MTick)
	for _, t := range batch.Ticks {
		if t.Level != 0 {
			continue
		}
		if prev, ok := ticks[t.Symbol]; !ok || t.Timestamp >= prev.Timestamp {
			ticks[t.Symbol] = t
		}
	}
	return &models.MLatestData{
		Type:              "UPDATE",
		Ticks:             ticks,
		Timestamp:         batch.FetchedAt,
		ProcessingMetrics: batch.Metrics,
	}
}
