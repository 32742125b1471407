package server

import (
	"net/http"
	"strconv"

	"xapi-connector/src/helpers"
	"xapi-connector/src/models"

	"github.com/gin-gonic/gin"
)

const defaultTickLimit = 100

// -----------------------------------------------------------------------------
// Status
// -----------------------------------------------------------------------------

func (s *GatewayServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	loggedIn := s.Client.IsLoggedIn()
	status := "ok"
	if !loggedIn {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"logged_in":     loggedIn,
		"connections":   s.connectionCount(),
		"latest_update": timestamp,
	})
}

// -----------------------------------------------------------------------------

func (s *GatewayServer) getConfig(c *gin.Context) {
	xapiCfg := s.Config.Xapi
	if xapiCfg.Password != "" {
		xapiCfg.Password = "********"
	}
	c.JSON(http.StatusOK, gin.H{
		"name":        s.Config.Name,
		"xapi":        xapiCfg,
		"data_source": s.Config.DataSource,
		"db_type":     s.Config.Storage.DBType,
	})
}

// -----------------------------------------------------------------------------
// Pass-through commands
// -----------------------------------------------------------------------------

func (s *GatewayServer) getServerTime(c *gin.Context) {
	st, err := s.Client.GetServerTime(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *GatewayServer) getVersion(c *gin.Context) {
	v, err := s.Client.GetVersion(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *GatewayServer) getMarginLevel(c *gin.Context) {
	ml, err := s.Client.GetMarginLevel(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ml)
}

// getTrades answers opened positions by default; ?opened_only=false adds
// pending orders.
func (s *GatewayServer) getTrades(c *gin.Context) {
	openedOnly, err := strconv.ParseBool(c.DefaultQuery("opened_only", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "opened_only must be a boolean"})
		return
	}

	trades, err := s.Client.GetTrades(c.Request.Context(), openedOnly)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if s.Journal != nil {
		if err := s.Journal.SaveTrades(trades); err != nil {
			s.Logger.Warning("Failed to journal trades: %v", err)
		}
	}
	c.JSON(http.StatusOK, trades)
}

// -----------------------------------------------------------------------------
// Symbols (cache first)
// -----------------------------------------------------------------------------

func (s *GatewayServer) getSymbols(c *gin.Context) {
	if s.Symbols != nil {
		if all, ok := s.Symbols.All(); ok {
			c.JSON(http.StatusOK, all)
			return
		}
	}

	symbols, err := s.Client.GetAllSymbols(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if s.Symbols != nil {
		if err := s.Symbols.SetAll(symbols); err != nil {
			s.Logger.Warning("Failed to cache symbols: %v", err)
		}
	}
	if s.Journal != nil {
		if err := s.Journal.SaveSymbols(symbols); err != nil {
			s.Logger.Warning("Failed to journal symbols: %v", err)
		}
	}
	c.JSON(http.StatusOK, symbols)
}

func (s *GatewayServer) getSymbol(c *gin.Context) {
	name := c.Param("symbol")
	if s.Symbols != nil {
		if sym, ok := s.Symbols.Get(name); ok {
			c.JSON(http.StatusOK, sym)
			return
		}
	}

	sym, err := s.Client.GetSymbol(c.Request.Context(), name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if s.Symbols != nil {
		if err := s.Symbols.Set(sym); err != nil {
			s.Logger.Warning("Failed to cache %s: %v", name, err)
		}
	}
	c.JSON(http.StatusOK, sym)
}

// -----------------------------------------------------------------------------
// Ticks
// -----------------------------------------------------------------------------

// getTicks reads recent quotes of one symbol, newest first, from the journal
// or, without one, from memory.
func (s *GatewayServer) getTicks(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultTickLimit)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	var ticks []models.MTick
	switch {
	case s.Journal != nil:
		ticks, err = s.Journal.LatestTicks(symbol, limit)
		if err != nil {
			s.Logger.Error("Failed to read ticks of %s: %v", symbol, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	case s.Memory != nil:
		ticks = s.Memory.Latest(symbol, limit)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "no tick store configured"})
		return
	}
	if ticks == nil {
		ticks = []models.MTick{}
	}
	c.JSON(http.StatusOK, ticks)
}

// -----------------------------------------------------------------------------
// Generic command
// -----------------------------------------------------------------------------

// postCommand runs any command of the command table. The body is the
// arguments object and may be empty.
func (s *GatewayServer) postCommand(c *gin.Context) {
	var args map[string]any
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&args); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON object: " + err.Error()})
			return
		}
	}

	payload, err := s.Client.Call(c.Request.Context(), c.Param("name"), args)
	if err != nil {
		if helpers.ErrorKind(err) == "other" {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"command":    c.Param("name"),
		"kind":       payload.Kind.String(),
		"returnData": payload.Value(),
	})
}
