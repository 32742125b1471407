package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"xapi-connector/src/cache"
	"xapi-connector/src/config"
	"xapi-connector/src/interfaces"
	"xapi-connector/src/logger"
	"xapi-connector/src/metrics"
	"xapi-connector/src/models"
	"xapi-connector/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// -----------------------------------------------------------------------------
// GatewayServer
// -----------------------------------------------------------------------------

// Deps are the collaborators behind the REST routes. Everything but Client
// is optional; routes whose backing store is missing answer 404.
type Deps struct {
	Client  interfaces.IXapiClient
	Symbols *cache.SymbolCache
	Journal interfaces.IDatabase
	Memory  *utils.MemoryManager
	Metrics *metrics.CommandMetrics
}

type GatewayServer struct {
	Config *config.Config
	Logger *logger.Logger
	Deps

	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients
	clients     map[*Client]struct{}
	connections atomic.Int32
	broadcast   chan *models.MLatestData
	register    chan *Client
	unregister  chan *Client
	resync      chan *Client
	done        chan struct{}
	stopOnce    sync.Once

	latestState *models.MLatestData
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

// NewGatewayServer builds the routes and starts the WebSocket hub. Start
// only binds the listener.
func NewGatewayServer(cfg *config.Config, deps Deps, log *logger.Logger) *GatewayServer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if !strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &GatewayServer{
		Config:     cfg,
		Logger:     log,
		Deps:       deps,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *models.MLatestData, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		resync:     make(chan *Client),
		done:       make(chan struct{}),
		latestState: &models.MLatestData{
			Type:  "INITIAL",
			Ticks: make(map[string]models.MTick),
		},
	}

	s.engine.Use(gin.Recovery(), s.requestLogger(), cors())
	s.setupRoutes()

	go s.handleWebsockets()
	return s
}

// -----------------------------------------------------------------------------

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *GatewayServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *GatewayServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/config", s.getConfig)
	api.GET("/server-time", s.getServerTime)
	api.GET("/version", s.getVersion)
	api.GET("/symbols", s.getSymbols)
	api.GET("/symbols/:symbol", s.getSymbol)
	api.GET("/ticks", s.getTicks)
	api.GET("/trades", s.getTrades)
	api.GET("/margin-level", s.getMarginLevel)
	api.POST("/commands/:name", s.postCommand)

	if s.Metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the router, mainly for httptest.
func (s *GatewayServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start serves until Stop is called.
func (s *GatewayServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.Logger.Info("Starting gateway on %s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop shuts the listener down and disconnects WebSocket clients.
func (s *GatewayServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = s.httpServer.Shutdown(ctx)
		}
	})
	return err
}
