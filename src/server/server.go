package server

import (
	"fmt"
	"strings"
	"sync"

	"deal-observer/src/favorites"
	"deal-observer/src/interfaces"
	"deal-observer/src/logger"
	"deal-observer/src/models"
	"deal-observer/src/quote"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Deals     interfaces.IDealsAPI
	Assembler *quote.Assembler
	Favorites *favorites.Service
	engine    *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MLatestQuotes // Strongly typed and Buffered Queue
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	// Local cache of the last broadcast snapshot
	latestState *models.MLatestQuotes
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, log *logger.Logger, deals interfaces.IDealsAPI, assembler *quote.Assembler, favService *favorites.Service) *APIServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:    cfg,
		Logger:    log,
		Deals:     deals,
		Assembler: assembler,
		Favorites: favService,
		engine:    gin.Default(),
		clients:   make(map[*Client]struct{}),
		// Buffered channel so a slow client never stalls the watcher
		broadcast:  make(chan *models.MLatestQuotes, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		latestState: &models.MLatestQuotes{
			Type:   "INITIAL",
			Quotes: make(map[string]models.MQuoteData),
		},
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/search", s.getSearch)
	s.engine.POST("/api/quote", s.postQuote)
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)

	// Favorites endpoints
	s.engine.GET("/api/favorites", s.getFavorites)
	s.engine.POST("/api/favorites/toggle", s.postFavoriteToggle)
	s.engine.DELETE("/api/favorites/:id", s.deleteFavorite)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *APIServer) Stop() error {
	// Terminate the hub loop; it closes every subscriber's send channel on
	// its way out. The hub channels themselves stay open so in-flight
	// register/broadcast sends cannot observe a closed channel.
	s.stopOnce.Do(func() { close(s.done) })
	return nil
}

// -----------------------------------------------------------------------------

// Engine exposes the router for tests.
func (s *APIServer) Engine() *gin.Engine {
	return s.engine
}
