package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leafbridge/leafbridge/internal/bridge"
	"github.com/leafbridge/leafbridge/internal/config"
	httphandlers "github.com/leafbridge/leafbridge/internal/http"
	"github.com/leafbridge/leafbridge/internal/logging"
	"github.com/leafbridge/leafbridge/internal/middleware"
	"github.com/leafbridge/leafbridge/internal/monitoring"
	"github.com/leafbridge/leafbridge/internal/sandbox"
	"github.com/leafbridge/leafbridge/internal/ws"
)

// Server wires the engine, bridge, and transports together.
type Server struct {
	cfg     *config.Config
	log     *logging.Logger
	router  *gin.Engine
	engine  *sandbox.Engine
	bridge  *bridge.Bridge
	metrics *monitoring.Metrics
}

// New builds the server. The engine document is loaded by Run.
func New(cfg *config.Config, log *logging.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logging.NewDefault()
	}

	metrics := monitoring.New()

	engine := sandbox.New(sandbox.Config{
		Timeout:       time.Duration(cfg.Sandbox.TimeoutMS) * time.Millisecond,
		MaxCallStack:  cfg.Sandbox.MaxCallStack,
		EnableConsole: cfg.Sandbox.EnableConsole,
	}, log.Named("engine"))

	b := bridge.New(engine, bridge.Config{
		Debug:       cfg.Map.Debug,
		DefaultZoom: cfg.Map.DefaultZoom,
	}, log.Named("bridge"), metrics)

	// Engine emits flow into the bridge decoder; load failures are only
	// logged here. The bridge never retries, the host reacts instead.
	engine.SetEmitFunc(b.HandleEvent)
	engine.SetOnError(func(err error) {
		log.Error("engine load failed", zap.Error(err))
	})

	wsHandler := ws.NewHandler(b, log.Named("ws"), metrics)
	b.SetOnMessage(wsHandler.Broadcast)

	handlers := httphandlers.NewHandlers(b, engine, log.Named("http"))

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.GET("/map/state", handlers.MapState)
	router.GET("/map/engine-state", handlers.EngineState)
	router.POST("/map/layers", handlers.SetLayers)
	router.POST("/map/layers/preflight", handlers.PreflightLayers)
	router.POST("/map/markers", handlers.SetMarkers)
	router.POST("/map/shapes", handlers.SetShapes)
	router.POST("/map/center", handlers.SetCenter)
	router.POST("/map/zoom", handlers.SetZoom)
	router.POST("/map/own-position", handlers.SetOwnPosition)
	router.POST("/map/click", handlers.SimulateClick)

	router.GET("/webview", handlers.WebviewAsset)
	router.GET("/webview/:name", handlers.WebviewAsset)

	router.GET("/stream", wsHandler.HandleConnection)

	return &Server{
		cfg:     cfg,
		log:     log,
		router:  router,
		engine:  engine,
		bridge:  b,
		metrics: metrics,
	}
}

// Run loads the engine document and serves until the listener fails. A
// load failure is not fatal: the bridge stays Uninitialized and inert, and
// the host decides how to react.
func (s *Server) Run(ctx context.Context) error {
	if err := s.engine.Load(ctx); err != nil {
		s.log.Warn("starting without a loaded engine", zap.Error(err))
	}
	addr := s.cfg.Server.Host + ":" + s.cfg.Server.Port
	s.log.Info("starting leafbridge", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Bridge exposes the bridge for tests.
func (s *Server) Bridge() *bridge.Bridge {
	return s.bridge
}

// Engine exposes the engine runtime for tests.
func (s *Server) Engine() *sandbox.Engine {
	return s.engine
}

// Close releases the engine runtime.
func (s *Server) Close() error {
	return s.engine.Close()
}
