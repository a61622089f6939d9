// Package playground serves an interactive surface for trying the parsers:
// listings of models and scenarios over HTTP and live parsing over a websocket.
package playground

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"textorder/internal/evaluation"
	"textorder/internal/logger"
	"textorder/internal/monitoring"
	"textorder/internal/processing"
)

// PlaygroundServer handles playground requests
type PlaygroundServer struct {
	router    *gin.Engine
	processor *processing.Processor
	evaluator *evaluation.Evaluator
	monitor   *monitoring.Monitor
	models    []ModelInfo
	logger    *logger.Logger
	upgrader  websocket.Upgrader
}

// Option configures a PlaygroundServer
type Option func(*PlaygroundServer)

func WithEvaluator(e *evaluation.Evaluator) Option {
	return func(s *PlaygroundServer) { s.evaluator = e }
}

func WithMonitor(m *monitoring.Monitor) Option {
	return func(s *PlaygroundServer) { s.monitor = m }
}

// WithModels sets the LLM backends listed by the models endpoint
func WithModels(models ...ModelInfo) Option {
	return func(s *PlaygroundServer) { s.models = models }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *PlaygroundServer) { s.logger = l }
}

// WithCheckOrigin restricts which origins may open the websocket
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(s *PlaygroundServer) { s.upgrader.CheckOrigin = check }
}

// NewPlaygroundServer creates a new playground server instance
func NewPlaygroundServer(processor *processing.Processor, opts ...Option) *PlaygroundServer {
	server := &PlaygroundServer{
		processor: processor,
		monitor:   monitoring.NewMonitor(),
		logger:    logger.Nop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.evaluator == nil {
		server.evaluator = evaluation.NewEvaluator(evaluation.WithMonitor(server.monitor))
	}

	server.router = gin.New()
	server.router.Use(gin.Recovery())
	server.Register(server.router)
	return server
}

// Register mounts the playground routes on a router or group
func (s *PlaygroundServer) Register(r gin.IRouter) {
	r.GET("/ws", s.handleWebSocket)

	api := r.Group("/api")
	{
		api.GET("/models", s.handleListModels)
		api.GET("/scenarios", s.handleListScenarios)
		api.GET("/metrics", s.handleMetrics)
	}
}

// Router returns the Gin router
func (s *PlaygroundServer) Router() *gin.Engine {
	return s.router
}
