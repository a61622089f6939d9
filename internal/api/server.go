// Package api exposes order parsing, menus and parser evaluation over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"textorder/internal/catalog"
	"textorder/internal/database"
	"textorder/internal/evaluation"
	"textorder/internal/logger"
	"textorder/internal/monitoring"
	"textorder/internal/playground"
	"textorder/internal/processing"
)

// Server is the HTTP surface of the order parser
type Server struct {
	router     *gin.Engine
	catalog    *catalog.Catalog
	processor  *processing.Processor
	evaluator  *evaluation.Evaluator
	collector  *evaluation.MetricsCollector
	monitor    *monitoring.Monitor
	store      *database.Store
	playground *playground.PlaygroundServer
	models     []playground.ModelInfo
	logger     *logger.Logger
	jwtSecret  string
	accessLog  bool
	timeout    time.Duration
	metrics    string
}

// Option configures a Server
type Option func(*Server)

// WithStore enables the parse log and evaluation history
func WithStore(store *database.Store) Option {
	return func(s *Server) { s.store = store }
}

func WithEvaluator(e *evaluation.Evaluator) Option {
	return func(s *Server) { s.evaluator = e }
}

func WithCollector(c *evaluation.MetricsCollector) Option {
	return func(s *Server) { s.collector = c }
}

func WithMonitor(m *monitoring.Monitor) Option {
	return func(s *Server) { s.monitor = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithJWTSecret requires a bearer token signed with secret on /api/v1
func WithJWTSecret(secret string) Option {
	return func(s *Server) { s.jwtSecret = secret }
}

// WithAccessLog turns on gin's request log
func WithAccessLog(enabled bool) Option {
	return func(s *Server) { s.accessLog = enabled }
}

// WithParseTimeout bounds how long one parse request may take
func WithParseTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithMetricsPath serves Prometheus metrics at path; empty disables them
func WithMetricsPath(path string) Option {
	return func(s *Server) { s.metrics = path }
}

// WithModels lists the LLM backends in the playground
func WithModels(models ...playground.ModelInfo) Option {
	return func(s *Server) { s.models = models }
}

// NewServer creates the API server
func NewServer(c *catalog.Catalog, processor *processing.Processor, opts ...Option) *Server {
	s := &Server{
		catalog:   c,
		processor: processor,
		logger:    logger.Nop(),
		metrics:   "/metrics",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.monitor == nil {
		s.monitor = monitoring.NewMonitor()
	}
	if s.collector == nil {
		s.collector = evaluation.NewMetricsCollector()
	}
	if s.evaluator == nil {
		s.evaluator = evaluation.NewEvaluator(
			evaluation.WithMonitor(s.monitor),
			evaluation.WithCollector(s.collector),
			evaluation.WithLogger(s.logger),
		)
	}
	s.playground = playground.NewPlaygroundServer(processor,
		playground.WithEvaluator(s.evaluator),
		playground.WithMonitor(s.monitor),
		playground.WithModels(s.models...),
		playground.WithLogger(s.logger),
	)

	s.router = gin.New()
	if s.accessLog {
		s.router.Use(gin.Logger())
	}
	s.router.Use(gin.Recovery(), RequestID())
	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	if s.metrics != "" {
		s.router.GET(s.metrics, gin.WrapH(s.collector.Handler()))
	}

	v1 := s.router.Group("/api/v1")
	if s.jwtSecret != "" {
		v1.Use(AuthMiddleware(s.jwtSecret))
	}
	{
		v1.POST("/orders/parse", s.handleParse)
		v1.GET("/parses", s.handleListParses)

		v1.GET("/restaurants", s.handleListRestaurants)
		v1.GET("/restaurants/:id/menu", s.handleMenu)

		v1.GET("/scenarios", s.handleListScenarios)
		v1.POST("/evaluate", s.handleEvaluate)
		v1.GET("/evaluations", s.handleListEvaluations)

		v1.GET("/stats", s.handleStats)
	}

	s.playground.Register(s.router.Group("/playground"))
}

// Router returns the Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}

// HTTPServer wraps the router in an http.Server listening on addr
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
