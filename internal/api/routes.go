package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yegors/launchboard/internal/config"
	"github.com/yegors/launchboard/internal/dashboard"
	"github.com/yegors/launchboard/internal/websocket"
	"github.com/yegors/launchboard/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	wsServer   *websocket.Server
	metrics    *Metrics
	config     config.ServerConfig
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(aggregator *dashboard.Aggregator, cfg config.ServerConfig, metrics *Metrics, log *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(aggregator, log),
		middleware: NewMiddleware(log, metrics),
		wsServer:   websocket.NewServer(aggregator, cfg.CORSAllowedOrigins, metrics, log),
		metrics:    metrics,
		config:     cfg,
		logger:     log.Named("api-router"),
	}
}

// Routes returns the HTTP routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Metrics)
	router.Use(middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.CORSAllowedOrigins))

	router.Route("/api/v1", func(router chi.Router) {
		router.Get("/health", r.handler.GetHealth)
		router.Get("/layout", r.handler.GetLayout)
		router.Get("/sites", r.handler.GetSites)

		// Raw query results
		router.Get("/summary", r.handler.GetSummary)
		router.Get("/payload", r.handler.GetPayload)

		// Chart descriptors
		router.Get("/figures/pie", r.handler.GetPieFigure)
		router.Get("/figures/scatter", r.handler.GetScatterFigure)
		router.Get("/dashboard", r.handler.GetDashboard)

		// Live session
		router.Get("/ws", r.wsServer.ServeHTTP)
	})

	router.Method(http.MethodGet, "/metrics", r.metrics.Handler())
	router.Get("/", r.handler.GetIndex)

	r.logger.Debug("Routes registered")

	return router
}
