package ops

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rankwatch/internal/logger"
	"rankwatch/internal/store"
)

// StatusResponse is the /status payload.
type StatusResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Metrics   map[string]interface{} `json:"metrics"`
	Health    map[string]bool        `json:"health"`
}

// Server exposes the ops surface next to the bot: liveness, a status
// summary and the Prometheus scrape endpoint.
type Server struct {
	cfg     *store.Config
	app     *fiber.App
	started time.Time
	checks  map[string]func() bool
}

func NewServer(cfg *store.Config) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	s := &Server{
		cfg:     cfg,
		app:     app,
		started: time.Now(),
		checks:  map[string]func() bool{},
	}

	app.Get("/healthz", s.handleHealthz)
	app.Get("/status", s.handleStatus)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	return s
}

// AddHealthCheck registers a named probe reported under /status. Must be
// called before Start.
func (s *Server) AddHealthCheck(name string, fn func() bool) {
	s.checks[name] = fn
}

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	return c.SendString("ok")
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	health := map[string]bool{}
	for name, fn := range s.checks {
		health[name] = fn()
	}

	return c.JSON(StatusResponse{
		Status:    "running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metrics: map[string]interface{}{
			"uptime_seconds":    int(time.Since(s.started).Seconds()),
			"mode":              s.cfg.Mode,
			"keywords_provider": s.cfg.Keywords.Provider,
			"serp_provider":     s.cfg.Serp.Provider,
			"llm_provider":      s.cfg.LLM.Provider,
		},
		Health: health,
	})
}

// Start blocks serving on the configured address.
func (s *Server) Start(ctx context.Context) error {
	logger.Info(ctx, "Ops server listening", "addr", s.cfg.Ops.ListenAddr)
	return s.app.Listen(s.cfg.Ops.ListenAddr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
