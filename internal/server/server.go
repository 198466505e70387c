// Package server serves live cradles over websockets. Each connection gets
// its own session stepped at a fixed frame rate; browser pointer and
// configuration messages are applied between frames.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Server struct {
	cfg      config.Server
	mu       sync.RWMutex
	settings *config.Config
	hub      *Hub
	router   *gin.Engine
	ctx      context.Context
}

// New builds the HTTP routes. settings is the cradle every new session
// starts from unless the client asks for a preset.
func New(cfg config.Server, settings *config.Config) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if settings == nil {
		settings = config.DefaultConfig()
	}

	s := &Server{
		cfg:      cfg,
		settings: settings,
		hub:      NewHub(),
		router:   gin.New(),
		ctx:      context.Background(),
	}
	s.router.Use(gin.Recovery(), requestLogger())

	s.router.GET("/healthz", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/ws", s.handleWS)

	api := s.router.Group("/api")
	api.GET("/presets", s.presets)
	api.GET("/sessions", s.sessions)

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Hub() *Hub { return s.hub }

// Settings is a copy of the cradle new sessions start from.
func (s *Server) Settings() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := *s.settings
	cfg.Cradle = cfg.Cradle.Clamp()
	return cfg
}

func (s *Server) SetSettings(cfg *config.Config) {
	s.mu.Lock()
	s.settings = cfg
	s.mu.Unlock()
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.ctx = ctx
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", s.cfg.Addr, "fps", s.cfg.FPS, "env", s.cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server shutting down", "sessions", s.hub.Count())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.hub.Count()})
}

func (s *Server) presets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": config.ListPresets()})
}

func (s *Server) sessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.hub.IDs()})
}

// handleWS upgrades the connection and runs a fresh session on it. The
// optional ?preset= query picks the starting cradle.
func (s *Server) handleWS(c *gin.Context) {
	defaults := s.Settings()
	settings := &defaults
	if name := c.Query("preset"); name != "" {
		if settings = config.GetPreset(name); settings == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown preset: " + name})
			return
		}
	}

	sess, err := session.New(settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("failed to upgrade the websocket", "error", err)
		return
	}

	id := uuid.NewString()
	client := newClient(id, conn, sess)
	s.hub.Register(client)
	sessionsTotal.Inc()
	slog.Info("session opened", "session", id, "bobs", sess.Config().BobCount)

	cfg := sess.Settings()
	client.queue(Envelope{Type: MsgHello, Session: id, Settings: &cfg}, false)
	client.serve(s.ctx, s.cfg.FPS)

	s.hub.Unregister(client)
	slog.Info("session closed", "session", id, "frames", sess.FrameIndex())
}
