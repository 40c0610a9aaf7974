// Package server exposes lead analysis over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KaramelBytes/leadloom-cli/internal/leads"
	"github.com/KaramelBytes/leadloom-cli/internal/scoring"
	"github.com/KaramelBytes/leadloom-cli/internal/store"
)

// Config wires the server to its collaborators. Store may be nil.
type Config struct {
	Analyzer       *scoring.Analyzer
	Store          store.Store
	LeadOptions    leads.Options
	MaxUploadBytes int64
	AllowedOrigins []string
}

// Server handles /analyze, /subscribe, /report and /health.
type Server struct {
	cfg    Config
	engine *gin.Engine
}

const shutdownTimeout = 10 * time.Second

// New builds the router. A nil analyzer is replaced by one without an oracle.
func New(cfg Config) *Server {
	if cfg.Analyzer == nil {
		cfg.Analyzer = scoring.NewAnalyzer(nil, scoring.DefaultOptions())
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}
	s := &Server{cfg: cfg}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), cors(cfg.AllowedOrigins))
	r.GET("/health", s.handleHealth)
	r.POST("/analyze", s.handleAnalyze)
	r.POST("/subscribe", s.handleSubscribe)
	r.POST("/report", s.handleReport)
	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	zap.L().Info("server listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		zap.L().Info("server shutting down")
		return srv.Shutdown(sctx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zap.L().Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// cors allows credentialed requests from the listed origins only.
func cors(origins []string) gin.HandlerFunc {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allowed = append(allowed, o)
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (slices.Contains(allowed, origin) || slices.Contains(allowed, "*")) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
			if c.Request.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				if req := c.GetHeader("Access-Control-Request-Headers"); req != "" {
					h.Set("Access-Control-Allow-Headers", req)
				}
				h.Set("Access-Control-Max-Age", "600")
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
