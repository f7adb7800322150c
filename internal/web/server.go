package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"market-board/internal/config"
	"market-board/internal/logging"
	"market-board/internal/news"
	"market-board/internal/page"
)

//go:embed templates/*.html
var templateFS embed.FS

// Backend is the current page load. It may be swapped by a config reload,
// so handlers ask for it on every request.
type Backend interface {
	State() *page.State
	Dates() news.DateFormatter
	Refresh(ctx context.Context) error
}

type Server struct {
	cfg     config.ServerConfig
	backend Backend
	logger  *logging.Logger
	rate    *RateLimiter
	engine  *gin.Engine
}

func NewServer(ctx context.Context, cfg config.ServerConfig, backend Backend, logger *logging.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		backend: backend,
		logger:  logger,
		rate:    NewRateLimiter(ctx, cfg.MaxRefreshPerMin, time.Minute),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/", s.index)
	r.POST("/sort", s.sort)
	r.POST("/refresh", s.refresh)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if mw := s.corsMiddleware(); mw != nil {
		api.Use(mw)
	}
	api.GET("/leaderboard", s.apiLeaderboard)
	api.GET("/news", s.apiNews)
	return r
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	if len(s.cfg.AllowOrigins) == 0 {
		return nil
	}
	cc := cors.Config{
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range s.cfg.AllowOrigins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cors.New(cc)
		}
	}
	cc.AllowOrigins = s.cfg.AllowOrigins
	return cors.New(cc)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http",
			logging.Field{Key: "method", Val: c.Request.Method},
			logging.Field{Key: "path", Val: c.Request.URL.Path},
			logging.Field{Key: "status", Val: c.Writer.Status()},
			logging.Field{Key: "elapsed_ms", Val: time.Since(start).Milliseconds()},
		)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("http listening", logging.Field{Key: "addr", Val: s.cfg.Addr})

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := time.Duration(s.cfg.ShutdownTimeoutMS) * time.Millisecond
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http stopped")
	return nil
}
