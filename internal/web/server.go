// Package web serves the portfolio: HTML pages rendered from the current
// content snapshot, a small JSON API over the same state, the contact form
// endpoint and the admin dashboard.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kbeguinel/portfolio/internal/contact"
	"github.com/kbeguinel/portfolio/internal/content"
	"github.com/kbeguinel/portfolio/internal/logging"
	"github.com/kbeguinel/portfolio/internal/metrics"
	"github.com/kbeguinel/portfolio/internal/storage"
	"github.com/kbeguinel/portfolio/internal/timeline"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options are the server settings taken from configuration.
type Options struct {
	Debug            bool
	StaticDir        string
	CVPath           string
	CORSOrigins      []string
	AdminUsername    string
	AdminPassword    string
	TrackVisitors    bool
	VisitorRetention time.Duration
	Window           timeline.Window
}

// Deps are the collaborators the server renders from and writes to.
type Deps struct {
	Store    *content.Store
	Contact  *contact.Service
	DB       *storage.DB
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Server owns the gin engine and the background work it spawns.
type Server struct {
	opts       Options
	engine     *gin.Engine
	store      *content.Store
	contact    *contact.Service
	db         *storage.DB
	metrics    *metrics.Metrics
	gatherer   prometheus.Gatherer
	logger     *zap.Logger
	adminToken string

	background sync.WaitGroup
}

// New builds the engine and registers every route.
func New(opts Options, deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Contact == nil || deps.DB == nil {
		return nil, errors.New("web: store, contact service and database are required")
	}
	if opts.Window.End.IsZero() {
		opts.Window = timeline.DefaultWindow
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(nil)
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.NewRegistry()
	}

	token, err := storage.RandomToken()
	if err != nil {
		return nil, errors.Wrap(err, "generate admin token")
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}

	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		opts:       opts,
		engine:     gin.New(),
		store:      deps.Store,
		contact:    deps.Contact,
		db:         deps.DB,
		metrics:    deps.Metrics,
		gatherer:   deps.Gatherer,
		logger:     logging.OrNop(deps.Logger).Named("web"),
		adminToken: token,
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())
	if len(opts.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = opts.CORSOrigins
		corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
		s.engine.Use(cors.New(corsConfig))
	}
	if opts.TrackVisitors {
		s.engine.Use(s.visitorTracking())
	}
	s.engine.SetHTMLTemplate(tmpl)

	s.routes()
	return s, nil
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	r := s.engine

	if s.opts.StaticDir != "" {
		r.Static("/static", s.opts.StaticDir)
	}

	r.GET("/", s.homePage)
	r.GET("/projects", s.projectsPage)
	r.GET("/skills", s.skillsPage)
	r.GET("/cv", s.downloadCV)

	r.GET("/contact-form", s.contactForm)
	r.POST("/contact", s.submitContact)

	api := r.Group("/api")
	api.GET("/status", s.apiStatus)
	api.POST("/reload", s.apiReload)
	api.GET("/content", s.apiContent)
	api.GET("/projects", s.apiProjects)
	api.GET("/projects/:index", s.apiProject)
	api.GET("/timeline", s.apiTimeline)

	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	s.setupAdminRoutes(r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// and waits for background writes.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	s.startRetentionLoop(loopCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		stopLoop()
		s.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Wait()
	if err != nil {
		return errors.Wrap(err, "shutdown")
	}
	s.logger.Info("server stopped")
	return nil
}

// Wait blocks until background work started by requests has finished.
func (s *Server) Wait() {
	s.background.Wait()
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) startRetentionLoop(ctx context.Context) {
	if s.opts.VisitorRetention <= 0 {
		return
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			if _, err := s.db.CleanupVisitors(ctx, s.opts.VisitorRetention); err != nil && ctx.Err() == nil {
				s.logger.Warn("visitor cleanup failed", zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
