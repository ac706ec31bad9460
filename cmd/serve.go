package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kbeguinel/portfolio/internal/config"
	"github.com/kbeguinel/portfolio/internal/contact"
	"github.com/kbeguinel/portfolio/internal/content"
	"github.com/kbeguinel/portfolio/internal/logging"
	"github.com/kbeguinel/portfolio/internal/metrics"
	"github.com/kbeguinel/portfolio/internal/storage"
	"github.com/kbeguinel/portfolio/internal/web"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portfolio web server",
	Long: `Runs the web server. Content is loaded once at startup; when the load
fails the site answers with a retry page until a reload succeeds.

Examples:
  # Serve with settings from .env
  portfolio serve

  # Serve on another port without watching the content directory
  PORT=9000 PORTFOLIO_WATCH=false portfolio serve`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	db, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	store := content.NewStore(content.NewLoader(cfg.ContentDir), logger, m)

	relay, err := newRelay(cfg.Mail)
	if err != nil {
		return err
	}

	srv, err := web.New(web.Options{
		Debug:            cfg.Debug || cfg.GinMode == gin.DebugMode,
		StaticDir:        cfg.StaticDir,
		CVPath:           cfg.CVPath,
		CORSOrigins:      cfg.CORSOrigins,
		AdminUsername:    cfg.Admin.Username,
		AdminPassword:    cfg.Admin.Password,
		TrackVisitors:    cfg.Admin.TrackVisitors,
		VisitorRetention: cfg.Admin.VisitorRetention,
	}, web.Deps{
		Store:    store,
		Contact:  contact.NewService(relay, db, logger, m),
		DB:       db,
		Metrics:  m,
		Gatherer: reg,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	if cfg.Admin.Password == "" {
		logger.Warn("admin dashboard disabled, set ADMIN_PASSWORD to enable it")
	}

	var watcher *content.Watcher
	if cfg.Watch {
		watcher, err = content.NewWatcher(cfg.ContentDir, store, logger, content.DefaultDebounce)
		if err != nil {
			logger.Warn("content watcher unavailable", zap.Error(err))
			watcher = nil
		}
	}

	return serve(ctx, cfg.Addr(), srv, store, watcher)
}

type httpRunner interface {
	Run(ctx context.Context, addr string) error
}

// serve runs the HTTP server, the first content load and the watcher side
// by side. The port opens immediately; until the load finishes pages
// answer with the loading status. A failed first load is served as the
// retry page, not a fatal error.
func serve(ctx context.Context, addr string, srv httpRunner, store content.Reloader, watcher *content.Watcher) (err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, addr)
	})
	g.Go(func() error {
		_ = store.Reload(gctx)
		return nil
	})
	if watcher != nil {
		g.Go(func() error {
			watcher.Run(gctx)
			return nil
		})
	}

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newRelay(cfg config.MailConfig) (relay contact.Relay, err error) {
	switch cfg.Driver {
	case config.MailDriverEmailJS:
		relay = contact.NewEmailJSRelay(cfg.EmailJSEndpoint, cfg.EmailJSServiceID, cfg.EmailJSTemplateID, cfg.EmailJSPublicKey, cfg.Timeout)
	case config.MailDriverSMTP:
		relay = contact.NewSMTPRelay(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.ToEmail)
	default:
		err = errors.Errorf("unknown mail driver %q", cfg.Driver)
	}
	return relay, err
}
