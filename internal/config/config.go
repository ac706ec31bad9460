package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"

	// Load a local .env before the environment is parsed.
	_ "github.com/joho/godotenv/autoload"
)

// Mail drivers understood by the contact relay.
const (
	MailDriverEmailJS = "emailjs"
	MailDriverSMTP    = "smtp"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`
	Debug   bool   `env:"PORTFOLIO_DEBUG" envDefault:"false"`

	ContentDir  string   `env:"PORTFOLIO_CONTENT_DIR" envDefault:"data"`
	Watch       bool     `env:"PORTFOLIO_WATCH" envDefault:"true"`
	StaticDir   string   `env:"PORTFOLIO_STATIC_DIR" envDefault:"static"`
	CVPath      string   `env:"PORTFOLIO_CV_PATH" envDefault:"static/cv/CV.pdf"`
	DBPath      string   `env:"PORTFOLIO_DB_PATH" envDefault:"portfolio.db"`
	CORSOrigins []string `env:"PORTFOLIO_CORS_ORIGINS" envSeparator:","`

	Mail  MailConfig
	Admin AdminConfig
}

// MailConfig selects and configures the outbound contact relay.
type MailConfig struct {
	Driver string `env:"PORTFOLIO_MAIL_DRIVER" envDefault:"emailjs"`

	EmailJSServiceID  string `env:"EMAILJS_SERVICE_ID"`
	EmailJSTemplateID string `env:"EMAILJS_TEMPLATE_ID"`
	EmailJSPublicKey  string `env:"EMAILJS_PUBLIC_KEY"`
	EmailJSEndpoint   string `env:"EMAILJS_ENDPOINT" envDefault:"https://api.emailjs.com/api/v1.0/email/send"`

	SMTPHost string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	ToEmail  string `env:"TO_EMAIL"`

	Timeout time.Duration `env:"PORTFOLIO_MAIL_TIMEOUT" envDefault:"10s"`
}

// AdminConfig configures the admin dashboard and visitor tracking.
type AdminConfig struct {
	Username         string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	Password         string        `env:"ADMIN_PASSWORD"`
	VisitorRetention time.Duration `env:"VISITOR_RETENTION" envDefault:"8760h"`
	TrackVisitors    bool          `env:"PORTFOLIO_TRACK_VISITORS" envDefault:"true"`
}

// Load parses the process environment into a Config.
func Load() (cfg Config, err error) {
	err = env.Parse(&cfg)
	if err != nil {
		err = errors.Wrap(err, "parse env")
		return cfg, err
	}

	err = cfg.Validate()
	return cfg, err
}

// Validate checks cross-field constraints the struct tags cannot express.
func (c *Config) Validate() (err error) {
	if c.ContentDir == "" {
		err = errors.New("content directory is required")
		return err
	}

	switch c.Mail.Driver {
	case MailDriverEmailJS, MailDriverSMTP:
	default:
		err = errors.Errorf("unknown mail driver %q", c.Mail.Driver)
		return err
	}

	return err
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
