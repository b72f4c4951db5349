package notifykit

import (
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/client"
	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/requestid"
)

type (
	Config       = config.Config
	Client       = client.Client
	Notification = notifications.Notification
)

// FromEnv loads the config from the environment (and .env files) and builds a
// Client with a logger configured by NOTIFY_LOG_LEVEL and NOTIFY_LOG_FORMAT.
func FromEnv(opts ...client.Option) (*client.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// FromFile is FromEnv for a YAML config file; environment variables still
// override file values.
func FromFile(path string, opts ...client.Option) (*client.Client, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// New builds a Client for cfg. The logger derived from cfg is applied first,
// so a WithLogger in opts takes precedence.
func New(cfg config.Config, opts ...client.Option) (*client.Client, error) {
	log, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	return client.New(cfg, append([]client.Option{client.WithLogger(log)}, opts...)...)
}

// NewLogger builds the slog logger described by cfg.LogLevel and cfg.LogFormat.
// Records logged with a context carrying a request id include it.
func NewLogger(cfg config.Config, opts ...logger.Option) (*slog.Logger, error) {
	level, err := logger.ParseLevel(orDefault(cfg.LogLevel, "info"))
	if err != nil {
		return nil, &config.ConfigError{Field: "logLevel", Reason: err.Error()}
	}
	format, err := logger.ParseFormat(orDefault(cfg.LogFormat, string(logger.FormatJSON)))
	if err != nil {
		return nil, &config.ConfigError{Field: "logFormat", Reason: err.Error()}
	}

	base := []logger.Option{
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithAttr(logger.Service("notifykit")),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	return logger.New(append(base, opts...)...), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
