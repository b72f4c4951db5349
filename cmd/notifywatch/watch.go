package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/notifykit"
	"github.com/dmitrymomot/notifykit/pkg/client"
	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/metrics"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

func watchCommand(f *flags) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "connect and log incoming notifications until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "metrics-addr",
				Usage:       "serve /metrics, /healthz and /readyz on this address",
				Sources:     cli.EnvVars("NOTIFY_METRICS_ADDR"),
				Destination: &f.MetricsAddr,
			},
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			return watch(ctx, f)
		},
	}
}

func watch(ctx context.Context, f *flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	log, err := notifykit.NewLogger(cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c, err := notifykit.New(cfg,
		client.WithLogger(log),
		client.WithMetrics(metrics.New(reg)),
		client.WithOnNotification(func(n notifications.Notification) {
			logNotification(ctx, log, n)
		}),
		client.WithOnError(func(err error) {
			log.Warn("stream error", logger.Error(err))
		}),
	)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	serverErr := make(chan error, 1)
	if f.MetricsAddr != "" {
		srv := httpserver.New(httpserver.WithAddr(f.MetricsAddr), httpserver.WithLogger(log))
		ready := func(context.Context) error {
			if !c.IsConnected() {
				return errors.New("stream not connected")
			}
			return nil
		}
		go func() { serverErr <- srv.Run(ctx, httpserver.Routes(reg, ready)) }()
	}

	if err := c.Activate(ctx); err != nil {
		return err
	}
	log.Info("watching notifications", logger.UserID(cfg.UserID), logger.DepartmentIDs(cfg.DepartmentIDs.Values()))

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return err
		}
		<-ctx.Done()
	}

	log.Info("shutting down", slog.Int("unread", c.UnreadCount()))
	return nil
}

// logNotification logs n; types that need the user's attention go out at warn level.
func logNotification(ctx context.Context, log *slog.Logger, n notifications.Notification) {
	level := slog.LevelInfo
	if n.Type.RequiresInteraction() {
		level = slog.LevelWarn
	}
	log.Log(ctx, level, "notification",
		logger.NotificationID(n.ID),
		slog.String("type", string(n.Type)),
		slog.String("title", n.Title),
		slog.String("message", n.Message),
	)
}
