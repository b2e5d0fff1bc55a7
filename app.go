package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App is the resolved program: configuration plus everything built from it.
type App struct {
	cfg    Config
	store  *SubmissionStore
	form   *FormTemplate
	feed   *Feed
	server *Server
	logger *zap.Logger
}

// NewApp prepares the store, the QR code and the form for cfg. A QR failure
// is logged and startup continues; a missing form template is fatal.
func NewApp(cfg Config, logger *zap.Logger) (*App, error) {
	store := NewSubmissionStore(cfg.StorePath, logger)
	if err := store.Initialize(); err != nil {
		return nil, err
	}

	if dark, light, err := cfg.Colors(); err != nil {
		logger.Error("error generating QR code", zap.Error(err))
	} else if err := RenderQRCode(cfg.BaseURL(), cfg.QRPath(), cfg.QRSize, dark, light); err != nil {
		logger.Error("error generating QR code", zap.Error(err))
	} else {
		logger.Info("QR code generated", zap.String("path", cfg.QRPath()))
	}

	form, err := LoadFormTemplate(cfg.TemplatePath(), cfg.SubmitURL(), logger)
	if err != nil {
		return nil, err
	}

	var feed *Feed
	if cfg.LiveFeed {
		feed = NewFeed(store, logger)
	}

	return &App{
		cfg:    cfg,
		store:  store,
		form:   form,
		feed:   feed,
		server: NewServer(cfg, store, form, feed, logger),
		logger: logger,
	}, nil
}

// Run serves until ctx is done or the server fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Start(ctx)
	})
	if a.cfg.WatchTemplate {
		g.Go(func() error {
			return a.form.Watch(ctx)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
