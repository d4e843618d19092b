// Package com drives a spreadsheet application through OLE automation.
// Sessions are only available on Windows; elsewhere Start fails with
// ErrUnsupported.
package com

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/xll-gen/dispatcher"
)

// ErrUnsupported is returned by Start on platforms without COM.
var ErrUnsupported = errors.New("com: OLE automation is not supported on this platform")

// Engine starts automation sessions of the application registered under
// ProgID.
type Engine struct {
	progID string
	attach bool
	log    zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithProgID selects the automation server. The default is Excel.
func WithProgID(progID string) Option {
	return func(e *Engine) { e.progID = progID }
}

// WithAttach connects sessions to an already running instance instead of
// starting a new one.
func WithAttach(attach bool) Option {
	return func(e *Engine) { e.attach = attach }
}

// WithLogger sets the logger used for COM level events.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New returns an Engine for Excel, adjusted by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		progID: dispatcher.DefaultProgID,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromConfig returns an Engine for the engine section of a config file.
func FromConfig(cfg dispatcher.EngineConfig, opts ...Option) *Engine {
	base := []Option{WithAttach(cfg.Attach)}
	if cfg.ProgID != "" {
		base = append(base, WithProgID(cfg.ProgID))
	}
	return New(append(base, opts...)...)
}

// ProgID returns the automation server the engine starts.
func (e *Engine) ProgID() string {
	return e.progID
}

// Start launches or attaches to the application and applies s. On Windows
// the calling goroutine is locked to its OS thread until the session quits,
// so the session must be used and quit from that goroutine.
func (e *Engine) Start(ctx context.Context, s dispatcher.Settings) (dispatcher.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.start(s)
}
