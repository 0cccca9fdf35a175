// Package triagemesh provides a high-level façade over the triage
// pipeline and its service abstractions (sessions, logging, metrics).
// Most applications interact with this package by:
//  1. Creating a Mesh via New() around a completion client (optionally
//     overriding the default in-memory services)
//  2. Submitting incidents with Triage()
//
// The façade delegates orchestration to pipeline.Pipeline while keeping
// setup ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a durable session
// store and a structured logger.
package triagemesh

import (
	"context"

	"github.com/triagemesh/triagemesh/completion"
	"github.com/triagemesh/triagemesh/core"
	"github.com/triagemesh/triagemesh/logging"
	"github.com/triagemesh/triagemesh/metrics"
	"github.com/triagemesh/triagemesh/pipeline"
	"github.com/triagemesh/triagemesh/session"
)

// Options configures the Mesh instance.
type Options struct {
	// Registry overrides the default specialist stage set.
	Registry core.Registry

	// SessionStore persists state records between runs (defaults to an
	// in-memory implementation if not provided).
	SessionStore core.SessionStore

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger

	// Metrics receives run observations. Nil disables metric recording.
	Metrics *metrics.Metrics
}

// Mesh is the high-level façade aggregating the pipeline and services.
type Mesh struct {
	opts     Options
	pipeline *pipeline.Pipeline
}

// New creates a Mesh around a completion client with optional overrides.
// Any unset service is initialized with an in-memory implementation.
func New(client completion.Client, optFns ...func(o *Options)) *Mesh {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	p := pipeline.New(client, func(o *pipeline.Options) {
		o.Registry = opts.Registry
		o.SessionStore = opts.SessionStore
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
	})

	return &Mesh{opts: opts, pipeline: p}
}

// Triage runs one incident through the pipeline.
func (m *Mesh) Triage(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	return m.pipeline.Run(ctx, req)
}

// Pipeline exposes the underlying driver for embedders that need the
// lower-level surface, such as the HTTP server.
func (m *Mesh) Pipeline() *pipeline.Pipeline { return m.pipeline }
