// Package pipeline drives a triage run: it validates input, seeds or
// resumes the shared state record, then alternates supervisor routing
// decisions with specialist stage executions until the supervisor
// declares the run terminal.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/triagemesh/triagemesh/completion"
	"github.com/triagemesh/triagemesh/core"
	"github.com/triagemesh/triagemesh/logging"
	"github.com/triagemesh/triagemesh/metrics"
	"github.com/triagemesh/triagemesh/session"
	"github.com/triagemesh/triagemesh/stage"
	"github.com/triagemesh/triagemesh/supervisor"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Registry maps stage identifiers to stage implementations. When nil
	// the default specialist registry is built around the client.
	Registry core.Registry
	// SessionStore persists state records between runs.
	SessionStore core.SessionStore
	// Logger receives structured run and routing logs.
	Logger logging.Logger
	// Metrics receives run observations. Nil disables metric recording.
	Metrics *metrics.Metrics
	// MaxStageExecutions bounds the routing loop as a safety net.
	MaxStageExecutions int
}

// Request is the caller-facing input for a single triage run.
type Request struct {
	Description string         `json:"description"`
	Location    string         `json:"location,omitempty"`
	Contacts    []core.Contact `json:"contacts,omitempty"`
	// SessionID resumes an earlier record when it exists in the store.
	// Empty means a fresh session with a generated identifier.
	SessionID string `json:"session_id,omitempty"`
}

// Result is the final record plus orchestration metadata for one run.
type Result struct {
	WorkflowID string `json:"workflow_id"`
	SessionID  string `json:"session_id"`
	Complete   bool   `json:"complete"`
	Cancelled  bool   `json:"cancelled,omitempty"`

	Assessment *core.Assessment `json:"assessment,omitempty"`
	Guidance   *core.Guidance   `json:"guidance,omitempty"`
	Resources  *core.Resources  `json:"resources,omitempty"`
	Outreach   *core.Outreach   `json:"outreach,omitempty"`

	StagesRun     []core.StageID `json:"stages_run"`
	ConsumedUnits int            `json:"consumed_units"`
	Elapsed       time.Duration  `json:"elapsed_ns"`
	Trace         core.Trace     `json:"trace"`
}

// Pipeline coordinates supervisor routing and stage execution over a
// shared state record. Public methods are safe for concurrent use; each
// run owns its own record.
type Pipeline struct {
	registry core.Registry
	router   *supervisor.Supervisor
	store    core.SessionStore
	logger   logging.Logger
	metrics  *metrics.Metrics
	maxRuns  int
}

// New constructs a Pipeline around a completion client with optional
// overrides.
func New(client completion.Client, optFns ...func(o *Options)) *Pipeline {
	opts := Options{
		SessionStore:       session.NewInMemoryStore(),
		Logger:             logging.NoOpLogger{},
		MaxStageExecutions: 16,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Registry == nil {
		opts.Registry = core.NewRegistry(
			stage.NewSituation(client, opts.Logger),
			stage.NewGuidance(client, opts.Logger),
			stage.NewResource(client, opts.Logger),
			stage.NewOutreach(client, opts.Logger),
		)
	}

	return &Pipeline{
		registry: opts.Registry,
		router:   supervisor.New(opts.Logger),
		store:    opts.SessionStore,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		maxRuns:  opts.MaxStageExecutions,
	}
}

// Run executes one triage workflow. Input validation failures return
// before any state is created or traced. Collaborator failures never
// fail the run; cancellation between stages yields a partial result
// with the Cancelled marker set.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, core.ErrEmptyDescription
	}

	st, err := p.seedState(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	traceStart := st.Trace.Len()
	unitsBefore := st.TotalUnits
	cancelled := false

	p.logger.Info("run started",
		"workflow_id", st.WorkflowID,
		"session_id", st.SessionID,
		"contacts", len(st.Input.Contacts),
	)

	executions := 0
	for !st.Complete {
		if ctx.Err() != nil {
			cancelled = true
			st.Trace.Append(core.TraceEvent{
				Agent:  core.StageSupervisor,
				Action: core.ActionCancelled,
				Error:  ctx.Err().Error(),
			})
			break
		}

		decision := p.router.Route(st)
		if decision.Terminal() {
			break
		}

		stg, ok := p.registry[decision.Next]
		if !ok {
			return nil, fmt.Errorf("%w: %q", core.ErrUnknownStage, decision.Next)
		}

		stg.Run(ctx, st)

		executions++
		if executions > p.maxRuns {
			return nil, fmt.Errorf("stage execution limit reached after %d runs", executions)
		}
	}

	elapsed := time.Since(start)
	st.SetMetric("last_run_elapsed_ms", elapsed.Milliseconds())

	if p.store != nil {
		// The checkpoint must survive run cancellation; the partial record
		// and trace are the result the caller gets back.
		if err := p.store.Put(context.WithoutCancel(ctx), st.SessionID, st); err != nil {
			return nil, fmt.Errorf("persist session %q: %w", st.SessionID, err)
		}
	}

	p.observe(st, traceStart, elapsed, st.TotalUnits-unitsBefore)

	p.logger.Info("run finished",
		"workflow_id", st.WorkflowID,
		"complete", st.Complete,
		"cancelled", cancelled,
		"stages", len(st.StagesRun),
		"units", st.TotalUnits,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return &Result{
		WorkflowID:    st.WorkflowID,
		SessionID:     st.SessionID,
		Complete:      st.Complete,
		Cancelled:     cancelled,
		Assessment:    st.Assessment,
		Guidance:      st.Guidance,
		Resources:     st.Resources,
		Outreach:      st.Outreach,
		StagesRun:     append([]core.StageID(nil), st.StagesRun...),
		ConsumedUnits: st.TotalUnits,
		Elapsed:       elapsed,
		Trace:         st.Trace,
	}, nil
}

// seedState resumes the stored record when the request names a known
// session; the caller's input always overlays the stored input while
// prior outputs and trace carry forward.
func (p *Pipeline) seedState(ctx context.Context, req Request) (*core.State, error) {
	in := core.Input{
		Description: req.Description,
		Location:    req.Location,
		Contacts:    append([]core.Contact(nil), req.Contacts...),
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var st *core.State
	if req.SessionID != "" && p.store != nil {
		stored, ok, err := p.store.Get(ctx, req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("load session %q: %w", req.SessionID, err)
		}
		if ok {
			st = stored
			st.Input = in
		}
	}
	if st == nil {
		st = core.NewState(in)
	}

	st.SessionID = sessionID
	st.WorkflowID = uuid.NewString()
	return st, nil
}

func (p *Pipeline) observe(st *core.State, traceStart int, elapsed time.Duration, units int) {
	if p.metrics == nil {
		return
	}
	p.metrics.ObserveRun(elapsed, units)
	for _, ev := range st.Trace.Events()[traceStart:] {
		if ev.Action == core.ActionError {
			p.metrics.ObserveStageError(string(ev.Agent))
		}
	}
}
