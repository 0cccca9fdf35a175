// Package stage implements the specialist stages of the triage pipeline:
// situation assessment, guidance, resource coordination and contact
// outreach. Every stage follows the same contract: build a prompt from the
// shared record, call the completion collaborator, parse its JSON reply and
// write exactly its own fields. A failing collaborator never aborts the
// run; the stage substitutes its deterministic fallback payload, records
// confidence 1.0 and logs the failure as an "error" trace event.
package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/triagemesh/triagemesh/completion"
	"github.com/triagemesh/triagemesh/core"
	"github.com/triagemesh/triagemesh/internal/util"
	"github.com/triagemesh/triagemesh/logging"
)

// base bundles the dependencies shared by all specialists.
type base struct {
	id     core.StageID
	client completion.Client
	logger logging.Logger
}

func newBase(id core.StageID, client completion.Client, logger logging.Logger) base {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return base{id: id, client: client, logger: logger}
}

// ID returns the stage's identity.
func (b base) ID() core.StageID { return b.id }

// complete performs one collaborator round-trip: render the prompts, log
// the call, invoke the client and decode the JSON document into out. It
// returns the reported usage units. Any transport, timeout or decode error
// is returned for the caller's fallback path.
func (b base) complete(ctx context.Context, system, user, hint string, data map[string]any, out any) (int, error) {
	sys, err := util.RenderTemplate(system, data)
	if err != nil {
		return 0, fmt.Errorf("build system prompt: %w", err)
	}
	usr, err := util.RenderTemplate(user, data)
	if err != nil {
		return 0, fmt.Errorf("build user prompt: %w", err)
	}

	b.logger.Info("completion call",
		"stage", string(b.id),
		"provider", b.client.Info().Provider,
		"model", b.client.Info().Model,
	)

	res, err := b.client.Complete(ctx, completion.Request{System: sys, User: usr, SchemaHint: hint})
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(res.JSON, out); err != nil {
		return 0, fmt.Errorf("malformed collaborator response: %w", err)
	}
	return res.Units, nil
}

// succeed finishes a successful execution: one trace event, duplicate-free
// stage registration and a completion log line.
func (b base) succeed(st *core.State, start time.Time, action string, units int, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["units"] = units
	st.AddUnits(units)
	st.MarkStageRun(b.id)
	st.Trace.Append(core.TraceEvent{
		Agent:    b.id,
		Action:   action,
		Fields:   fields,
		Duration: time.Since(start),
	})
	b.logger.Info("stage completed",
		"stage", string(b.id),
		"workflow_id", st.WorkflowID,
		"duration", time.Since(start),
		"units", units,
	)
}

// fail finishes a fallback execution: the owning fields were already set to
// their safe defaults by the caller; here the stage is registered, the
// failure is traced and logged.
func (b base) fail(st *core.State, start time.Time, err error) {
	st.MarkStageRun(b.id)
	st.Trace.Append(core.TraceEvent{
		Agent:    b.id,
		Action:   core.ActionError,
		Error:    err.Error(),
		Duration: time.Since(start),
	})
	b.logger.Error("stage failed, fallback applied",
		"stage", string(b.id),
		"workflow_id", st.WorkflowID,
		"error", err.Error(),
	)
}

// fallbackConfidence marks degraded output produced without the collaborator.
const fallbackConfidence = 1.0

// now is stubbed in tests that assert on durations.
var now = time.Now
