// Package supervisor implements the deterministic routing state machine.
// Given the current State it decides which stage runs next, purely from the
// set of stages already executed plus the assessed category and severity.
// No external call, no randomness: routing the same record twice without
// running a stage in between yields the same decision.
package supervisor

import (
	"fmt"
	"time"

	"github.com/triagemesh/triagemesh/core"
	"github.com/triagemesh/triagemesh/logging"
)

// resourceCategories always require resource coordination regardless of
// severity. Together with the severity threshold this is a tunable product
// policy, not a structural invariant.
var resourceCategories = map[string]bool{
	"medical":          true,
	"security":         true,
	"natural_disaster": true,
}

// severityThreshold is the minimum severity that triggers resource
// coordination for categories outside resourceCategories.
const severityThreshold = 3

// Decision is one routing outcome.
type Decision struct {
	Next   core.StageID `json:"next"`
	Reason string       `json:"reason"`
}

// Terminal reports whether the decision ends the run.
func (d Decision) Terminal() bool { return d.Next == core.StageTerminal }

// Decide is the pure routing function. Rules are checked in fixed priority
// order; the rule set is exhaustive over the closed stage set, and every
// stage execution strictly grows StagesRun, so repeated routing always
// terminates.
func Decide(st *core.State) Decision {
	switch {
	case !st.HasRun(core.StageSituation):
		return Decision{
			Next:   core.StageSituation,
			Reason: "initial assessment required",
		}
	case !st.HasRun(core.StageGuidance):
		return Decision{
			Next:   core.StageGuidance,
			Reason: fmt.Sprintf("guidance needed for %s (severity %d)", st.Category(), st.Severity()),
		}
	case !st.HasRun(core.StageResource) && resourceNeeded(st):
		return Decision{
			Next:   core.StageResource,
			Reason: fmt.Sprintf("resource coordination needed (severity %d)", st.Severity()),
		}
	case !st.HasRun(core.StageOutreach) && len(st.Input.Contacts) > 0:
		return Decision{
			Next:   core.StageOutreach,
			Reason: fmt.Sprintf("contact outreach requested (%d contacts)", len(st.Input.Contacts)),
		}
	case !st.HasRun(core.StageResource):
		return Decision{
			Next:   core.StageTerminal,
			Reason: "low severity - resources not needed",
		}
	default:
		return Decision{
			Next:   core.StageTerminal,
			Reason: "all specialist stages consulted",
		}
	}
}

func resourceNeeded(st *core.State) bool {
	return st.Severity() >= severityThreshold || resourceCategories[st.Category()]
}

// Supervisor applies routing decisions to the shared record and keeps the
// trace and log in step. It holds no mutable state of its own.
type Supervisor struct {
	logger logging.Logger
}

// New constructs a Supervisor. A nil logger disables routing logs.
func New(logger logging.Logger) *Supervisor {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Supervisor{logger: logger}
}

// Route evaluates the transition table against st, writes the decision into
// the routing fields, appends one trace event and returns the decision. The
// supervisor records itself in StagesRun at most once per run; its own id is
// never part of the routing rules.
func (s *Supervisor) Route(st *core.State) Decision {
	start := time.Now()

	d := Decide(st)
	st.NextStage = d.Next
	if d.Terminal() {
		st.MarkComplete()
	}
	st.MarkStageRun(core.StageSupervisor)

	st.Trace.Append(core.TraceEvent{
		Agent:  core.StageSupervisor,
		Action: core.ActionRouting,
		Fields: map[string]any{
			"next":   string(d.Next),
			"reason": d.Reason,
		},
		Duration: time.Since(start),
	})

	s.logger.Info("routing decision",
		"workflow_id", st.WorkflowID,
		"next", string(d.Next),
		"reason", d.Reason,
	)

	return d
}
