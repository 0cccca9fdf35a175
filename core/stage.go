package core

import "context"

// StageID identifies a pipeline participant. The set is closed: the
// supervisor and the stage registry are both matched exhaustively over
// these values, so an unknown id signals a broken registration, never a
// recoverable runtime condition.
type StageID string

const (
	// StageSupervisor is the routing decision maker. It never routes to itself.
	StageSupervisor StageID = "supervisor"
	// StageSituation assesses category, severity and immediate risks.
	StageSituation StageID = "situation"
	// StageGuidance produces the recommended response and instruction steps.
	StageGuidance StageID = "guidance"
	// StageResource coordinates emergency services and nearby resources.
	StageResource StageID = "resource"
	// StageOutreach drafts per-contact notification messages.
	StageOutreach StageID = "outreach"
	// StageTerminal is the supervisor's end-of-run decision, not a runnable stage.
	StageTerminal StageID = "terminal"
)

// SpecialistStages lists the runnable stages in their natural pipeline order.
func SpecialistStages() []StageID {
	return []StageID{StageSituation, StageGuidance, StageResource, StageOutreach}
}

// Valid reports whether id names a known pipeline participant.
func (id StageID) Valid() bool {
	switch id {
	case StageSupervisor, StageSituation, StageGuidance, StageResource, StageOutreach, StageTerminal:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (id StageID) String() string { return string(id) }

// Stage is the contract every specialist implements: enrich the shared
// State in place and return. A Stage never propagates a collaborator
// failure to the driver; on any error it writes its deterministic fallback
// payload, records confidence 1.0 and appends an "error" trace event. The
// compiler enforces the no-escape rule: Run has no error return.
//
// ctx carries the per-run cancellation signal. It is honored inside the
// collaborator call only; a timeout there is treated like any other
// collaborator failure.
type Stage interface {
	// ID returns the stage's identity used for routing and trace attribution.
	ID() StageID

	// Run executes the stage against st. Exactly one trace event is
	// appended per call and the stage id is recorded in StagesRun at most
	// once, even when re-entered.
	Run(ctx context.Context, st *State)
}

// Registry is the closed StageID -> Stage lookup used by the driver. It is
// populated once at construction time and read-only afterwards.
type Registry map[StageID]Stage

// NewRegistry builds a registry from the given stages keyed by their IDs.
func NewRegistry(stages ...Stage) Registry {
	r := make(Registry, len(stages))
	for _, s := range stages {
		r[s.ID()] = s
	}
	return r
}
