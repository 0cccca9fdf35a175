package core

import (
	"encoding/json"
	"time"
)

// TraceEvent records one supervisor decision or stage execution. After
// being appended to a Trace it is treated as immutable.
type TraceEvent struct {
	Agent     StageID        `json:"agent"`
	Action    string         `json:"action"`
	Fields    map[string]any `json:"fields,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Duration  time.Duration  `json:"duration"`
}

// Trace is the append-only, insertion-ordered execution log of one run.
// Every stage invocation and every supervisor decision contributes exactly
// one event. Derived views (per-agent totals, routing reasons) are computed
// on demand, never stored redundantly.
type Trace struct {
	events []TraceEvent
}

// Append adds ev to the trace, stamping the timestamp if unset. Events are
// never removed or reordered.
func (t *Trace) Append(ev TraceEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	t.events = append(t.events, ev)
}

// Len returns the number of recorded events.
func (t *Trace) Len() int { return len(t.events) }

// Events returns a defensive copy of the ordered event list.
func (t *Trace) Events() []TraceEvent {
	out := make([]TraceEvent, len(t.events))
	copy(out, t.events)
	return out
}

// DurationByAgent sums event durations per agent.
func (t *Trace) DurationByAgent() map[StageID]time.Duration {
	totals := make(map[StageID]time.Duration)
	for _, ev := range t.events {
		totals[ev.Agent] += ev.Duration
	}
	return totals
}

// RoutingReasons returns the supervisor's decision reasons in order.
func (t *Trace) RoutingReasons() []string {
	var reasons []string
	for _, ev := range t.events {
		if ev.Agent != StageSupervisor {
			continue
		}
		if reason, ok := ev.Fields["reason"].(string); ok {
			reasons = append(reasons, reason)
		}
	}
	return reasons
}

// ErrorCount returns the number of "error" events recorded.
func (t *Trace) ErrorCount() int {
	n := 0
	for _, ev := range t.events {
		if ev.Action == ActionError {
			n++
		}
	}
	return n
}

// clone deep-copies the trace including per-event field maps.
func (t *Trace) clone() Trace {
	events := make([]TraceEvent, len(t.events))
	for i, ev := range t.events {
		if ev.Fields != nil {
			fields := make(map[string]any, len(ev.Fields))
			for k, v := range ev.Fields {
				fields[k] = v
			}
			ev.Fields = fields
		}
		events[i] = ev
	}
	return Trace{events: events}
}

// MarshalJSON serializes the trace as a plain event array.
func (t Trace) MarshalJSON() ([]byte, error) {
	if t.events == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.events)
}

// UnmarshalJSON restores a trace from a plain event array.
func (t *Trace) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &t.events)
}

// Common trace actions. Stages use their own domain actions for the
// success path and ActionError for fallback executions.
const (
	ActionRouting   = "routing_decision"
	ActionError     = "error"
	ActionCancelled = "cancelled"
)
