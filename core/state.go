package core

// Contact is an auxiliary person the caller wants notified about the incident.
type Contact struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Phone    string `json:"phone,omitempty"`
}

// Input holds the caller-supplied fields of a run. They are never written
// by stages; when a session is resumed the caller's input always wins.
type Input struct {
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Contacts    []Contact `json:"contacts,omitempty"`
}

// Assessment is owned exclusively by the situation stage.
type Assessment struct {
	Category   string   `json:"category"`
	Severity   int      `json:"severity"` // 1 (minor) .. 5 (life-threatening)
	Risks      []string `json:"risks"`
	Confidence float64  `json:"confidence"`
}

// Guidance is owned exclusively by the guidance stage.
type Guidance struct {
	Recommendation string   `json:"recommendation"` // self_help, contact_help, call_911
	Steps          []string `json:"steps"`
	Confidence     float64  `json:"confidence"`
}

// Resources is owned exclusively by the resource stage.
type Resources struct {
	EmergencyServices string   `json:"emergency_services"`
	Nearby            []string `json:"nearby"`
	Additional        []string `json:"additional"`
	Confidence        float64  `json:"confidence"`
}

// OutreachMessage carries the drafted notifications for one contact.
type OutreachMessage struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Short    string `json:"short"` // SMS-style, at most 160 characters
	Long     string `json:"long"`
}

// Outreach is owned exclusively by the outreach stage.
type Outreach struct {
	Messages   []OutreachMessage `json:"messages"`
	Confidence float64           `json:"confidence"`
}

// State is the single record threaded through a pipeline run. It is mutated
// exclusively by the driver-invoked stages and by the supervisor (routing
// fields only); the driver runs one stage at a time, so no locking is
// required within a run.
//
// Field ownership is expressed structurally: each stage writes only its own
// sub-struct, the supervisor writes only the routing fields, and Input is
// read-only once the run starts.
type State struct {
	Input Input `json:"input"`

	// Session is stable across runs sharing a thread; Workflow is fresh per run.
	SessionID  string `json:"session_id"`
	WorkflowID string `json:"workflow_id"`

	// Routing fields, written by the supervisor and read by the driver.
	StagesRun []StageID `json:"stages_run"`
	NextStage StageID   `json:"next_stage,omitempty"`
	Complete  bool      `json:"complete"`

	// Per-stage outputs. Nil until the owning stage has run.
	Assessment *Assessment `json:"assessment,omitempty"`
	Guidance   *Guidance   `json:"guidance,omitempty"`
	Resources  *Resources  `json:"resources,omitempty"`
	Outreach   *Outreach   `json:"outreach,omitempty"`

	// Accounting.
	TotalUnits int            `json:"total_units"`
	Trace      Trace          `json:"trace"`
	Metrics    map[string]any `json:"metrics,omitempty"`
}

// NewState creates a fresh record for the given input. WorkflowID and, when
// absent, SessionID are assigned by the driver.
func NewState(in Input) *State {
	return &State{
		Input:     in,
		StagesRun: []StageID{},
		Metrics:   map[string]any{},
	}
}

// MarkStageRun records id in StagesRun, suppressing duplicates. It reports
// whether the id was newly added.
func (s *State) MarkStageRun(id StageID) bool {
	if s.HasRun(id) {
		return false
	}
	s.StagesRun = append(s.StagesRun, id)
	return true
}

// HasRun reports whether the stage id has been recorded.
func (s *State) HasRun(id StageID) bool {
	for _, ran := range s.StagesRun {
		if ran == id {
			return true
		}
	}
	return false
}

// MarkComplete sets the terminal flag. There is deliberately no way to
// clear it within a run.
func (s *State) MarkComplete() { s.Complete = true }

// AddUnits increments the cumulative consumed-unit counter. Negative or
// unknown usage is recorded as zero.
func (s *State) AddUnits(n int) {
	if n > 0 {
		s.TotalUnits += n
	}
}

// Category returns the assessed category, or "unknown" before assessment.
// Downstream stages use it instead of failing on missing prerequisites.
func (s *State) Category() string {
	if s.Assessment == nil || s.Assessment.Category == "" {
		return "unknown"
	}
	return s.Assessment.Category
}

// Severity returns the assessed severity, or the safe placeholder 3 before
// assessment.
func (s *State) Severity() int {
	if s.Assessment == nil || s.Assessment.Severity == 0 {
		return 3
	}
	return s.Assessment.Severity
}

// SetMetric records a free-form performance metric on the run.
func (s *State) SetMetric(key string, value any) {
	if s.Metrics == nil {
		s.Metrics = map[string]any{}
	}
	s.Metrics[key] = value
}

// Clone returns a deep copy of the state safe for independent mutation.
// Stores clone on read and write so persisted snapshots never alias a live run.
func (s *State) Clone() *State {
	clone := *s
	clone.Input.Contacts = cloneSlice(s.Input.Contacts)
	clone.StagesRun = cloneSlice(s.StagesRun)
	if s.Assessment != nil {
		a := *s.Assessment
		a.Risks = cloneSlice(s.Assessment.Risks)
		clone.Assessment = &a
	}
	if s.Guidance != nil {
		g := *s.Guidance
		g.Steps = cloneSlice(s.Guidance.Steps)
		clone.Guidance = &g
	}
	if s.Resources != nil {
		r := *s.Resources
		r.Nearby = cloneSlice(s.Resources.Nearby)
		r.Additional = cloneSlice(s.Resources.Additional)
		clone.Resources = &r
	}
	if s.Outreach != nil {
		o := *s.Outreach
		o.Messages = cloneSlice(s.Outreach.Messages)
		clone.Outreach = &o
	}
	clone.Trace = s.Trace.clone()
	if s.Metrics != nil {
		clone.Metrics = make(map[string]any, len(s.Metrics))
		for k, v := range s.Metrics {
			clone.Metrics[k] = v
		}
	}
	return &clone
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// ClampSeverity forces v into the valid [1,5] range, substituting the safe
// placeholder 3 for out-of-range or missing values.
func ClampSeverity(v int) int {
	if v < 1 || v > 5 {
		return 3
	}
	return v
}

// ClampConfidence forces v into [1.0,5.0]. A missing score (zero) defaults
// to 3.0 per the stage contract.
func ClampConfidence(v float64) float64 {
	switch {
	case v == 0:
		return 3.0
	case v < 1.0:
		return 1.0
	case v > 5.0:
		return 5.0
	default:
		return v
	}
}
