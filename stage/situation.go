package stage

import (
	"context"

	"github.com/triagemesh/triagemesh/completion"
	"github.com/triagemesh/triagemesh/core"
	"github.com/triagemesh/triagemesh/logging"
)

const situationSystemPrompt = `You are an emergency situation assessment specialist.

Analyze the incident and provide:
1. Category: medical, security, natural_disaster, accident, or other
2. Severity level: 1 (minor) to 5 (life-threatening)
3. Immediate risks: list of specific dangers
4. Confidence score: 1.0 (low confidence) to 5.0 (high confidence) in your assessment

Incident: {{.description}}
Location: {{default "Unknown" .location}}

Be accurate, concise, and prioritize safety.`

const situationUserPrompt = `Assess this incident: {{.description}}`

const situationSchemaHint = `{
  "category": "string",
  "severity": 3,
  "risks": ["risk 1", "risk 2"],
  "confidence": 3.0
}`

type situationResponse struct {
	Category   string   `json:"category"`
	Severity   int      `json:"severity"`
	Risks      []string `json:"risks"`
	Confidence float64  `json:"confidence"`
}

// Situation assesses the incident category, severity and immediate risks.
// It owns State.Assessment and writes nothing else.
type Situation struct {
	base
}

var _ core.Stage = (*Situation)(nil)

// NewSituation constructs the situation assessment stage.
func NewSituation(client completion.Client, logger logging.Logger) *Situation {
	return &Situation{base: newBase(core.StageSituation, client, logger)}
}

// Run implements core.Stage.
func (s *Situation) Run(ctx context.Context, st *core.State) {
	start := now()
	data := map[string]any{
		"description": st.Input.Description,
		"location":    st.Input.Location,
	}

	var resp situationResponse
	units, err := s.complete(ctx, situationSystemPrompt, situationUserPrompt, situationSchemaHint, data, &resp)
	if err != nil {
		st.Assessment = fallbackAssessment()
		s.fail(st, start, err)
		return
	}

	category := resp.Category
	if category == "" {
		category = "unknown"
	}
	st.Assessment = &core.Assessment{
		Category:   category,
		Severity:   core.ClampSeverity(resp.Severity),
		Risks:      resp.Risks,
		Confidence: core.ClampConfidence(resp.Confidence),
	}

	s.succeed(st, start, "situation_assessment", units, map[string]any{
		"category":   st.Assessment.Category,
		"severity":   st.Assessment.Severity,
		"confidence": st.Assessment.Confidence,
	})
}

func fallbackAssessment() *core.Assessment {
	return &core.Assessment{
		Category:   "unknown",
		Severity:   3,
		Risks:      []string{"Unable to assess - proceed with caution"},
		Confidence: fallbackConfidence,
	}
}
