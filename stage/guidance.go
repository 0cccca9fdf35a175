package stage

import (
	"context"

	"github.com/triagemesh/triagemesh/completion"
	"github.com/triagemesh/triagemesh/core"
	"github.com/triagemesh/triagemesh/logging"
)

const guidanceSystemPrompt = `You are an emergency guidance specialist.

Based on the assessed incident, provide clear, actionable safety instructions.

Category: {{.category}}
Severity: {{.severity}}/5
Immediate Risks: {{default "Unknown" (join ", " .risks)}}
Incident: {{.description}}
Location: {{default "Unknown" .location}}

Provide:
1. Recommended response: "self_help", "contact_help", or "call_911"
2. 5 step-by-step safety instructions (clear, actionable, prioritized)
3. Confidence score: 1.0 (low confidence) to 5.0 (high confidence) in your guidance

Prioritize user safety above all else. Be concise and clear.`

const guidanceUserPrompt = `Provide safety guidance for this {{.category}} incident (severity {{.severity}}/5)`

const guidanceSchemaHint = `{
  "recommendation": "call_911",
  "steps": ["step 1", "step 2", "step 3", "step 4", "step 5"],
  "confidence": 3.0
}`

type guidanceResponse struct {
	Recommendation string   `json:"recommendation"`
	Steps          []string `json:"steps"`
	Confidence     float64  `json:"confidence"`
}

// Guidance produces the recommended response and step-by-step instructions.
// It assumes the assessment already ran, substituting the safe placeholders
// (category "unknown", severity 3) when it did not. It owns State.Guidance.
type Guidance struct {
	base
}

var _ core.Stage = (*Guidance)(nil)

// NewGuidance constructs the guidance stage.
func NewGuidance(client completion.Client, logger logging.Logger) *Guidance {
	return &Guidance{base: newBase(core.StageGuidance, client, logger)}
}

// Run implements core.Stage.
func (g *Guidance) Run(ctx context.Context, st *core.State) {
	start := now()

	var risks []string
	if st.Assessment != nil {
		risks = st.Assessment.Risks
	}
	data := map[string]any{
		"category":    st.Category(),
		"severity":    st.Severity(),
		"risks":       risks,
		"description": st.Input.Description,
		"location":    st.Input.Location,
	}

	var resp guidanceResponse
	units, err := g.complete(ctx, guidanceSystemPrompt, guidanceUserPrompt, guidanceSchemaHint, data, &resp)
	if err != nil {
		st.Guidance = fallbackGuidance()
		g.fail(st, start, err)
		return
	}

	recommendation := resp.Recommendation
	if recommendation == "" {
		recommendation = "contact_help"
	}
	st.Guidance = &core.Guidance{
		Recommendation: recommendation,
		Steps:          resp.Steps,
		Confidence:     core.ClampConfidence(resp.Confidence),
	}

	g.succeed(st, start, "guidance_generation", units, map[string]any{
		"recommendation": st.Guidance.Recommendation,
		"steps_count":    len(st.Guidance.Steps),
		"confidence":     st.Guidance.Confidence,
	})
}

func fallbackGuidance() *core.Guidance {
	return &core.Guidance{
		Recommendation: "contact_help",
		Steps: []string{
			"Stay calm and assess the situation",
			"Move to a safe location if possible",
			"Call for help if needed",
			"Follow any official emergency instructions",
			"Wait for assistance to arrive",
		},
		Confidence: fallbackConfidence,
	}
}
