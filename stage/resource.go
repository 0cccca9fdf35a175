package stage

import (
	"context"

	"github.com/triagemesh/triagemesh/completion"
	"github.com/triagemesh/triagemesh/core"
	"github.com/triagemesh/triagemesh/logging"
)

const resourceSystemPrompt = `You are an emergency resource coordination specialist.

Based on the incident, suggest appropriate resources and contacts.

Category: {{.category}}
Severity: {{.severity}}/5
Location: {{default "Unknown" .location}}
Recommended Response: {{.recommendation}}

Provide:
1. Emergency services phone number (911, local equivalent, or specific services)
2. 2-3 nearby resources (hospitals, police stations, shelters, etc.)
3. 1-2 additional helpful resources (hotlines, websites, services)
4. Confidence score: 1.0 (low confidence) to 5.0 (high confidence) in your recommendations

Note: Without verified location data, provide generally helpful resources.`

const resourceUserPrompt = `Provide emergency resources for {{.category}} at {{default "Unknown" .location}}`

const resourceSchemaHint = `{
  "emergency_services": "911",
  "nearby": ["Resource 1 - distance", "Resource 2 - distance"],
  "additional": ["Hotline or website", "Support service"],
  "confidence": 3.0
}`

type resourceResponse struct {
	EmergencyServices string   `json:"emergency_services"`
	Nearby            []string `json:"nearby"`
	Additional        []string `json:"additional"`
	Confidence        float64  `json:"confidence"`
}

// Resource coordinates emergency services and nearby facilities. It owns
// State.Resources.
type Resource struct {
	base
}

var _ core.Stage = (*Resource)(nil)

// NewResource constructs the resource coordination stage.
func NewResource(client completion.Client, logger logging.Logger) *Resource {
	return &Resource{base: newBase(core.StageResource, client, logger)}
}

// Run implements core.Stage.
func (r *Resource) Run(ctx context.Context, st *core.State) {
	start := now()

	recommendation := "contact_help"
	if st.Guidance != nil && st.Guidance.Recommendation != "" {
		recommendation = st.Guidance.Recommendation
	}
	data := map[string]any{
		"category":       st.Category(),
		"severity":       st.Severity(),
		"location":       st.Input.Location,
		"recommendation": recommendation,
	}

	var resp resourceResponse
	units, err := r.complete(ctx, resourceSystemPrompt, resourceUserPrompt, resourceSchemaHint, data, &resp)
	if err != nil {
		st.Resources = fallbackResources()
		r.fail(st, start, err)
		return
	}

	services := resp.EmergencyServices
	if services == "" {
		services = "911"
	}
	st.Resources = &core.Resources{
		EmergencyServices: services,
		Nearby:            resp.Nearby,
		Additional:        resp.Additional,
		Confidence:        core.ClampConfidence(resp.Confidence),
	}

	r.succeed(st, start, "resource_coordination", units, map[string]any{
		"emergency_services": st.Resources.EmergencyServices,
		"resources_count":    len(st.Resources.Nearby),
		"confidence":         st.Resources.Confidence,
	})
}

func fallbackResources() *core.Resources {
	return &core.Resources{
		EmergencyServices: "911",
		Nearby:            []string{"Call 911 for nearest emergency facility"},
		Additional:        []string{"National Emergency Hotline: 911"},
		Confidence:        fallbackConfidence,
	}
}
