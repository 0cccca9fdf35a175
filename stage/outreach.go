package stage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/triagemesh/triagemesh/completion"
	"github.com/triagemesh/triagemesh/core"
	"github.com/triagemesh/triagemesh/logging"
)

const outreachSystemPrompt = `You are an emergency communication assistant.

Create short, clear messages the user can send to close contacts about an
ongoing incident.

Category: {{.category}}
Severity: {{.severity}}/5
Immediate Risks: {{default "Unknown" (join ", " .risks)}}
Incident: {{.description}}
Location: {{default "Unknown" .location}}

Contacts: {{.contacts}}

For each contact, generate:
1. A brief SMS-style message (160 characters max, concise, no emojis).
2. A slightly richer long-form message (can be longer, still concise and respectful).

Focus on clarity about the incident and location, reassurance if
appropriate, and a clear request for help or availability. Do not invent
new contacts; only use the ones provided.`

const outreachUserPrompt = `Generate short-form and long-form messages for the listed contacts.`

const outreachSchemaHint = `{
  "messages": [
    {"name": "string", "relation": "string", "short": "string", "long": "string"}
  ],
  "confidence": 3.0
}`

// shortMessageLimit is the SMS length bound promised in the prompt.
const shortMessageLimit = 160

type outreachResponse struct {
	Messages []struct {
		Name     string `json:"name"`
		Relation string `json:"relation"`
		Short    string `json:"short"`
		Long     string `json:"long"`
	} `json:"messages"`
	Confidence float64 `json:"confidence"`
}

// Outreach drafts per-contact notification messages. With no contacts it
// short-circuits without a collaborator call, recording an empty message
// list. It owns State.Outreach.
type Outreach struct {
	base
}

var _ core.Stage = (*Outreach)(nil)

// NewOutreach constructs the contact outreach stage.
func NewOutreach(client completion.Client, logger logging.Logger) *Outreach {
	return &Outreach{base: newBase(core.StageOutreach, client, logger)}
}

// Run implements core.Stage.
func (o *Outreach) Run(ctx context.Context, st *core.State) {
	start := now()

	contacts := st.Input.Contacts
	if len(contacts) == 0 {
		st.Outreach = &core.Outreach{Messages: []core.OutreachMessage{}, Confidence: fallbackConfidence}
		st.MarkStageRun(o.id)
		st.Trace.Append(core.TraceEvent{
			Agent:    o.id,
			Action:   "outreach_skipped",
			Fields:   map[string]any{"contacts": 0},
			Duration: time.Since(start),
		})
		o.logger.Info("stage completed", "stage", string(o.id), "workflow_id", st.WorkflowID, "contacts", 0)
		return
	}

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
		"contacts":    formatContacts(contacts),
	}

	var resp outreachResponse
	units, err := o.complete(ctx, outreachSystemPrompt, outreachUserPrompt, outreachSchemaHint, data, &resp)
	if err != nil {
		st.Outreach = fallbackOutreach(st, contacts)
		o.fail(st, start, err)
		return
	}

	messages := make([]core.OutreachMessage, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		name := m.Name
		if name == "" {
			name = "Unknown"
		}
		relation := m.Relation
		if relation == "" {
			relation = "contact"
		}
		messages = append(messages, core.OutreachMessage{
			Name:     name,
			Relation: relation,
			Short:    truncateRunes(m.Short, shortMessageLimit),
			Long:     m.Long,
		})
	}
	st.Outreach = &core.Outreach{
		Messages:   messages,
		Confidence: core.ClampConfidence(resp.Confidence),
	}

	o.succeed(st, start, "outreach_generation", units, map[string]any{
		"contacts":   len(messages),
		"confidence": st.Outreach.Confidence,
	})
}

// formatContacts renders only name and relation into the prompt; phone
// numbers never leave the record.
func formatContacts(contacts []core.Contact) string {
	type promptContact struct {
		Name     string `json:"name"`
		Relation string `json:"relation"`
	}
	safe := make([]promptContact, 0, len(contacts))
	for _, c := range contacts {
		pc := promptContact{Name: c.Name, Relation: c.Relation}
		if pc.Name == "" {
			pc.Name = "Unknown"
		}
		if pc.Relation == "" {
			pc.Relation = "contact"
		}
		safe = append(safe, pc)
	}
	data, err := json.Marshal(safe)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func fallbackOutreach(st *core.State, contacts []core.Contact) *core.Outreach {
	messages := make([]core.OutreachMessage, 0, len(contacts))
	for _, c := range contacts {
		name := c.Name
		if name == "" {
			name = "Unknown"
		}
		relation := c.Relation
		if relation == "" {
			relation = "contact"
		}
		location := st.Input.Location
		if location == "" {
			location = "Unknown"
		}
		messages = append(messages, core.OutreachMessage{
			Name:     name,
			Relation: relation,
			Short: truncateRunes(fmt.Sprintf(
				"There is an emergency. I am safe for now but may need help. Type: %s, Location: %s. I will update you as I can.",
				st.Category(), location,
			), shortMessageLimit),
			Long: fmt.Sprintf(
				"Hi %s, there is an emergency situation (type: %s, severity: %d/5) at %s. I may need your support. I will share updates when possible.",
				name, st.Category(), st.Severity(), location,
			),
		})
	}
	return &core.Outreach{Messages: messages, Confidence: fallbackConfidence}
}

// truncateRunes caps s at limit runes so multi-byte text is never split
// mid-character.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
