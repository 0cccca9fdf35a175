package stage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triagemesh/triagemesh/completion"
	"github.com/triagemesh/triagemesh/core"
)

func TestOutreach_NoContactsShortCircuits(t *testing.T) {
	client := completion.NewMock()
	o := NewOutreach(client, nil)
	st := core.NewState(core.Input{Description: "kitchen fire"})

	o.Run(context.Background(), st)

	require.NotNil(t, st.Outreach)
	assert.Empty(t, st.Outreach.Messages)
	assert.InDelta(t, 1.0, st.Outreach.Confidence, 1e-9)
	assert.True(t, st.HasRun(core.StageOutreach))
	assert.Equal(t, 0, client.Calls(), "no collaborator call without contacts")

	events := st.Trace.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "outreach_skipped", events[0].Action)
}

func TestOutreach_Success(t *testing.T) {
	client := completion.NewMock().SetUnits(300).Enqueue(`{
		"messages": [
			{"name": "Ana", "relation": "sister", "short": "Fire at home, I am safe.", "long": "Hi Ana, there was a kitchen fire at home. I am safe and outside."}
		],
		"confidence": 4.2
	}`)
	o := NewOutreach(client, nil)
	st := core.NewState(core.Input{
		Description: "kitchen fire",
		Location:    "12 Elm St",
		Contacts:    []core.Contact{{Name: "Ana", Relation: "sister", Phone: "+1555000"}},
	})
	st.Assessment = &core.Assessment{Category: "accident", Severity: 3, Confidence: 4.0}

	o.Run(context.Background(), st)

	require.NotNil(t, st.Outreach)
	require.Len(t, st.Outreach.Messages, 1)
	assert.Equal(t, "Ana", st.Outreach.Messages[0].Name)
	assert.Equal(t, "sister", st.Outreach.Messages[0].Relation)
	assert.NotEmpty(t, st.Outreach.Messages[0].Short)
	assert.NotEmpty(t, st.Outreach.Messages[0].Long)
	assert.InDelta(t, 4.2, st.Outreach.Confidence, 1e-9)
	assert.Equal(t, 300, st.TotalUnits)
}

func TestOutreach_CollaboratorFailure_TemplatedFallbackPerContact(t *testing.T) {
	client := completion.NewMock().Fail(errors.New("timeout"))
	o := NewOutreach(client, nil)
	st := core.NewState(core.Input{
		Description: "flooded street",
		Location:    "River Rd",
		Contacts: []core.Contact{
			{Name: "Ana", Relation: "sister"},
			{Name: "", Relation: "neighbor"},
		},
	})
	st.Assessment = &core.Assessment{Category: "natural_disaster", Severity: 4, Confidence: 3.0}

	o.Run(context.Background(), st)

	require.NotNil(t, st.Outreach)
	require.Len(t, st.Outreach.Messages, 2)
	assert.InDelta(t, 1.0, st.Outreach.Confidence, 1e-9)

	first := st.Outreach.Messages[0]
	assert.Equal(t, "Ana", first.Name)
	assert.Contains(t, first.Short, "natural_disaster")
	assert.Contains(t, first.Short, "River Rd")
	assert.Contains(t, first.Long, "severity: 4/5")

	second := st.Outreach.Messages[1]
	assert.Equal(t, "Unknown", second.Name)

	events := st.Trace.Events()
	require.Len(t, events, 1)
	assert.Equal(t, core.ActionError, events[0].Action)
}

func TestOutreach_ShortMessagesBoundedAt160(t *testing.T) {
	longShort := strings.Repeat("evacuate now ", 20) // well past the SMS bound
	client := completion.NewMock().Enqueue(`{
		"messages": [
			{"name": "Ana", "relation": "sister", "short": "` + longShort + `", "long": "details follow"}
		],
		"confidence": 4.0
	}`)
	o := NewOutreach(client, nil)
	st := core.NewState(core.Input{
		Description: "kitchen fire",
		Contacts:    []core.Contact{{Name: "Ana", Relation: "sister"}},
	})

	o.Run(context.Background(), st)

	require.NotNil(t, st.Outreach)
	require.Len(t, st.Outreach.Messages, 1)
	assert.LessOrEqual(t, len([]rune(st.Outreach.Messages[0].Short)), 160)
}

func TestOutreach_FallbackShortMessagesBoundedAt160(t *testing.T) {
	client := completion.NewMock().Fail(errors.New("timeout"))
	o := NewOutreach(client, nil)
	st := core.NewState(core.Input{
		Description: "flooded street",
		Location:    strings.Repeat("Very Long Road Name ", 10),
		Contacts:    []core.Contact{{Name: "Ana", Relation: "sister"}},
	})
	st.Assessment = &core.Assessment{Category: "natural_disaster", Severity: 4, Confidence: 3.0}

	o.Run(context.Background(), st)

	require.NotNil(t, st.Outreach)
	require.Len(t, st.Outreach.Messages, 1)
	assert.LessOrEqual(t, len([]rune(st.Outreach.Messages[0].Short)), 160)
}

func TestFormatContacts_OmitsPhoneNumbers(t *testing.T) {
	out := formatContacts([]core.Contact{{Name: "Ana", Relation: "sister", Phone: "+15550001111"}})
	assert.Contains(t, out, "Ana")
	assert.NotContains(t, out, "+15550001111")
}
