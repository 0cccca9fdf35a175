package stage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triagemesh/triagemesh/completion"
	"github.com/triagemesh/triagemesh/core"
)

func TestSituation_Success(t *testing.T) {
	client := completion.NewMock().SetUnits(150).Enqueue(`{
		"category": "medical",
		"severity": 4,
		"risks": ["cardiac arrest", "loss of consciousness"],
		"confidence": 4.5
	}`)
	s := NewSituation(client, nil)
	st := core.NewState(core.Input{Description: "person collapsed", Location: "Main St 5"})

	s.Run(context.Background(), st)

	require.NotNil(t, st.Assessment)
	assert.Equal(t, "medical", st.Assessment.Category)
	assert.Equal(t, 4, st.Assessment.Severity)
	assert.Equal(t, []string{"cardiac arrest", "loss of consciousness"}, st.Assessment.Risks)
	assert.InDelta(t, 4.5, st.Assessment.Confidence, 1e-9)

	assert.Equal(t, 150, st.TotalUnits)
	assert.True(t, st.HasRun(core.StageSituation))

	events := st.Trace.Events()
	require.Len(t, events, 1)
	assert.Equal(t, core.StageSituation, events[0].Agent)
	assert.Equal(t, "situation_assessment", events[0].Action)
	assert.Equal(t, "medical", events[0].Fields["category"])
}

func TestSituation_ClampsOutOfRangeValues(t *testing.T) {
	client := completion.NewMock().Enqueue(`{"category":"other","severity":9,"confidence":0.1}`)
	s := NewSituation(client, nil)
	st := core.NewState(core.Input{Description: "weird noise"})

	s.Run(context.Background(), st)

	require.NotNil(t, st.Assessment)
	assert.Equal(t, 3, st.Assessment.Severity)
	assert.InDelta(t, 1.0, st.Assessment.Confidence, 1e-9)
}

func TestSituation_OmittedConfidenceDefaultsTo3(t *testing.T) {
	client := completion.NewMock().Enqueue(`{"category":"accident","severity":2}`)
	s := NewSituation(client, nil)
	st := core.NewState(core.Input{Description: "fender bender"})

	s.Run(context.Background(), st)

	require.NotNil(t, st.Assessment)
	assert.InDelta(t, 3.0, st.Assessment.Confidence, 1e-9)
}

func TestSituation_CollaboratorFailure_Fallback(t *testing.T) {
	client := completion.NewMock().Fail(errors.New("connection refused"))
	s := NewSituation(client, nil)
	st := core.NewState(core.Input{Description: "person collapsed"})

	s.Run(context.Background(), st)

	require.NotNil(t, st.Assessment)
	assert.Equal(t, "unknown", st.Assessment.Category)
	assert.Equal(t, 3, st.Assessment.Severity)
	assert.Equal(t, []string{"Unable to assess - proceed with caution"}, st.Assessment.Risks)
	assert.InDelta(t, 1.0, st.Assessment.Confidence, 1e-9)

	assert.Equal(t, 0, st.TotalUnits)
	assert.True(t, st.HasRun(core.StageSituation))

	events := st.Trace.Events()
	require.Len(t, events, 1)
	assert.Equal(t, core.ActionError, events[0].Action)
	assert.Contains(t, events[0].Error, "connection refused")
}

func TestSituation_MalformedJSON_Fallback(t *testing.T) {
	client := completion.NewMock().Enqueue(`this is not json`)
	s := NewSituation(client, nil)
	st := core.NewState(core.Input{Description: "person collapsed"})

	s.Run(context.Background(), st)

	require.NotNil(t, st.Assessment)
	assert.Equal(t, "unknown", st.Assessment.Category)
	assert.InDelta(t, 1.0, st.Assessment.Confidence, 1e-9)

	events := st.Trace.Events()
	require.Len(t, events, 1)
	assert.Equal(t, core.ActionError, events[0].Action)
	assert.Contains(t, events[0].Error, "malformed collaborator response")
}

func TestSituation_ReentryDoesNotDuplicateStageID(t *testing.T) {
	client := completion.NewMock().
		Enqueue(`{"category":"medical","severity":4,"confidence":4.0}`).
		Enqueue(`{"category":"medical","severity":4,"confidence":4.0}`)
	s := NewSituation(client, nil)
	st := core.NewState(core.Input{Description: "person collapsed"})

	s.Run(context.Background(), st)
	s.Run(context.Background(), st)

	count := 0
	for _, id := range st.StagesRun {
		if id == core.StageSituation {
			count++
		}
	}
	assert.Equal(t, 1, count)
	// Each invocation still traces exactly one event.
	assert.Equal(t, 2, st.Trace.Len())
}
