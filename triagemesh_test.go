package triagemesh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triagemesh/triagemesh/completion"
	"github.com/triagemesh/triagemesh/core"
	"github.com/triagemesh/triagemesh/pipeline"
	"github.com/triagemesh/triagemesh/session"
)

func TestMeshTriageDefaults(t *testing.T) {
	mock := completion.NewMock().
		Enqueue(`{"category": "lost_person", "severity": 2, "risks": ["disorientation"], "confidence": 4}`).
		Enqueue(`{"recommendation": "stay_put", "steps": ["Stay where you are"], "confidence": 4}`)

	mesh := New(mock)

	res, err := mesh.Triage(context.Background(), pipeline.Request{
		Description: "my friend wandered off during the hike",
	})
	require.NoError(t, err)

	assert.True(t, res.Complete)
	require.NotNil(t, res.Assessment)
	assert.Equal(t, "lost_person", res.Assessment.Category)
	assert.Nil(t, res.Resources)
}

func TestMeshUsesProvidedSessionStore(t *testing.T) {
	store := session.NewInMemoryStore()
	mock := completion.NewMock().
		Enqueue(`{"category": "lost_person", "severity": 2, "risks": [], "confidence": 4}`).
		Enqueue(`{"recommendation": "stay_put", "steps": [], "confidence": 4}`)

	mesh := New(mock, func(o *Options) {
		o.SessionStore = store
	})

	res, err := mesh.Triage(context.Background(), pipeline.Request{Description: "friend missing"})
	require.NoError(t, err)

	stored, ok, err := store.Get(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res.WorkflowID, stored.WorkflowID)
	assert.Contains(t, stored.StagesRun, core.StageGuidance)
}
