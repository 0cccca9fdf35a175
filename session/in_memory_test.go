package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triagemesh/triagemesh/core"
)

func TestInMemoryStore_UnknownIDNotAnError(t *testing.T) {
	store := NewInMemoryStore()

	st, found, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, st)
}

func TestInMemoryStore_PutGetRoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	st := core.NewState(core.Input{Description: "gas leak"})
	st.SessionID = "thread-1"
	st.Assessment = &core.Assessment{Category: "security", Severity: 4, Confidence: 4.0}
	st.MarkStageRun(core.StageSituation)

	require.NoError(t, store.Put(context.Background(), "thread-1", st))

	got, found, err := store.Get(context.Background(), "thread-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "gas leak", got.Input.Description)
	assert.Equal(t, "security", got.Assessment.Category)
	assert.True(t, got.HasRun(core.StageSituation))
}

func TestInMemoryStore_SnapshotsDoNotAlias(t *testing.T) {
	store := NewInMemoryStore()
	st := core.NewState(core.Input{Description: "gas leak"})
	st.Assessment = &core.Assessment{Category: "security", Severity: 4, Risks: []string{"explosion"}, Confidence: 4.0}
	require.NoError(t, store.Put(context.Background(), "thread-1", st))

	// Mutating the original after Put must not affect the stored copy.
	st.Assessment.Risks[0] = "mutated"

	got, _, err := store.Get(context.Background(), "thread-1")
	require.NoError(t, err)
	assert.Equal(t, "explosion", got.Assessment.Risks[0])

	// Mutating a returned snapshot must not affect the stored copy either.
	got.Assessment.Category = "mutated"
	again, _, err := store.Get(context.Background(), "thread-1")
	require.NoError(t, err)
	assert.Equal(t, "security", again.Assessment.Category)
}

func TestInMemoryStore_LastWriterWins(t *testing.T) {
	store := NewInMemoryStore()

	first := core.NewState(core.Input{Description: "first"})
	second := core.NewState(core.Input{Description: "second"})
	require.NoError(t, store.Put(context.Background(), "thread-1", first))
	require.NoError(t, store.Put(context.Background(), "thread-1", second))

	got, found, err := store.Get(context.Background(), "thread-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "second", got.Input.Description)
	assert.Equal(t, 1, store.Len())
}
