package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkStageRun_SuppressesDuplicates(t *testing.T) {
	st := NewState(Input{Description: "kitchen fire"})

	assert.True(t, st.MarkStageRun(StageSituation))
	assert.False(t, st.MarkStageRun(StageSituation))
	assert.True(t, st.MarkStageRun(StageGuidance))

	assert.Equal(t, []StageID{StageSituation, StageGuidance}, st.StagesRun)
	assert.True(t, st.HasRun(StageSituation))
	assert.False(t, st.HasRun(StageResource))
}

func TestAddUnits_IgnoresUnknownUsage(t *testing.T) {
	st := NewState(Input{Description: "x"})
	st.AddUnits(120)
	st.AddUnits(0)
	st.AddUnits(-5)
	st.AddUnits(30)
	assert.Equal(t, 150, st.TotalUnits)
}

func TestSeverityAndCategory_DefaultBeforeAssessment(t *testing.T) {
	st := NewState(Input{Description: "x"})
	assert.Equal(t, "unknown", st.Category())
	assert.Equal(t, 3, st.Severity())

	st.Assessment = &Assessment{Category: "medical", Severity: 4, Confidence: 4.2}
	assert.Equal(t, "medical", st.Category())
	assert.Equal(t, 4, st.Severity())
}

func TestClampSeverity(t *testing.T) {
	assert.Equal(t, 3, ClampSeverity(0))
	assert.Equal(t, 3, ClampSeverity(9))
	assert.Equal(t, 3, ClampSeverity(-1))
	assert.Equal(t, 1, ClampSeverity(1))
	assert.Equal(t, 5, ClampSeverity(5))
}

func TestClampConfidence(t *testing.T) {
	assert.InDelta(t, 3.0, ClampConfidence(0), 1e-9) // omitted -> default
	assert.InDelta(t, 1.0, ClampConfidence(0.2), 1e-9)
	assert.InDelta(t, 5.0, ClampConfidence(7.5), 1e-9)
	assert.InDelta(t, 4.1, ClampConfidence(4.1), 1e-9)
}

func TestClone_IsDeep(t *testing.T) {
	st := NewState(Input{
		Description: "flooded basement",
		Contacts:    []Contact{{Name: "Ana", Relation: "sister"}},
	})
	st.Assessment = &Assessment{Category: "natural_disaster", Severity: 4, Risks: []string{"electrocution"}, Confidence: 4.0}
	st.Guidance = &Guidance{Recommendation: "call_911", Steps: []string{"leave the basement"}, Confidence: 3.5}
	st.MarkStageRun(StageSituation)
	st.Trace.Append(TraceEvent{Agent: StageSituation, Action: "situation_assessment"})
	st.SetMetric("elapsed_ms", 12)

	clone := st.Clone()
	clone.Assessment.Risks[0] = "changed"
	clone.Guidance.Steps[0] = "changed"
	clone.Input.Contacts[0].Name = "changed"
	clone.MarkStageRun(StageGuidance)
	clone.Trace.Append(TraceEvent{Agent: StageGuidance, Action: "guidance_generation"})
	clone.SetMetric("elapsed_ms", 99)

	assert.Equal(t, "electrocution", st.Assessment.Risks[0])
	assert.Equal(t, "leave the basement", st.Guidance.Steps[0])
	assert.Equal(t, "Ana", st.Input.Contacts[0].Name)
	assert.Equal(t, []StageID{StageSituation}, st.StagesRun)
	assert.Equal(t, 1, st.Trace.Len())
	assert.Equal(t, 12, st.Metrics["elapsed_ms"])
}

func TestStageIDValid(t *testing.T) {
	for _, id := range SpecialistStages() {
		assert.True(t, id.Valid())
	}
	assert.True(t, StageSupervisor.Valid())
	assert.True(t, StageTerminal.Valid())
	assert.False(t, StageID("nonsense").Valid())
}
