package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate_FastPath(t *testing.T) {
	out, err := RenderTemplate("no markers here", nil)
	require.NoError(t, err)
	assert.Equal(t, "no markers here", out)
}

func TestRenderTemplate_Variables(t *testing.T) {
	out, err := RenderTemplate(
		"Emergency: {{.description}} at {{default \"Unknown\" .location}}",
		map[string]any{"description": "gas leak", "location": ""},
	)
	require.NoError(t, err)
	assert.Equal(t, "Emergency: gas leak at Unknown", out)
}

func TestRenderTemplate_Join(t *testing.T) {
	out, err := RenderTemplate(
		"Risks: {{join \", \" .risks}}",
		map[string]any{"risks": []string{"fire", "smoke"}},
	)
	require.NoError(t, err)
	assert.Equal(t, "Risks: fire, smoke", out)
}

func TestRenderTemplate_ParseError(t *testing.T) {
	_, err := RenderTemplate("{{.broken", nil)
	assert.Error(t, err)
}
