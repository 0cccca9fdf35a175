package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triagemesh/triagemesh/core"
)

func TestParseContacts(t *testing.T) {
	contacts, err := parseContacts([]string{"Ana:sister:+15551234", "Bo:friend:+15559876"})
	require.NoError(t, err)
	assert.Equal(t, []core.Contact{
		{Name: "Ana", Relation: "sister", Phone: "+15551234"},
		{Name: "Bo", Relation: "friend", Phone: "+15559876"},
	}, contacts)
}

func TestParseContactsRejectsMalformed(t *testing.T) {
	_, err := parseContacts([]string{"Ana:sister"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid contact")
}
