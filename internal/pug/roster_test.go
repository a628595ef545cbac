package pug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestParseRoster(t *testing.T) {
	assert.Nil(t, ParseRoster(nil))
	assert.Nil(t, ParseRoster(strPtr("")))
	assert.Equal(t, []string{"100"}, ParseRoster(strPtr("100")))
	assert.Equal(t, []string{"100", "200", "300"}, ParseRoster(strPtr("100, 200 ,300")))
	assert.Equal(t, []string{"100", "200"}, ParseRoster(strPtr("100,,200,")))
}

func TestRosterContainsExactTokens(t *testing.T) {
	roster := strPtr("142,200,300")

	assert.True(t, rosterContains(roster, "142"))
	assert.True(t, rosterContains(roster, "200"))
	assert.False(t, rosterContains(roster, "42"))
	assert.False(t, rosterContains(roster, "4"))
	assert.False(t, rosterContains(nil, "142"))
}

func TestMatchSideOf(t *testing.T) {
	m := &Match{
		BlueTeam: strPtr("100,200"),
		RedTeam:  strPtr("300,400"),
	}

	assert.Equal(t, SideBlue, m.SideOf("100"))
	assert.Equal(t, SideRed, m.SideOf("400"))
	assert.Equal(t, SideNone, m.SideOf("999"))
	assert.Equal(t, SideNone, m.SideOf(""))
}

func TestMergedRoster(t *testing.T) {
	m := &Match{
		ID:       1,
		BlueTeam: strPtr("100,200"),
		RedTeam:  strPtr("300"),
	}
	norm := map[string]Side{
		"200": SideBlue, // duplicate of a legacy token
		"700": SideBlue, // only in the normalized relation
		"500": SideBlue,
		"600": SideRed,
	}

	// Normalized extras come after the legacy tokens, in sorted order.
	assert.Equal(t, []string{"100", "200", "500", "700"}, mergedRoster(m, SideBlue, norm))
	assert.Equal(t, []string{"300", "600"}, mergedRoster(m, SideRed, norm))
}
