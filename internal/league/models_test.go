package league

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want Position
		ok   bool
	}{
		{"", "", true},
		{"any", "", true},
		{" qb ", PositionQB, true},
		{"RB", PositionRB, true},
		{"wr", PositionWR, true},
		{"TE", PositionTE, true},
		{"rb/wr/te", PositionFlex, true},
		{"FLEX", PositionFlex, true},
		{"D/ST", PositionDST, true},
		{"def", PositionDST, true},
		{"K", PositionK, true},
		{"BENCH", "", false},
		{"LB", "", false},
	}
	for _, tt := range tests {
		got, ok := ParsePosition(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestPositionIsStarter(t *testing.T) {
	assert.True(t, PositionQB.IsStarter())
	assert.True(t, PositionFlex.IsStarter())
	assert.True(t, PositionOP.IsStarter())
	assert.False(t, PositionBench.IsStarter())
	assert.False(t, PositionIR.IsStarter())
	assert.False(t, Position("").IsStarter())
}

func TestParseActivityFilter(t *testing.T) {
	tests := map[string]ActionType{
		"":             "",
		"fa":           ActionFreeAgentAdded,
		"FA ADDED":     ActionFreeAgentAdded,
		"waiver":       ActionWaiverAdded,
		"WAIVER ADDED": ActionWaiverAdded,
		"trade":        ActionTraded,
		"TRADED":       ActionTraded,
		"drop":         ActionDropped,
		"Dropped":      ActionDropped,
	}
	for in, want := range tests {
		got, ok := ParseActivityFilter(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseActivityFilter("KEEPER")
	assert.False(t, ok)
}
