package windows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		in   string
		want Scope
	}{
		{"", ScopeCurrentUser},
		{"user", ScopeCurrentUser},
		{"HKCU", ScopeCurrentUser},
		{" machine ", ScopeLocalMachine},
		{"hklm", ScopeLocalMachine},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScope(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseScope("system")
	assert.Error(t, err)
}

func TestScopeString(t *testing.T) {
	assert.Equal(t, "user", ScopeCurrentUser.String())
	assert.Equal(t, "machine", ScopeLocalMachine.String())
	assert.Equal(t, "Scope(7)", Scope(7).String())
}
