package procparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsh/wercrash/internal/remotemem"
	"github.com/agentsh/wercrash/internal/target/targettest"
)

func TestCommandLine(t *testing.T) {
	p := targettest.NewProcess(100)
	p.InstallParameters(`"C:\Program Files\App\app.exe" -contentproc 1234 tab 7ffe0000`, nil)

	got, err := CommandLine(p)
	require.NoError(t, err)
	assert.Equal(t, `"C:\Program Files\App\app.exe" -contentproc 1234 tab 7ffe0000`, got)
}

func TestCommandLineNonASCII(t *testing.T) {
	p := targettest.NewProcess(100)
	p.InstallParameters("app.exe --profile C:\\Users\\Zoë\\😀", nil)

	got, err := CommandLine(p)
	require.NoError(t, err)
	assert.Equal(t, "app.exe --profile C:\\Users\\Zoë\\😀", got)
}

func TestCommandLineInvalidUTF16(t *testing.T) {
	p := targettest.NewProcess(100)
	p.InstallRawParameters([]uint16{'a', 0xD800, 'b'}, nil)

	_, err := CommandLine(p)
	assert.ErrorIs(t, err, ErrInvalidUTF16)
}

func TestEnvironmentBlock(t *testing.T) {
	env := targettest.EnvironmentBlock("PATH=C:\\Windows", "MOZ_CRASHREPORTER=1")
	p := targettest.NewProcess(100)
	p.InstallParameters("app.exe", env)

	got, err := EnvironmentBlock(p)
	require.NoError(t, err)
	assert.Equal(t, env, got)
}

func TestReadFailsWithoutPEB(t *testing.T) {
	p := targettest.NewProcess(100)

	_, err := CommandLine(p)
	assert.ErrorIs(t, err, targettest.ErrNotConfigured)
}

func TestReadFailsOnDanglingParameters(t *testing.T) {
	p := targettest.NewProcess(100)
	p.InstallParameters("app.exe", nil)
	// Point the PEB at an unmapped parameter block.
	p.Map(targettest.PEBBase, make([]byte, 64))
	p.PEB = targettest.PEBBase

	_, err := EnvironmentBlock(p)
	assert.ErrorIs(t, err, remotemem.ErrUnmapped)
}

func TestDecodeUTF16(t *testing.T) {
	tests := []struct {
		name    string
		in      []uint16
		want    string
		wantErr bool
	}{
		{name: "empty", in: nil, want: ""},
		{name: "ascii", in: []uint16{'o', 'k'}, want: "ok"},
		{name: "surrogate pair", in: []uint16{0xD83D, 0xDE00}, want: "😀"},
		{name: "lone high", in: []uint16{0xD83D}, wantErr: true},
		{name: "lone low", in: []uint16{0xDE00, 'x'}, wantErr: true},
		{name: "high then ascii", in: []uint16{0xD83D, 'x'}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeUTF16(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidUTF16)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
