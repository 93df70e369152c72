package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and captures its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APPVEYOR_ARTIFACTS_HOME", t.TempDir())
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{})

	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	output, err := executeCommand(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, output, "appveyor-artifacts")
	assert.Contains(t, output, "download")
}

func TestRootCommand_NoArgsShowsHelp(t *testing.T) {
	output, err := executeCommand(t)
	require.NoError(t, err)
	assert.Contains(t, output, "Usage:")
}

func TestRootCommand_InvalidOutputFormat(t *testing.T) {
	_, err := executeCommand(t, "--format", "yaml", "download")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRootCommand_VerboseQuietExclusive(t *testing.T) {
	_, err := executeCommand(t, "--verbose", "--quiet")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRootCommand_UnknownCommand(t *testing.T) {
	_, err := executeCommand(t, "upload")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestFormatVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{
			name: "full info",
			info: BuildInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-08-30"},
			want: "1.2.3 (commit: abc1234, built: 2026-08-30)",
		},
		{
			name: "empty info falls back",
			info: BuildInfo{},
			want: "dev (commit: none, built: unknown)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, formatVersion(tc.info))
		})
	}
}
