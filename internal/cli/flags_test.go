package cli

import (
	stderrors "errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/appveyor-artifacts/internal/errors"
)

func TestGlobalFlags_Defaults(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)

	assert.Equal(t, OutputText, flags.Output)
	assert.False(t, flags.Verbose)
	assert.False(t, flags.Quiet)
}

func TestAddGlobalFlags(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)

	for _, name := range []string{"format", "verbose", "quiet"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestBindGlobalFlags(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)

	v := viper.New()
	require.NoError(t, BindGlobalFlags(v, cmd))
	assert.Equal(t, OutputText, v.GetString("format"))
}

func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidOutputFormat(OutputText))
	assert.True(t, IsValidOutputFormat(OutputJSON))
	assert.False(t, IsValidOutputFormat("yaml"))
	assert.False(t, IsValidOutputFormat(""))
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "generic error", err: stderrors.New("boom"), want: ExitError},
		{name: "job failed", err: errors.ErrJobFailed, want: ExitError},
		{name: "polling timeout", err: errors.ErrPollingTimeout, want: ExitError},
		{name: "invalid input wrapper", err: errors.NewInvalidInputError(errors.ErrConfigValidation), want: ExitInvalidInput},
		{name: "invalid output format", err: errors.ErrInvalidOutputFormat, want: ExitInvalidInput},
		{name: "cobra unknown flag", err: stderrors.New(`unknown flag: --bogus`), want: ExitInvalidInput},
		{name: "cobra exclusive group", err: stderrors.New("if any flags in the group [verbose quiet] are set none of the others can be"), want: ExitInvalidInput},
		{name: "cobra unknown command", err: stderrors.New(`unknown command "upload" for "appveyor-artifacts"`), want: ExitInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExitCodeForError(tc.err))
		})
	}
}
