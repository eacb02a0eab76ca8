package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "brewfile", RootCmd.Use)
	assert.NotEmpty(t, RootCmd.Short)
	assert.NotEmpty(t, RootCmd.Long)
	assert.True(t, RootCmd.SilenceUsage)
	assert.True(t, RootCmd.SilenceErrors)
	assert.Equal(t, 2, RootCmd.SuggestionsMinimumDistance)
	assert.NotNil(t, RootCmd.RunE, "bare invocation runs interactive mode")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	var registered []string
	for _, cmd := range RootCmd.Commands() {
		registered = append(registered, cmd.Name())
	}

	for _, name := range []string{
		"init", "status", "sync-adopt", "sync-cleanup", "add", "remove",
		"edit", "manifest", "history", "undo", "scan", "doctor", "watch",
	} {
		assert.Contains(t, registered, name)
	}
}

func TestSubcommandsAreDocumented(t *testing.T) {
	for _, cmd := range RootCmd.Commands() {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			continue
		}
		assert.NotEmpty(t, cmd.Short, "%s: Short", cmd.Name())
		assert.NotEmpty(t, cmd.Long, "%s: Long", cmd.Name())
		assert.NotNil(t, cmd.RunE, "%s: RunE", cmd.Name())
	}
}

func TestRootCommandHasPersistentFlags(t *testing.T) {
	for _, name := range []string{"verbose", "settings", "config", "brewfile"} {
		flag := RootCmd.PersistentFlags().Lookup(name)
		if assert.NotNil(t, flag, "--%s", name) {
			assert.NotEmpty(t, flag.Usage, "--%s usage", name)
		}
	}

	f := RootCmd.PersistentFlags().ShorthandLookup("v")
	require.NotNil(t, f)
	assert.Equal(t, "verbose", f.Name)
}

func TestBrewfileHelpExitsZero(t *testing.T) {
	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(bytes.NewBuffer(nil))
	RootCmd.SetArgs([]string{"--help"})
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute())
	assert.Contains(t, buf.String(), "Usage:")
	assert.Contains(t, buf.String(), "sync-adopt")
}

func TestExecute_UnknownCommand(t *testing.T) {
	RootCmd.SetOut(bytes.NewBuffer(nil))
	RootCmd.SetErr(bytes.NewBuffer(nil))
	RootCmd.SetArgs([]string{"blorp"})
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})

	err := Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}
