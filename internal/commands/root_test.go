package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmdRegistersSubcommands(t *testing.T) {
	rootCmd, rootErr := NewRootCmd()
	require.NoError(t, rootErr)

	expected := []string{"info", "events", "calltrace", "flow", "terminal", "source"}
	for _, name := range expected {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "subcommand %q is not registered", name)
	}

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("trace"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("socket"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbosity"))
}

func TestFlowCommandValidatesArguments(t *testing.T) {
	rootCmd, rootErr := NewRootCmd()
	require.NoError(t, rootErr)

	rootCmd.SetArgs([]string{"flow", "--trace", "/traces/fib", "src/main.nr", "notanumber"})
	executeErr := rootCmd.Execute()
	require.Error(t, executeErr)
	assert.Contains(t, executeErr.Error(), "line must be an integer")
}

func TestRenderValuesIsSortedAndStable(t *testing.T) {
	assert.Equal(t, "-", renderValues(nil))
	assert.Equal(t, "a=1 b=2", renderValues(map[string]string{"b": "2", "a": "1"}))
}
