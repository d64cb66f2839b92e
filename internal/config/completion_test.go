package config_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarityio/ripe/internal/config"
)

func TestCompleteOutputFormat(t *testing.T) {
	vals, directive := config.CompleteOutputFormat(nil, nil, "")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	assert.ElementsMatch(t, []string{"table", "json", "plain"}, vals)
}

func TestCompleteOutputFormat_Prefix(t *testing.T) {
	// prefix is unused by the function; return set must be identical regardless
	vals, directive := config.CompleteOutputFormat(nil, nil, "j")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	assert.ElementsMatch(t, []string{"table", "json", "plain"}, vals)
}

func TestRegisterFlagCompletions_FileFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "ripe"}
	config.RegisterFlags(cmd.PersistentFlags())
	config.RegisterFlagCompletions(cmd)

	for _, name := range []string{"cert", "key", "ca"} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, []string{"pem", "crt", "key"}, f.Annotations[cobra.BashCompFilenameExt], name)
	}
}
