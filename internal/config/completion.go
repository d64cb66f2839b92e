package config

import "github.com/spf13/cobra"

// CompleteOutputFormat provides shell completion candidates for the --output flag.
func CompleteOutputFormat(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"table", "json", "plain"}, cobra.ShellCompDirectiveNoFileComp
}

// RegisterFlagCompletions wires completion for the persistent flags of cmd.
func RegisterFlagCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("output", CompleteOutputFormat)
	_ = cmd.MarkPersistentFlagFilename("config", "yaml", "yml")
	for _, name := range []string{"cert", "key", "ca"} {
		_ = cmd.MarkPersistentFlagFilename(name, "pem", "crt", "key")
	}
}
