// Package cli provides the Cobra command tree and output wiring for ripe.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/polarityio/ripe/internal/config"
	"github.com/polarityio/ripe/internal/httpclient"
	"github.com/polarityio/ripe/internal/version"
)

// newRootCmd builds the top-level Cobra command with the production HTTP client.
func newRootCmd() *cobra.Command {
	return newRootCmdWithClient(httpclient.New)
}

// newRootCmdWithClient builds the command tree; newClient constructs the
// registry HTTP client from the resolved options.
// Callers must set stdout/stderr via cmd.SetOut / cmd.SetErr before Execute.
func newRootCmdWithClient(newClient clientFactory) *cobra.Command {
	// d is populated by PersistentPreRunE before any subcommand's RunE runs.
	// Cobra only runs the innermost PersistentPreRunE in the chain, so a
	// subcommand that defines its own hook opts out of buildDeps.
	d := &deps{newClient: newClient}

	cmd := &cobra.Command{
		Use:   "ripe",
		Short: "Enrich IP addresses, CIDR blocks and ASNs with RIPE registry data",
		Long: `ripe queries the RIPE database REST API for each input identifier and
prints the registered network name, description and country.

At most 10 requests are in flight at once. A batch fails as a whole on the
first request error; partial results are never printed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == cobra.ShellCompRequestCmd || cmd.Name() == cobra.ShellCompNoDescRequestCmd {
				return nil
			}
			return d.build(cmd.Flags(), cmd.ErrOrStderr())
		},
	}

	config.RegisterFlags(cmd.PersistentFlags())
	config.RegisterFlagCompletions(cmd)

	cmd.Version = version.Version
	cmd.SetVersionTemplate("ripe version {{.Version}}\n")

	cmd.AddGroup(
		&cobra.Group{ID: "lookup", Title: "Lookup Commands:"},
		&cobra.Group{ID: "utility", Title: "Utility Commands:"},
	)
	cmd.SetHelpCommandGroupID("utility")

	cmd.AddCommand(
		newLookupCmd(d),
		newVersionCmd(d),
		newCompletionCmd(),
	)

	return cmd
}

// Execute builds the root command and runs it with os.Args under ctx.
func Execute(ctx context.Context, stdout, stderr io.Writer) error {
	cmd := newRootCmd()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}
