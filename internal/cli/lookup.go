package cli

import (
	"github.com/spf13/cobra"
)

func newLookupCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup [ip|cidr|asn...]",
		Short: "Look up registration data for IP addresses, CIDR blocks and ASNs",
		Long: `Look up each identifier in the RIPE database and print its network name,
description and country.

Identifiers are read from the arguments or, when none are given, from stdin,
one per line. Blank lines and '#' comments are ignored.`,
		Example: `  ripe lookup 193.0.6.139
  ripe lookup 2001:67c:2e8::/48 AS3333 -o json
  cat addresses.txt | ripe lookup -o plain --defang`,
		GroupID: "lookup",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := resolveInputs(cmd, args)
			if err != nil {
				return err
			}
			result, err := d.lookup(cmd.Context(), inputs)
			if err != nil {
				return err
			}
			return d.writeResult(cmd.OutOrStdout(), result)
		},
	}
}
