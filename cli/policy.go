package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/georgepadayatti/adesverdict/validation/policy"
)

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print the built-in validation policy",
		Long: `Print the built-in validation policy as YAML.

The output is a starting point for a custom policy passed to
'adesverdict validate --policy'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(policy.DefaultYAML())
			return err
		},
	}
	cmd.AddCommand(newPolicyCheckCmd())
	return cmd
}

func newPolicyCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <policy.yaml|policy.xml>",
		Short: "Check that a validation policy can be loaded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				p   *policy.Policy
				err error
			)
			if strings.EqualFold(filepath.Ext(args[0]), ".xml") {
				p, err = policy.LoadXML(args[0])
			} else {
				p, err = policy.Load(args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[OK] %s (%d custom constraints)\n", args[0], len(p.Custom))
			return nil
		},
	}
}
