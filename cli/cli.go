// Package cli provides the command-line interface for validating AdES
// signatures.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Version information
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "adesverdict",
		Short: "Offline AdES signature validation",
		Long: `adesverdict - offline AdES signature validation

Validates extracted CAdES, XAdES, JAdES and PAdES signatures against a
validation policy and a set of trust anchors. It reports the ETSI indication,
the baseline level reached and the qualification of each signature.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.SetVersionTemplate("adesverdict version {{.Version}}\n")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newValidateCmd(),
		newPolicyCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command with the given output streams.
func Execute(stdout, stderr io.Writer) error {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "adesverdict version %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build time: %s\n", BuildTime)
			return nil
		},
	}
}
