// Command adesverdict validates AdES signatures offline.
//
// Usage:
//
//	adesverdict <command> [flags] <args>
//
// Commands:
//
//	validate  Validate the signatures described by a signature document
//	policy    Print or check a validation policy
//	version   Show version information
//
// Examples:
//
//	# Validate against a trust anchor
//	adesverdict validate --trust-anchor root.pem signatures.yaml
//
//	# Validate with a configuration file and JSON output
//	adesverdict validate --config adesverdict.yaml --json signatures.yaml
package main

import (
	"fmt"
	"os"

	"github.com/georgepadayatti/adesverdict/cli"
)

// These variables are set at build time using ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/adesverdict
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cli.Version = version
	cli.BuildTime = buildTime

	if err := cli.Execute(os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
