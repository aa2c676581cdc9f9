package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/georgepadayatti/adesverdict/config"
	"github.com/georgepadayatti/adesverdict/validation"
	"github.com/georgepadayatti/adesverdict/validation/metrics"
	"github.com/georgepadayatti/adesverdict/validation/process"
)

// ErrNotPassed is returned by validate when a signature did not pass.
var ErrNotPassed = errors.New("not all signatures passed validation")

// ValidateOptions contains options for the validate command.
type ValidateOptions struct {
	ConfigFile     string
	PolicyFile     string
	TrustAnchors   []string
	ValidationTime string
	Language       string
	LogLevel       string
	MetricsFile    string
	JSONOutput     bool
	Verbose        bool
}

// ValidateOutput is the JSON output of the validate command.
type ValidateOutput struct {
	Document string               `json:"document"`
	Policy   string               `json:"policy"`
	Reports  []*validation.Report `json:"reports"`
}

func newValidateCmd() *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <signatures.yaml>",
		Short: "Validate the signatures described by a signature document",
		Long: `Validate the signatures described by a signature document.

The document lists the extracted signatures with their certificates,
revocation data, timestamps and signed attributes. Referenced files are
resolved relative to the document.

Exits with an error unless every signature is PASSED.`,
		Example: `  adesverdict validate --trust-anchor root.pem signatures.yaml
  adesverdict validate --config adesverdict.yaml --json signatures.yaml
  adesverdict validate --policy strict.xml --validation-time 2024-01-01T00:00:00Z --trust-anchor root.pem signatures.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "path to the configuration file")
	cmd.Flags().StringVar(&opts.PolicyFile, "policy", "", "validation policy (YAML, or XML when ending in .xml)")
	cmd.Flags().StringArrayVar(&opts.TrustAnchors, "trust-anchor", nil, "trust anchor certificate file (repeatable)")
	cmd.Flags().StringVar(&opts.ValidationTime, "validation-time", "", "validation time (RFC 3339)")
	cmd.Flags().StringVar(&opts.Language, "lang", "", "language of the report messages")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write validation metrics in Prometheus text format to this file")
	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "output results as JSON")
	cmd.Flags().BoolVar(&opts.Verbose, "verbose", false, "print every check record")

	return cmd
}

// loadConfig reads the configuration file, when given, and applies the
// command line overrides.
func (o *ValidateOptions) loadConfig() (*config.AppConfig, error) {
	cfg := &config.AppConfig{}
	if o.ConfigFile != "" {
		var err error
		if cfg, err = config.LoadAppConfig(o.ConfigFile); err != nil {
			return nil, err
		}
	}
	cfg.SetDefaults()

	if o.PolicyFile != "" {
		cfg.Validation.Policy = o.PolicyFile
	}
	cfg.Validation.TrustAnchors = append(cfg.Validation.TrustAnchors, o.TrustAnchors...)
	if o.ValidationTime != "" {
		cfg.Validation.ValidationTime = o.ValidationTime
	}
	if o.Language != "" {
		cfg.Validation.Language = o.Language
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if err := cfg.Validation.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions, document string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := cfg.Logging.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	verifier, err := cfg.Validation.BuildOfflineVerifier(logger)
	if err != nil {
		return err
	}
	p, err := cfg.Validation.LoadPolicy()
	if err != nil {
		return err
	}
	lang, err := cfg.Validation.LanguageTag()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	validator, err := validation.NewValidator(p, verifier,
		validation.WithLogger(logger),
		validation.WithLanguage(lang),
		validation.WithConcurrency(cfg.Validation.Concurrency),
		validation.WithMetrics(metrics.New(reg)),
	)
	if err != nil {
		return err
	}

	sigs, err := LoadDocument(document)
	if err != nil {
		return err
	}
	reports, err := validator.ValidateAll(cmd.Context(), sigs)
	if err != nil {
		return err
	}

	if opts.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsFile, reg); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	output := &ValidateOutput{Document: document, Policy: p.Name, Reports: reports}
	if opts.JSONOutput {
		if err := outputJSON(cmd.OutOrStdout(), output); err != nil {
			return err
		}
	} else {
		outputText(cmd.OutOrStdout(), output, opts.Verbose)
	}

	for _, r := range reports {
		if !r.IsPassed() {
			return ErrNotPassed
		}
	}
	return nil
}

func outputJSON(w io.Writer, output *ValidateOutput) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	return nil
}

// outputText writes the results in human-readable text format.
func outputText(w io.Writer, output *ValidateOutput, verbose bool) {
	fmt.Fprintf(w, "Signature Validation Results\n")
	fmt.Fprintf(w, "============================\n\n")
	fmt.Fprintf(w, "Document: %s\n", output.Document)
	fmt.Fprintf(w, "Policy: %s\n\n", output.Policy)

	fmt.Fprintf(w, "Found %d signature(s)\n\n", len(output.Reports))

	for i, r := range output.Reports {
		fmt.Fprintf(w, "Signature #%d\n", i+1)
		fmt.Fprintf(w, "------------\n")

		fmt.Fprintf(w, "  ID: %s\n", r.SignatureID)
		fmt.Fprintf(w, "  Status: %s %s\n", getStatusIcon(r.Indication), r.Indication)
		if r.SubIndication != "" {
			fmt.Fprintf(w, "  Sub-indication: %s\n", r.SubIndication)
		}
		fmt.Fprintf(w, "  Level: %s\n", r.LevelName)
		fmt.Fprintf(w, "  Qualification: %s\n", r.Qualification.Readable())
		fmt.Fprintf(w, "  Validation Time: %s\n", r.ValidationTime.Format(time.RFC3339))

		if verbose && r.Conclusion != nil {
			fmt.Fprintf(w, "\n  Checks:\n")
			writeRecords(w, r.Conclusion, "    ")
		}

		for _, ts := range r.Timestamps {
			fmt.Fprintf(w, "\n  Timestamp %s (%s): %s %s\n", ts.ID, ts.Type,
				getStatusIcon(ts.Conclusion.Indication), ts.Conclusion.Indication)
		}

		var errs, warnings []process.Message
		collectMessages(r.Conclusion, &errs, &warnings)
		for _, ts := range r.Timestamps {
			collectMessages(ts.Conclusion, &errs, &warnings)
		}

		// Errors
		if len(errs) > 0 {
			fmt.Fprintf(w, "\n  Errors:\n")
			for _, e := range errs {
				fmt.Fprintf(w, "    - %s\n", e.Value)
			}
		}

		// Warnings
		if len(warnings) > 0 {
			fmt.Fprintf(w, "\n  Warnings:\n")
			for _, m := range warnings {
				fmt.Fprintf(w, "    - %s\n", m.Value)
			}
		}

		fmt.Fprintln(w)
	}
}

func writeRecords(w io.Writer, c *process.Conclusion, indent string) {
	fmt.Fprintf(w, "%s%s: %s\n", indent, c.Title, c.Indication)
	child := 0
	for _, rec := range c.Records {
		fmt.Fprintf(w, "%s  [%s] %s\n", indent, rec.Status, rec.Name)
		if rec.Key == string(process.TagChainPassed) && child < len(c.Children) {
			writeRecords(w, c.Children[child], indent+"    ")
			child++
		}
	}
}

func collectMessages(c *process.Conclusion, errs, warnings *[]process.Message) {
	if c == nil {
		return
	}
	*errs = append(*errs, c.Errors...)
	*warnings = append(*warnings, c.Warnings...)
	for _, child := range c.Children {
		collectMessages(child, errs, warnings)
	}
}

// getStatusIcon returns an icon for the indication.
func getStatusIcon(indication process.Indication) string {
	switch indication {
	case process.IndicationPassed:
		return "[OK]"
	case process.IndicationFailed:
		return "[FAIL]"
	case process.IndicationIndeterminate:
		return "[WARN]"
	default:
		return "[?]"
	}
}
