// Package config loads the application configuration: logging, the
// validation policy and the offline trust configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/georgepadayatti/adesverdict/certvalidator"
	"github.com/georgepadayatti/adesverdict/keys"
	"github.com/georgepadayatti/adesverdict/validation/policy"
)

// Common errors
var (
	ErrConfigurationError   = errors.New("configuration error")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidValue         = errors.New("invalid value")
)

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message, Err: ErrConfigurationError}
}

func wrapConfigError(field string, sentinel error, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...), Err: sentinel}
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level" json:"level,omitempty"`

	// Format is the log format (text, json).
	Format string `yaml:"format" json:"format,omitempty"`

	// Output is the log output (stdout, stderr, or file path).
	Output string `yaml:"output" json:"output,omitempty"`
}

// SetDefaults sets default values for logging configuration.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
}

// Validate checks the level and format names.
func (c *LoggingConfig) Validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return wrapConfigError("logging.level", ErrInvalidValue, "unknown log level %q", c.Level)
	}
	switch c.Format {
	case "text", "json":
	default:
		return wrapConfigError("logging.format", ErrInvalidValue, "unknown log format %q", c.Format)
	}
	return nil
}

// NewLogger builds the logger. stderr receives the output when Output is
// "stderr"; a file output is opened for appending and closed by the
// returned function.
func (c *LoggingConfig) NewLogger(stderr io.Writer) (*slog.Logger, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	var (
		w       io.Writer
		closeFn = func() error { return nil }
	)
	switch c.Output {
	case "stderr":
		w = stderr
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log output: %w", err)
		}
		w, closeFn = f, f.Close
	}

	var level slog.Level
	_ = level.UnmarshalText([]byte(c.Level))
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), closeFn, nil
}

// TrustStoreConfig is a PKCS#12 file of trust anchors.
type TrustStoreConfig struct {
	// File is the path to the PKCS#12 file.
	File string `yaml:"file" json:"file"`

	// Password protects the file.
	Password string `yaml:"password" json:"password,omitempty"`
}

// ValidationConfig contains validation configuration.
type ValidationConfig struct {
	// Policy is the path to a YAML or XML validation policy. The built-in
	// policy is used when empty.
	Policy string `yaml:"policy" json:"policy,omitempty"`

	// TrustAnchors contains paths to trust anchor certificate files.
	TrustAnchors []string `yaml:"trust-anchors" json:"trust_anchors,omitempty"`

	// TrustStores contains PKCS#12 trust stores.
	TrustStores []TrustStoreConfig `yaml:"trust-stores" json:"trust_stores,omitempty"`

	// ValidationTime fixes the validation time (RFC 3339). Current time when empty.
	ValidationTime string `yaml:"validation-time" json:"validation_time,omitempty"`

	// MaxChainLength bounds chain building.
	MaxChainLength int `yaml:"max-chain-length" json:"max_chain_length,omitempty"`

	// Concurrency bounds the number of signatures validated at once.
	Concurrency int `yaml:"concurrency" json:"concurrency,omitempty"`

	// Language of the report messages (BCP 47).
	Language string `yaml:"language" json:"language,omitempty"`
}

// SetDefaults sets default values for validation configuration.
func (c *ValidationConfig) SetDefaults() {
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
	if c.Language == "" {
		c.Language = "en"
	}
}

// Validate validates the validation configuration.
func (c *ValidationConfig) Validate() error {
	if len(c.TrustAnchors) == 0 && len(c.TrustStores) == 0 {
		return wrapConfigError("validation.trust-anchors", ErrMissingRequiredField,
			"at least one trust anchor or trust store is required")
	}
	for i, ts := range c.TrustStores {
		if ts.File == "" {
			return wrapConfigError(fmt.Sprintf("validation.trust-stores[%d].file", i), ErrMissingRequiredField,
				"required field is missing")
		}
	}
	if _, err := c.Time(); err != nil {
		return err
	}
	if _, err := c.LanguageTag(); err != nil {
		return err
	}
	if c.MaxChainLength < 0 {
		return wrapConfigError("validation.max-chain-length", ErrInvalidValue, "must not be negative")
	}
	if c.Concurrency < 0 {
		return wrapConfigError("validation.concurrency", ErrInvalidValue, "must not be negative")
	}
	return nil
}

// Time returns the fixed validation time, or nil.
func (c *ValidationConfig) Time() (*time.Time, error) {
	if c.ValidationTime == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, c.ValidationTime)
	if err != nil {
		return nil, wrapConfigError("validation.validation-time", ErrInvalidValue,
			"expected an RFC 3339 time, got %q", c.ValidationTime)
	}
	return &t, nil
}

// LanguageTag returns the report language.
func (c *ValidationConfig) LanguageTag() (language.Tag, error) {
	if c.Language == "" {
		return language.English, nil
	}
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.Und, wrapConfigError("validation.language", ErrInvalidValue,
			"unknown language %q", c.Language)
	}
	return tag, nil
}

// LoadPolicy loads the configured policy. Files ending in .xml are read as
// constraint documents, anything else as YAML.
func (c *ValidationConfig) LoadPolicy() (*policy.Policy, error) {
	switch {
	case c.Policy == "":
		return policy.Default(), nil
	case strings.EqualFold(filepath.Ext(c.Policy), ".xml"):
		return policy.LoadXML(c.Policy)
	default:
		return policy.Load(c.Policy)
	}
}

// LoadTrustAnchors loads the certificates of every trust anchor file and
// trust store into one trusted source.
func (c *ValidationConfig) LoadTrustAnchors() (*certvalidator.CertificateSource, error) {
	source := certvalidator.NewCertificateSource()

	certs, err := keys.LoadCertsFromPemDerFiles(c.TrustAnchors)
	if err != nil {
		return nil, fmt.Errorf("failed to load trust anchors: %w", err)
	}
	for _, cert := range certs {
		source.AddCertificate(cert, certvalidator.OriginTrustedStore)
	}

	for _, ts := range c.TrustStores {
		certs, err := keys.LoadTrustStore(ts.File, ts.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to load trust store %s: %w", ts.File, err)
		}
		for _, cert := range certs {
			source.AddCertificate(cert, certvalidator.OriginTrustedStore)
		}
	}
	return source, nil
}

// BuildOfflineVerifier creates the offline verifier described by c.
func (c *ValidationConfig) BuildOfflineVerifier(logger *slog.Logger) (*certvalidator.OfflineVerifier, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	trusted, err := c.LoadTrustAnchors()
	if err != nil {
		return nil, err
	}

	opts := []certvalidator.VerifierOption{certvalidator.WithLogger(logger)}
	if t, _ := c.Time(); t != nil {
		opts = append(opts, certvalidator.WithValidationTime(*t))
	}
	if c.MaxChainLength > 0 {
		opts = append(opts, certvalidator.WithMaxChainLength(c.MaxChainLength))
	}
	return certvalidator.NewOfflineVerifier([]*certvalidator.CertificateSource{trusted}, opts...), nil
}

// AppConfig contains the complete application configuration.
type AppConfig struct {
	// Logging contains logging configuration.
	Logging *LoggingConfig `yaml:"logging" json:"logging,omitempty"`

	// Validation contains validation configuration.
	Validation *ValidationConfig `yaml:"validation" json:"validation,omitempty"`
}

// SetDefaults fills in missing sections and values.
func (c *AppConfig) SetDefaults() {
	if c.Logging == nil {
		c.Logging = &LoggingConfig{}
	}
	c.Logging.SetDefaults()
	if c.Validation == nil {
		c.Validation = &ValidationConfig{}
	}
	c.Validation.SetDefaults()
}

// LoadAppConfig loads the complete application configuration from a file.
func LoadAppConfig(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseAppConfig(data)
}

// ParseAppConfig parses configuration from YAML data. Unknown keys are
// rejected.
func ParseAppConfig(data []byte) (*AppConfig, error) {
	var config AppConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ConfigError{Message: fmt.Sprintf("failed to parse config: %v", err), Err: ErrConfigurationError}
	}

	config.SetDefaults()
	if err := config.Logging.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
