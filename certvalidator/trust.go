// Package certvalidator provides offline X.509 chain building and revocation
// completeness verification for signature validation.
// This file contains the offline verifier holding the trust configuration.
package certvalidator

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultMaxChainLength bounds chain building depth.
const DefaultMaxChainLength = 16

// OfflineVerifier is the trust configuration of a validation run: trusted
// certificate sources, the validation time and chain building limits.
//
// An OfflineVerifier never fetches anything. It is read-only after
// construction and safe for concurrent use; every verification opens its own
// ValidationContext.
type OfflineVerifier struct {
	trusted        *ListCertificateSource
	trustedIDs     map[string]bool
	clock          clockwork.Clock
	validationTime *time.Time
	maxChainLength int
	logger         *slog.Logger
}

// VerifierOption configures an OfflineVerifier.
type VerifierOption func(*OfflineVerifier)

// WithClock sets the clock used when no fixed validation time is configured.
func WithClock(clock clockwork.Clock) VerifierOption {
	return func(v *OfflineVerifier) {
		v.clock = clock
	}
}

// WithValidationTime fixes the reference validation time.
func WithValidationTime(t time.Time) VerifierOption {
	return func(v *OfflineVerifier) {
		v.validationTime = &t
	}
}

// WithMaxChainLength sets the maximum number of certificates in a chain.
func WithMaxChainLength(n int) VerifierOption {
	return func(v *OfflineVerifier) {
		if n > 0 {
			v.maxChainLength = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) VerifierOption {
	return func(v *OfflineVerifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewOfflineVerifier creates a verifier trusting every certificate of the
// given sources.
func NewOfflineVerifier(trusted []*CertificateSource, opts ...VerifierOption) *OfflineVerifier {
	v := &OfflineVerifier{
		trusted:        NewListCertificateSource(trusted...),
		trustedIDs:     make(map[string]bool),
		clock:          clockwork.NewRealClock(),
		maxChainLength: DefaultMaxChainLength,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	for _, t := range v.trusted.AllCertificateTokens() {
		v.trustedIDs[t.ID()] = true
	}
	return v
}

// ValidationTime returns the reference time for revocation coverage.
func (v *OfflineVerifier) ValidationTime() time.Time {
	if v.validationTime != nil {
		return *v.validationTime
	}
	return v.clock.Now()
}

// IsTrusted reports whether token belongs to a trusted source.
func (v *OfflineVerifier) IsTrusted(token *CertificateToken) bool {
	if token == nil {
		return false
	}
	return v.trustedIDs[token.ID()]
}

// TrustedCertificates returns the trust anchors.
func (v *OfflineVerifier) TrustedCertificates() []*CertificateToken {
	return v.trusted.AllCertificateTokens()
}

// Logger returns the verifier's logger.
func (v *OfflineVerifier) Logger() *slog.Logger {
	return v.logger
}

// NewValidationContext opens a fresh, isolated validation pass pinned to the
// current validation time.
func (v *OfflineVerifier) NewValidationContext() *ValidationContext {
	return newValidationContext(v, v.ValidationTime())
}
