// Package certvalidator provides offline X.509 chain building and revocation
// completeness verification for signature validation.
// This file contains the validation context.
package certvalidator

import (
	"log/slog"
	"time"

	"github.com/georgepadayatti/adesverdict/certvalidator/revinfo"
)

// ValidationContext is one isolated offline verification pass. It is seeded
// with the document material (certificates, CRLs, OCSP responses) and the
// certificates to verify, then Validate builds every chain and collects the
// revocation tokens per certificate.
//
// A context belongs to a single goroutine and is validated at most once.
type ValidationContext struct {
	verifier *OfflineVerifier
	at       time.Time
	logger   *slog.Logger

	// Document material
	pool  *CertificatePool
	crls  *revinfo.CRLSource
	ocsps *revinfo.OCSPSource

	toVerify  []*CertificateToken
	validated bool

	// Results of Validate
	processed  []*CertificateToken
	issuers    map[string]*CertificateToken
	revocation map[string][]*revinfo.RevocationToken
}

func newValidationContext(v *OfflineVerifier, at time.Time) *ValidationContext {
	return &ValidationContext{
		verifier:   v,
		at:         at,
		logger:     v.logger,
		pool:       NewCertificatePool(),
		crls:       &revinfo.CRLSource{},
		ocsps:      &revinfo.OCSPSource{},
		issuers:    make(map[string]*CertificateToken),
		revocation: make(map[string][]*revinfo.RevocationToken),
	}
}

// ValidationTime returns the reference time of this pass.
func (c *ValidationContext) ValidationTime() time.Time {
	return c.at
}

// AddCertificateSource makes the certificates of source available for
// issuer lookups.
func (c *ValidationContext) AddCertificateSource(source *CertificateSource) {
	c.pool.RegisterSource(source)
}

// AddDocumentCertificateSource makes every certificate of a union available
// for issuer lookups.
func (c *ValidationContext) AddDocumentCertificateSource(list *ListCertificateSource) {
	c.pool.RegisterList(list)
}

// AddDocumentCRLSource adds CRLs as revocation evidence.
func (c *ValidationContext) AddDocumentCRLSource(source *revinfo.CRLSource) {
	c.crls.Merge(source)
}

// AddDocumentOCSPSource adds OCSP responses as revocation evidence.
func (c *ValidationContext) AddDocumentOCSPSource(source *revinfo.OCSPSource) {
	c.ocsps.Merge(source)
}

// AddCertificateTokenForVerification registers a certificate whose chain and
// revocation status must be established.
func (c *ValidationContext) AddCertificateTokenForVerification(token *CertificateToken) {
	if token == nil {
		return
	}
	c.toVerify = append(c.toVerify, token)
}

// Validate builds the chain of every registered certificate and looks up the
// revocation tokens of every certificate met on the way. A malformed CRL or
// OCSP response, or a chain longer than the configured maximum, is an error.
func (c *ValidationContext) Validate() error {
	if c.validated {
		return ErrContextValidated
	}
	c.validated = true

	for _, t := range c.verifier.TrustedCertificates() {
		c.pool.Register(t)
	}

	seen := make(map[string]bool)
	for _, token := range c.toVerify {
		if err := c.buildChain(c.pool.Register(token), seen); err != nil {
			return err
		}
	}

	for _, token := range c.processed {
		issuer := c.issuers[token.ID()]
		if issuer == nil {
			continue
		}
		tokens, err := c.lookupRevocation(token, issuer)
		if err != nil {
			return NewRevocationDataError(token.ID(), err)
		}
		c.revocation[token.ID()] = tokens
	}
	return nil
}

// buildChain walks from token towards a trust anchor or a self-signed
// terminus, recording each certificate and its issuer.
func (c *ValidationContext) buildChain(token *CertificateToken, seen map[string]bool) error {
	current := token
	for depth := 1; ; depth++ {
		if depth > c.verifier.maxChainLength {
			return NewPathBuildingError(token.ID(), ErrChainTooLong)
		}
		if seen[current.ID()] {
			// Already processed through another chain, or a cycle.
			return nil
		}
		seen[current.ID()] = true
		c.processed = append(c.processed, current)

		if c.verifier.IsTrusted(current) || current.IsSelfSigned() {
			return nil
		}
		issuer := c.selectIssuer(current)
		if issuer == nil {
			c.logger.Debug("issuer not found", slog.String("certificate", current.String()))
			return nil
		}
		c.issuers[current.ID()] = issuer
		current = issuer
	}
}

// selectIssuer prefers a trusted issuer over any other candidate.
func (c *ValidationContext) selectIssuer(token *CertificateToken) *CertificateToken {
	issuers := c.pool.FindIssuers(token)
	for _, issuer := range issuers {
		if c.verifier.IsTrusted(issuer) {
			return issuer
		}
	}
	if len(issuers) > 0 {
		return issuers[0]
	}
	return nil
}

func (c *ValidationContext) lookupRevocation(token, issuer *CertificateToken) ([]*revinfo.RevocationToken, error) {
	crlTokens, err := c.crls.RevocationTokens(token.cert, issuer.cert)
	if err != nil {
		return nil, err
	}
	ocspTokens, err := c.ocsps.RevocationTokens(token.cert, issuer.cert)
	if err != nil {
		return nil, err
	}
	return append(crlTokens, ocspTokens...), nil
}

// ProcessedCertificates returns every certificate met while building chains.
func (c *ValidationContext) ProcessedCertificates() []*CertificateToken {
	return append([]*CertificateToken(nil), c.processed...)
}

// Issuer returns the issuer found for token, or nil.
func (c *ValidationContext) Issuer(token *CertificateToken) *CertificateToken {
	return c.issuers[token.ID()]
}

// Chain returns token followed by its issuers up to the chain terminus.
func (c *ValidationContext) Chain(token *CertificateToken) []*CertificateToken {
	var chain []*CertificateToken
	visited := make(map[string]bool)
	for t := c.pool.Get(token.ID()); t != nil && !visited[t.ID()]; t = c.issuers[t.ID()] {
		visited[t.ID()] = true
		chain = append(chain, t)
	}
	return chain
}

// RevocationData returns the revocation tokens found for token.
func (c *ValidationContext) RevocationData(token *CertificateToken) []*revinfo.RevocationToken {
	return c.revocation[token.ID()]
}

// IsTrusted reports whether token is a trust anchor.
func (c *ValidationContext) IsTrusted(token *CertificateToken) bool {
	return c.verifier.IsTrusted(token)
}

// IsRevocationExempt reports whether token needs no revocation proof: trust
// anchors first, then certificates carrying id-pkix-ocsp-nocheck.
func (c *ValidationContext) IsRevocationExempt(token *CertificateToken) bool {
	if c.verifier.IsTrusted(token) {
		return true
	}
	return token.IsNoRevocationCheck()
}

// HasCoveringRevocationData reports whether at least one revocation token
// for token is valid at the validation time.
func (c *ValidationContext) HasCoveringRevocationData(token *CertificateToken) bool {
	for _, r := range c.revocation[token.ID()] {
		if r.Covers(c.at) {
			return true
		}
	}
	return false
}

// CheckAllRequiredRevocationDataPresent returns a MissingRevocationError
// naming every non exempt certificate without covering revocation data.
func (c *ValidationContext) CheckAllRequiredRevocationDataPresent() error {
	if !c.validated {
		return ErrContextNotValidated
	}
	var missing []string
	for _, token := range c.processed {
		if c.IsRevocationExempt(token) {
			continue
		}
		if !c.HasCoveringRevocationData(token) {
			missing = append(missing, token.ID())
		}
	}
	if len(missing) > 0 {
		return &MissingRevocationError{CertificateIDs: missing}
	}
	return nil
}

// IsAllRequiredRevocationDataPresent reports whether every non exempt
// certificate is covered.
func (c *ValidationContext) IsAllRequiredRevocationDataPresent() bool {
	err := c.CheckAllRequiredRevocationDataPresent()
	if err != nil {
		c.logger.Debug("revocation data incomplete", slog.String("reason", err.Error()))
		return false
	}
	return true
}
