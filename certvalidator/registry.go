// Package certvalidator provides offline X.509 chain building and revocation
// completeness verification for signature validation.
// This file contains the certificate pool and issuer lookup.
package certvalidator

import (
	"bytes"
)

// CertificatePool indexes certificate tokens for issuer lookups.
// It is owned by a single ValidationContext and is not safe for concurrent use.
type CertificatePool struct {
	tokens []*CertificateToken
	byID   map[string]*CertificateToken

	// Index by raw subject for name based issuer lookups
	subjectMap map[string][]*CertificateToken

	// Index by subject key identifier
	keyIDMap map[string][]*CertificateToken
}

// NewCertificatePool creates an empty pool.
func NewCertificatePool() *CertificatePool {
	return &CertificatePool{
		byID:       make(map[string]*CertificateToken),
		subjectMap: make(map[string][]*CertificateToken),
		keyIDMap:   make(map[string][]*CertificateToken),
	}
}

// Register adds a token to the pool.
// Returns the pooled token, which is the earlier one for a known certificate.
func (p *CertificatePool) Register(token *CertificateToken) *CertificateToken {
	if existing, ok := p.byID[token.ID()]; ok {
		return existing
	}
	p.byID[token.ID()] = token
	p.tokens = append(p.tokens, token)

	subjectKey := string(token.cert.RawSubject)
	p.subjectMap[subjectKey] = append(p.subjectMap[subjectKey], token)

	if len(token.cert.SubjectKeyId) > 0 {
		keyIDKey := string(token.cert.SubjectKeyId)
		p.keyIDMap[keyIDKey] = append(p.keyIDMap[keyIDKey], token)
	}
	return token
}

// RegisterSource adds every token of a source.
func (p *CertificatePool) RegisterSource(source *CertificateSource) {
	for _, t := range source.Certificates() {
		p.Register(t)
	}
}

// RegisterList adds every token of a union of sources.
func (p *CertificatePool) RegisterList(list *ListCertificateSource) {
	if list == nil {
		return
	}
	for _, t := range list.AllCertificateTokens() {
		p.Register(t)
	}
}

// Get returns the pooled token with the given id.
func (p *CertificatePool) Get(id string) *CertificateToken {
	return p.byID[id]
}

// Len returns the number of pooled certificates.
func (p *CertificatePool) Len() int {
	return len(p.tokens)
}

// FindIssuers returns the pooled tokens that issued token: the candidate
// must match by key identifier (or by name when identifiers are missing) and
// its key must verify the token's signature. A self-signed token is never
// returned as its own issuer.
func (p *CertificatePool) FindIssuers(token *CertificateToken) []*CertificateToken {
	var candidates []*CertificateToken
	if aki := token.cert.AuthorityKeyId; len(aki) > 0 {
		candidates = append(candidates, p.keyIDMap[string(aki)]...)
	}
	for _, c := range p.subjectMap[string(token.cert.RawIssuer)] {
		if isPotentialIssuer(c, token) && !containsToken(candidates, c) {
			candidates = append(candidates, c)
		}
	}

	var issuers []*CertificateToken
	for _, c := range candidates {
		if c.Equal(token) {
			continue
		}
		if token.IsSignedBy(c) {
			issuers = append(issuers, c)
		}
	}
	return issuers
}

// isPotentialIssuer checks if issuer could have issued token.
func isPotentialIssuer(issuer, token *CertificateToken) bool {
	cert := token.cert
	// Check authority key identifier if present
	if len(cert.AuthorityKeyId) > 0 && len(issuer.cert.SubjectKeyId) > 0 {
		return bytes.Equal(cert.AuthorityKeyId, issuer.cert.SubjectKeyId)
	}

	// Fallback to issuer name match
	return bytes.Equal(cert.RawIssuer, issuer.cert.RawSubject)
}

func containsToken(tokens []*CertificateToken, token *CertificateToken) bool {
	for _, t := range tokens {
		if t.Equal(token) {
			return true
		}
	}
	return false
}
