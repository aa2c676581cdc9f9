// Package certvalidator provides offline X.509 chain building and revocation
// completeness verification for signature validation.
// This file contains certificate sources.
package certvalidator

import (
	"crypto/x509"
	"slices"
)

// CertificateOrigin identifies where in a signature a certificate was found.
type CertificateOrigin string

const (
	OriginSignedData        CertificateOrigin = "SIGNED_DATA"
	OriginKeyInfo           CertificateOrigin = "KEY_INFO"
	OriginCertificateValues CertificateOrigin = "CERTIFICATE_VALUES"
	OriginAttrAuthorities   CertificateOrigin = "ATTR_AUTHORITIES_CERT_VALUES"
	OriginTimestampValData  CertificateOrigin = "TIMESTAMP_VALIDATION_DATA"
	OriginDSSDictionary     CertificateOrigin = "DSS_DICTIONARY"
	OriginVRIDictionary     CertificateOrigin = "VRI_DICTIONARY"
	OriginX5C               CertificateOrigin = "X5C"
	OriginEtsiU             CertificateOrigin = "ETSI_U"
	OriginTimestamp         CertificateOrigin = "TIMESTAMP"
	OriginCounterSignature  CertificateOrigin = "COUNTER_SIGNATURE"
	OriginTrustedStore      CertificateOrigin = "TRUSTED_STORE"
	OriginOther             CertificateOrigin = "OTHER"
)

// CertificateSource is an ordered, de-duplicated set of certificate tokens
// together with the origins each token was found under.
//
// A source is assembled once by whoever extracts the signature and is only
// read afterwards.
type CertificateSource struct {
	tokens  []*CertificateToken
	index   map[string]int
	origins map[string][]CertificateOrigin
}

// NewCertificateSource creates an empty source. The zero value is also
// ready to use.
func NewCertificateSource() *CertificateSource {
	return &CertificateSource{
		index:   make(map[string]int),
		origins: make(map[string][]CertificateOrigin),
	}
}

// Add registers a token under an origin and returns the stored token.
// Adding an already known certificate only records the additional origin.
func (s *CertificateSource) Add(token *CertificateToken, origin CertificateOrigin) *CertificateToken {
	if token == nil {
		return nil
	}
	if s.index == nil {
		s.index = make(map[string]int)
		s.origins = make(map[string][]CertificateOrigin)
	}
	if i, ok := s.index[token.ID()]; ok {
		if !slices.Contains(s.origins[token.ID()], origin) {
			s.origins[token.ID()] = append(s.origins[token.ID()], origin)
		}
		return s.tokens[i]
	}
	s.index[token.ID()] = len(s.tokens)
	s.tokens = append(s.tokens, token)
	s.origins[token.ID()] = []CertificateOrigin{origin}
	return token
}

// AddCertificate wraps cert in a token and registers it.
func (s *CertificateSource) AddCertificate(cert *x509.Certificate, origin CertificateOrigin) *CertificateToken {
	return s.Add(NewCertificateToken(cert), origin)
}

// Certificates returns the tokens in insertion order.
func (s *CertificateSource) Certificates() []*CertificateToken {
	if s == nil {
		return nil
	}
	return slices.Clone(s.tokens)
}

// CertificatesByOrigin returns the tokens found under the given origin.
func (s *CertificateSource) CertificatesByOrigin(origin CertificateOrigin) []*CertificateToken {
	if s == nil {
		return nil
	}
	var out []*CertificateToken
	for _, t := range s.tokens {
		if slices.Contains(s.origins[t.ID()], origin) {
			out = append(out, t)
		}
	}
	return out
}

// Origins returns the origins recorded for a token.
func (s *CertificateSource) Origins(token *CertificateToken) []CertificateOrigin {
	if s == nil || token == nil {
		return nil
	}
	return slices.Clone(s.origins[token.ID()])
}

// Contains reports whether the source holds a certificate equal to token.
func (s *CertificateSource) Contains(token *CertificateToken) bool {
	if s == nil || token == nil {
		return false
	}
	_, ok := s.index[token.ID()]
	return ok
}

// Len returns the number of distinct certificates.
func (s *CertificateSource) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tokens)
}

// IsEmpty reports whether the source holds no certificates.
func (s *CertificateSource) IsEmpty() bool {
	return s.Len() == 0
}

// ListCertificateSource is a union of certificate sources.
type ListCertificateSource struct {
	sources []*CertificateSource
}

// NewListCertificateSource creates a union of the given sources.
func NewListCertificateSource(sources ...*CertificateSource) *ListCertificateSource {
	l := &ListCertificateSource{}
	for _, s := range sources {
		l.Add(s)
	}
	return l
}

// Add appends a source to the union. Nil sources are skipped.
func (l *ListCertificateSource) Add(source *CertificateSource) {
	if source != nil {
		l.sources = append(l.sources, source)
	}
}

// AddAll appends every source of another union.
func (l *ListCertificateSource) AddAll(other *ListCertificateSource) {
	if other == nil {
		return
	}
	for _, s := range other.sources {
		l.Add(s)
	}
}

// Sources returns the member sources.
func (l *ListCertificateSource) Sources() []*CertificateSource {
	return slices.Clone(l.sources)
}

// AllCertificateTokens returns the distinct tokens across all sources,
// ordered by first appearance.
func (l *ListCertificateSource) AllCertificateTokens() []*CertificateToken {
	seen := make(map[string]bool)
	var out []*CertificateToken
	for _, s := range l.sources {
		for _, t := range s.tokens {
			if seen[t.ID()] {
				continue
			}
			seen[t.ID()] = true
			out = append(out, t)
		}
	}
	return out
}

// NumberOfCertificates returns the count of distinct certificates.
func (l *ListCertificateSource) NumberOfCertificates() int {
	return len(l.AllCertificateTokens())
}

// IsEmpty reports whether no source holds a certificate.
func (l *ListCertificateSource) IsEmpty() bool {
	for _, s := range l.sources {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}

// IsAllSelfSigned reports whether the union is non-empty and every
// certificate in it is self-signed.
func (l *ListCertificateSource) IsAllSelfSigned() bool {
	tokens := l.AllCertificateTokens()
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !t.IsSelfSigned() {
			return false
		}
	}
	return true
}

// Contains reports whether any member source holds token.
func (l *ListCertificateSource) Contains(token *CertificateToken) bool {
	for _, s := range l.sources {
		if s.Contains(token) {
			return true
		}
	}
	return false
}
