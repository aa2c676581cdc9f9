// Package revinfo provides revocation evidence handling for certificate validation.
package revinfo

import (
	"bytes"
	"crypto/x509"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"time"

	"golang.org/x/crypto/ocsp"
)

// Common errors
var (
	ErrMalformedCRL     = errors.New("malformed CRL")
	ErrMalformedOCSP    = errors.New("malformed OCSP response")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrIssuerMismatch   = errors.New("issuer mismatch")
	ErrNoIssuer         = errors.New("issuer certificate required")
)

// RevocationReason represents the reason for certificate revocation.
type RevocationReason int

const (
	ReasonUnspecified          RevocationReason = 0
	ReasonKeyCompromise        RevocationReason = 1
	ReasonCACompromise         RevocationReason = 2
	ReasonAffiliationChanged   RevocationReason = 3
	ReasonSuperseded           RevocationReason = 4
	ReasonCessationOfOperation RevocationReason = 5
	ReasonCertificateHold      RevocationReason = 6
	ReasonRemoveFromCRL        RevocationReason = 8
	ReasonPrivilegeWithdrawn   RevocationReason = 9
	ReasonAACompromise         RevocationReason = 10
)

// String returns the string representation of a revocation reason.
func (r RevocationReason) String() string {
	switch r {
	case ReasonUnspecified:
		return "unspecified"
	case ReasonKeyCompromise:
		return "keyCompromise"
	case ReasonCACompromise:
		return "cACompromise"
	case ReasonAffiliationChanged:
		return "affiliationChanged"
	case ReasonSuperseded:
		return "superseded"
	case ReasonCessationOfOperation:
		return "cessationOfOperation"
	case ReasonCertificateHold:
		return "certificateHold"
	case ReasonRemoveFromCRL:
		return "removeFromCRL"
	case ReasonPrivilegeWithdrawn:
		return "privilegeWithdrawn"
	case ReasonAACompromise:
		return "aACompromise"
	default:
		return fmt.Sprintf("unknown(%d)", r)
	}
}

// RevocationStatus represents the revocation status of a certificate.
type RevocationStatus int

const (
	StatusUnknown RevocationStatus = iota
	StatusGood
	StatusRevoked
)

// String returns the string representation of a revocation status.
func (s RevocationStatus) String() string {
	switch s {
	case StatusGood:
		return "good"
	case StatusRevoked:
		return "revoked"
	default:
		return "unknown"
	}
}

// Kind distinguishes CRL and OCSP evidence.
type Kind string

const (
	KindCRL  Kind = "CRL"
	KindOCSP Kind = "OCSP"
)

// Origin identifies where in a signature revocation data was found.
type Origin string

const (
	OriginRevocationValues     Origin = "REVOCATION_VALUES"
	OriginCMSSignedData        Origin = "CMS_SIGNED_DATA"
	OriginTimestampValData     Origin = "TIMESTAMP_VALIDATION_DATA"
	OriginDSSDictionary        Origin = "DSS_DICTIONARY"
	OriginVRIDictionary        Origin = "VRI_DICTIONARY"
	OriginAdbeRevocationInfo   Origin = "ADBE_REVOCATION_INFO_ARCHIVAL"
	OriginAttributeRevocations Origin = "ATTRIBUTE_REVOCATION_VALUES"
	OriginExternal             Origin = "EXTERNAL"
)

// RevocationToken is the revocation status of one certificate as asserted by
// one CRL or OCSP response.
type RevocationToken struct {
	// Kind is CRL or OCSP
	Kind Kind
	// SerialNumber of the certificate the token speaks about
	SerialNumber *big.Int
	// Status is the revocation status
	Status RevocationStatus
	// Reason is the revocation reason (if revoked)
	Reason RevocationReason
	// RevocationTime is when the certificate was revoked (if revoked)
	RevocationTime *time.Time
	// ProductionTime is producedAt for OCSP and thisUpdate for CRLs
	ProductionTime time.Time
	// ThisUpdate is the start of the validity window
	ThisUpdate time.Time
	// NextUpdate is the end of the validity window, nil when open-ended
	NextUpdate *time.Time
	// Origin is where the evidence was found
	Origin Origin
	// Raw is the DER encoded CRL or OCSP response
	Raw []byte
}

// Covers reports whether the token's validity window contains at.
func (t *RevocationToken) Covers(at time.Time) bool {
	if at.Before(t.ThisUpdate) {
		return false
	}
	if t.NextUpdate != nil && at.After(*t.NextUpdate) {
		return false
	}
	return true
}

// IsRevoked reports whether the token asserts revocation.
func (t *RevocationToken) IsRevoked() bool {
	return t.Status == StatusRevoked
}

// IsOnHold reports whether the token asserts a certificateHold suspension.
func (t *RevocationToken) IsOnHold() bool {
	return t.Status == StatusRevoked && t.Reason == ReasonCertificateHold
}

// Binary is one encoded piece of revocation evidence.
type Binary struct {
	Raw    []byte
	Origin Origin
}

// CRLSource holds the CRLs embedded in or attached to a signature.
type CRLSource struct {
	binaries []Binary
}

// NewCRLSource creates a CRL source from raw CRLs with the given origin.
func NewCRLSource(origin Origin, raws ...[]byte) *CRLSource {
	s := &CRLSource{}
	for _, raw := range raws {
		s.Add(raw, origin)
	}
	return s
}

// Add registers a DER encoded CRL. Identical encodings are stored once.
func (s *CRLSource) Add(raw []byte, origin Origin) {
	s.binaries = addBinary(s.binaries, raw, origin)
}

// Merge adds every CRL of other.
func (s *CRLSource) Merge(other *CRLSource) {
	if other == nil {
		return
	}
	for _, b := range other.binaries {
		s.Add(b.Raw, b.Origin)
	}
}

// Binaries returns the stored CRLs.
func (s *CRLSource) Binaries() []Binary {
	if s == nil {
		return nil
	}
	return slices.Clone(s.binaries)
}

// Len returns the number of stored CRLs.
func (s *CRLSource) Len() int {
	if s == nil {
		return 0
	}
	return len(s.binaries)
}

// IsEmpty reports whether the source holds no CRLs.
func (s *CRLSource) IsEmpty() bool {
	return s.Len() == 0
}

// RevocationTokens returns the status of cert asserted by every CRL issued
// and signed by issuer. CRLs from other issuers are ignored; a CRL that
// cannot be parsed is an error.
func (s *CRLSource) RevocationTokens(cert, issuer *x509.Certificate) ([]*RevocationToken, error) {
	if s == nil {
		return nil, nil
	}
	if issuer == nil {
		return nil, ErrNoIssuer
	}
	var tokens []*RevocationToken
	for _, b := range s.binaries {
		crl, err := x509.ParseRevocationList(b.Raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCRL, err)
		}
		if !bytes.Equal(crl.RawIssuer, issuer.RawSubject) {
			continue
		}
		if err := crl.CheckSignatureFrom(issuer); err != nil {
			continue
		}
		tokens = append(tokens, crlToken(crl, cert, b))
	}
	return tokens, nil
}

func crlToken(crl *x509.RevocationList, cert *x509.Certificate, b Binary) *RevocationToken {
	token := &RevocationToken{
		Kind:           KindCRL,
		SerialNumber:   cert.SerialNumber,
		Status:         StatusGood,
		ProductionTime: crl.ThisUpdate,
		ThisUpdate:     crl.ThisUpdate,
		Origin:         b.Origin,
		Raw:            b.Raw,
	}
	if !crl.NextUpdate.IsZero() {
		next := crl.NextUpdate
		token.NextUpdate = &next
	}
	if entry := FindRevokedCertificate(crl, cert.SerialNumber); entry != nil {
		revTime := entry.RevocationTime
		token.Status = StatusRevoked
		token.RevocationTime = &revTime
		token.Reason = RevocationReason(entry.ReasonCode)
	}
	return token
}

// FindRevokedCertificate finds the entry for serial in crl.
func FindRevokedCertificate(crl *x509.RevocationList, serial *big.Int) *x509.RevocationListEntry {
	for i := range crl.RevokedCertificateEntries {
		if crl.RevokedCertificateEntries[i].SerialNumber.Cmp(serial) == 0 {
			return &crl.RevokedCertificateEntries[i]
		}
	}
	return nil
}

// OCSPSource holds the OCSP responses embedded in or attached to a signature.
type OCSPSource struct {
	binaries []Binary
}

// NewOCSPSource creates an OCSP source from raw responses with the given origin.
func NewOCSPSource(origin Origin, raws ...[]byte) *OCSPSource {
	s := &OCSPSource{}
	for _, raw := range raws {
		s.Add(raw, origin)
	}
	return s
}

// Add registers a DER encoded OCSP response. Identical encodings are stored once.
func (s *OCSPSource) Add(raw []byte, origin Origin) {
	s.binaries = addBinary(s.binaries, raw, origin)
}

// Merge adds every response of other.
func (s *OCSPSource) Merge(other *OCSPSource) {
	if other == nil {
		return
	}
	for _, b := range other.binaries {
		s.Add(b.Raw, b.Origin)
	}
}

// Binaries returns the stored responses.
func (s *OCSPSource) Binaries() []Binary {
	if s == nil {
		return nil
	}
	return slices.Clone(s.binaries)
}

// Len returns the number of stored responses.
func (s *OCSPSource) Len() int {
	if s == nil {
		return 0
	}
	return len(s.binaries)
}

// IsEmpty reports whether the source holds no responses.
func (s *OCSPSource) IsEmpty() bool {
	return s.Len() == 0
}

// RevocationTokens returns the status of cert asserted by every response
// naming its serial number and signed by issuer, directly or through a
// delegated responder certificate issued by it.
func (s *OCSPSource) RevocationTokens(cert, issuer *x509.Certificate) ([]*RevocationToken, error) {
	if s == nil {
		return nil, nil
	}
	if issuer == nil {
		return nil, ErrNoIssuer
	}
	var tokens []*RevocationToken
	for _, b := range s.binaries {
		resp, err := ocsp.ParseResponse(b.Raw, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOCSP, err)
		}
		if resp.SerialNumber == nil || resp.SerialNumber.Cmp(cert.SerialNumber) != 0 {
			continue
		}
		verified, err := ocsp.ParseResponse(b.Raw, issuer)
		if err != nil {
			continue
		}
		tokens = append(tokens, ocspToken(verified, b))
	}
	return tokens, nil
}

func ocspToken(resp *ocsp.Response, b Binary) *RevocationToken {
	token := &RevocationToken{
		Kind:           KindOCSP,
		SerialNumber:   resp.SerialNumber,
		ProductionTime: resp.ProducedAt,
		ThisUpdate:     resp.ThisUpdate,
		Origin:         b.Origin,
		Raw:            b.Raw,
	}
	if !resp.NextUpdate.IsZero() {
		next := resp.NextUpdate
		token.NextUpdate = &next
	}
	switch resp.Status {
	case ocsp.Good:
		token.Status = StatusGood
	case ocsp.Revoked:
		revokedAt := resp.RevokedAt
		token.Status = StatusRevoked
		token.RevocationTime = &revokedAt
		token.Reason = RevocationReason(resp.RevocationReason)
	default:
		token.Status = StatusUnknown
	}
	return token
}

func addBinary(binaries []Binary, raw []byte, origin Origin) []Binary {
	if len(raw) == 0 {
		return binaries
	}
	for _, b := range binaries {
		if bytes.Equal(b.Raw, raw) {
			return binaries
		}
	}
	return append(binaries, Binary{Raw: raw, Origin: origin})
}

// Latest returns the token with the most recent production time, or nil.
func Latest(tokens []*RevocationToken) *RevocationToken {
	var latest *RevocationToken
	for _, t := range tokens {
		if latest == nil || t.ProductionTime.After(latest.ProductionTime) {
			latest = t
		}
	}
	return latest
}
