// Package certvalidator provides offline X.509 chain building and revocation
// completeness verification for signature validation.
// This file contains the certificate token type.
package certvalidator

import (
	"bytes"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"time"
)

// OIDOCSPNoCheck is the id-pkix-ocsp-nocheck extension (RFC 6960 section 4.2.2.2.1).
var OIDOCSPNoCheck = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 5}

// CertificateToken wraps a parsed certificate with a stable identity.
// Two tokens are equal when their DER encodings are equal.
type CertificateToken struct {
	cert       *x509.Certificate
	id         string
	selfSigned bool
}

// NewCertificateToken creates a token for the given certificate.
func NewCertificateToken(cert *x509.Certificate) *CertificateToken {
	if cert == nil {
		return nil
	}
	digest := sha256.Sum256(cert.Raw)
	return &CertificateToken{
		cert:       cert,
		id:         "C-" + hex.EncodeToString(digest[:]),
		selfSigned: isSelfSigned(cert),
	}
}

// ParseCertificateToken parses a DER certificate into a token.
func ParseCertificateToken(der []byte) (*CertificateToken, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCertificate, err)
	}
	return NewCertificateToken(cert), nil
}

// ID returns the token identifier derived from the DER digest.
func (t *CertificateToken) ID() string {
	return t.id
}

// Certificate returns the underlying certificate.
func (t *CertificateToken) Certificate() *x509.Certificate {
	return t.cert
}

// Subject returns the subject distinguished name as a string.
func (t *CertificateToken) Subject() string {
	return t.cert.Subject.String()
}

// Issuer returns the issuer distinguished name as a string.
func (t *CertificateToken) Issuer() string {
	return t.cert.Issuer.String()
}

// NotBefore returns the start of the validity window.
func (t *CertificateToken) NotBefore() time.Time {
	return t.cert.NotBefore
}

// NotAfter returns the end of the validity window.
func (t *CertificateToken) NotAfter() time.Time {
	return t.cert.NotAfter
}

// IsValidAt reports whether the given time falls within the validity window.
func (t *CertificateToken) IsValidAt(at time.Time) bool {
	return !at.Before(t.cert.NotBefore) && !at.After(t.cert.NotAfter)
}

// IsSelfSigned reports whether the certificate names itself as issuer and
// its signature verifies with its own public key.
func (t *CertificateToken) IsSelfSigned() bool {
	return t.selfSigned
}

// IsNoRevocationCheck reports whether the certificate carries the
// id-pkix-ocsp-nocheck extension.
func (t *CertificateToken) IsNoRevocationCheck() bool {
	for _, ext := range t.cert.Extensions {
		if ext.Id.Equal(OIDOCSPNoCheck) {
			return true
		}
	}
	return false
}

// IsSignedBy reports whether issuer's key verifies this certificate's signature.
func (t *CertificateToken) IsSignedBy(issuer *CertificateToken) bool {
	if issuer == nil {
		return false
	}
	return signedBy(t.cert, issuer.cert)
}

// Equal reports whether both tokens wrap the same DER encoding.
func (t *CertificateToken) Equal(other *CertificateToken) bool {
	if t == nil || other == nil {
		return t == other
	}
	return bytes.Equal(t.cert.Raw, other.cert.Raw)
}

// String returns a short description for logs.
func (t *CertificateToken) String() string {
	return fmt.Sprintf("%s (%s)", t.Subject(), t.id[:10])
}

func isSelfSigned(cert *x509.Certificate) bool {
	if !bytes.Equal(cert.RawSubject, cert.RawIssuer) {
		return false
	}
	return signedBy(cert, cert)
}

// signedBy verifies the raw signature only, so CA basic constraints of the
// issuer do not matter here.
func signedBy(cert, issuer *x509.Certificate) bool {
	return issuer.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature) == nil
}
