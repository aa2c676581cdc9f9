// Package certtest builds small X.509 hierarchies, CRLs and OCSP responses
// for tests.
package certtest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"testing"
	"time"

	"golang.org/x/crypto/ocsp"
)

var (
	oidOCSPNoCheck    = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 5}
	oidQCStatements   = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 1, 3}
	asn1Null          = []byte{0x05, 0x00}
	defaultNotBefore  = -24 * time.Hour
	defaultValidity   = 365 * 24 * time.Hour
	maxSerialExponent = int64(1) << 62
)

// Entity is a certificate together with its private key.
type Entity struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey
}

// Option customises a certificate template.
type Option func(*x509.Certificate)

// WithValidity sets the validity window.
func WithValidity(notBefore, notAfter time.Time) Option {
	return func(c *x509.Certificate) {
		c.NotBefore = notBefore
		c.NotAfter = notAfter
	}
}

// WithNoCheck adds the id-pkix-ocsp-nocheck extension.
func WithNoCheck() Option {
	return func(c *x509.Certificate) {
		c.ExtraExtensions = append(c.ExtraExtensions, pkix.Extension{Id: oidOCSPNoCheck, Value: asn1Null})
	}
}

// WithQCStatements adds a QC statements extension with the given DER value.
func WithQCStatements(der []byte) Option {
	return func(c *x509.Certificate) {
		c.ExtraExtensions = append(c.ExtraExtensions, pkix.Extension{Id: oidQCStatements, Value: der})
	}
}

// WithSerial sets the serial number.
func WithSerial(serial int64) Option {
	return func(c *x509.Certificate) {
		c.SerialNumber = big.NewInt(serial)
	}
}

// NewRoot creates a self-signed CA.
func NewRoot(tb testing.TB, cn string, opts ...Option) *Entity {
	tb.Helper()
	key := newKey(tb)
	tmpl := template(tb, cn, true, opts)
	return create(tb, tmpl, tmpl, key, key)
}

// NewSelfSigned creates a self-signed end-entity certificate.
func NewSelfSigned(tb testing.TB, cn string, opts ...Option) *Entity {
	tb.Helper()
	key := newKey(tb)
	tmpl := template(tb, cn, false, opts)
	return create(tb, tmpl, tmpl, key, key)
}

// NewCA creates a subordinate CA issued by e.
func (e *Entity) NewCA(tb testing.TB, cn string, opts ...Option) *Entity {
	tb.Helper()
	return create(tb, template(tb, cn, true, opts), e.Cert, newKey(tb), e.Key)
}

// NewLeaf creates an end-entity certificate issued by e.
func (e *Entity) NewLeaf(tb testing.TB, cn string, opts ...Option) *Entity {
	tb.Helper()
	return create(tb, template(tb, cn, false, opts), e.Cert, newKey(tb), e.Key)
}

// CRL creates a CRL signed by e listing the given entries.
func (e *Entity) CRL(tb testing.TB, thisUpdate, nextUpdate time.Time, revoked ...x509.RevocationListEntry) []byte {
	tb.Helper()
	tmpl := &x509.RevocationList{
		Number:                    big.NewInt(time.Now().UnixNano()),
		ThisUpdate:                thisUpdate,
		NextUpdate:                nextUpdate,
		RevokedCertificateEntries: revoked,
	}
	der, err := x509.CreateRevocationList(rand.Reader, tmpl, e.Cert, e.Key)
	if err != nil {
		tb.Fatalf("create CRL: %v", err)
	}
	return der
}

// Revoked builds a CRL entry for cert.
func Revoked(cert *x509.Certificate, at time.Time, reason int) x509.RevocationListEntry {
	return x509.RevocationListEntry{
		SerialNumber:   cert.SerialNumber,
		RevocationTime: at,
		ReasonCode:     reason,
	}
}

// OCSP creates an OCSP response about cert signed directly by e.
// status is one of ocsp.Good, ocsp.Revoked or ocsp.Unknown.
func (e *Entity) OCSP(tb testing.TB, cert *x509.Certificate, status int, thisUpdate, nextUpdate time.Time) []byte {
	tb.Helper()
	tmpl := ocsp.Response{
		Status:       status,
		SerialNumber: cert.SerialNumber,
		ThisUpdate:   thisUpdate,
		NextUpdate:   nextUpdate,
	}
	if status == ocsp.Revoked {
		tmpl.RevokedAt = thisUpdate
		tmpl.RevocationReason = ocsp.Unspecified
	}
	der, err := ocsp.CreateResponse(e.Cert, e.Cert, tmpl, e.Key)
	if err != nil {
		tb.Fatalf("create OCSP response: %v", err)
	}
	return der
}

func newKey(tb testing.TB) *ecdsa.PrivateKey {
	tb.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		tb.Fatalf("generate key: %v", err)
	}
	return key
}

func template(tb testing.TB, cn string, isCA bool, opts []Option) *x509.Certificate {
	tb.Helper()
	serial, err := rand.Int(rand.Reader, big.NewInt(maxSerialExponent))
	if err != nil {
		tb.Fatalf("generate serial: %v", err)
	}
	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: serial.Add(serial, big.NewInt(1)),
		Subject: pkix.Name{
			Organization: []string{"Test Org"},
			CommonName:   cn,
		},
		NotBefore:             now.Add(defaultNotBefore),
		NotAfter:              now.Add(defaultValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  isCA,
	}
	if isCA {
		tmpl.KeyUsage |= x509.KeyUsageCertSign | x509.KeyUsageCRLSign
	}
	for _, opt := range opts {
		opt(tmpl)
	}
	return tmpl
}

func create(tb testing.TB, tmpl, parent *x509.Certificate, key, parentKey *ecdsa.PrivateKey) *Entity {
	tb.Helper()
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, &key.PublicKey, parentKey)
	if err != nil {
		tb.Fatalf("create certificate %q: %v", tmpl.Subject.CommonName, err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		tb.Fatalf("parse certificate: %v", err)
	}
	return &Entity{Cert: cert, Key: key}
}
