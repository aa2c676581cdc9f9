// Package signature models the facts extracted from an AdES signature that
// the validation engine consumes. Container parsing happens elsewhere; this
// package only holds the extracted values and derived views over them.
package signature

import (
	"time"

	"github.com/georgepadayatti/adesverdict/certvalidator"
	"github.com/georgepadayatti/adesverdict/certvalidator/revinfo"
)

// Format is the AdES signature format.
type Format string

const (
	FormatCAdES Format = "CAdES"
	FormatXAdES Format = "XAdES"
	FormatJAdES Format = "JAdES"
	FormatPAdES Format = "PAdES"
)

// IsValid reports whether f is a known format.
func (f Format) IsValid() bool {
	switch f {
	case FormatCAdES, FormatXAdES, FormatJAdES, FormatPAdES:
		return true
	}
	return false
}

// TimestampType classifies a timestamp by what it covers.
type TimestampType string

const (
	TimestampContent            TimestampType = "CONTENT_TIMESTAMP"
	TimestampSignature          TimestampType = "SIGNATURE_TIMESTAMP"
	TimestampValidationDataRefs TimestampType = "VALIDATION_DATA_REFSONLY_TIMESTAMP"
	TimestampValidationData     TimestampType = "VALIDATION_DATA_TIMESTAMP"
	TimestampArchive            TimestampType = "ARCHIVE_TIMESTAMP"
	TimestampDocument           TimestampType = "DOCUMENT_TIMESTAMP"
)

// Timestamp is a time-stamp token attached to or covering the signature.
type Timestamp struct {
	ID   string
	Type TimestampType
	// CreationTime is the genTime of the token
	CreationTime time.Time
	// Certificates embedded in the token
	Certificates *certvalidator.CertificateSource
	// MessageImprintFound is set when the covered data could be located
	MessageImprintFound bool
	// MessageImprintIntact is set when the imprint matches the covered data
	MessageImprintIntact bool
}

// IsArchival reports whether the timestamp protects the validation material
// in the long term. PAdES document timestamps count once validation data is
// present in the document.
func (t *Timestamp) IsArchival() bool {
	return t.Type == TimestampArchive || t.Type == TimestampDocument
}

// Digest is a digest algorithm URI or OID and a value.
type Digest struct {
	Algorithm string
	Value     []byte
}

// Policy is the signature policy identifier. An implied policy has neither
// identifier nor digest.
type Policy struct {
	Identifier string
	Digest     *Digest
	Implied    bool
	URL        string
}

// CertificateRef is the signed reference to the signing certificate
// (signing-certificate(-v2), SigningCertificate(V2), x5t#S256).
type CertificateRef struct {
	DigestAlgorithm string
	// DigestMatch is set when the digest matches the signing certificate
	DigestMatch bool
	// IssuerSerialPresent is set when an issuer-serial (kid) is referenced
	IssuerSerialPresent bool
	// IssuerSerialMatch is set when the issuer-serial matches
	IssuerSerialMatch bool
}

// SignerLocation is the claimed place of signing.
type SignerLocation struct {
	Country    string
	Locality   string
	PostalCode string
	Street     string
}

// IsEmpty reports whether no part of the location is set.
func (l *SignerLocation) IsEmpty() bool {
	return l == nil || (l.Country == "" && l.Locality == "" && l.PostalCode == "" && l.Street == "")
}

// SignedAttributes are the signed properties of the signature.
type SignedAttributes struct {
	SigningTime       *time.Time
	ContentType       string
	ContentHints      string
	ContentIdentifier string
	// MimeType of the signed data (XAdES DataObjectFormat, JAdES cty)
	MimeType        string
	CommitmentTypes []string
	SignerLocation  *SignerLocation
	ClaimedRoles    []string
	CertifiedRoles  []string
	// SigningCertificateRef is nil when the signed reference is missing
	SigningCertificateRef *CertificateRef
}

// PDFSignature holds the PDF signature dictionary entries of a PAdES signature.
type PDFSignature struct {
	SubFilter string
	// ClaimedSigningTime is the /M entry
	ClaimedSigningTime *time.Time
	Reason             string
	Location           string
}

// AdvancedSignature is one signature and everything extracted from it.
type AdvancedSignature struct {
	ID     string
	Format Format

	// SigningCertificate is nil when no candidate was identified
	SigningCertificate *certvalidator.CertificateToken
	// Certificates found in the signature (signed data, key info, values, DSS)
	Certificates *certvalidator.CertificateSource

	Timestamps        []*Timestamp
	CounterSignatures []*AdvancedSignature

	CRLs  *revinfo.CRLSource
	OCSPs *revinfo.OCSPSource

	Policy           *Policy
	SignedAttributes SignedAttributes

	// PDF is set for PAdES signatures
	PDF *PDFSignature
}

// SignatureTimestamps returns the signature timestamps.
func (s *AdvancedSignature) SignatureTimestamps() []*Timestamp {
	return s.timestampsOfType(TimestampSignature)
}

// ContentTimestamps returns the content timestamps.
func (s *AdvancedSignature) ContentTimestamps() []*Timestamp {
	return s.timestampsOfType(TimestampContent)
}

// ArchiveTimestamps returns the archival timestamps in their order of appearance.
func (s *AdvancedSignature) ArchiveTimestamps() []*Timestamp {
	var out []*Timestamp
	for _, ts := range s.Timestamps {
		if ts.IsArchival() {
			out = append(out, ts)
		}
	}
	return out
}

// LastArchiveTimestamp returns the archival timestamp with the latest
// creation time, or nil. Ties keep the later one in document order.
func (s *AdvancedSignature) LastArchiveTimestamp() *Timestamp {
	var last *Timestamp
	for _, ts := range s.ArchiveTimestamps() {
		if last == nil || !ts.CreationTime.Before(last.CreationTime) {
			last = ts
		}
	}
	return last
}

func (s *AdvancedSignature) timestampsOfType(tt TimestampType) []*Timestamp {
	var out []*Timestamp
	for _, ts := range s.Timestamps {
		if ts.Type == tt {
			out = append(out, ts)
		}
	}
	return out
}

// ClaimedSigningTime returns the signed signing time, or for PAdES the /M
// entry of the signature dictionary.
func (s *AdvancedSignature) ClaimedSigningTime() *time.Time {
	if s.SignedAttributes.SigningTime != nil {
		return s.SignedAttributes.SigningTime
	}
	if s.PDF != nil {
		return s.PDF.ClaimedSigningTime
	}
	return nil
}

// CertificateSourcesExceptLastArchiveTimestamp returns the signature's own
// certificates, those of every timestamp except the latest archival one, and
// those of the counter signatures.
func (s *AdvancedSignature) CertificateSourcesExceptLastArchiveTimestamp() *certvalidator.ListCertificateSource {
	list := certvalidator.NewListCertificateSource(s.Certificates)
	last := s.LastArchiveTimestamp()
	for _, ts := range s.Timestamps {
		if ts != last {
			list.Add(ts.Certificates)
		}
	}
	list.AddAll(s.counterSignatureSources())
	return list
}

// CompleteCertificateSource returns every certificate known to the signature,
// its timestamps and counter signatures.
func (s *AdvancedSignature) CompleteCertificateSource() *certvalidator.ListCertificateSource {
	list := certvalidator.NewListCertificateSource(s.Certificates)
	for _, ts := range s.Timestamps {
		list.Add(ts.Certificates)
	}
	list.AddAll(s.counterSignatureSources())
	return list
}

func (s *AdvancedSignature) counterSignatureSources() *certvalidator.ListCertificateSource {
	list := certvalidator.NewListCertificateSource()
	for _, cs := range s.CounterSignatures {
		list.AddAll(cs.CompleteCertificateSource())
	}
	return list
}

// CompleteCRLSource returns the CRLs of the signature and its counter signatures.
func (s *AdvancedSignature) CompleteCRLSource() *revinfo.CRLSource {
	out := &revinfo.CRLSource{}
	out.Merge(s.CRLs)
	for _, cs := range s.CounterSignatures {
		out.Merge(cs.CompleteCRLSource())
	}
	return out
}

// CompleteOCSPSource returns the OCSP responses of the signature and its
// counter signatures.
func (s *AdvancedSignature) CompleteOCSPSource() *revinfo.OCSPSource {
	out := &revinfo.OCSPSource{}
	out.Merge(s.OCSPs)
	for _, cs := range s.CounterSignatures {
		out.Merge(cs.CompleteOCSPSource())
	}
	return out
}

// HasExplicitPolicy reports whether a non implied policy identifier is set.
func (s *AdvancedSignature) HasExplicitPolicy() bool {
	return s.Policy != nil && !s.Policy.Implied && s.Policy.Identifier != ""
}
