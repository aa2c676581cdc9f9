package cli

import (
	"bytes"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/georgepadayatti/adesverdict/certvalidator"
	"github.com/georgepadayatti/adesverdict/certvalidator/revinfo"
	"github.com/georgepadayatti/adesverdict/keys"
	"github.com/georgepadayatti/adesverdict/validation/signature"
)

// ErrInvalidDocument is returned for signature documents that cannot be used.
var ErrInvalidDocument = errors.New("invalid signature document")

// Document is a YAML description of extracted signatures. File paths are
// relative to the document.
type Document struct {
	Signatures []*SignatureDoc `yaml:"signatures"`
}

// SignatureDoc describes one signature.
type SignatureDoc struct {
	ID                 string               `yaml:"id"`
	Format             string               `yaml:"format"`
	SigningCertificate *CertificateFileDoc  `yaml:"signing-certificate,omitempty"`
	Certificates       []CertificateFileDoc `yaml:"certificates,omitempty"`
	CRLs               []RevocationFileDoc  `yaml:"crls,omitempty"`
	OCSPs              []RevocationFileDoc  `yaml:"ocsps,omitempty"`
	Timestamps         []TimestampDoc       `yaml:"timestamps,omitempty"`
	Policy             *PolicyDoc           `yaml:"policy,omitempty"`
	SignedAttributes   SignedAttributesDoc  `yaml:"signed-attributes"`
	PDF                *PDFDoc              `yaml:"pdf,omitempty"`
	CounterSignatures  []*SignatureDoc      `yaml:"counter-signatures,omitempty"`
}

// CertificateFileDoc is a PEM or DER certificate file and where the
// certificates were found in the signature.
type CertificateFileDoc struct {
	File   string `yaml:"file"`
	Origin string `yaml:"origin,omitempty"`
}

// RevocationFileDoc is a CRL or OCSP response file (PEM or DER).
type RevocationFileDoc struct {
	File   string `yaml:"file"`
	Origin string `yaml:"origin,omitempty"`
}

// TimestampDoc describes a timestamp token.
type TimestampDoc struct {
	ID                   string               `yaml:"id"`
	Type                 string               `yaml:"type"`
	CreationTime         time.Time            `yaml:"creation-time"`
	Certificates         []CertificateFileDoc `yaml:"certificates,omitempty"`
	MessageImprintFound  bool                 `yaml:"message-imprint-found"`
	MessageImprintIntact bool                 `yaml:"message-imprint-intact"`
}

// PolicyDoc describes the signature policy identifier.
type PolicyDoc struct {
	Identifier      string `yaml:"identifier,omitempty"`
	DigestAlgorithm string `yaml:"digest-algorithm,omitempty"`
	// DigestValue is base64 encoded
	DigestValue string `yaml:"digest-value,omitempty"`
	Implied     bool   `yaml:"implied,omitempty"`
	URL         string `yaml:"url,omitempty"`
}

// SignedAttributesDoc describes the signed attributes.
type SignedAttributesDoc struct {
	SigningTime           *time.Time         `yaml:"signing-time,omitempty"`
	ContentType           string             `yaml:"content-type,omitempty"`
	ContentHints          string             `yaml:"content-hints,omitempty"`
	ContentIdentifier     string             `yaml:"content-identifier,omitempty"`
	MimeType              string             `yaml:"mime-type,omitempty"`
	CommitmentTypes       []string           `yaml:"commitment-types,omitempty"`
	ClaimedRoles          []string           `yaml:"claimed-roles,omitempty"`
	CertifiedRoles        []string           `yaml:"certified-roles,omitempty"`
	SignerLocation        *SignerLocationDoc `yaml:"signer-location,omitempty"`
	SigningCertificateRef *CertificateRefDoc `yaml:"signing-certificate-ref,omitempty"`
}

// SignerLocationDoc describes the claimed place of signing.
type SignerLocationDoc struct {
	Country    string `yaml:"country,omitempty"`
	Locality   string `yaml:"locality,omitempty"`
	PostalCode string `yaml:"postal-code,omitempty"`
	Street     string `yaml:"street,omitempty"`
}

// CertificateRefDoc describes the signed signing-certificate reference.
type CertificateRefDoc struct {
	DigestAlgorithm     string `yaml:"digest-algorithm"`
	DigestMatch         bool   `yaml:"digest-match"`
	IssuerSerialPresent bool   `yaml:"issuer-serial-present,omitempty"`
	IssuerSerialMatch   bool   `yaml:"issuer-serial-match,omitempty"`
}

// PDFDoc describes the PDF signature dictionary.
type PDFDoc struct {
	SubFilter          string     `yaml:"sub-filter"`
	ClaimedSigningTime *time.Time `yaml:"claimed-signing-time,omitempty"`
	Reason             string     `yaml:"reason,omitempty"`
	Location           string     `yaml:"location,omitempty"`
}

// LoadDocument reads a signature document and the files it references.
func LoadDocument(path string) ([]*signature.AdvancedSignature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signature document: %w", err)
	}
	return ParseDocument(data, filepath.Dir(path))
}

// ParseDocument decodes a signature document. Relative file paths are
// resolved against baseDir.
func ParseDocument(data []byte, baseDir string) ([]*signature.AdvancedSignature, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if len(doc.Signatures) == 0 {
		return nil, fmt.Errorf("%w: no signatures", ErrInvalidDocument)
	}

	l := &documentLoader{baseDir: baseDir}
	sigs := make([]*signature.AdvancedSignature, 0, len(doc.Signatures))
	for i, sd := range doc.Signatures {
		sig, err := l.signature(sd)
		if err != nil {
			return nil, fmt.Errorf("signatures[%d]: %w", i, err)
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

type documentLoader struct {
	baseDir string
}

func (l *documentLoader) path(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(l.baseDir, file)
}

func (l *documentLoader) signature(sd *SignatureDoc) (*signature.AdvancedSignature, error) {
	if sd == nil {
		return nil, fmt.Errorf("%w: empty signature", ErrInvalidDocument)
	}
	if sd.ID == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidDocument)
	}
	format := signature.Format(sd.Format)
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidDocument, sd.Format)
	}

	sig := &signature.AdvancedSignature{
		ID:           sd.ID,
		Format:       format,
		Certificates: certvalidator.NewCertificateSource(),
		CRLs:         &revinfo.CRLSource{},
		OCSPs:        &revinfo.OCSPSource{},
	}

	if sd.SigningCertificate != nil {
		chain, err := keys.LoadCertificateChain([]string{l.path(sd.SigningCertificate.File)})
		if err != nil {
			return nil, err
		}
		origin := certificateOrigin(sd.SigningCertificate.Origin, certvalidator.OriginSignedData)
		sig.SigningCertificate = sig.Certificates.AddCertificate(chain.EndEntity, origin)
		for _, cert := range chain.All()[1:] {
			sig.Certificates.AddCertificate(cert, origin)
		}
	}
	if err := l.addCertificates(sig.Certificates, sd.Certificates, certvalidator.OriginCertificateValues); err != nil {
		return nil, err
	}

	for _, f := range sd.CRLs {
		raw, err := l.revocationData(f.File, "X509 CRL")
		if err != nil {
			return nil, err
		}
		sig.CRLs.Add(raw, revocationOrigin(f.Origin))
	}
	for _, f := range sd.OCSPs {
		raw, err := l.revocationData(f.File, "OCSP RESPONSE")
		if err != nil {
			return nil, err
		}
		sig.OCSPs.Add(raw, revocationOrigin(f.Origin))
	}

	for _, td := range sd.Timestamps {
		ts := &signature.Timestamp{
			ID:                   td.ID,
			Type:                 signature.TimestampType(td.Type),
			CreationTime:         td.CreationTime,
			Certificates:         certvalidator.NewCertificateSource(),
			MessageImprintFound:  td.MessageImprintFound,
			MessageImprintIntact: td.MessageImprintIntact,
		}
		if err := l.addCertificates(ts.Certificates, td.Certificates, certvalidator.OriginTimestamp); err != nil {
			return nil, err
		}
		sig.Timestamps = append(sig.Timestamps, ts)
	}

	if p := sd.Policy; p != nil {
		sig.Policy = &signature.Policy{Identifier: p.Identifier, Implied: p.Implied, URL: p.URL}
		if p.DigestAlgorithm != "" || p.DigestValue != "" {
			value, err := base64.StdEncoding.DecodeString(p.DigestValue)
			if err != nil {
				return nil, fmt.Errorf("%w: policy digest-value: %v", ErrInvalidDocument, err)
			}
			sig.Policy.Digest = &signature.Digest{Algorithm: p.DigestAlgorithm, Value: value}
		}
	}

	a := sd.SignedAttributes
	sig.SignedAttributes = signature.SignedAttributes{
		SigningTime:       a.SigningTime,
		ContentType:       a.ContentType,
		ContentHints:      a.ContentHints,
		ContentIdentifier: a.ContentIdentifier,
		MimeType:          a.MimeType,
		CommitmentTypes:   a.CommitmentTypes,
		ClaimedRoles:      a.ClaimedRoles,
		CertifiedRoles:    a.CertifiedRoles,
	}
	if loc := a.SignerLocation; loc != nil {
		sig.SignedAttributes.SignerLocation = &signature.SignerLocation{
			Country: loc.Country, Locality: loc.Locality, PostalCode: loc.PostalCode, Street: loc.Street,
		}
	}
	if ref := a.SigningCertificateRef; ref != nil {
		sig.SignedAttributes.SigningCertificateRef = &signature.CertificateRef{
			DigestAlgorithm:     ref.DigestAlgorithm,
			DigestMatch:         ref.DigestMatch,
			IssuerSerialPresent: ref.IssuerSerialPresent,
			IssuerSerialMatch:   ref.IssuerSerialMatch,
		}
	}

	if p := sd.PDF; p != nil {
		sig.PDF = &signature.PDFSignature{
			SubFilter:          p.SubFilter,
			ClaimedSigningTime: p.ClaimedSigningTime,
			Reason:             p.Reason,
			Location:           p.Location,
		}
	}

	for i, cd := range sd.CounterSignatures {
		cs, err := l.signature(cd)
		if err != nil {
			return nil, fmt.Errorf("counter-signatures[%d]: %w", i, err)
		}
		sig.CounterSignatures = append(sig.CounterSignatures, cs)
	}
	return sig, nil
}

func (l *documentLoader) addCertificates(source *certvalidator.CertificateSource, files []CertificateFileDoc, fallback certvalidator.CertificateOrigin) error {
	for _, f := range files {
		certs, err := keys.LoadCertsFromPemDer(l.path(f.File))
		if err != nil {
			return err
		}
		origin := certificateOrigin(f.Origin, fallback)
		for _, cert := range certs {
			source.AddCertificate(cert, origin)
		}
	}
	return nil
}

// revocationData reads a DER file, or the first PEM block of pemType.
func (l *documentLoader) revocationData(file, pemType string) ([]byte, error) {
	data, err := os.ReadFile(l.path(file))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", file, err)
	}
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return data, nil
		}
		if block.Type == pemType {
			return block.Bytes, nil
		}
	}
}

func certificateOrigin(name string, fallback certvalidator.CertificateOrigin) certvalidator.CertificateOrigin {
	if name == "" {
		return fallback
	}
	return certvalidator.CertificateOrigin(name)
}

func revocationOrigin(name string) revinfo.Origin {
	if name == "" {
		return revinfo.OriginRevocationValues
	}
	return revinfo.Origin(name)
}
