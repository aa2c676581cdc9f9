package policy

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPolicy is returned for policies that cannot be used.
var ErrInvalidPolicy = errors.New("invalid validation policy")

//go:embed default.yaml
var defaultPolicy []byte

// Policy is a validation policy.
type Policy struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// RecordIgnored adds an IGNORED record for every skipped check.
	RecordIgnored bool `yaml:"record-ignored,omitempty"`

	Signature     SignatureConstraints     `yaml:"signature"`
	Certificate   CertificateConstraints   `yaml:"certificate"`
	Timestamp     TimestampConstraints     `yaml:"timestamp"`
	Qualification QualificationConstraints `yaml:"qualification"`

	// Custom holds CEL constraints appended to the signature acceptance checks.
	Custom []*ExpressionConstraint `yaml:"custom,omitempty"`
}

// SignatureConstraints apply to the signature itself.
type SignatureConstraints struct {
	SigningCertificateFound *LevelConstraint             `yaml:"signing-certificate-found,omitempty"`
	SigningCertificateRef   *LevelConstraint             `yaml:"signing-certificate-ref,omitempty"`
	SigningCertificateMatch *LevelConstraint             `yaml:"signing-certificate-match,omitempty"`
	KeyIdentifierMatch      *LevelConstraint             `yaml:"key-identifier-match,omitempty"`
	PolicyHash              *LevelConstraint             `yaml:"policy-hash,omitempty"`
	Baseline                *BaselineConstraint          `yaml:"baseline,omitempty"`
	SignedAttributes        *SignedAttributesConstraints `yaml:"signed-attributes,omitempty"`
}

// SignedAttributesConstraints apply to the signed attributes (signed
// qualifying properties, protected header parameters).
type SignedAttributesConstraints struct {
	SigningTime              *LevelConstraint       `yaml:"signing-time,omitempty"`
	ContentType              *ValueConstraint       `yaml:"content-type,omitempty"`
	ContentHints             *ValueConstraint       `yaml:"content-hints,omitempty"`
	ContentIdentifier        *ValueConstraint       `yaml:"content-identifier,omitempty"`
	CommitmentTypeIndication *MultiValuesConstraint `yaml:"commitment-type-indication,omitempty"`
	SignerLocation           *LevelConstraint       `yaml:"signer-location,omitempty"`
	ClaimedRoles             *MultiValuesConstraint `yaml:"claimed-roles,omitempty"`
	CertifiedRoles           *MultiValuesConstraint `yaml:"certified-roles,omitempty"`
	ContentTimestamp         *LevelConstraint       `yaml:"content-timestamp,omitempty"`
}

// CertificateConstraints apply to the signing certificate.
type CertificateConstraints struct {
	Expiration              *LevelConstraint       `yaml:"expiration,omitempty"`
	RevocationDataAvailable *LevelConstraint       `yaml:"revocation-data-available,omitempty"`
	NotRevoked              *LevelConstraint       `yaml:"not-revoked,omitempty"`
	NotOnHold               *LevelConstraint       `yaml:"not-on-hold,omitempty"`
	SemanticsIdentifier     *MultiValuesConstraint `yaml:"semantics-identifier,omitempty"`
}

// TimestampConstraints apply to every timestamp of the signature.
type TimestampConstraints struct {
	MessageImprintFound            *LevelConstraint `yaml:"message-imprint-found,omitempty"`
	MessageImprintIntact           *LevelConstraint `yaml:"message-imprint-intact,omitempty"`
	BeforeSigningCertificateExpiry *LevelConstraint `yaml:"before-signing-certificate-expiry,omitempty"`
}

// QualificationConstraints control the audit checks recorded next to the
// qualification label.
type QualificationConstraints struct {
	QCCompliance *LevelConstraint `yaml:"qc-compliance,omitempty"`
	ForESig      *LevelConstraint `yaml:"for-esig,omitempty"`
	QSCD         *LevelConstraint `yaml:"qscd,omitempty"`
}

// Default returns a fresh copy of the built-in policy.
func Default() *Policy {
	p, err := Parse(defaultPolicy)
	if err != nil {
		panic(fmt.Sprintf("policy: built-in policy is invalid: %v", err))
	}
	return p
}

// DefaultYAML returns the built-in policy document.
func DefaultYAML() []byte {
	return bytes.Clone(defaultPolicy)
}

// Load reads a policy from a YAML file.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML policy. Unknown keys are rejected.
func Parse(data []byte) (*Policy, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Policy
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Marshal encodes the policy as YAML.
func (p *Policy) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Validate checks that every declared constraint has a known level and that
// custom constraints are complete.
func (p *Policy) Validate() error {
	for name, c := range p.constraints() {
		if !LevelOf(c).IsValid() {
			return fmt.Errorf("%w: %s: missing or unknown level", ErrInvalidPolicy, name)
		}
	}
	if b := p.Signature.Baseline; b != nil && b.Level != LevelIgnore {
		switch b.Minimum {
		case "B", "T", "LT", "LTA":
		default:
			return fmt.Errorf("%w: signature.baseline: unknown minimum level %q", ErrInvalidPolicy, b.Minimum)
		}
	}
	seen := make(map[string]bool)
	for i, c := range p.Custom {
		if c == nil {
			return fmt.Errorf("%w: custom[%d]: empty constraint", ErrInvalidPolicy, i)
		}
		if c.ID == "" || c.Expression == "" {
			return fmt.Errorf("%w: custom[%d]: id and expression are required", ErrInvalidPolicy, i)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: custom[%d]: duplicate id %q", ErrInvalidPolicy, i, c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// constraints returns every declared constraint keyed by its path.
func (p *Policy) constraints() map[string]Constraint {
	out := make(map[string]Constraint)
	add := func(name string, c Constraint, declared bool) {
		if declared {
			out[name] = c
		}
	}
	s := p.Signature
	add("signature.signing-certificate-found", s.SigningCertificateFound, s.SigningCertificateFound != nil)
	add("signature.signing-certificate-ref", s.SigningCertificateRef, s.SigningCertificateRef != nil)
	add("signature.signing-certificate-match", s.SigningCertificateMatch, s.SigningCertificateMatch != nil)
	add("signature.key-identifier-match", s.KeyIdentifierMatch, s.KeyIdentifierMatch != nil)
	add("signature.policy-hash", s.PolicyHash, s.PolicyHash != nil)
	add("signature.baseline", s.Baseline, s.Baseline != nil)
	if sa := s.SignedAttributes; sa != nil {
		add("signed-attributes.signing-time", sa.SigningTime, sa.SigningTime != nil)
		add("signed-attributes.content-type", sa.ContentType, sa.ContentType != nil)
		add("signed-attributes.content-hints", sa.ContentHints, sa.ContentHints != nil)
		add("signed-attributes.content-identifier", sa.ContentIdentifier, sa.ContentIdentifier != nil)
		add("signed-attributes.commitment-type-indication", sa.CommitmentTypeIndication, sa.CommitmentTypeIndication != nil)
		add("signed-attributes.signer-location", sa.SignerLocation, sa.SignerLocation != nil)
		add("signed-attributes.claimed-roles", sa.ClaimedRoles, sa.ClaimedRoles != nil)
		add("signed-attributes.certified-roles", sa.CertifiedRoles, sa.CertifiedRoles != nil)
		add("signed-attributes.content-timestamp", sa.ContentTimestamp, sa.ContentTimestamp != nil)
	}
	c := p.Certificate
	add("certificate.expiration", c.Expiration, c.Expiration != nil)
	add("certificate.revocation-data-available", c.RevocationDataAvailable, c.RevocationDataAvailable != nil)
	add("certificate.not-revoked", c.NotRevoked, c.NotRevoked != nil)
	add("certificate.not-on-hold", c.NotOnHold, c.NotOnHold != nil)
	add("certificate.semantics-identifier", c.SemanticsIdentifier, c.SemanticsIdentifier != nil)
	t := p.Timestamp
	add("timestamp.message-imprint-found", t.MessageImprintFound, t.MessageImprintFound != nil)
	add("timestamp.message-imprint-intact", t.MessageImprintIntact, t.MessageImprintIntact != nil)
	add("timestamp.before-signing-certificate-expiry", t.BeforeSigningCertificateExpiry, t.BeforeSigningCertificateExpiry != nil)
	q := p.Qualification
	add("qualification.qc-compliance", q.QCCompliance, q.QCCompliance != nil)
	add("qualification.for-esig", q.ForESig, q.ForESig != nil)
	add("qualification.qscd", q.QSCD, q.QSCD != nil)
	for _, e := range p.Custom {
		if e != nil {
			add("custom."+e.ID, e, true)
		}
	}
	return out
}

// SignedAttributesOrEmpty returns the signed attribute constraints, never nil.
func (s SignatureConstraints) SignedAttributesOrEmpty() *SignedAttributesConstraints {
	if s.SignedAttributes == nil {
		return &SignedAttributesConstraints{}
	}
	return s.SignedAttributes
}
