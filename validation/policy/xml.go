package policy

import (
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// xmlLevelPaths maps the subset of ConstraintsParameters elements understood
// by ParseXML to policy fields.
var xmlLevelPaths = []struct {
	path string
	set  func(*Policy, *LevelConstraint)
}{
	{"SignatureConstraints/BasicSignatureConstraints/SigningCertificate/Recognition", func(p *Policy, c *LevelConstraint) { p.Signature.SigningCertificateFound = c }},
	{"SignatureConstraints/BasicSignatureConstraints/SigningCertificate/NotExpired", func(p *Policy, c *LevelConstraint) { p.Certificate.Expiration = c }},
	{"SignatureConstraints/BasicSignatureConstraints/SigningCertificate/RevocationDataAvailable", func(p *Policy, c *LevelConstraint) { p.Certificate.RevocationDataAvailable = c }},
	{"SignatureConstraints/BasicSignatureConstraints/SigningCertificate/NotRevoked", func(p *Policy, c *LevelConstraint) { p.Certificate.NotRevoked = c }},
	{"SignatureConstraints/BasicSignatureConstraints/SigningCertificate/NotOnHold", func(p *Policy, c *LevelConstraint) { p.Certificate.NotOnHold = c }},
	{"SignatureConstraints/BasicSignatureConstraints/SigningCertificate/QcCompliance", func(p *Policy, c *LevelConstraint) { p.Qualification.QCCompliance = c }},
	{"SignatureConstraints/BasicSignatureConstraints/SigningCertificate/ForESignature", func(p *Policy, c *LevelConstraint) { p.Qualification.ForESig = c }},
	{"SignatureConstraints/BasicSignatureConstraints/SigningCertificate/SupportedByQSCD", func(p *Policy, c *LevelConstraint) { p.Qualification.QSCD = c }},
	{"SignatureConstraints/PolicyHashMatch", func(p *Policy, c *LevelConstraint) { p.Signature.PolicyHash = c }},
	{"SignatureConstraints/SignedAttributes/SigningCertificatePresent", func(p *Policy, c *LevelConstraint) { p.Signature.SigningCertificateRef = c }},
	{"SignatureConstraints/SignedAttributes/CertDigestMatch", func(p *Policy, c *LevelConstraint) { p.Signature.SigningCertificateMatch = c }},
	{"SignatureConstraints/SignedAttributes/IssuerSerialMatch", func(p *Policy, c *LevelConstraint) { p.Signature.KeyIdentifierMatch = c }},
	{"SignatureConstraints/SignedAttributes/SigningTime", func(p *Policy, c *LevelConstraint) { p.signedAttributes().SigningTime = c }},
	{"SignatureConstraints/SignedAttributes/SignerLocation", func(p *Policy, c *LevelConstraint) { p.signedAttributes().SignerLocation = c }},
	{"SignatureConstraints/SignedAttributes/ContentTimeStamp", func(p *Policy, c *LevelConstraint) { p.signedAttributes().ContentTimestamp = c }},
	{"Timestamp/MessageImprintDataFound", func(p *Policy, c *LevelConstraint) { p.Timestamp.MessageImprintFound = c }},
	{"Timestamp/MessageImprintDataIntact", func(p *Policy, c *LevelConstraint) { p.Timestamp.MessageImprintIntact = c }},
	{"Timestamp/BeforeSigningCertificateExpiration", func(p *Policy, c *LevelConstraint) { p.Timestamp.BeforeSigningCertificateExpiry = c }},
}

var xmlValuePaths = []struct {
	path string
	set  func(*Policy, *ValueConstraint)
}{
	{"SignatureConstraints/SignedAttributes/ContentType", func(p *Policy, c *ValueConstraint) { p.signedAttributes().ContentType = c }},
	{"SignatureConstraints/SignedAttributes/ContentHints", func(p *Policy, c *ValueConstraint) { p.signedAttributes().ContentHints = c }},
	{"SignatureConstraints/SignedAttributes/ContentIdentifier", func(p *Policy, c *ValueConstraint) { p.signedAttributes().ContentIdentifier = c }},
}

var xmlMultiValuePaths = []struct {
	path string
	set  func(*Policy, *MultiValuesConstraint)
}{
	{"SignatureConstraints/SignedAttributes/CommitmentTypeIndication", func(p *Policy, c *MultiValuesConstraint) { p.signedAttributes().CommitmentTypeIndication = c }},
	{"SignatureConstraints/SignedAttributes/ClaimedRoles", func(p *Policy, c *MultiValuesConstraint) { p.signedAttributes().ClaimedRoles = c }},
	{"SignatureConstraints/SignedAttributes/CertifiedRoles", func(p *Policy, c *MultiValuesConstraint) { p.signedAttributes().CertifiedRoles = c }},
	{"SignatureConstraints/BasicSignatureConstraints/SigningCertificate/Semantics", func(p *Policy, c *MultiValuesConstraint) { p.Certificate.SemanticsIdentifier = c }},
}

// LoadXML reads a ConstraintsParameters XML file.
func LoadXML(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return ParseXML(data)
}

// ParseXML converts a ConstraintsParameters XML document into a Policy.
// Only the elements with a counterpart in Policy are read; everything else
// is ignored. The baseline minimum is taken from the non-standard
// SignatureConstraints/BaselineLevel element.
func ParseXML(data []byte) (*Policy, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	root := doc.SelectElement("ConstraintsParameters")
	if root == nil {
		return nil, fmt.Errorf("%w: missing ConstraintsParameters element", ErrInvalidPolicy)
	}

	p := &Policy{Name: root.SelectAttrValue("Name", "")}
	if desc := root.SelectElement("Description"); desc != nil {
		p.Description = strings.TrimSpace(desc.Text())
	}

	for _, m := range xmlLevelPaths {
		if el := root.FindElement(m.path); el != nil {
			level, err := xmlLevel(el)
			if err != nil {
				return nil, err
			}
			m.set(p, &LevelConstraint{Level: level})
		}
	}
	for _, m := range xmlValuePaths {
		if el := root.FindElement(m.path); el != nil {
			level, err := xmlLevel(el)
			if err != nil {
				return nil, err
			}
			m.set(p, &ValueConstraint{Level: level, Value: strings.TrimSpace(el.Text())})
		}
	}
	for _, m := range xmlMultiValuePaths {
		if el := root.FindElement(m.path); el != nil {
			level, err := xmlLevel(el)
			if err != nil {
				return nil, err
			}
			c := &MultiValuesConstraint{Level: level}
			for _, id := range el.SelectElements("Id") {
				c.IDs = append(c.IDs, strings.TrimSpace(id.Text()))
			}
			m.set(p, c)
		}
	}
	if el := root.FindElement("SignatureConstraints/BaselineLevel"); el != nil {
		level, err := xmlLevel(el)
		if err != nil {
			return nil, err
		}
		p.Signature.Baseline = &BaselineConstraint{Level: level, Minimum: strings.TrimSpace(el.Text())}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func xmlLevel(el *etree.Element) (Level, error) {
	level, err := ParseLevel(el.SelectAttrValue("Level", ""))
	if err != nil {
		return "", fmt.Errorf("%s: %w", el.GetPath(), err)
	}
	return level, nil
}

func (p *Policy) signedAttributes() *SignedAttributesConstraints {
	if p.Signature.SignedAttributes == nil {
		p.Signature.SignedAttributes = &SignedAttributesConstraints{}
	}
	return p.Signature.SignedAttributes
}
