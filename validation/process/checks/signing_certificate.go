// Package checks holds the validation checks run by the validation chains.
//
// Each check embeds process.BaseCheck for its message tags and failure
// indication and only implements Process, plus AdditionalInfo or
// MessageArgs when its record carries context.
package checks

import (
	"golang.org/x/text/message"

	"github.com/georgepadayatti/adesverdict/validation/process"
	"github.com/georgepadayatti/adesverdict/validation/signature"
)

// SigningCertificateFoundCheck passes when a signing certificate candidate
// was identified.
type SigningCertificateFoundCheck struct {
	process.BaseCheck
	sig *signature.AdvancedSignature
}

// NewSigningCertificateFoundCheck creates the check for sig.
func NewSigningCertificateFoundCheck(sig *signature.AdvancedSignature) *SigningCertificateFoundCheck {
	return &SigningCertificateFoundCheck{
		BaseCheck: process.BaseCheck{
			TokenID:       sig.ID,
			Tag:           process.TagSigningCertificateFound,
			Indication:    process.IndicationIndeterminate,
			SubIndication: process.SubIndicationNoSigningCertificateFound,
		},
		sig: sig,
	}
}

// Process implements process.Check.
func (c *SigningCertificateFoundCheck) Process() bool {
	return c.sig.SigningCertificate != nil
}

// SigningCertificateRefCheck passes when the signed attributes reference
// the signing certificate.
type SigningCertificateRefCheck struct {
	process.BaseCheck
	sig *signature.AdvancedSignature
}

// NewSigningCertificateRefCheck creates the check for sig.
func NewSigningCertificateRefCheck(sig *signature.AdvancedSignature) *SigningCertificateRefCheck {
	return &SigningCertificateRefCheck{
		BaseCheck: process.BaseCheck{
			TokenID:       sig.ID,
			Tag:           process.TagSigningCertificateRef,
			Indication:    process.IndicationIndeterminate,
			SubIndication: process.SubIndicationNoSigningCertificateFound,
		},
		sig: sig,
	}
}

// Process implements process.Check.
func (c *SigningCertificateRefCheck) Process() bool {
	return c.sig.SignedAttributes.SigningCertificateRef != nil
}

// SigningCertificateMatchCheck passes when the digest of the signed
// reference matches the signing certificate.
type SigningCertificateMatchCheck struct {
	process.BaseCheck
	sig *signature.AdvancedSignature
}

// NewSigningCertificateMatchCheck creates the check for sig.
func NewSigningCertificateMatchCheck(sig *signature.AdvancedSignature) *SigningCertificateMatchCheck {
	return &SigningCertificateMatchCheck{
		BaseCheck: process.BaseCheck{
			TokenID:       sig.ID,
			Tag:           process.TagSigningCertificateMatch,
			Indication:    process.IndicationIndeterminate,
			SubIndication: process.SubIndicationNoSigningCertificateFound,
		},
		sig: sig,
	}
}

// Process implements process.Check.
func (c *SigningCertificateMatchCheck) Process() bool {
	ref := c.sig.SignedAttributes.SigningCertificateRef
	return ref != nil && ref.DigestMatch
}

// AdditionalInfo names the digest algorithm of the reference.
func (c *SigningCertificateMatchCheck) AdditionalInfo(p *message.Printer) string {
	ref := c.sig.SignedAttributes.SigningCertificateRef
	if ref == nil || ref.DigestAlgorithm == "" {
		return ""
	}
	return process.InfoValues.Text(p, ref.DigestAlgorithm)
}

// IssuerSerialMatchCheck passes when the reference carries no issuer-serial
// or the issuer-serial matches the signing certificate.
type IssuerSerialMatchCheck struct {
	process.BaseCheck
	sig *signature.AdvancedSignature
}

// NewIssuerSerialMatchCheck creates the check for sig.
func NewIssuerSerialMatchCheck(sig *signature.AdvancedSignature) *IssuerSerialMatchCheck {
	return &IssuerSerialMatchCheck{
		BaseCheck: process.BaseCheck{
			TokenID:       sig.ID,
			Tag:           process.TagIssuerSerialMatch,
			Indication:    process.IndicationIndeterminate,
			SubIndication: process.SubIndicationNoSigningCertificateFound,
		},
		sig: sig,
	}
}

// Process implements process.Check.
func (c *IssuerSerialMatchCheck) Process() bool {
	ref := c.sig.SignedAttributes.SigningCertificateRef
	if ref == nil {
		return false
	}
	return !ref.IssuerSerialPresent || ref.IssuerSerialMatch
}

// PolicyHashCheck passes when the signature has no explicit policy or the
// explicit policy carries its digest.
type PolicyHashCheck struct {
	process.BaseCheck
	sig *signature.AdvancedSignature
}

// NewPolicyHashCheck creates the check for sig.
func NewPolicyHashCheck(sig *signature.AdvancedSignature) *PolicyHashCheck {
	return &PolicyHashCheck{
		BaseCheck: process.BaseCheck{
			TokenID:       sig.ID,
			Tag:           process.TagPolicyHashPresent,
			Indication:    process.IndicationIndeterminate,
			SubIndication: process.SubIndicationSignaturePolicyNotAvailable,
		},
		sig: sig,
	}
}

// Process implements process.Check.
func (c *PolicyHashCheck) Process() bool {
	if !c.sig.HasExplicitPolicy() {
		return true
	}
	d := c.sig.Policy.Digest
	return d != nil && d.Algorithm != "" && len(d.Value) > 0
}
