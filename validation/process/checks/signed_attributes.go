package checks

import (
	"strings"
	"time"

	"golang.org/x/text/message"

	"github.com/georgepadayatti/adesverdict/validation/policy"
	"github.com/georgepadayatti/adesverdict/validation/process"
	"github.com/georgepadayatti/adesverdict/validation/signature"
)

func sigConstraintsBase(sig *signature.AdvancedSignature, tag process.MessageTag) process.BaseCheck {
	return process.BaseCheck{
		TokenID:       sig.ID,
		Tag:           tag,
		Indication:    process.IndicationIndeterminate,
		SubIndication: process.SubIndicationSigConstraintsFailure,
	}
}

// SigningTimeCheck passes when a claimed signing time is present. For PAdES
// the /M entry of the signature dictionary counts as well.
type SigningTimeCheck struct {
	process.BaseCheck
	sig *signature.AdvancedSignature
}

// NewSigningTimeCheck creates the check for sig.
func NewSigningTimeCheck(sig *signature.AdvancedSignature) *SigningTimeCheck {
	return &SigningTimeCheck{BaseCheck: sigConstraintsBase(sig, process.TagSigningTime), sig: sig}
}

// Process implements process.Check.
func (c *SigningTimeCheck) Process() bool {
	return c.sig.ClaimedSigningTime() != nil
}

// AdditionalInfo reports the claimed signing time.
func (c *SigningTimeCheck) AdditionalInfo(p *message.Printer) string {
	t := c.sig.ClaimedSigningTime()
	if t == nil {
		return ""
	}
	return process.InfoValues.Text(p, t.UTC().Format(time.RFC3339))
}

// ValueCheck compares a single signed attribute value with a ValueConstraint.
type ValueCheck struct {
	process.BaseCheck
	value      string
	constraint *policy.ValueConstraint
}

// NewValueCheck creates a check of value against constraint.
func NewValueCheck(sig *signature.AdvancedSignature, tag process.MessageTag, value string, constraint *policy.ValueConstraint) *ValueCheck {
	return &ValueCheck{BaseCheck: sigConstraintsBase(sig, tag), value: value, constraint: constraint}
}

// NewContentTypeCheck checks the content-type attribute.
func NewContentTypeCheck(sig *signature.AdvancedSignature, constraint *policy.ValueConstraint) *ValueCheck {
	return NewValueCheck(sig, process.TagContentType, sig.SignedAttributes.ContentType, constraint)
}

// NewContentHintsCheck checks the content-hints attribute.
func NewContentHintsCheck(sig *signature.AdvancedSignature, constraint *policy.ValueConstraint) *ValueCheck {
	return NewValueCheck(sig, process.TagContentHints, sig.SignedAttributes.ContentHints, constraint)
}

// NewContentIdentifierCheck checks the content-identifier attribute.
func NewContentIdentifierCheck(sig *signature.AdvancedSignature, constraint *policy.ValueConstraint) *ValueCheck {
	return NewValueCheck(sig, process.TagContentIdentifier, sig.SignedAttributes.ContentIdentifier, constraint)
}

// Process implements process.Check.
func (c *ValueCheck) Process() bool {
	return c.constraint.Accepts(c.value)
}

// AdditionalInfo reports the value found.
func (c *ValueCheck) AdditionalInfo(p *message.Printer) string {
	if c.value == "" {
		return ""
	}
	return process.InfoValues.Text(p, c.value)
}

// MultiValuesCheck compares a list of values with a MultiValuesConstraint.
type MultiValuesCheck struct {
	process.BaseCheck
	values     []string
	constraint *policy.MultiValuesConstraint
}

// NewMultiValuesCheck creates a check of values against constraint.
func NewMultiValuesCheck(base process.BaseCheck, values []string, constraint *policy.MultiValuesConstraint) *MultiValuesCheck {
	return &MultiValuesCheck{BaseCheck: base, values: values, constraint: constraint}
}

// NewCommitmentTypeCheck checks the commitment type indications.
func NewCommitmentTypeCheck(sig *signature.AdvancedSignature, constraint *policy.MultiValuesConstraint) *MultiValuesCheck {
	return NewMultiValuesCheck(sigConstraintsBase(sig, process.TagCommitmentType), sig.SignedAttributes.CommitmentTypes, constraint)
}

// NewClaimedRolesCheck checks the claimed signer roles.
func NewClaimedRolesCheck(sig *signature.AdvancedSignature, constraint *policy.MultiValuesConstraint) *MultiValuesCheck {
	return NewMultiValuesCheck(sigConstraintsBase(sig, process.TagClaimedRoles), sig.SignedAttributes.ClaimedRoles, constraint)
}

// NewCertifiedRolesCheck checks the certified signer roles.
func NewCertifiedRolesCheck(sig *signature.AdvancedSignature, constraint *policy.MultiValuesConstraint) *MultiValuesCheck {
	return NewMultiValuesCheck(sigConstraintsBase(sig, process.TagCertifiedRoles), sig.SignedAttributes.CertifiedRoles, constraint)
}

// Process implements process.Check.
func (c *MultiValuesCheck) Process() bool {
	return c.constraint.Accepts(c.values)
}

// AdditionalInfo lists the values found.
func (c *MultiValuesCheck) AdditionalInfo(p *message.Printer) string {
	if len(c.values) == 0 {
		return ""
	}
	return process.InfoValues.Text(p, strings.Join(c.values, ", "))
}

// SignerLocationCheck passes when a signer location is present.
type SignerLocationCheck struct {
	process.BaseCheck
	sig *signature.AdvancedSignature
}

// NewSignerLocationCheck creates the check for sig.
func NewSignerLocationCheck(sig *signature.AdvancedSignature) *SignerLocationCheck {
	return &SignerLocationCheck{BaseCheck: sigConstraintsBase(sig, process.TagSignerLocation), sig: sig}
}

// Process implements process.Check.
func (c *SignerLocationCheck) Process() bool {
	return !c.sig.SignedAttributes.SignerLocation.IsEmpty()
}

// ContentTimestampCheck passes when at least one content timestamp is present.
type ContentTimestampCheck struct {
	process.BaseCheck
	sig *signature.AdvancedSignature
}

// NewContentTimestampCheck creates the check for sig.
func NewContentTimestampCheck(sig *signature.AdvancedSignature) *ContentTimestampCheck {
	return &ContentTimestampCheck{BaseCheck: sigConstraintsBase(sig, process.TagContentTimestamp), sig: sig}
}

// Process implements process.Check.
func (c *ContentTimestampCheck) Process() bool {
	return len(c.sig.ContentTimestamps()) > 0
}
