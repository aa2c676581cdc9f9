package checks

import (
	"time"

	"golang.org/x/text/message"

	"github.com/georgepadayatti/adesverdict/certvalidator"
	"github.com/georgepadayatti/adesverdict/certvalidator/revinfo"
	"github.com/georgepadayatti/adesverdict/validation/policy"
	"github.com/georgepadayatti/adesverdict/validation/process"
	"github.com/georgepadayatti/adesverdict/validation/qualification"
)

// CertificateSubject is a certificate checked against a validated context.
// Token may be nil when no signing certificate was found; every check then
// fails.
type CertificateSubject struct {
	Token   *certvalidator.CertificateToken
	Context *certvalidator.ValidationContext
}

func (s CertificateSubject) id() string {
	if s.Token == nil {
		return ""
	}
	return s.Token.ID()
}

func (s CertificateSubject) latestRevocation() *revinfo.RevocationToken {
	if s.Token == nil || s.Context == nil {
		return nil
	}
	return revinfo.Latest(s.Context.RevocationData(s.Token))
}

func (s CertificateSubject) exempt() bool {
	return s.Token != nil && s.Context != nil && s.Context.IsRevocationExempt(s.Token)
}

// CertificateValidityCheck passes when the validation time lies in the
// certificate's validity range.
type CertificateValidityCheck struct {
	process.BaseCheck
	subject CertificateSubject
}

// NewCertificateValidityCheck creates the check for subject.
func NewCertificateValidityCheck(subject CertificateSubject) *CertificateValidityCheck {
	return &CertificateValidityCheck{
		BaseCheck: process.BaseCheck{
			TokenID:       subject.id(),
			Tag:           process.TagCertificateValidity,
			Indication:    process.IndicationIndeterminate,
			SubIndication: process.SubIndicationOutOfBoundsNoPoE,
		},
		subject: subject,
	}
}

// Process implements process.Check.
func (c *CertificateValidityCheck) Process() bool {
	if c.subject.Token == nil || c.subject.Context == nil {
		return false
	}
	return c.subject.Token.IsValidAt(c.subject.Context.ValidationTime())
}

// AdditionalInfo reports the validation time.
func (c *CertificateValidityCheck) AdditionalInfo(p *message.Printer) string {
	if c.subject.Context == nil {
		return ""
	}
	return process.InfoValidationTime.Text(p, c.subject.Context.ValidationTime().UTC().Format(time.RFC3339))
}

// RevocationDataPresentCheck passes when the certificate is exempt from
// revocation checking or revocation data covers the validation time.
type RevocationDataPresentCheck struct {
	process.BaseCheck
	subject CertificateSubject
}

// NewRevocationDataPresentCheck creates the check for subject.
func NewRevocationDataPresentCheck(subject CertificateSubject) *RevocationDataPresentCheck {
	return &RevocationDataPresentCheck{
		BaseCheck: process.BaseCheck{
			TokenID:       subject.id(),
			Tag:           process.TagRevocationDataPresent,
			Indication:    process.IndicationIndeterminate,
			SubIndication: process.SubIndicationTryLater,
		},
		subject: subject,
	}
}

// Process implements process.Check.
func (c *RevocationDataPresentCheck) Process() bool {
	if c.subject.Token == nil || c.subject.Context == nil {
		return false
	}
	return c.subject.exempt() || c.subject.Context.HasCoveringRevocationData(c.subject.Token)
}

// NotRevokedCheck passes unless the latest revocation token revokes the
// certificate at or before the validation time. Suspension is left to
// NotOnHoldCheck.
type NotRevokedCheck struct {
	process.BaseCheck
	subject CertificateSubject
}

// NewNotRevokedCheck creates the check for subject.
func NewNotRevokedCheck(subject CertificateSubject) *NotRevokedCheck {
	return &NotRevokedCheck{
		BaseCheck: process.BaseCheck{
			TokenID:       subject.id(),
			Tag:           process.TagCertificateNotRevoked,
			Indication:    process.IndicationIndeterminate,
			SubIndication: process.SubIndicationRevokedNoPoE,
		},
		subject: subject,
	}
}

// Process implements process.Check.
func (c *NotRevokedCheck) Process() bool {
	if c.subject.Token == nil {
		return false
	}
	if c.subject.exempt() {
		return true
	}
	latest := c.subject.latestRevocation()
	if latest == nil || !latest.IsRevoked() || latest.IsOnHold() {
		return true
	}
	if latest.RevocationTime == nil {
		return false
	}
	return latest.RevocationTime.After(c.subject.Context.ValidationTime())
}

// AdditionalInfo reports the revocation reason and time.
func (c *NotRevokedCheck) AdditionalInfo(p *message.Printer) string {
	return revocationInfo(p, c.subject.latestRevocation())
}

// NotOnHoldCheck passes unless the latest revocation token suspends the
// certificate.
type NotOnHoldCheck struct {
	process.BaseCheck
	subject CertificateSubject
}

// NewNotOnHoldCheck creates the check for subject.
func NewNotOnHoldCheck(subject CertificateSubject) *NotOnHoldCheck {
	return &NotOnHoldCheck{
		BaseCheck: process.BaseCheck{
			TokenID:       subject.id(),
			Tag:           process.TagCertificateNotOnHold,
			Indication:    process.IndicationIndeterminate,
			SubIndication: process.SubIndicationTryLater,
		},
		subject: subject,
	}
}

// Process implements process.Check.
func (c *NotOnHoldCheck) Process() bool {
	if c.subject.Token == nil {
		return false
	}
	if c.subject.exempt() {
		return true
	}
	latest := c.subject.latestRevocation()
	return latest == nil || !latest.IsOnHold()
}

// AdditionalInfo reports the suspension time.
func (c *NotOnHoldCheck) AdditionalInfo(p *message.Printer) string {
	return revocationInfo(p, c.subject.latestRevocation())
}

func revocationInfo(p *message.Printer, token *revinfo.RevocationToken) string {
	if token == nil || !token.IsRevoked() || token.RevocationTime == nil {
		return ""
	}
	return process.InfoRevocation.Text(p, token.Reason.String(), token.RevocationTime.UTC().Format(time.RFC3339))
}

// SemanticsIdentifierCheck compares the QC semantics identifiers of the
// certificate with the accepted ones.
type SemanticsIdentifierCheck struct {
	*MultiValuesCheck
}

// NewSemanticsIdentifierCheck creates the check for subject using its QC
// statements.
func NewSemanticsIdentifierCheck(subject CertificateSubject, status qualification.QCStatus, constraint *policy.MultiValuesConstraint) *SemanticsIdentifierCheck {
	base := process.BaseCheck{
		TokenID:       subject.id(),
		Tag:           process.TagSemanticsIdentifier,
		Indication:    process.IndicationIndeterminate,
		SubIndication: process.SubIndicationChainConstraintsFailed,
	}
	return &SemanticsIdentifierCheck{NewMultiValuesCheck(base, status.SemanticsIdentifiers, constraint)}
}
