package checks

import (
	"time"

	"golang.org/x/text/message"

	"github.com/georgepadayatti/adesverdict/certvalidator"
	"github.com/georgepadayatti/adesverdict/validation/process"
	"github.com/georgepadayatti/adesverdict/validation/signature"
)

func timestampBase(ts *signature.Timestamp, tag process.MessageTag, sub process.SubIndication) process.BaseCheck {
	return process.BaseCheck{
		TokenID:       ts.ID,
		Tag:           tag,
		Indication:    process.IndicationIndeterminate,
		SubIndication: sub,
	}
}

func timestampInfo(p *message.Printer, ts *signature.Timestamp) string {
	return process.InfoTimestamp.Text(p, ts.ID, ts.CreationTime.UTC().Format(time.RFC3339))
}

// MessageImprintFoundCheck passes when the data covered by the timestamp
// was found.
type MessageImprintFoundCheck struct {
	process.BaseCheck
	ts *signature.Timestamp
}

// NewMessageImprintFoundCheck creates the check for ts.
func NewMessageImprintFoundCheck(ts *signature.Timestamp) *MessageImprintFoundCheck {
	return &MessageImprintFoundCheck{
		BaseCheck: timestampBase(ts, process.TagMessageImprintFound, process.SubIndicationSignedDataNotFound),
		ts:        ts,
	}
}

// Process implements process.Check.
func (c *MessageImprintFoundCheck) Process() bool {
	return c.ts.MessageImprintFound
}

// AdditionalInfo names the timestamp.
func (c *MessageImprintFoundCheck) AdditionalInfo(p *message.Printer) string {
	return timestampInfo(p, c.ts)
}

// MessageImprintIntactCheck passes when the imprint matches the covered data.
type MessageImprintIntactCheck struct {
	process.BaseCheck
	ts *signature.Timestamp
}

// NewMessageImprintIntactCheck creates the check for ts.
func NewMessageImprintIntactCheck(ts *signature.Timestamp) *MessageImprintIntactCheck {
	base := timestampBase(ts, process.TagMessageImprintIntact, process.SubIndicationHashFailure)
	base.Indication = process.IndicationFailed
	return &MessageImprintIntactCheck{BaseCheck: base, ts: ts}
}

// Process implements process.Check.
func (c *MessageImprintIntactCheck) Process() bool {
	return c.ts.MessageImprintFound && c.ts.MessageImprintIntact
}

// TimestampBeforeExpiryCheck passes when the timestamp was produced strictly
// before the signing certificate expired. Without a signing certificate
// there is nothing to compare and the check passes.
type TimestampBeforeExpiryCheck struct {
	process.BaseCheck
	ts          *signature.Timestamp
	signingCert *certvalidator.CertificateToken
}

// NewTimestampBeforeExpiryCheck creates the check for ts.
func NewTimestampBeforeExpiryCheck(ts *signature.Timestamp, signingCert *certvalidator.CertificateToken) *TimestampBeforeExpiryCheck {
	return &TimestampBeforeExpiryCheck{
		BaseCheck:   timestampBase(ts, process.TagTimestampBeforeExpiry, process.SubIndicationExpired),
		ts:          ts,
		signingCert: signingCert,
	}
}

// Process implements process.Check.
func (c *TimestampBeforeExpiryCheck) Process() bool {
	if c.signingCert == nil {
		return true
	}
	return c.ts.CreationTime.Before(c.signingCert.NotAfter())
}

// AdditionalInfo reports the production and expiry times.
func (c *TimestampBeforeExpiryCheck) AdditionalInfo(p *message.Printer) string {
	info := timestampInfo(p, c.ts)
	if c.signingCert != nil {
		info += "; " + process.InfoCertificateExpiry.Text(p, c.signingCert.NotAfter().UTC().Format(time.RFC3339))
	}
	return info
}
