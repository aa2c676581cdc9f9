package checks

import (
	"golang.org/x/text/message"

	"github.com/georgepadayatti/adesverdict/validation/baseline"
	"github.com/georgepadayatti/adesverdict/validation/process"
	"github.com/georgepadayatti/adesverdict/validation/signature"
)

// BaselineLevelCheck passes when the signature reaches the minimum baseline
// level required by the policy.
type BaselineLevelCheck struct {
	process.BaseCheck
	format  signature.Format
	reached baseline.Level
	minimum baseline.Level
}

// NewBaselineLevelCheck creates the check for sig.
func NewBaselineLevelCheck(sig *signature.AdvancedSignature, reached, minimum baseline.Level) *BaselineLevelCheck {
	return &BaselineLevelCheck{
		BaseCheck: process.BaseCheck{
			TokenID:       sig.ID,
			Tag:           process.TagBaselineLevel,
			Indication:    process.IndicationFailed,
			SubIndication: process.SubIndicationFormatFailure,
		},
		format:  sig.Format,
		reached: reached,
		minimum: minimum,
	}
}

// Process implements process.Check.
func (c *BaselineLevelCheck) Process() bool {
	return c.reached >= c.minimum
}

// MessageArgs implements process.MessageArgsProvider.
func (c *BaselineLevelCheck) MessageArgs() []any {
	return []any{c.minimum.Name(c.format)}
}

// AdditionalInfo reports the level reached.
func (c *BaselineLevelCheck) AdditionalInfo(p *message.Printer) string {
	return process.InfoBaselineLevel.Text(p, c.reached.Name(c.format))
}
