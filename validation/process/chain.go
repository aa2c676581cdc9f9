package process

import (
	"golang.org/x/text/message"

	"github.com/georgepadayatti/adesverdict/validation/policy"
)

// Check is one validation step. Process must be free of side effects on the
// conclusion; the chain records the outcome according to the constraint level.
type Check interface {
	// ID names the token the check is about.
	ID() string
	// Process evaluates the check.
	Process() bool
	// MessageTag is the catalog key of the check question.
	MessageTag() MessageTag
	// ErrorMessageTag is the catalog key of the failure message.
	ErrorMessageTag() MessageTag
	// FailedIndication is the indication set when the check fails at FAIL level.
	FailedIndication() Indication
	// FailedSubIndication is the sub-indication set with FailedIndication.
	FailedSubIndication() SubIndication
}

// AdditionalInfoProvider is implemented by checks that add contextual
// information (dates, algorithm names, token ids) to their record.
type AdditionalInfoProvider interface {
	AdditionalInfo(p *message.Printer) string
}

// MessageArgsProvider is implemented by checks whose messages are formats.
type MessageArgsProvider interface {
	MessageArgs() []any
}

// ConclusionProvider is implemented by checks that run a sub-chain.
type ConclusionProvider interface {
	Conclusion() *Conclusion
}

type chainItem struct {
	check      Check
	constraint policy.Constraint
}

// Chain is an ordered list of checks, each bound to a constraint.
// A Chain may be executed several times; every execution produces a new
// Conclusion owned by the caller.
type Chain struct {
	title         MessageTag
	items         []chainItem
	printer       *message.Printer
	recordIgnored bool
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithPrinter sets the printer used for record texts.
func WithPrinter(p *message.Printer) ChainOption {
	return func(c *Chain) {
		if p != nil {
			c.printer = p
		}
	}
}

// WithRecordIgnored makes ignored checks leave an IGNORED record.
func WithRecordIgnored(record bool) ChainOption {
	return func(c *Chain) {
		c.recordIgnored = record
	}
}

// NewChain creates an empty chain.
func NewChain(title MessageTag, opts ...ChainOption) *Chain {
	c := &Chain{
		title:   title,
		printer: DefaultPrinter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add appends a check bound to constraint and returns the chain.
// A nil constraint behaves as IGNORE.
func (c *Chain) Add(check Check, constraint policy.Constraint) *Chain {
	c.items = append(c.items, chainItem{check: check, constraint: constraint})
	return c
}

// Len returns the number of checks in the chain.
func (c *Chain) Len() int {
	return len(c.items)
}

// Title returns the chain title tag.
func (c *Chain) Title() MessageTag {
	return c.title
}

// Execute evaluates the checks in order.
//
// IGNORE skips a check without evaluating it. A failing check records
// WARNING under WARN and INFORMATION under INFORM and the chain goes on.
// Under FAIL the check records NOT_OK, sets the conclusion's indication and
// sub-indication from the check and ends the chain. When no FAIL-level
// check failed the indication is PASSED.
func (c *Chain) Execute() *Conclusion {
	conclusion := &Conclusion{Title: c.title.Text(c.printer)}

	for _, it := range c.items {
		level := policy.LevelOf(it.constraint)
		if level == policy.LevelIgnore {
			if c.recordIgnored {
				conclusion.Records = append(conclusion.Records, c.newRecord(it.check, StatusIgnored, false))
			}
			continue
		}

		passed := it.check.Process()
		if cp, ok := it.check.(ConclusionProvider); ok && cp.Conclusion() != nil {
			conclusion.Children = append(conclusion.Children, cp.Conclusion())
		}
		if passed {
			conclusion.Records = append(conclusion.Records, c.newRecord(it.check, StatusOK, true))
			continue
		}

		key := string(it.check.ErrorMessageTag())
		msg := it.check.ErrorMessageTag().Text(c.printer, messageArgs(it.check)...)
		switch level {
		case policy.LevelWarn:
			conclusion.Records = append(conclusion.Records, c.newRecord(it.check, StatusWarning, true))
			conclusion.AddWarning(key, msg)
		case policy.LevelInform:
			conclusion.Records = append(conclusion.Records, c.newRecord(it.check, StatusInformation, true))
			conclusion.AddInfo(key, msg)
		default:
			conclusion.Records = append(conclusion.Records, c.newRecord(it.check, StatusNotOK, true))
			conclusion.AddError(key, msg)
			indication, sub := it.check.FailedIndication(), it.check.FailedSubIndication()
			if indication == "" || indication == IndicationPassed {
				indication, sub = IndicationIndeterminate, SubIndicationPolicyProcessingError
			}
			conclusion.setFailure(indication, sub)
			return conclusion
		}
	}

	if conclusion.Indication == "" {
		conclusion.Indication = IndicationPassed
	}
	return conclusion
}

func (c *Chain) newRecord(check Check, status Status, evaluated bool) CheckRecord {
	args := messageArgs(check)
	rec := CheckRecord{
		ID:     check.ID(),
		Key:    string(check.MessageTag()),
		Name:   check.MessageTag().Text(c.printer, args...),
		Status: status,
	}
	switch status {
	case StatusNotOK, StatusWarning, StatusInformation:
		rec.Message = check.ErrorMessageTag().Text(c.printer, args...)
	}
	if evaluated {
		if p, ok := check.(AdditionalInfoProvider); ok {
			rec.AdditionalInfo = p.AdditionalInfo(c.printer)
		}
	}
	return rec
}

func messageArgs(check Check) []any {
	if p, ok := check.(MessageArgsProvider); ok {
		return p.MessageArgs()
	}
	return nil
}
