package process

// BaseCheck carries the static parts of a check. Concrete checks embed it and
// implement Process.
type BaseCheck struct {
	TokenID       string
	Tag           MessageTag
	Indication    Indication
	SubIndication SubIndication
}

// ID implements Check.
func (b BaseCheck) ID() string { return b.TokenID }

// MessageTag implements Check.
func (b BaseCheck) MessageTag() MessageTag { return b.Tag }

// ErrorMessageTag implements Check.
func (b BaseCheck) ErrorMessageTag() MessageTag { return b.Tag.Answer() }

// FailedIndication implements Check.
func (b BaseCheck) FailedIndication() Indication { return b.Indication }

// FailedSubIndication implements Check.
func (b BaseCheck) FailedSubIndication() SubIndication { return b.SubIndication }

// FuncCheck is a check evaluated by a function.
type FuncCheck struct {
	BaseCheck
	Fn func() bool
}

// NewFuncCheck creates a check evaluated by fn.
func NewFuncCheck(base BaseCheck, fn func() bool) *FuncCheck {
	return &FuncCheck{BaseCheck: base, Fn: fn}
}

// Process implements Check.
func (c *FuncCheck) Process() bool {
	return c.Fn()
}

// subChainCheck runs a nested chain as one check of its parent.
type subChainCheck struct {
	id         string
	chain      *Chain
	conclusion *Conclusion
}

// SubChain adapts chain into a check. The check passes when the nested
// chain concludes PASSED; otherwise its failure carries the nested
// indication and sub-indication. The nested conclusion is attached to the
// parent's conclusion.
func SubChain(id string, chain *Chain) Check {
	return &subChainCheck{id: id, chain: chain}
}

func (s *subChainCheck) ID() string { return s.id }

func (s *subChainCheck) Process() bool {
	s.conclusion = s.chain.Execute()
	return s.conclusion.IsPassed()
}

func (s *subChainCheck) MessageTag() MessageTag { return TagChainPassed }

func (s *subChainCheck) ErrorMessageTag() MessageTag { return TagChainPassed.Answer() }

func (s *subChainCheck) FailedIndication() Indication {
	if s.conclusion == nil {
		return IndicationIndeterminate
	}
	return s.conclusion.Indication
}

func (s *subChainCheck) FailedSubIndication() SubIndication {
	if s.conclusion == nil {
		return ""
	}
	return s.conclusion.SubIndication
}

func (s *subChainCheck) MessageArgs() []any {
	return []any{s.chain.title.Text(s.chain.printer)}
}

func (s *subChainCheck) Conclusion() *Conclusion {
	return s.conclusion
}
