package process

// Status is the outcome of one check as recorded in a conclusion.
type Status string

const (
	StatusOK          Status = "OK"
	StatusNotOK       Status = "NOT_OK"
	StatusWarning     Status = "WARNING"
	StatusInformation Status = "INFORMATION"
	StatusIgnored     Status = "IGNORED"
)

// Message is a localized message with its catalog key.
type Message struct {
	Key   string `json:"key" xml:"Key,attr"`
	Value string `json:"value" xml:",chardata"`
}

// CheckRecord is the trace of one evaluated check.
type CheckRecord struct {
	// ID of the token the check is about (signature, certificate, timestamp)
	ID string `json:"id,omitempty" xml:"Id,attr,omitempty"`
	// Key is the catalog key of the check question
	Key string `json:"key" xml:"Key,attr"`
	// Name is the localized check question
	Name   string `json:"name" xml:"Name"`
	Status Status `json:"status" xml:"Status"`
	// Message is the localized failure text for NOT_OK, WARNING and INFORMATION
	Message        string `json:"message,omitempty" xml:"Message,omitempty"`
	AdditionalInfo string `json:"additionalInfo,omitempty" xml:"AdditionalInfo,omitempty"`
}

// Conclusion is the verdict of one chain: its records and, once the chain
// has been executed, exactly one terminal indication.
type Conclusion struct {
	Title         string        `json:"title" xml:"Title,attr"`
	Indication    Indication    `json:"indication" xml:"Indication"`
	SubIndication SubIndication `json:"subIndication,omitempty" xml:"SubIndication,omitempty"`
	Records       []CheckRecord `json:"records,omitempty" xml:"Constraint,omitempty"`
	Errors        []Message     `json:"errors,omitempty" xml:"Errors>Error,omitempty"`
	Warnings      []Message     `json:"warnings,omitempty" xml:"Warnings>Warning,omitempty"`
	Infos         []Message     `json:"infos,omitempty" xml:"Infos>Info,omitempty"`

	// Children are the conclusions of sub-chains run as checks
	Children []*Conclusion `json:"children,omitempty" xml:"Block,omitempty"`
}

// AddError adds an error to the conclusion.
func (c *Conclusion) AddError(key, value string) {
	c.Errors = append(c.Errors, Message{Key: key, Value: value})
}

// AddWarning adds a warning to the conclusion.
func (c *Conclusion) AddWarning(key, value string) {
	c.Warnings = append(c.Warnings, Message{Key: key, Value: value})
}

// AddInfo adds information to the conclusion.
func (c *Conclusion) AddInfo(key, value string) {
	c.Infos = append(c.Infos, Message{Key: key, Value: value})
}

// IsPassed returns true if the indication is PASSED.
func (c *Conclusion) IsPassed() bool {
	return c.Indication == IndicationPassed
}

// IsFailed returns true if the indication is FAILED.
func (c *Conclusion) IsFailed() bool {
	return c.Indication == IndicationFailed
}

// IsIndeterminate returns true if the indication is INDETERMINATE.
func (c *Conclusion) IsIndeterminate() bool {
	return c.Indication == IndicationIndeterminate
}

// Record returns the first record with the given key, or nil.
func (c *Conclusion) Record(key MessageTag) *CheckRecord {
	for i := range c.Records {
		if c.Records[i].Key == string(key) {
			return &c.Records[i]
		}
	}
	return nil
}

// setFailure records the first fatal failure. Later calls are no-ops.
func (c *Conclusion) setFailure(indication Indication, sub SubIndication) {
	if c.Indication != "" {
		return
	}
	c.Indication = indication
	c.SubIndication = sub
}
