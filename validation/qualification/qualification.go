// Package qualification classifies the legal qualification of a signature
// from its AdES verdict and the qualified certificate facts of its signer.
package qualification

import (
	"fmt"

	"github.com/georgepadayatti/adesverdict/validation/process"
)

// SignatureQualification is a qualification label. The only values are the
// package level variables below; the zero value is not a label.
type SignatureQualification struct {
	label    string
	readable string
}

var (
	QESig                 = SignatureQualification{"QESIG", "QESig"}
	QES                   = SignatureQualification{"QES", "QES"}
	AdESigQC              = SignatureQualification{"ADESIG_QC", "AdESig-QC"}
	AdESQC                = SignatureQualification{"ADES_QC", "AdES-QC"}
	AdESig                = SignatureQualification{"ADESIG", "AdESig"}
	AdES                  = SignatureQualification{"ADES", "AdES"}
	IndeterminateQESig    = SignatureQualification{"INDETERMINATE_QESIG", "Indeterminate QESig"}
	IndeterminateQES      = SignatureQualification{"INDETERMINATE_QES", "Indeterminate QES"}
	IndeterminateAdESigQC = SignatureQualification{"INDETERMINATE_ADESIG_QC", "Indeterminate AdESig-QC"}
	IndeterminateAdESQC   = SignatureQualification{"INDETERMINATE_ADES_QC", "Indeterminate AdES-QC"}
	IndeterminateAdESig   = SignatureQualification{"INDETERMINATE_ADESIG", "Indeterminate AdESig"}
	IndeterminateAdES     = SignatureQualification{"INDETERMINATE_ADES", "Indeterminate AdES"}
	NotAdESQCQSCD         = SignatureQualification{"NOT_ADES_QC_QSCD", "Not AdES but QC with QSCD"}
	NotAdESQC             = SignatureQualification{"NOT_ADES_QC", "Not AdES but QC"}
	NotAdES               = SignatureQualification{"NOT_ADES", "Not AdES"}
)

var allQualifications = []SignatureQualification{
	QESig, QES, AdESigQC, AdESQC, AdESig, AdES,
	IndeterminateQESig, IndeterminateQES, IndeterminateAdESigQC,
	IndeterminateAdESQC, IndeterminateAdESig, IndeterminateAdES,
	NotAdESQCQSCD, NotAdESQC, NotAdES,
}

// All returns every label.
func All() []SignatureQualification {
	out := make([]SignatureQualification, len(allQualifications))
	copy(out, allQualifications)
	return out
}

// String returns the label, e.g. ADESIG_QC.
func (q SignatureQualification) String() string {
	return q.label
}

// Readable returns the display name, e.g. AdESig-QC.
func (q SignatureQualification) Readable() string {
	return q.readable
}

// IsZero reports whether q is not one of the labels.
func (q SignatureQualification) IsZero() bool {
	return q.label == ""
}

// IsQualified reports whether q is QESig or QES.
func (q SignatureQualification) IsQualified() bool {
	return q == QESig || q == QES
}

// MarshalText implements encoding.TextMarshaler.
func (q SignatureQualification) MarshalText() ([]byte, error) {
	if q.IsZero() {
		return nil, fmt.Errorf("qualification: zero value is not a label")
	}
	return []byte(q.label), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *SignatureQualification) UnmarshalText(text []byte) error {
	parsed, err := ParseQualification(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// ParseQualification returns the label named s.
func ParseQualification(s string) (SignatureQualification, error) {
	for _, q := range allQualifications {
		if q.label == s {
			return q, nil
		}
	}
	return SignatureQualification{}, fmt.Errorf("qualification: unknown label %q", s)
}

// AdESStatus is the tri-state AdES verdict.
type AdESStatus int

const (
	AdESNo AdESStatus = iota
	AdESIndeterminate
	AdESYes
)

func (s AdESStatus) String() string {
	switch s {
	case AdESYes:
		return "ADES"
	case AdESIndeterminate:
		return "INDETERMINATE"
	default:
		return "NOT_ADES"
	}
}

// AdESStatusFromIndication maps the basic signature indication.
func AdESStatusFromIndication(indication process.Indication) AdESStatus {
	switch indication {
	case process.IndicationPassed:
		return AdESYes
	case process.IndicationIndeterminate:
		return AdESIndeterminate
	default:
		return AdESNo
	}
}
