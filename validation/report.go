package validation

import (
	"time"

	"github.com/georgepadayatti/adesverdict/validation/baseline"
	"github.com/georgepadayatti/adesverdict/validation/process"
	"github.com/georgepadayatti/adesverdict/validation/qualification"
	"github.com/georgepadayatti/adesverdict/validation/signature"
)

// Report is the outcome of one validation run.
type Report struct {
	// ID identifies this run
	ID             string           `json:"id"`
	SignatureID    string           `json:"signatureId"`
	Format         signature.Format `json:"format"`
	ValidationTime time.Time        `json:"validationTime"`

	Indication    process.Indication    `json:"indication"`
	SubIndication process.SubIndication `json:"subIndication,omitempty"`
	// Conclusion of the basic signature chain, with the certificate and
	// signature acceptance conclusions as children
	Conclusion *process.Conclusion `json:"conclusion"`
	Timestamps []*TimestampReport  `json:"timestamps,omitempty"`

	Baseline  baseline.Flags `json:"baseline"`
	Level     baseline.Level `json:"level"`
	LevelName string         `json:"levelName"`

	Qualification           qualification.SignatureQualification `json:"qualification"`
	QualificationConclusion *process.Conclusion                  `json:"qualificationConclusion"`
	QCStatus                qualification.QCStatus               `json:"qcStatus"`
}

// TimestampReport is the conclusion of the checks run on one timestamp.
type TimestampReport struct {
	ID         string                  `json:"id"`
	Type       signature.TimestampType `json:"type"`
	Conclusion *process.Conclusion     `json:"conclusion"`
}

// IsPassed returns true if the signature validated.
func (r *Report) IsPassed() bool {
	return r.Indication == process.IndicationPassed
}

// Summary returns the indication, the sub-indication when set, and the
// qualification label, e.g. "INDETERMINATE/TRY_LATER Indeterminate QESig".
func (r *Report) Summary() string {
	s := string(r.Indication)
	if r.SubIndication != "" {
		s += "/" + string(r.SubIndication)
	}
	return s + " " + r.Qualification.Readable()
}
