package checks

import (
	"github.com/georgepadayatti/adesverdict/validation/process"
	"github.com/georgepadayatti/adesverdict/validation/qualification"
)

// QCStatusCheck asserts one property of the signing certificate's QC
// statements. Failures never change the qualification label, which is
// computed by the matrix; they only document why a label was reached.
type QCStatusCheck struct {
	process.BaseCheck
	status qualification.QCStatus
	test   func(qualification.QCStatus) bool
}

func newQCStatusCheck(certID string, tag process.MessageTag, status qualification.QCStatus, test func(qualification.QCStatus) bool) *QCStatusCheck {
	return &QCStatusCheck{
		BaseCheck: process.BaseCheck{
			TokenID:       certID,
			Tag:           tag,
			Indication:    process.IndicationIndeterminate,
			SubIndication: process.SubIndicationChainConstraintsFailed,
		},
		status: status,
		test:   test,
	}
}

// NewQCComplianceCheck passes when the certificate claims QcCompliance.
func NewQCComplianceCheck(certID string, status qualification.QCStatus) *QCStatusCheck {
	return newQCStatusCheck(certID, process.TagQCCompliance, status, qualification.QCStatus.IsQC)
}

// NewForESigCheck passes when the certificate is issued for electronic signatures.
func NewForESigCheck(certID string, status qualification.QCStatus) *QCStatusCheck {
	return newQCStatusCheck(certID, process.TagForESig, status, qualification.QCStatus.IsForESig)
}

// NewQSCDCheck passes when the certificate claims QcSSCD.
func NewQSCDCheck(certID string, status qualification.QCStatus) *QCStatusCheck {
	return newQCStatusCheck(certID, process.TagQSCD, status, qualification.QCStatus.IsQSCD)
}

// Process implements process.Check.
func (c *QCStatusCheck) Process() bool {
	return c.test(c.status)
}
