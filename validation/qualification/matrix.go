package qualification

type cell struct {
	ades AdESStatus
	qc   bool
	esig bool
	qscd bool
}

var matrix = map[cell]SignatureQualification{
	{AdESYes, true, true, true}:    QESig,
	{AdESYes, true, false, true}:   QES,
	{AdESYes, true, true, false}:   AdESigQC,
	{AdESYes, true, false, false}:  AdESQC,
	{AdESYes, false, true, true}:   AdESig,
	{AdESYes, false, true, false}:  AdESig,
	{AdESYes, false, false, true}:  AdES,
	{AdESYes, false, false, false}: AdES,

	{AdESIndeterminate, true, true, true}:    IndeterminateQESig,
	{AdESIndeterminate, true, false, true}:   IndeterminateQES,
	{AdESIndeterminate, true, true, false}:   IndeterminateAdESigQC,
	{AdESIndeterminate, true, false, false}:  IndeterminateAdESQC,
	{AdESIndeterminate, false, true, true}:   IndeterminateAdESig,
	{AdESIndeterminate, false, true, false}:  IndeterminateAdESig,
	{AdESIndeterminate, false, false, true}:  IndeterminateAdES,
	{AdESIndeterminate, false, false, false}: IndeterminateAdES,

	{AdESNo, true, true, true}:    NotAdESQCQSCD,
	{AdESNo, true, false, true}:   NotAdESQCQSCD,
	{AdESNo, true, true, false}:   NotAdESQC,
	{AdESNo, true, false, false}:  NotAdESQC,
	{AdESNo, false, true, true}:   NotAdES,
	{AdESNo, false, true, false}:  NotAdES,
	{AdESNo, false, false, true}:  NotAdES,
	{AdESNo, false, false, false}: NotAdES,
}

// Classify returns the qualification label for the four verdict dimensions.
// An AdES status outside the three known values is treated as not AdES.
func Classify(ades AdESStatus, qc, esig, qscd bool) SignatureQualification {
	if ades != AdESYes && ades != AdESIndeterminate {
		ades = AdESNo
	}
	return matrix[cell{ades, qc, esig, qscd}]
}

// Cell is one input combination of the matrix.
type Cell struct {
	AdES AdESStatus
	QC   bool
	ESig bool
	QSCD bool
}

// Cells returns every input combination known to the matrix.
func Cells() []Cell {
	out := make([]Cell, 0, len(matrix))
	for c := range matrix {
		out = append(out, Cell{AdES: c.ades, QC: c.qc, ESig: c.esig, QSCD: c.qscd})
	}
	return out
}

// ClassifyStatus classifies using the QC facts of the signing certificate.
func ClassifyStatus(ades AdESStatus, status QCStatus) SignatureQualification {
	return Classify(ades, status.IsQC(), status.IsForESig(), status.IsQSCD())
}
