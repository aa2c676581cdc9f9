package qualification

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgepadayatti/adesverdict/validation/process"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		ades     AdESStatus
		qc       bool
		esig     bool
		qscd     bool
		expected SignatureQualification
	}{
		{AdESYes, true, true, true, QESig},
		{AdESYes, true, false, true, QES},
		{AdESYes, true, true, false, AdESigQC},
		{AdESYes, true, false, false, AdESQC},
		{AdESYes, false, true, true, AdESig},
		{AdESYes, false, false, false, AdES},
		{AdESIndeterminate, true, true, true, IndeterminateQESig},
		{AdESIndeterminate, true, false, true, IndeterminateQES},
		{AdESIndeterminate, true, true, false, IndeterminateAdESigQC},
		{AdESIndeterminate, true, false, false, IndeterminateAdESQC},
		{AdESIndeterminate, false, true, false, IndeterminateAdESig},
		{AdESIndeterminate, false, false, true, IndeterminateAdES},
		{AdESNo, true, true, true, NotAdESQCQSCD},
		{AdESNo, true, false, false, NotAdESQC},
		{AdESNo, false, false, false, NotAdES},
		{AdESNo, false, true, true, NotAdES},
	}

	for _, tt := range tests {
		got := Classify(tt.ades, tt.qc, tt.esig, tt.qscd)
		assert.Equal(t, tt.expected, got, "Classify(%v, qc=%v, esig=%v, qscd=%v)", tt.ades, tt.qc, tt.esig, tt.qscd)
	}
}

func TestClassifyUnknownStatus(t *testing.T) {
	assert.Equal(t, NotAdES, Classify(AdESStatus(42), false, false, false))
	assert.Equal(t, NotAdESQC, Classify(AdESStatus(-1), true, true, false))
}

func TestCellsAreExhaustive(t *testing.T) {
	cells := Cells()
	require.Len(t, cells, 24)

	seen := map[Cell]bool{}
	for _, c := range cells {
		seen[c] = true
		assert.False(t, Classify(c.AdES, c.QC, c.ESig, c.QSCD).IsZero(), "cell %+v has no label", c)
	}
	for _, ades := range []AdESStatus{AdESNo, AdESIndeterminate, AdESYes} {
		for _, qc := range []bool{false, true} {
			for _, esig := range []bool{false, true} {
				for _, qscd := range []bool{false, true} {
					assert.True(t, seen[Cell{ades, qc, esig, qscd}])
				}
			}
		}
	}
}

func TestClassifyProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	statuses := gen.IntRange(int(AdESNo), int(AdESYes))

	properties.Property("every input has a label", prop.ForAll(
		func(n int, qc, esig, qscd bool) bool {
			return !Classify(AdESStatus(n), qc, esig, qscd).IsZero()
		},
		statuses, gen.Bool(), gen.Bool(), gen.Bool(),
	))

	properties.Property("only AdES signatures are qualified", prop.ForAll(
		func(n int, qc, esig, qscd bool) bool {
			ades := AdESStatus(n)
			q := Classify(ades, qc, esig, qscd)
			return q.IsQualified() == (ades == AdESYes && qc && qscd)
		},
		statuses, gen.Bool(), gen.Bool(), gen.Bool(),
	))

	properties.Property("without QC the QSCD flag does not matter", prop.ForAll(
		func(n int, esig bool) bool {
			ades := AdESStatus(n)
			return Classify(ades, false, esig, true) == Classify(ades, false, esig, false)
		},
		statuses, gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestClassifyStatus(t *testing.T) {
	status := QCStatus{Compliance: true, SSCD: true, Types: []QCType{QCTypeEseal}}
	assert.Equal(t, QES, ClassifyStatus(AdESYes, status))
	assert.Equal(t, QESig, ClassifyStatus(AdESYes, QCStatus{Compliance: true, SSCD: true}))
}

func TestAdESStatusFromIndication(t *testing.T) {
	assert.Equal(t, AdESYes, AdESStatusFromIndication(process.IndicationPassed))
	assert.Equal(t, AdESIndeterminate, AdESStatusFromIndication(process.IndicationIndeterminate))
	assert.Equal(t, AdESNo, AdESStatusFromIndication(process.IndicationFailed))
	assert.Equal(t, AdESNo, AdESStatusFromIndication(""))
}

func TestQualificationLabels(t *testing.T) {
	assert.Len(t, All(), 15)
	assert.Equal(t, "ADESIG_QC", AdESigQC.String())
	assert.Equal(t, "AdESig-QC", AdESigQC.Readable())
	assert.Equal(t, "Not AdES but QC with QSCD", NotAdESQCQSCD.Readable())

	text, err := IndeterminateQES.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "INDETERMINATE_QES", string(text))

	var q SignatureQualification
	require.NoError(t, q.UnmarshalText(text))
	assert.Equal(t, IndeterminateQES, q)

	_, err = SignatureQualification{}.MarshalText()
	assert.Error(t, err)
	_, err = ParseQualification("QSEAL")
	assert.Error(t, err)
}
