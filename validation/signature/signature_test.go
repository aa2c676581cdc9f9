package signature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgepadayatti/adesverdict/certvalidator"
	"github.com/georgepadayatti/adesverdict/certvalidator/certtest"
	"github.com/georgepadayatti/adesverdict/certvalidator/revinfo"
)

func sourceOf(t *testing.T, cn string, origin certvalidator.CertificateOrigin) *certvalidator.CertificateSource {
	t.Helper()
	src := certvalidator.NewCertificateSource()
	src.AddCertificate(certtest.NewSelfSigned(t, cn).Cert, origin)
	return src
}

func TestCertificateSourcesExceptLastArchiveTimestamp(t *testing.T) {
	now := time.Now()
	sig := &AdvancedSignature{
		ID:           "S-1",
		Format:       FormatCAdES,
		Certificates: sourceOf(t, "signer", certvalidator.OriginSignedData),
		Timestamps: []*Timestamp{
			{ID: "T-sig", Type: TimestampSignature, CreationTime: now.Add(-3 * time.Hour), Certificates: sourceOf(t, "tsa-1", certvalidator.OriginTimestamp)},
			{ID: "T-arc-late", Type: TimestampArchive, CreationTime: now, Certificates: sourceOf(t, "tsa-3", certvalidator.OriginTimestamp)},
			{ID: "T-arc-early", Type: TimestampArchive, CreationTime: now.Add(-time.Hour), Certificates: sourceOf(t, "tsa-2", certvalidator.OriginTimestamp)},
		},
		CounterSignatures: []*AdvancedSignature{
			{ID: "S-2", Certificates: sourceOf(t, "counter", certvalidator.OriginSignedData)},
		},
	}

	require.NotNil(t, sig.LastArchiveTimestamp())
	assert.Equal(t, "T-arc-late", sig.LastArchiveTimestamp().ID)
	assert.Len(t, sig.SignatureTimestamps(), 1)
	assert.Len(t, sig.ArchiveTimestamps(), 2)

	relevant := sig.CertificateSourcesExceptLastArchiveTimestamp()
	assert.Equal(t, 4, relevant.NumberOfCertificates())
	assert.False(t, relevant.Contains(sig.Timestamps[1].Certificates.Certificates()[0]))

	assert.Equal(t, 5, sig.CompleteCertificateSource().NumberOfCertificates())
}

func TestCompleteRevocationSources(t *testing.T) {
	sig := &AdvancedSignature{
		CRLs: revinfo.NewCRLSource(revinfo.OriginRevocationValues, []byte{1}),
		CounterSignatures: []*AdvancedSignature{
			{CRLs: revinfo.NewCRLSource(revinfo.OriginRevocationValues, []byte{2}), OCSPs: revinfo.NewOCSPSource(revinfo.OriginRevocationValues, []byte{3})},
		},
	}

	assert.Equal(t, 2, sig.CompleteCRLSource().Len())
	assert.Equal(t, 1, sig.CompleteOCSPSource().Len())
}

func TestClaimedSigningTime(t *testing.T) {
	signed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	claimed := signed.Add(time.Minute)

	cades := &AdvancedSignature{SignedAttributes: SignedAttributes{SigningTime: &signed}}
	assert.Equal(t, &signed, cades.ClaimedSigningTime())

	pades := &AdvancedSignature{PDF: &PDFSignature{ClaimedSigningTime: &claimed}}
	assert.Equal(t, &claimed, pades.ClaimedSigningTime())

	assert.Nil(t, (&AdvancedSignature{}).ClaimedSigningTime())
}

func TestFacts(t *testing.T) {
	signed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	sig := &AdvancedSignature{
		ID:     "S-1",
		Format: FormatPAdES,
		SignedAttributes: SignedAttributes{
			CommitmentTypes: []string{"ProofOfOrigin"},
		},
		Policy: &Policy{Identifier: "1.2.3", Digest: &Digest{Algorithm: "SHA-256", Value: []byte{1}}},
		PDF:    &PDFSignature{SubFilter: "ETSI.CAdES.detached", ClaimedSigningTime: &signed},
	}

	facts := sig.Facts()
	assert.Equal(t, "PAdES", facts["format"])
	assert.Equal(t, false, facts["hasSigningCertificate"])
	assert.Equal(t, []string{"ProofOfOrigin"}, facts["commitmentTypes"])
	assert.Equal(t, []string{}, facts["claimedRoles"])
	assert.Equal(t, "1.2.3", facts["policyId"])
	assert.Equal(t, true, facts["hasPolicyDigest"])
	assert.Equal(t, "ETSI.CAdES.detached", facts["subFilter"])
	assert.Equal(t, "2024-05-01T10:00:00Z", facts["signingTime"])
	assert.Equal(t, int64(0), facts["certificateCount"])
}

func TestHasExplicitPolicy(t *testing.T) {
	assert.False(t, (&AdvancedSignature{}).HasExplicitPolicy())
	assert.False(t, (&AdvancedSignature{Policy: &Policy{Implied: true}}).HasExplicitPolicy())
	assert.True(t, (&AdvancedSignature{Policy: &Policy{Identifier: "1.2.3"}}).HasExplicitPolicy())
}
