package checks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ocsp"

	"github.com/georgepadayatti/adesverdict/certvalidator"
	"github.com/georgepadayatti/adesverdict/certvalidator/certtest"
	"github.com/georgepadayatti/adesverdict/certvalidator/revinfo"
	"github.com/georgepadayatti/adesverdict/validation/baseline"
	"github.com/georgepadayatti/adesverdict/validation/policy"
	"github.com/georgepadayatti/adesverdict/validation/process"
	"github.com/georgepadayatti/adesverdict/validation/qualification"
	"github.com/georgepadayatti/adesverdict/validation/signature"
)

func run(check process.Check, level policy.Level) *process.Conclusion {
	return process.NewChain(process.TitleSignatureAcceptance).
		Add(check, policy.NewLevelConstraint(level)).
		Execute()
}

func TestSigningCertificateChecks(t *testing.T) {
	root := certtest.NewRoot(t, "Root")
	signing := certvalidator.NewCertificateToken(root.NewLeaf(t, "Signer").Cert)

	sig := &signature.AdvancedSignature{ID: "S-1"}
	assert.False(t, NewSigningCertificateFoundCheck(sig).Process())
	assert.False(t, NewSigningCertificateRefCheck(sig).Process())
	assert.False(t, NewSigningCertificateMatchCheck(sig).Process())
	assert.False(t, NewIssuerSerialMatchCheck(sig).Process())

	conclusion := run(NewSigningCertificateFoundCheck(sig), policy.LevelFail)
	assert.Equal(t, process.IndicationIndeterminate, conclusion.Indication)
	assert.Equal(t, process.SubIndicationNoSigningCertificateFound, conclusion.SubIndication)

	sig.SigningCertificate = signing
	sig.SignedAttributes.SigningCertificateRef = &signature.CertificateRef{
		DigestAlgorithm:     "SHA-256",
		DigestMatch:         true,
		IssuerSerialPresent: true,
	}
	assert.True(t, NewSigningCertificateFoundCheck(sig).Process())
	assert.True(t, NewSigningCertificateRefCheck(sig).Process())
	assert.True(t, NewSigningCertificateMatchCheck(sig).Process())
	assert.False(t, NewIssuerSerialMatchCheck(sig).Process())

	sig.SignedAttributes.SigningCertificateRef.IssuerSerialMatch = true
	assert.True(t, NewIssuerSerialMatchCheck(sig).Process())

	rec := run(NewSigningCertificateMatchCheck(sig), policy.LevelFail).Record(process.TagSigningCertificateMatch)
	require.NotNil(t, rec)
	assert.Equal(t, "Values: SHA-256", rec.AdditionalInfo)
}

func TestPolicyHashCheck(t *testing.T) {
	sig := &signature.AdvancedSignature{ID: "S-1"}
	assert.True(t, NewPolicyHashCheck(sig).Process(), "no policy")

	sig.Policy = &signature.Policy{Implied: true}
	assert.True(t, NewPolicyHashCheck(sig).Process(), "implied policy")

	sig.Policy = &signature.Policy{Identifier: "1.2.3"}
	assert.False(t, NewPolicyHashCheck(sig).Process())

	sig.Policy.Digest = &signature.Digest{Algorithm: "SHA-256", Value: []byte{1, 2}}
	assert.True(t, NewPolicyHashCheck(sig).Process())
}

func TestSignedAttributeChecks(t *testing.T) {
	claimed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sig := &signature.AdvancedSignature{
		ID: "S-1",
		SignedAttributes: signature.SignedAttributes{
			ContentType:     "1.2.840.113549.1.7.1",
			CommitmentTypes: []string{"http://uri.etsi.org/01903/v1.2.2#ProofOfOrigin"},
			ClaimedRoles:    []string{"Manager"},
		},
	}

	assert.False(t, NewSigningTimeCheck(sig).Process())
	sig.PDF = &signature.PDFSignature{ClaimedSigningTime: &claimed}
	assert.True(t, NewSigningTimeCheck(sig).Process())

	assert.True(t, NewContentTypeCheck(sig, &policy.ValueConstraint{Level: policy.LevelFail, Value: policy.AnyValue}).Process())
	assert.False(t, NewContentTypeCheck(sig, &policy.ValueConstraint{Level: policy.LevelFail, Value: "1.2.840.113549.1.7.5"}).Process())
	assert.False(t, NewContentHintsCheck(sig, &policy.ValueConstraint{Level: policy.LevelFail}).Process())
	assert.False(t, NewContentIdentifierCheck(sig, nil).Process())

	commitment := &policy.MultiValuesConstraint{Level: policy.LevelFail, IDs: []string{"http://uri.etsi.org/01903/v1.2.2#ProofOfOrigin"}}
	assert.True(t, NewCommitmentTypeCheck(sig, commitment).Process())
	assert.False(t, NewClaimedRolesCheck(sig, &policy.MultiValuesConstraint{Level: policy.LevelFail, IDs: []string{"CEO"}}).Process())
	assert.True(t, NewClaimedRolesCheck(sig, &policy.MultiValuesConstraint{Level: policy.LevelFail, IDs: []string{"CEO", "Manager"}}).Process())
	assert.False(t, NewCertifiedRolesCheck(sig, &policy.MultiValuesConstraint{Level: policy.LevelFail, IDs: []string{policy.AnyValue}}).Process())

	assert.False(t, NewSignerLocationCheck(sig).Process())
	sig.SignedAttributes.SignerLocation = &signature.SignerLocation{Locality: "Brussels"}
	assert.True(t, NewSignerLocationCheck(sig).Process())

	assert.False(t, NewContentTimestampCheck(sig).Process())
	sig.Timestamps = []*signature.Timestamp{{ID: "T-1", Type: signature.TimestampContent}}
	assert.True(t, NewContentTimestampCheck(sig).Process())

	conclusion := run(NewClaimedRolesCheck(sig, &policy.MultiValuesConstraint{Level: policy.LevelWarn, IDs: []string{"CEO"}}), policy.LevelWarn)
	assert.True(t, conclusion.IsPassed())
	require.Len(t, conclusion.Warnings, 1)
	assert.Equal(t, "Values: Manager", conclusion.Records[0].AdditionalInfo)
}

type certFixture struct {
	now          time.Time
	root         *certtest.Entity
	intermediate *certtest.Entity
	leaf         *certtest.Entity
}

func newCertFixture(t *testing.T, leafOpts ...certtest.Option) *certFixture {
	t.Helper()
	root := certtest.NewRoot(t, "Root CA")
	intermediate := root.NewCA(t, "Issuing CA")
	return &certFixture{
		now:          time.Now().Truncate(time.Second),
		root:         root,
		intermediate: intermediate,
		leaf:         intermediate.NewLeaf(t, "Signer", leafOpts...),
	}
}

func (f *certFixture) subject(t *testing.T, crls, ocsps [][]byte) CertificateSubject {
	t.Helper()
	trusted := certvalidator.NewCertificateSource()
	trusted.AddCertificate(f.root.Cert, certvalidator.OriginTrustedStore)
	verifier := certvalidator.NewOfflineVerifier([]*certvalidator.CertificateSource{trusted}, certvalidator.WithValidationTime(f.now))

	src := certvalidator.NewCertificateSource()
	leaf := src.AddCertificate(f.leaf.Cert, certvalidator.OriginSignedData)
	src.AddCertificate(f.intermediate.Cert, certvalidator.OriginCertificateValues)

	ctx := verifier.NewValidationContext()
	ctx.AddCertificateSource(src)
	ctx.AddDocumentCRLSource(revinfo.NewCRLSource(revinfo.OriginRevocationValues, crls...))
	ctx.AddDocumentOCSPSource(revinfo.NewOCSPSource(revinfo.OriginRevocationValues, ocsps...))
	ctx.AddCertificateTokenForVerification(leaf)
	require.NoError(t, ctx.Validate())
	return CertificateSubject{Token: leaf, Context: ctx}
}

func TestCertificateChecks(t *testing.T) {
	f := newCertFixture(t)
	good := f.intermediate.OCSP(t, f.leaf.Cert, ocsp.Good, f.now.Add(-time.Hour), f.now.Add(time.Hour))

	subject := f.subject(t, nil, [][]byte{good})
	assert.True(t, NewCertificateValidityCheck(subject).Process())
	assert.True(t, NewRevocationDataPresentCheck(subject).Process())
	assert.True(t, NewNotRevokedCheck(subject).Process())
	assert.True(t, NewNotOnHoldCheck(subject).Process())

	missing := f.subject(t, nil, nil)
	assert.False(t, NewRevocationDataPresentCheck(missing).Process())
	assert.True(t, NewNotRevokedCheck(missing).Process())

	conclusion := run(NewRevocationDataPresentCheck(missing), policy.LevelFail)
	assert.Equal(t, process.SubIndicationTryLater, conclusion.SubIndication)

	empty := CertificateSubject{}
	assert.False(t, NewCertificateValidityCheck(empty).Process())
	assert.False(t, NewRevocationDataPresentCheck(empty).Process())
	assert.False(t, NewNotRevokedCheck(empty).Process())
	assert.False(t, NewNotOnHoldCheck(empty).Process())
}

func TestCertificateRevokedAndOnHold(t *testing.T) {
	f := newCertFixture(t)
	revokedAt := f.now.Add(-30 * time.Minute)

	revoked := f.intermediate.CRL(t, f.now.Add(-time.Minute), f.now.Add(time.Hour),
		certtest.Revoked(f.leaf.Cert, revokedAt, int(revinfo.ReasonKeyCompromise)))
	subject := f.subject(t, [][]byte{revoked}, nil)
	assert.True(t, NewRevocationDataPresentCheck(subject).Process())
	assert.False(t, NewNotRevokedCheck(subject).Process())
	assert.True(t, NewNotOnHoldCheck(subject).Process())

	conclusion := run(NewNotRevokedCheck(subject), policy.LevelFail)
	assert.Equal(t, process.SubIndicationRevokedNoPoE, conclusion.SubIndication)
	assert.Contains(t, conclusion.Records[0].AdditionalInfo, "Revocation reason")

	onHold := f.intermediate.CRL(t, f.now.Add(-time.Minute), f.now.Add(time.Hour),
		certtest.Revoked(f.leaf.Cert, revokedAt, int(revinfo.ReasonCertificateHold)))
	held := f.subject(t, [][]byte{onHold}, nil)
	assert.True(t, NewNotRevokedCheck(held).Process())
	assert.False(t, NewNotOnHoldCheck(held).Process())
}

func TestCertificateValidityOutOfRange(t *testing.T) {
	now := time.Now()
	f := newCertFixture(t, certtest.WithValidity(now.Add(-48*time.Hour), now.Add(-24*time.Hour)))
	subject := f.subject(t, nil, nil)

	conclusion := run(NewCertificateValidityCheck(subject), policy.LevelFail)
	assert.Equal(t, process.IndicationIndeterminate, conclusion.Indication)
	assert.Equal(t, process.SubIndicationOutOfBoundsNoPoE, conclusion.SubIndication)
	assert.Contains(t, conclusion.Records[0].AdditionalInfo, "Validation time")
}

func TestNoCheckCertificateIsExempt(t *testing.T) {
	f := newCertFixture(t, certtest.WithNoCheck())
	subject := f.subject(t, nil, nil)
	assert.True(t, NewRevocationDataPresentCheck(subject).Process())
}

func TestSemanticsIdentifierCheck(t *testing.T) {
	status := qualification.QCStatus{Compliance: true, SemanticsIdentifiers: []string{"0.4.0.194121.1.1"}}
	accept := &policy.MultiValuesConstraint{Level: policy.LevelFail, IDs: []string{"0.4.0.194121.1.1"}}
	reject := &policy.MultiValuesConstraint{Level: policy.LevelFail, IDs: []string{"0.4.0.194121.1.2"}}

	assert.True(t, NewSemanticsIdentifierCheck(CertificateSubject{}, status, accept).Process())

	conclusion := run(NewSemanticsIdentifierCheck(CertificateSubject{}, status, reject), policy.LevelFail)
	assert.Equal(t, process.SubIndicationChainConstraintsFailed, conclusion.SubIndication)
	assert.Equal(t, string(process.TagSemanticsIdentifier), conclusion.Records[0].Key)
}

func TestTimestampChecks(t *testing.T) {
	root := certtest.NewRoot(t, "Root")
	signing := certvalidator.NewCertificateToken(root.NewLeaf(t, "Signer").Cert)
	ts := &signature.Timestamp{ID: "T-1", Type: signature.TimestampSignature, CreationTime: signing.NotAfter().Add(-time.Hour)}

	assert.False(t, NewMessageImprintFoundCheck(ts).Process())
	assert.False(t, NewMessageImprintIntactCheck(ts).Process())

	ts.MessageImprintFound = true
	assert.True(t, NewMessageImprintFoundCheck(ts).Process())
	conclusion := run(NewMessageImprintIntactCheck(ts), policy.LevelFail)
	assert.Equal(t, process.IndicationFailed, conclusion.Indication)
	assert.Equal(t, process.SubIndicationHashFailure, conclusion.SubIndication)

	ts.MessageImprintIntact = true
	assert.True(t, NewMessageImprintIntactCheck(ts).Process())

	assert.True(t, NewTimestampBeforeExpiryCheck(ts, signing).Process())
	assert.True(t, NewTimestampBeforeExpiryCheck(ts, nil).Process())
	ts.CreationTime = signing.NotAfter()
	assert.False(t, NewTimestampBeforeExpiryCheck(ts, signing).Process())

	rec := run(NewTimestampBeforeExpiryCheck(ts, signing), policy.LevelWarn).Records[0]
	assert.Equal(t, process.StatusWarning, rec.Status)
	assert.Contains(t, rec.AdditionalInfo, "Timestamp T-1 produced at")
	assert.Contains(t, rec.AdditionalInfo, "Signing certificate expires at")
}

func TestQCStatusChecks(t *testing.T) {
	status := qualification.QCStatus{Compliance: true, Types: []qualification.QCType{qualification.QCTypeEseal}}
	assert.True(t, NewQCComplianceCheck("C-1", status).Process())
	assert.False(t, NewForESigCheck("C-1", status).Process())
	assert.False(t, NewQSCDCheck("C-1", status).Process())

	conclusion := run(NewQSCDCheck("C-1", status), policy.LevelInform)
	assert.True(t, conclusion.IsPassed())
	require.Len(t, conclusion.Infos, 1)
	assert.Equal(t, string(process.TagQSCD.Answer()), conclusion.Infos[0].Key)
}

func TestBaselineLevelCheck(t *testing.T) {
	sig := &signature.AdvancedSignature{ID: "S-1", Format: signature.FormatXAdES}

	assert.True(t, NewBaselineLevelCheck(sig, baseline.LevelLT, baseline.LevelT).Process())
	assert.True(t, NewBaselineLevelCheck(sig, baseline.LevelT, baseline.LevelT).Process())

	conclusion := run(NewBaselineLevelCheck(sig, baseline.LevelB, baseline.LevelLT), policy.LevelFail)
	assert.Equal(t, process.IndicationFailed, conclusion.Indication)
	assert.Equal(t, process.SubIndicationFormatFailure, conclusion.SubIndication)
	assert.Equal(t, "The signature does not reach the baseline level XAdES-BASELINE-LT!", conclusion.Errors[0].Value)
	assert.Equal(t, "Baseline level reached: XAdES-BASELINE-B", conclusion.Records[0].AdditionalInfo)
}

func TestExpressionEngine(t *testing.T) {
	engine, err := NewExpressionEngine()
	require.NoError(t, err)

	facts := map[string]any{
		"format":          "PAdES",
		"commitmentTypes": []string{"ProofOfOrigin"},
		"crlCount":        int64(2),
	}

	ok, err := engine.Evaluate(`signature.format == "PAdES" && signature.crlCount > 1`, facts)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.Evaluate(`"ProofOfApproval" in signature.commitmentTypes`, facts)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = engine.Evaluate(`signature.format ==`, facts)
	assert.Error(t, err)

	_, err = engine.Evaluate(`1 + 2`, facts)
	assert.Error(t, err)

	_, err = engine.Evaluate(`signature.missing == "x"`, facts)
	assert.Error(t, err)
}

func TestExpressionCheck(t *testing.T) {
	engine, err := NewExpressionEngine()
	require.NoError(t, err)
	facts := map[string]any{"format": "CAdES"}

	constraint := &policy.ExpressionConstraint{
		ID:            "pades-only",
		Description:   "PAdES only",
		Expression:    `signature.format == "PAdES"`,
		Level:         policy.LevelFail,
		Indication:    "FAILED",
		SubIndication: "FORMAT_FAILURE",
	}
	conclusion := run(NewExpressionCheck(engine, constraint, "S-1", facts, nil), constraint.Level)
	assert.Equal(t, process.IndicationFailed, conclusion.Indication)
	assert.Equal(t, process.SubIndicationFormatFailure, conclusion.SubIndication)
	assert.Equal(t, "The custom constraint 'PAdES only' is not satisfied!", conclusion.Errors[0].Value)

	broken := &policy.ExpressionConstraint{ID: "broken", Expression: `signature.nope.deeper`, Level: policy.LevelFail}
	check := NewExpressionCheck(engine, broken, "S-1", facts, nil)
	assert.False(t, check.Process())
	assert.Equal(t, process.IndicationIndeterminate, check.FailedIndication())
	assert.Equal(t, process.SubIndicationSigConstraintsFailure, check.FailedSubIndication())
	assert.Equal(t, []any{"broken"}, check.MessageArgs())
}
