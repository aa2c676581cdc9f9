package baseline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ocsp"

	"github.com/georgepadayatti/adesverdict/certvalidator"
	"github.com/georgepadayatti/adesverdict/certvalidator/certtest"
	"github.com/georgepadayatti/adesverdict/certvalidator/revinfo"
	"github.com/georgepadayatti/adesverdict/validation/signature"
)

type fixture struct {
	now          time.Time
	root         *certtest.Entity
	intermediate *certtest.Entity
	leaf         *certtest.Entity
	crl          []byte
	ocsp         []byte
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Now().Truncate(time.Second)
	root := certtest.NewRoot(t, "Baseline Root CA")
	intermediate := root.NewCA(t, "Baseline Issuing CA")
	leaf := intermediate.NewLeaf(t, "Baseline Signer")
	return &fixture{
		now:          now,
		root:         root,
		intermediate: intermediate,
		leaf:         leaf,
		crl:          root.CRL(t, now.Add(-time.Hour), now.Add(24*time.Hour)),
		ocsp:         intermediate.OCSP(t, leaf.Cert, ocsp.Good, now.Add(-time.Hour), now.Add(24*time.Hour)),
	}
}

func (f *fixture) verifier() *certvalidator.OfflineVerifier {
	trusted := certvalidator.NewCertificateSource()
	trusted.AddCertificate(f.root.Cert, certvalidator.OriginTrustedStore)
	return certvalidator.NewOfflineVerifier([]*certvalidator.CertificateSource{trusted}, certvalidator.WithValidationTime(f.now))
}

// signature builds a CAdES signature whose certificates are the leaf and the
// intermediate, with the given revocation material.
func (f *fixture) signature(crls, ocsps [][]byte) *signature.AdvancedSignature {
	src := certvalidator.NewCertificateSource()
	signing := src.AddCertificate(f.leaf.Cert, certvalidator.OriginSignedData)
	src.AddCertificate(f.intermediate.Cert, certvalidator.OriginCertificateValues)
	signed := f.now.Add(-time.Minute)
	return &signature.AdvancedSignature{
		ID:                 "S-1",
		Format:             signature.FormatCAdES,
		SigningCertificate: signing,
		Certificates:       src,
		CRLs:               revinfo.NewCRLSource(revinfo.OriginRevocationValues, crls...),
		OCSPs:              revinfo.NewOCSPSource(revinfo.OriginRevocationValues, ocsps...),
		SignedAttributes: signature.SignedAttributes{
			SigningTime:           &signed,
			ContentType:           "1.2.840.113549.1.7.1",
			SigningCertificateRef: &signature.CertificateRef{DigestAlgorithm: "SHA-256", DigestMatch: true},
		},
	}
}

func signatureTimestamp(id string, at time.Time) *signature.Timestamp {
	return &signature.Timestamp{ID: id, Type: signature.TimestampSignature, CreationTime: at}
}

func TestMinimalTRequirement(t *testing.T) {
	f := newFixture(t)
	notAfter := f.leaf.Cert.NotAfter

	tests := []struct {
		name       string
		timestamps []*signature.Timestamp
		expected   bool
	}{
		{"no timestamp", nil, false},
		{"before expiry", []*signature.Timestamp{signatureTimestamp("T-1", notAfter.Add(-time.Hour))}, true},
		{"at expiry", []*signature.Timestamp{signatureTimestamp("T-1", notAfter)}, false},
		{"one after expiry", []*signature.Timestamp{
			signatureTimestamp("T-1", notAfter.Add(-time.Hour)),
			signatureTimestamp("T-2", notAfter.Add(time.Hour)),
		}, false},
		{"only archive timestamps", []*signature.Timestamp{
			{ID: "A-1", Type: signature.TimestampArchive, CreationTime: f.now},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := f.signature(nil, nil)
			sig.Timestamps = tt.timestamps
			r := NewRequirementsChecker(sig, f.verifier(), nil)
			assert.Equal(t, tt.expected, r.MinimalTRequirement())
		})
	}
}

func TestMinimalTRequirementWithoutSigningCertificate(t *testing.T) {
	f := newFixture(t)
	sig := f.signature(nil, nil)
	sig.SigningCertificate = nil
	sig.Timestamps = []*signature.Timestamp{signatureTimestamp("T-1", f.leaf.Cert.NotAfter.Add(time.Hour))}

	assert.True(t, NewRequirementsChecker(sig, f.verifier(), nil).MinimalTRequirement())
}

func TestMinimalLTRequirement(t *testing.T) {
	f := newFixture(t)

	t.Run("complete chain coverage", func(t *testing.T) {
		sig := f.signature([][]byte{f.crl}, [][]byte{f.ocsp})
		assert.True(t, NewRequirementsChecker(sig, f.verifier(), nil).MinimalLTRequirement())
	})

	t.Run("intermediate CRL removed", func(t *testing.T) {
		sig := f.signature(nil, [][]byte{f.ocsp})
		assert.False(t, NewRequirementsChecker(sig, f.verifier(), nil).MinimalLTRequirement())
	})

	t.Run("no revocation data", func(t *testing.T) {
		sig := f.signature(nil, nil)
		assert.False(t, NewRequirementsChecker(sig, f.verifier(), nil).MinimalLTRequirement())
	})

	t.Run("no certificates", func(t *testing.T) {
		sig := f.signature([][]byte{f.crl}, [][]byte{f.ocsp})
		sig.Certificates = certvalidator.NewCertificateSource()
		assert.False(t, NewRequirementsChecker(sig, f.verifier(), nil).MinimalLTRequirement())
	})

	t.Run("all self-signed", func(t *testing.T) {
		self := certtest.NewSelfSigned(t, "Self Signer")
		sig := f.signature([][]byte{f.crl}, [][]byte{f.ocsp})
		sig.Certificates = certvalidator.NewCertificateSource()
		sig.SigningCertificate = sig.Certificates.AddCertificate(self.Cert, certvalidator.OriginSignedData)
		assert.False(t, NewRequirementsChecker(sig, f.verifier(), nil).MinimalLTRequirement())
	})

	t.Run("malformed CRL degrades to false", func(t *testing.T) {
		sig := f.signature([][]byte{{0x30, 0x03, 0x01, 0x01, 0xff}}, [][]byte{f.ocsp})
		assert.False(t, NewRequirementsChecker(sig, f.verifier(), nil).MinimalLTRequirement())
	})

	t.Run("revocation data carried by a counter signature", func(t *testing.T) {
		sig := f.signature(nil, [][]byte{f.ocsp})
		sig.CounterSignatures = []*signature.AdvancedSignature{
			{ID: "S-2", CRLs: revinfo.NewCRLSource(revinfo.OriginRevocationValues, f.crl)},
		}
		assert.True(t, NewRequirementsChecker(sig, f.verifier(), nil).MinimalLTRequirement())
	})
}

func TestMinimalLTRequirementIgnoresLastArchiveTimestamp(t *testing.T) {
	f := newFixture(t)
	tsa := f.intermediate.NewLeaf(t, "Archive TSA")
	tsaSource := certvalidator.NewCertificateSource()
	tsaSource.AddCertificate(tsa.Cert, certvalidator.OriginTimestamp)

	sig := f.signature([][]byte{f.crl}, [][]byte{f.ocsp})
	sig.Timestamps = []*signature.Timestamp{
		{ID: "A-1", Type: signature.TimestampArchive, CreationTime: f.now, Certificates: tsaSource},
	}
	// the TSA certificate has no revocation data of its own but belongs to
	// the latest archive timestamp
	assert.True(t, NewRequirementsChecker(sig, f.verifier(), nil).MinimalLTRequirement())

	sig.Timestamps = append(sig.Timestamps, &signature.Timestamp{ID: "A-2", Type: signature.TimestampArchive, CreationTime: f.now.Add(time.Minute)})
	assert.False(t, NewRequirementsChecker(sig, f.verifier(), nil).MinimalLTRequirement())
}

func TestMinimalLTRequirementWithoutVerifier(t *testing.T) {
	f := newFixture(t)
	r := NewRequirementsChecker(f.signature(nil, nil), nil, nil)
	assert.PanicsWithValue(t, ErrNoOfflineVerifier, func() { r.MinimalLTRequirement() })
}

func TestMinimalLTARequirement(t *testing.T) {
	f := newFixture(t)
	sig := f.signature(nil, nil)
	r := NewRequirementsChecker(sig, f.verifier(), nil)
	assert.False(t, r.MinimalLTARequirement())

	sig.Timestamps = []*signature.Timestamp{{ID: "A-1", Type: signature.TimestampArchive, CreationTime: f.now}}
	assert.True(t, r.MinimalLTARequirement())
}

func TestContainsSigningCertificate(t *testing.T) {
	f := newFixture(t)
	sig := f.signature(nil, nil)
	r := NewRequirementsChecker(sig, f.verifier(), nil)

	assert.False(t, r.ContainsSigningCertificate(nil))
	assert.True(t, r.ContainsSigningCertificate([]*certvalidator.CertificateToken{
		certvalidator.NewCertificateToken(f.intermediate.Cert),
		certvalidator.NewCertificateToken(f.leaf.Cert),
	}))
	assert.False(t, r.ContainsSigningCertificate([]*certvalidator.CertificateToken{
		certvalidator.NewCertificateToken(f.root.Cert),
	}))
}

func TestIsSignaturePolicyIdentifierHashPresent(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name     string
		policy   *signature.Policy
		expected bool
	}{
		{"no policy", nil, false},
		{"no digest", &signature.Policy{Identifier: "1.2.3"}, false},
		{"no algorithm", &signature.Policy{Identifier: "1.2.3", Digest: &signature.Digest{Value: []byte{1}}}, false},
		{"digest and algorithm", &signature.Policy{Identifier: "1.2.3", Digest: &signature.Digest{Algorithm: "SHA-256", Value: []byte{1}}}, true},
		{"digest without identifier", &signature.Policy{Digest: &signature.Digest{Algorithm: "SHA-256", Value: []byte{1}}}, true},
		{"implied with digest", &signature.Policy{Implied: true, Digest: &signature.Digest{Algorithm: "SHA-256", Value: []byte{1}}}, true},
	}

	for _, tt := range tests {
		sig := f.signature(nil, nil)
		sig.Policy = tt.policy
		r := NewRequirementsChecker(sig, f.verifier(), nil)
		assert.Equal(t, tt.expected, r.IsSignaturePolicyIdentifierHashPresent(), tt.name)
	}
}

func TestFormatCheckers(t *testing.T) {
	f := newFixture(t)

	t.Run("CAdES LTA", func(t *testing.T) {
		sig := f.signature([][]byte{f.crl}, [][]byte{f.ocsp})
		sig.Timestamps = []*signature.Timestamp{
			signatureTimestamp("T-1", f.now),
			{ID: "A-1", Type: signature.TimestampArchive, CreationTime: f.now.Add(time.Minute)},
		}
		checker, err := NewChecker(sig, f.verifier(), nil)
		require.NoError(t, err)
		flags := Evaluate(checker)
		assert.Equal(t, Flags{B: true, T: true, LT: true, LTA: true}, flags)
		assert.Equal(t, "CAdES-BASELINE-LTA", LevelOf(flags).Name(sig.Format))
	})

	t.Run("CAdES explicit policy without hash", func(t *testing.T) {
		sig := f.signature(nil, nil)
		sig.Policy = &signature.Policy{Identifier: "1.2.3"}
		checker, err := NewChecker(sig, f.verifier(), nil)
		require.NoError(t, err)
		assert.False(t, checker.HasBaselineBProfile())
	})

	t.Run("XAdES needs a mime type and the signing certificate in validation data", func(t *testing.T) {
		sig := f.signature([][]byte{f.crl}, [][]byte{f.ocsp})
		sig.Format = signature.FormatXAdES
		checker, err := NewChecker(sig, f.verifier(), nil)
		require.NoError(t, err)
		assert.False(t, checker.HasBaselineBProfile())
		assert.False(t, checker.HasBaselineLTProfile())

		sig.SignedAttributes.MimeType = "text/xml"
		sig.Certificates.Add(sig.SigningCertificate, certvalidator.OriginKeyInfo)
		assert.True(t, checker.HasBaselineBProfile())
		assert.True(t, checker.HasBaselineLTProfile())
	})

	t.Run("JAdES", func(t *testing.T) {
		sig := f.signature([][]byte{f.crl}, [][]byte{f.ocsp})
		sig.Format = signature.FormatJAdES
		sig.Certificates.Add(sig.SigningCertificate, certvalidator.OriginX5C)
		checker, err := NewChecker(sig, f.verifier(), nil)
		require.NoError(t, err)
		assert.True(t, checker.HasBaselineBProfile())
		assert.True(t, checker.HasBaselineLTProfile())
	})

	t.Run("PAdES", func(t *testing.T) {
		claimed := f.now.Add(-time.Minute)
		sig := f.signature([][]byte{f.crl}, [][]byte{f.ocsp})
		sig.Format = signature.FormatPAdES
		checker, err := NewChecker(sig, f.verifier(), nil)
		require.NoError(t, err)
		assert.False(t, checker.HasBaselineBProfile(), "no PDF dictionary")

		sig.PDF = &signature.PDFSignature{SubFilter: SubFilterETSICAdES, ClaimedSigningTime: &claimed}
		assert.False(t, checker.HasBaselineBProfile(), "CMS signing-time present")

		sig.SignedAttributes.SigningTime = nil
		assert.True(t, checker.HasBaselineBProfile())

		assert.False(t, checker.HasBaselineLTProfile())
		sig.Certificates.Add(sig.SigningCertificate, certvalidator.OriginDSSDictionary)
		assert.True(t, checker.HasBaselineLTProfile())
	})

	t.Run("unknown format", func(t *testing.T) {
		sig := f.signature(nil, nil)
		sig.Format = "ASiC"
		_, err := NewChecker(sig, f.verifier(), nil)
		assert.Error(t, err)
	})
}
