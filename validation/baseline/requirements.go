// Package baseline decides which ETSI baseline profiles (B, T, LT, LTA) a
// signature satisfies.
package baseline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/georgepadayatti/adesverdict/certvalidator"
	"github.com/georgepadayatti/adesverdict/validation/signature"
)

// ErrNoOfflineVerifier is the panic value of MinimalLTRequirement when the
// checker was built without an offline verifier.
var ErrNoOfflineVerifier = errors.New("baseline: offline verifier cannot be nil")

// RequirementsChecker holds the profile requirements shared by every format.
type RequirementsChecker struct {
	sig      *signature.AdvancedSignature
	verifier *certvalidator.OfflineVerifier
	logger   *slog.Logger
}

// NewRequirementsChecker creates a checker for sig. verifier is the offline
// trust configuration used by the LT requirement.
func NewRequirementsChecker(sig *signature.AdvancedSignature, verifier *certvalidator.OfflineVerifier, logger *slog.Logger) *RequirementsChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequirementsChecker{sig: sig, verifier: verifier, logger: logger}
}

// Signature returns the checked signature.
func (r *RequirementsChecker) Signature() *signature.AdvancedSignature {
	return r.sig
}

// MinimalTRequirement reports whether the signature has at least one
// signature timestamp and every signature timestamp was produced strictly
// before the signing certificate expired.
func (r *RequirementsChecker) MinimalTRequirement() bool {
	timestamps := r.sig.SignatureTimestamps()
	if len(timestamps) == 0 {
		r.logger.Debug("signature timestamp shall be present for BASELINE-T", slog.String("signature", r.sig.ID))
		return false
	}
	if cert := r.sig.SigningCertificate; cert != nil {
		for _, ts := range timestamps {
			if !ts.CreationTime.Before(cert.NotAfter()) {
				r.logger.Warn("signature timestamp produced after the signing certificate expiration",
					slog.String("signature", r.sig.ID),
					slog.String("timestamp", ts.ID),
				)
				return false
			}
		}
	}
	return true
}

// MinimalLTRequirement reports whether revocation data covers every
// certificate of the signature that needs it. It panics with
// ErrNoOfflineVerifier when no offline verifier was configured.
func (r *RequirementsChecker) MinimalLTRequirement() bool {
	if r.verifier == nil {
		panic(ErrNoOfflineVerifier)
	}

	sources := r.sig.CertificateSourcesExceptLastArchiveTimestamp()
	if sources.IsEmpty() || sources.IsAllSelfSigned() {
		return false
	}
	if r.sig.CompleteCRLSource().IsEmpty() && r.sig.CompleteOCSPSource().IsEmpty() {
		return false
	}

	present, err := r.isAllRevocationDataPresent(sources)
	if err != nil {
		r.logger.Warn("revocation data completeness could not be established",
			slog.String("signature", r.sig.ID),
			slog.String("error", err.Error()),
		)
		return false
	}
	return present
}

func (r *RequirementsChecker) isAllRevocationDataPresent(sources *certvalidator.ListCertificateSource) (present bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			present = false
			err = fmt.Errorf("panic during offline validation: %v", rec)
		}
	}()

	ctx := r.verifier.NewValidationContext()
	ctx.AddDocumentCertificateSource(r.sig.CompleteCertificateSource())
	ctx.AddDocumentCRLSource(r.sig.CompleteCRLSource())
	ctx.AddDocumentOCSPSource(r.sig.CompleteOCSPSource())
	for _, token := range sources.AllCertificateTokens() {
		ctx.AddCertificateTokenForVerification(token)
	}
	if err := ctx.Validate(); err != nil {
		return false, err
	}
	if err := ctx.CheckAllRequiredRevocationDataPresent(); err != nil {
		var missing *certvalidator.MissingRevocationError
		if errors.As(err, &missing) {
			r.logger.Debug("revocation data missing",
				slog.String("signature", r.sig.ID),
				slog.Any("certificates", missing.CertificateIDs),
			)
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MinimalLTARequirement reports whether the signature has an archive timestamp.
func (r *RequirementsChecker) MinimalLTARequirement() bool {
	if len(r.sig.ArchiveTimestamps()) == 0 {
		r.logger.Debug("archive timestamp shall be present for BASELINE-LTA", slog.String("signature", r.sig.ID))
		return false
	}
	return true
}

// ContainsSigningCertificate reports whether tokens holds the signing
// certificate.
func (r *RequirementsChecker) ContainsSigningCertificate(tokens []*certvalidator.CertificateToken) bool {
	signing := r.sig.SigningCertificate
	if signing == nil {
		return false
	}
	for _, t := range tokens {
		if t.Equal(signing) {
			return true
		}
	}
	return false
}

// IsSignaturePolicyIdentifierHashPresent reports whether the signature
// policy carries a digest algorithm and value. The identifier itself is
// not inspected.
func (r *RequirementsChecker) IsSignaturePolicyIdentifierHashPresent() bool {
	p := r.sig.Policy
	if p == nil || p.Digest == nil {
		return false
	}
	return p.Digest.Algorithm != "" && len(p.Digest.Value) > 0
}
