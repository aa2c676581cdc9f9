package baseline

import (
	"fmt"
	"log/slog"

	"github.com/georgepadayatti/adesverdict/certvalidator"
	"github.com/georgepadayatti/adesverdict/validation/signature"
)

// SubFilterETSICAdES is the PAdES baseline signature sub filter.
const SubFilterETSICAdES = "ETSI.CAdES.detached"

// Checker decides the baseline profiles of one signature.
type Checker interface {
	HasBaselineBProfile() bool
	HasBaselineTProfile() bool
	HasBaselineLTProfile() bool
	HasBaselineLTAProfile() bool
}

// NewChecker returns the checker for the signature's format.
func NewChecker(sig *signature.AdvancedSignature, verifier *certvalidator.OfflineVerifier, logger *slog.Logger) (Checker, error) {
	r := NewRequirementsChecker(sig, verifier, logger)
	switch sig.Format {
	case signature.FormatCAdES:
		return &CAdESChecker{r}, nil
	case signature.FormatXAdES:
		return &XAdESChecker{r}, nil
	case signature.FormatJAdES:
		return &JAdESChecker{r}, nil
	case signature.FormatPAdES:
		return &PAdESChecker{r}, nil
	}
	return nil, fmt.Errorf("baseline: unsupported signature format %q", sig.Format)
}

// explicitPolicyHashed is true when the signature has no explicit policy or
// its explicit policy is hash bound.
func (r *RequirementsChecker) explicitPolicyHashed() bool {
	return !r.sig.HasExplicitPolicy() || r.IsSignaturePolicyIdentifierHashPresent()
}

func (r *RequirementsChecker) signingCertificateFoundIn(origins ...certvalidator.CertificateOrigin) bool {
	src := r.sig.Certificates
	for _, origin := range origins {
		if r.ContainsSigningCertificate(src.CertificatesByOrigin(origin)) {
			return true
		}
	}
	for _, ts := range r.sig.Timestamps {
		for _, origin := range origins {
			if r.ContainsSigningCertificate(ts.Certificates.CertificatesByOrigin(origin)) {
				return true
			}
		}
	}
	return false
}

// CAdESChecker checks CAdES baseline profiles.
type CAdESChecker struct {
	*RequirementsChecker
}

// HasBaselineBProfile requires signing-time, content-type and a signing
// certificate reference; an explicit policy must carry its hash.
func (c *CAdESChecker) HasBaselineBProfile() bool {
	attrs := c.sig.SignedAttributes
	if attrs.SigningTime == nil {
		c.logger.Debug("signing-time shall be present for CAdES-BASELINE-B")
		return false
	}
	if attrs.ContentType == "" {
		c.logger.Debug("content-type shall be present for CAdES-BASELINE-B")
		return false
	}
	if attrs.SigningCertificateRef == nil {
		c.logger.Debug("signing-certificate(-v2) shall be present for CAdES-BASELINE-B")
		return false
	}
	return c.explicitPolicyHashed()
}

// HasBaselineTProfile implements Checker.
func (c *CAdESChecker) HasBaselineTProfile() bool { return c.MinimalTRequirement() }

// HasBaselineLTProfile implements Checker.
func (c *CAdESChecker) HasBaselineLTProfile() bool { return c.MinimalLTRequirement() }

// HasBaselineLTAProfile implements Checker.
func (c *CAdESChecker) HasBaselineLTAProfile() bool { return c.MinimalLTARequirement() }

// XAdESChecker checks XAdES baseline profiles.
type XAdESChecker struct {
	*RequirementsChecker
}

// HasBaselineBProfile requires SigningTime, a SigningCertificate(V2)
// reference and a MimeType for the signed data object; an explicit policy
// must carry its hash.
func (c *XAdESChecker) HasBaselineBProfile() bool {
	attrs := c.sig.SignedAttributes
	if attrs.SigningTime == nil {
		c.logger.Debug("SigningTime shall be present for XAdES-BASELINE-B")
		return false
	}
	if attrs.SigningCertificateRef == nil {
		c.logger.Debug("SigningCertificate(V2) shall be present for XAdES-BASELINE-B")
		return false
	}
	if attrs.MimeType == "" {
		c.logger.Debug("DataObjectFormat/MimeType shall be present for XAdES-BASELINE-B")
		return false
	}
	return c.explicitPolicyHashed()
}

// HasBaselineTProfile implements Checker.
func (c *XAdESChecker) HasBaselineTProfile() bool { return c.MinimalTRequirement() }

// HasBaselineLTProfile also requires the signing certificate in KeyInfo,
// CertificateValues or the timestamp validation data.
func (c *XAdESChecker) HasBaselineLTProfile() bool {
	if !c.MinimalLTRequirement() {
		return false
	}
	return c.signingCertificateFoundIn(
		certvalidator.OriginKeyInfo,
		certvalidator.OriginCertificateValues,
		certvalidator.OriginTimestampValData,
	)
}

// HasBaselineLTAProfile implements Checker.
func (c *XAdESChecker) HasBaselineLTAProfile() bool { return c.MinimalLTARequirement() }

// JAdESChecker checks JAdES baseline profiles.
type JAdESChecker struct {
	*RequirementsChecker
}

// HasBaselineBProfile requires sigT and a signing certificate reference
// (x5t#S256 or sigX5ts); an explicit policy must carry its hash.
func (c *JAdESChecker) HasBaselineBProfile() bool {
	attrs := c.sig.SignedAttributes
	if attrs.SigningTime == nil {
		c.logger.Debug("sigT shall be present for JAdES-BASELINE-B")
		return false
	}
	if attrs.SigningCertificateRef == nil {
		c.logger.Debug("x5t#S256 or sigX5ts shall be present for JAdES-BASELINE-B")
		return false
	}
	return c.explicitPolicyHashed()
}

// HasBaselineTProfile implements Checker.
func (c *JAdESChecker) HasBaselineTProfile() bool { return c.MinimalTRequirement() }

// HasBaselineLTProfile also requires the signing certificate in x5c, xVals
// or the timestamp validation data.
func (c *JAdESChecker) HasBaselineLTProfile() bool {
	if !c.MinimalLTRequirement() {
		return false
	}
	return c.signingCertificateFoundIn(
		certvalidator.OriginX5C,
		certvalidator.OriginEtsiU,
		certvalidator.OriginTimestampValData,
	)
}

// HasBaselineLTAProfile implements Checker.
func (c *JAdESChecker) HasBaselineLTAProfile() bool { return c.MinimalLTARequirement() }

// PAdESChecker checks PAdES baseline profiles.
type PAdESChecker struct {
	*RequirementsChecker
}

// HasBaselineBProfile requires the ETSI.CAdES.detached sub filter, a /M
// entry and no CMS signing-time, content-type and a signing certificate
// reference.
func (c *PAdESChecker) HasBaselineBProfile() bool {
	pdf := c.sig.PDF
	if pdf == nil || pdf.SubFilter != SubFilterETSICAdES {
		c.logger.Debug("SubFilter shall be ETSI.CAdES.detached for PAdES-BASELINE-B")
		return false
	}
	attrs := c.sig.SignedAttributes
	if attrs.SigningTime != nil {
		c.logger.Debug("signing-time shall not be present for PAdES-BASELINE-B")
		return false
	}
	if pdf.ClaimedSigningTime == nil {
		c.logger.Debug("the /M entry shall be present for PAdES-BASELINE-B")
		return false
	}
	if attrs.ContentType == "" || attrs.SigningCertificateRef == nil {
		c.logger.Debug("content-type and signing-certificate(-v2) shall be present for PAdES-BASELINE-B")
		return false
	}
	return c.explicitPolicyHashed()
}

// HasBaselineTProfile implements Checker.
func (c *PAdESChecker) HasBaselineTProfile() bool { return c.MinimalTRequirement() }

// HasBaselineLTProfile also requires the signing certificate in the DSS
// dictionary.
func (c *PAdESChecker) HasBaselineLTProfile() bool {
	if !c.MinimalLTRequirement() {
		return false
	}
	return c.signingCertificateFoundIn(
		certvalidator.OriginDSSDictionary,
		certvalidator.OriginVRIDictionary,
	)
}

// HasBaselineLTAProfile implements Checker.
func (c *PAdESChecker) HasBaselineLTAProfile() bool { return c.MinimalLTARequirement() }
