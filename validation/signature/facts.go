package signature

import (
	"time"
)

// Facts flattens the signature into a map of CEL friendly values (strings,
// booleans, integers, string lists and timestamps) for custom constraints.
func (s *AdvancedSignature) Facts() map[string]any {
	facts := map[string]any{
		"id":                     s.ID,
		"format":                 string(s.Format),
		"hasSigningCertificate":  s.SigningCertificate != nil,
		"certificateCount":       int64(s.Certificates.Len()),
		"signatureTimestamps":    int64(len(s.SignatureTimestamps())),
		"archiveTimestamps":      int64(len(s.ArchiveTimestamps())),
		"contentTimestamps":      int64(len(s.ContentTimestamps())),
		"counterSignatures":      int64(len(s.CounterSignatures)),
		"crlCount":               int64(s.CRLs.Len()),
		"ocspCount":              int64(s.OCSPs.Len()),
		"contentType":            s.SignedAttributes.ContentType,
		"mimeType":               s.SignedAttributes.MimeType,
		"commitmentTypes":        nonNil(s.SignedAttributes.CommitmentTypes),
		"claimedRoles":           nonNil(s.SignedAttributes.ClaimedRoles),
		"certifiedRoles":         nonNil(s.SignedAttributes.CertifiedRoles),
		"hasSignerLocation":      !s.SignedAttributes.SignerLocation.IsEmpty(),
		"hasSigningCertRef":      s.SignedAttributes.SigningCertificateRef != nil,
		"policyId":               "",
		"hasPolicyDigest":        false,
		"hasClaimedSigningTime":  s.ClaimedSigningTime() != nil,
		"subFilter":              "",
		"signerSubject":          "",
		"signerIssuer":           "",
		"signerNotAfterUnixTime": int64(0),
	}
	if s.Policy != nil {
		facts["policyId"] = s.Policy.Identifier
		facts["hasPolicyDigest"] = s.Policy.Digest != nil && s.Policy.Digest.Algorithm != ""
	}
	if s.PDF != nil {
		facts["subFilter"] = s.PDF.SubFilter
	}
	if s.SigningCertificate != nil {
		facts["signerSubject"] = s.SigningCertificate.Subject()
		facts["signerIssuer"] = s.SigningCertificate.Issuer()
		facts["signerNotAfterUnixTime"] = s.SigningCertificate.NotAfter().Unix()
	}
	if t := s.ClaimedSigningTime(); t != nil {
		facts["signingTime"] = t.UTC().Format(time.RFC3339)
	}
	return facts
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
