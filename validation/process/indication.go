// Package process evaluates ordered chains of validation checks under a
// validation policy and produces a conclusion per chain.
//
// Indications and sub-indications follow ETSI EN 319 102-1.
package process

// Indication is the overall outcome of a validation process.
type Indication string

// Validation Indication values per ETSI EN 319 102-1
const (
	IndicationPassed        Indication = "PASSED"
	IndicationFailed        Indication = "FAILED"
	IndicationIndeterminate Indication = "INDETERMINATE"
)

// SubIndication refines a FAILED or INDETERMINATE indication.
type SubIndication string

// Sub-indication values per ETSI EN 319 102-1
const (
	// FAILED sub-indications
	SubIndicationFormatFailure          SubIndication = "FORMAT_FAILURE"
	SubIndicationHashFailure            SubIndication = "HASH_FAILURE"
	SubIndicationSigCryptoFailure       SubIndication = "SIG_CRYPTO_FAILURE"
	SubIndicationRevoked                SubIndication = "REVOKED"
	SubIndicationNotYetValid            SubIndication = "NOT_YET_VALID"
	SubIndicationSigConstraintsFailure  SubIndication = "SIG_CONSTRAINTS_FAILURE"
	SubIndicationChainConstraintsFailed SubIndication = "CHAIN_CONSTRAINTS_FAILURE"

	// INDETERMINATE sub-indications
	SubIndicationCertificateChainGeneralFailure SubIndication = "CERTIFICATE_CHAIN_GENERAL_FAILURE"
	SubIndicationCryptoConstraintsFailure       SubIndication = "CRYPTO_CONSTRAINTS_FAILURE"
	SubIndicationExpired                        SubIndication = "EXPIRED"
	SubIndicationSignedDataNotFound             SubIndication = "SIGNED_DATA_NOT_FOUND"
	SubIndicationNoPoE                          SubIndication = "NO_POE"
	SubIndicationTimestampOrderFailure          SubIndication = "TIMESTAMP_ORDER_FAILURE"
	SubIndicationNoSigningCertificateFound      SubIndication = "NO_SIGNING_CERTIFICATE_FOUND"
	SubIndicationNoCertificateChainFound        SubIndication = "NO_CERTIFICATE_CHAIN_FOUND"
	SubIndicationRevokedNoPoE                   SubIndication = "REVOKED_NO_POE"
	SubIndicationRevokedCANoPoE                 SubIndication = "REVOKED_CA_NO_POE"
	SubIndicationOutOfBoundsNoPoE               SubIndication = "OUT_OF_BOUNDS_NO_POE"
	SubIndicationOutOfBoundsNotRevoked          SubIndication = "OUT_OF_BOUNDS_NOT_REVOKED"
	SubIndicationTryLater                       SubIndication = "TRY_LATER"
	SubIndicationPolicyProcessingError          SubIndication = "POLICY_PROCESSING_ERROR"
	SubIndicationSignaturePolicyNotAvailable    SubIndication = "SIGNATURE_POLICY_NOT_AVAILABLE"
)

// ParseIndication returns the indication named s, or false.
func ParseIndication(s string) (Indication, bool) {
	switch i := Indication(s); i {
	case IndicationPassed, IndicationFailed, IndicationIndeterminate:
		return i, true
	}
	return "", false
}
