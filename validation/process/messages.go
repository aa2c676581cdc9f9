package process

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// MessageTag is a key into the message catalog.
type MessageTag string

// Chain titles.
const (
	TitleBasicSignature      MessageTag = "VPFBS"
	TitleCertificate         MessageTag = "BBB_XCV"
	TitleSignatureAcceptance MessageTag = "BBB_SAV"
	TitleTimestamp           MessageTag = "TSV"
	TitleQualification       MessageTag = "SQ"
)

// Check questions and their failure messages. The failure message of a
// question tag X is X + "_ANS".
const (
	TagSigningCertificateFound MessageTag = "BBB_ICS_ISCI"
	TagSigningCertificateRef   MessageTag = "BBB_ICS_ISASCP"
	TagSigningCertificateMatch MessageTag = "BBB_ICS_ICDVV"
	TagIssuerSerialMatch       MessageTag = "BBB_ICS_AIDNASNE"
	TagPolicyHashPresent       MessageTag = "BBB_VCI_ISPHP"

	TagSigningTime       MessageTag = "BBB_SAV_ISQPSTP"
	TagContentType       MessageTag = "BBB_SAV_ISQPCTP"
	TagContentHints      MessageTag = "BBB_SAV_ISQPCHP"
	TagContentIdentifier MessageTag = "BBB_SAV_ISQPCIP"
	TagCommitmentType    MessageTag = "BBB_SAV_ISQPXTIP"
	TagSignerLocation    MessageTag = "BBB_SAV_ISQPSLP"
	TagClaimedRoles      MessageTag = "BBB_SAV_ICRM"
	TagCertifiedRoles    MessageTag = "BBB_SAV_ICERRM"
	TagContentTimestamp  MessageTag = "BBB_SAV_ISQPCTSIP"
	TagCustomConstraint  MessageTag = "BBB_SAV_CUSTOM"
	TagBaselineLevel     MessageTag = "BBB_SAV_IBLR"

	TagCertificateValidity   MessageTag = "BBB_XCV_ICTIVRSC"
	TagRevocationDataPresent MessageTag = "BBB_XCV_IRDPFC"
	TagCertificateNotRevoked MessageTag = "BBB_XCV_ISCR"
	TagCertificateNotOnHold  MessageTag = "BBB_XCV_ISCOH"
	TagSemanticsIdentifier   MessageTag = "BBB_XCV_CMDCISI"

	TagMessageImprintFound   MessageTag = "BBB_CV_TSP_IMIDF"
	TagMessageImprintIntact  MessageTag = "BBB_CV_TSP_IMIVC"
	TagTimestampBeforeExpiry MessageTag = "TSV_ITCBSCE"

	TagQCCompliance MessageTag = "QUAL_IS_QC"
	TagForESig      MessageTag = "QUAL_FOR_ESIG"
	TagQSCD         MessageTag = "QUAL_QSCD"

	TagChainPassed MessageTag = "BBB_SUB_CHAIN"
)

// Additional information formats.
const (
	InfoValidationTime    MessageTag = "VALIDATION_TIME"
	InfoTimestamp         MessageTag = "TIMESTAMP_INFO"
	InfoRevocation        MessageTag = "REVOCATION_INFO"
	InfoBaselineLevel     MessageTag = "BASELINE_LEVEL"
	InfoValues            MessageTag = "VALUES_INFO"
	InfoCertificateExpiry MessageTag = "CERTIFICATE_EXPIRY"
)

// Answer returns the failure message tag of a check question.
func (m MessageTag) Answer() MessageTag {
	return m + "_ANS"
}

// Text formats the message with p.
func (m MessageTag) Text(p *message.Printer, args ...any) string {
	return p.Sprintf(string(m), args...)
}

var englishMessages = map[MessageTag]string{
	TitleBasicSignature:      "Validation Process for Basic Signatures",
	TitleCertificate:         "X509 Certificate Validation",
	TitleSignatureAcceptance: "Signature Acceptance Validation",
	TitleTimestamp:           "Timestamp Validation",
	TitleQualification:       "Signature Qualification",

	TagSigningCertificateFound:          "Is there an identified candidate for the signing certificate?",
	TagSigningCertificateFound + "_ANS": "There is no candidate for the signing certificate!",
	TagSigningCertificateRef:            "Is the signed attribute: 'signing-certificate' present?",
	TagSigningCertificateRef + "_ANS":   "The signed attribute: 'signing-certificate' is absent!",
	TagSigningCertificateMatch:          "Does the signing certificate reference match the signing certificate?",
	TagSigningCertificateMatch + "_ANS": "The signing certificate reference does not match the signing certificate!",
	TagIssuerSerialMatch:                "Does the issuer-serial of the signing certificate reference match?",
	TagIssuerSerialMatch + "_ANS":       "The issuer-serial of the signing certificate reference does not match!",
	TagPolicyHashPresent:                "Is the signature policy hash present?",
	TagPolicyHashPresent + "_ANS":       "The explicit signature policy does not carry its hash!",

	TagSigningTime:                "Is the signed qualifying property: 'signing-time' present?",
	TagSigningTime + "_ANS":       "The signed qualifying property: 'signing-time' is not present!",
	TagContentType:                "Is the signed attribute: 'content-type' acceptable?",
	TagContentType + "_ANS":       "The signed attribute: 'content-type' is not acceptable!",
	TagContentHints:               "Is the signed attribute: 'content-hints' acceptable?",
	TagContentHints + "_ANS":      "The signed attribute: 'content-hints' is not acceptable!",
	TagContentIdentifier:          "Is the signed attribute: 'content-identifier' acceptable?",
	TagContentIdentifier + "_ANS": "The signed attribute: 'content-identifier' is not acceptable!",
	TagCommitmentType:             "Is the signed qualifying property: 'commitment-type-indication' acceptable?",
	TagCommitmentType + "_ANS":    "The signed qualifying property: 'commitment-type-indication' is not acceptable!",
	TagSignerLocation:             "Is the signed qualifying property: 'signer-location' present?",
	TagSignerLocation + "_ANS":    "The signed qualifying property: 'signer-location' is not present!",
	TagClaimedRoles:               "Is the claimed role acceptable?",
	TagClaimedRoles + "_ANS":      "The claimed role is not acceptable!",
	TagCertifiedRoles:             "Is the certified role acceptable?",
	TagCertifiedRoles + "_ANS":    "The certified role is not acceptable!",
	TagContentTimestamp:           "Is the signed qualifying property: 'content-timestamp' present?",
	TagContentTimestamp + "_ANS":  "The signed qualifying property: 'content-timestamp' is not present!",
	TagCustomConstraint:           "Is the custom constraint '%s' satisfied?",
	TagCustomConstraint + "_ANS":  "The custom constraint '%s' is not satisfied!",
	TagBaselineLevel:              "Does the signature reach the baseline level %s?",
	TagBaselineLevel + "_ANS":     "The signature does not reach the baseline level %s!",

	TagCertificateValidity:             "Is the validation time in the validity range of the signing certificate?",
	TagCertificateValidity + "_ANS":    "The validation time is not in the validity range of the signing certificate!",
	TagRevocationDataPresent:           "Is the revocation data present for the signing certificate?",
	TagRevocationDataPresent + "_ANS":  "No revocation data covers the signing certificate!",
	TagCertificateNotRevoked:           "Is the signing certificate not revoked?",
	TagCertificateNotRevoked + "_ANS":  "The signing certificate is revoked!",
	TagCertificateNotOnHold:            "Is the signing certificate not on hold?",
	TagCertificateNotOnHold + "_ANS":   "The signing certificate is on hold!",
	TagSemanticsIdentifier:             "Is the certificate semantics identifier acceptable?",
	TagSemanticsIdentifier + "_ANS":    "The certificate semantics identifier is not acceptable!",
	TagMessageImprintFound:             "Is the message imprint data found?",
	TagMessageImprintFound + "_ANS":    "The message imprint data is not found!",
	TagMessageImprintIntact:            "Is the message imprint data intact?",
	TagMessageImprintIntact + "_ANS":   "The computed message imprint does not match the value extracted from the timestamp!",
	TagTimestampBeforeExpiry:           "Is the timestamp produced before the signing certificate expiration?",
	TagTimestampBeforeExpiry + "_ANS":  "The timestamp is not produced before the signing certificate expiration!",
	TagQCCompliance:                    "Is the signing certificate qualified?",
	TagQCCompliance + "_ANS":           "The signing certificate is not qualified!",
	TagForESig:                         "Is the signing certificate issued for electronic signatures?",
	TagForESig + "_ANS":                "The signing certificate is not issued for electronic signatures!",
	TagQSCD:                            "Is the private key of the signing certificate on a QSCD?",
	TagQSCD + "_ANS":                   "The private key of the signing certificate is not on a QSCD!",
	TagChainPassed:                     "Is the result of the '%s' building block conclusive?",
	TagChainPassed + "_ANS":            "The result of the '%s' building block is not conclusive!",

	InfoValidationTime:    "Validation time: %s",
	InfoTimestamp:         "Timestamp %s produced at %s",
	InfoRevocation:        "Revocation reason: %s at %s",
	InfoBaselineLevel:     "Baseline level reached: %s",
	InfoValues:            "Values: %s",
	InfoCertificateExpiry: "Signing certificate expires at %s",
}

var frenchMessages = map[MessageTag]string{
	TitleBasicSignature:      "Processus de validation des signatures de base",
	TitleCertificate:         "Validation du certificat X509",
	TitleSignatureAcceptance: "Validation de l'acceptation de la signature",
	TitleTimestamp:           "Validation de l'horodatage",
	TitleQualification:       "Qualification de la signature",

	TagSigningCertificateFound:          "Existe-t-il un candidat identifié pour le certificat de signature ?",
	TagSigningCertificateFound + "_ANS": "Il n'y a aucun candidat pour le certificat de signature !",
	TagSigningCertificateRef:            "L'attribut signé 'signing-certificate' est-il présent ?",
	TagSigningCertificateRef + "_ANS":   "L'attribut signé 'signing-certificate' est absent !",
	TagSigningCertificateMatch:          "La référence du certificat de signature correspond-elle au certificat de signature ?",
	TagSigningCertificateMatch + "_ANS": "La référence du certificat de signature ne correspond pas au certificat de signature !",
	TagIssuerSerialMatch:                "L'issuer-serial de la référence du certificat de signature correspond-il ?",
	TagIssuerSerialMatch + "_ANS":       "L'issuer-serial de la référence du certificat de signature ne correspond pas !",
	TagPolicyHashPresent:                "L'empreinte de la politique de signature est-elle présente ?",
	TagPolicyHashPresent + "_ANS":       "La politique de signature explicite ne porte pas son empreinte !",

	TagSigningTime:                "La propriété qualifiante signée 'signing-time' est-elle présente ?",
	TagSigningTime + "_ANS":       "La propriété qualifiante signée 'signing-time' n'est pas présente !",
	TagContentType:                "L'attribut signé 'content-type' est-il acceptable ?",
	TagContentType + "_ANS":       "L'attribut signé 'content-type' n'est pas acceptable !",
	TagContentHints:               "L'attribut signé 'content-hints' est-il acceptable ?",
	TagContentHints + "_ANS":      "L'attribut signé 'content-hints' n'est pas acceptable !",
	TagContentIdentifier:          "L'attribut signé 'content-identifier' est-il acceptable ?",
	TagContentIdentifier + "_ANS": "L'attribut signé 'content-identifier' n'est pas acceptable !",
	TagCommitmentType:             "La propriété qualifiante signée 'commitment-type-indication' est-elle acceptable ?",
	TagCommitmentType + "_ANS":    "La propriété qualifiante signée 'commitment-type-indication' n'est pas acceptable !",
	TagSignerLocation:             "La propriété qualifiante signée 'signer-location' est-elle présente ?",
	TagSignerLocation + "_ANS":    "La propriété qualifiante signée 'signer-location' n'est pas présente !",
	TagClaimedRoles:               "Le rôle revendiqué est-il acceptable ?",
	TagClaimedRoles + "_ANS":      "Le rôle revendiqué n'est pas acceptable !",
	TagCertifiedRoles:             "Le rôle certifié est-il acceptable ?",
	TagCertifiedRoles + "_ANS":    "Le rôle certifié n'est pas acceptable !",
	TagContentTimestamp:           "La propriété qualifiante signée 'content-timestamp' est-elle présente ?",
	TagContentTimestamp + "_ANS":  "La propriété qualifiante signée 'content-timestamp' n'est pas présente !",
	TagCustomConstraint:           "La contrainte personnalisée '%s' est-elle satisfaite ?",
	TagCustomConstraint + "_ANS":  "La contrainte personnalisée '%s' n'est pas satisfaite !",
	TagBaselineLevel:              "La signature atteint-elle le niveau baseline %s ?",
	TagBaselineLevel + "_ANS":     "La signature n'atteint pas le niveau baseline %s !",

	TagCertificateValidity:             "La date de validation est-elle dans la période de validité du certificat de signature ?",
	TagCertificateValidity + "_ANS":    "La date de validation n'est pas dans la période de validité du certificat de signature !",
	TagRevocationDataPresent:           "Les données de révocation du certificat de signature sont-elles présentes ?",
	TagRevocationDataPresent + "_ANS":  "Aucune donnée de révocation ne couvre le certificat de signature !",
	TagCertificateNotRevoked:           "Le certificat de signature est-il non révoqué ?",
	TagCertificateNotRevoked + "_ANS":  "Le certificat de signature est révoqué !",
	TagCertificateNotOnHold:            "Le certificat de signature est-il non suspendu ?",
	TagCertificateNotOnHold + "_ANS":   "Le certificat de signature est suspendu !",
	TagSemanticsIdentifier:             "L'identifiant sémantique du certificat est-il acceptable ?",
	TagSemanticsIdentifier + "_ANS":    "L'identifiant sémantique du certificat n'est pas acceptable !",
	TagMessageImprintFound:             "L'empreinte du message est-elle trouvée ?",
	TagMessageImprintFound + "_ANS":    "L'empreinte du message est introuvable !",
	TagMessageImprintIntact:            "L'empreinte du message est-elle intacte ?",
	TagMessageImprintIntact + "_ANS":   "L'empreinte calculée ne correspond pas à la valeur extraite de l'horodatage !",
	TagTimestampBeforeExpiry:           "L'horodatage est-il produit avant l'expiration du certificat de signature ?",
	TagTimestampBeforeExpiry + "_ANS":  "L'horodatage n'est pas produit avant l'expiration du certificat de signature !",
	TagQCCompliance:                    "Le certificat de signature est-il qualifié ?",
	TagQCCompliance + "_ANS":           "Le certificat de signature n'est pas qualifié !",
	TagForESig:                         "Le certificat de signature est-il émis pour les signatures électroniques ?",
	TagForESig + "_ANS":                "Le certificat de signature n'est pas émis pour les signatures électroniques !",
	TagQSCD:                            "La clé privée du certificat de signature est-elle sur un QSCD ?",
	TagQSCD + "_ANS":                   "La clé privée du certificat de signature n'est pas sur un QSCD !",
	TagChainPassed:                     "Le résultat du bloc '%s' est-il concluant ?",
	TagChainPassed + "_ANS":            "Le résultat du bloc '%s' n'est pas concluant !",

	InfoValidationTime:    "Date de validation : %s",
	InfoTimestamp:         "Horodatage %s produit le %s",
	InfoRevocation:        "Motif de révocation : %s le %s",
	InfoBaselineLevel:     "Niveau baseline atteint : %s",
	InfoValues:            "Valeurs : %s",
	InfoCertificateExpiry: "Le certificat de signature expire le %s",
}

// catalogLanguages lists the catalog languages. The first entry is the
// fallback for unsupported tags.
var catalogLanguages = []language.Tag{language.English, language.French}

var (
	messageCatalog  = newCatalog()
	languageMatcher = language.NewMatcher(catalogLanguages)
)

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for lang, messages := range map[language.Tag]map[MessageTag]string{
		language.English: englishMessages,
		language.French:  frenchMessages,
	} {
		for tag, msg := range messages {
			if err := b.SetString(lang, string(tag), msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// MatchLanguage resolves tag to the closest catalog language.
func MatchLanguage(tag language.Tag) language.Tag {
	_, idx, _ := languageMatcher.Match(tag)
	return catalogLanguages[idx]
}

// NewPrinter returns a printer for tag backed by the message catalog.
// Unknown languages fall back to English.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(MatchLanguage(tag), message.Catalog(messageCatalog))
}

// DefaultPrinter returns an English printer.
func DefaultPrinter() *message.Printer {
	return NewPrinter(language.English)
}
