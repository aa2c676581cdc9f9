package qualification

import (
	"crypto/x509"
	"encoding/asn1"
	"errors"
	"fmt"
)

// ErrMalformedQCStatements is returned when the QC statements extension
// cannot be decoded.
var ErrMalformedQCStatements = errors.New("malformed QC statements")

// QC Statement OIDs from ETSI EN 319 412-5
var (
	OIDQcStatements = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 1, 3}
	OIDQcCompliance = asn1.ObjectIdentifier{0, 4, 0, 1862, 1, 1}
	OIDQcSSCD       = asn1.ObjectIdentifier{0, 4, 0, 1862, 1, 4}
	OIDQcType       = asn1.ObjectIdentifier{0, 4, 0, 1862, 1, 6}

	// QC Type OIDs
	OIDQcTypeEsign = asn1.ObjectIdentifier{0, 4, 0, 1862, 1, 6, 1}
	OIDQcTypeEseal = asn1.ObjectIdentifier{0, 4, 0, 1862, 1, 6, 2}
	OIDQcTypeWeb   = asn1.ObjectIdentifier{0, 4, 0, 1862, 1, 6, 3}

	// id-qcs-pkixQCSyntax-v2 from RFC 3739, carrying the semantics identifier
	OIDPkixQCSyntaxV2 = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 11, 2}
)

// QCType represents the type of qualified certificate.
type QCType int

const (
	QCTypeUnknown QCType = iota
	QCTypeEsign          // Electronic signature
	QCTypeEseal          // Electronic seal
	QCTypeWeb            // Website authentication
)

// String returns the string representation of QC type.
func (t QCType) String() string {
	switch t {
	case QCTypeEsign:
		return "esign"
	case QCTypeEseal:
		return "eseal"
	case QCTypeWeb:
		return "web"
	default:
		return "unknown"
	}
}

// MarshalText encodes the type by name.
func (t QCType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// QCTypeFromOID returns the QC type for an OID.
func QCTypeFromOID(oid asn1.ObjectIdentifier) QCType {
	switch {
	case oid.Equal(OIDQcTypeEsign):
		return QCTypeEsign
	case oid.Equal(OIDQcTypeEseal):
		return QCTypeEseal
	case oid.Equal(OIDQcTypeWeb):
		return QCTypeWeb
	}
	return QCTypeUnknown
}

// QCStatus is what the signing certificate itself asserts about its
// qualification.
type QCStatus struct {
	// Compliance is the QcCompliance statement
	Compliance bool `json:"compliance"`
	// SSCD is the QcSSCD statement
	SSCD bool `json:"sscd"`
	// Types lists the declared QcType values
	Types []QCType `json:"types,omitempty"`
	// SemanticsIdentifiers lists the semantics identifier OIDs
	SemanticsIdentifiers []string `json:"semanticsIdentifiers,omitempty"`
}

// IsQC reports whether the certificate claims to be qualified.
func (s QCStatus) IsQC() bool {
	return s.Compliance
}

// IsForESig reports whether the certificate is meant for electronic
// signatures: QcType esign, or no QcType at all.
func (s QCStatus) IsForESig() bool {
	if len(s.Types) == 0 {
		return true
	}
	for _, t := range s.Types {
		if t == QCTypeEsign {
			return true
		}
	}
	return false
}

// IsQSCD reports whether the private key is claimed to reside in a QSCD.
func (s QCStatus) IsQSCD() bool {
	return s.SSCD
}

type qcStatement struct {
	ID   asn1.ObjectIdentifier
	Info asn1.RawValue `asn1:"optional"`
}

type semanticsInformation struct {
	ID  asn1.ObjectIdentifier `asn1:"optional"`
	NRA asn1.RawValue         `asn1:"optional"`
}

// StatusFromCertificate reads the QC statements extension of cert. A
// certificate without the extension has the zero status.
func StatusFromCertificate(cert *x509.Certificate) (QCStatus, error) {
	var status QCStatus
	if cert == nil {
		return status, nil
	}
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(OIDQcStatements) {
			return parseQCStatements(ext.Value)
		}
	}
	return status, nil
}

func parseQCStatements(data []byte) (QCStatus, error) {
	var status QCStatus
	var statements []qcStatement
	if rest, err := asn1.Unmarshal(data, &statements); err != nil {
		return status, fmt.Errorf("%w: %v", ErrMalformedQCStatements, err)
	} else if len(rest) > 0 {
		return status, fmt.Errorf("%w: trailing data", ErrMalformedQCStatements)
	}

	for _, stmt := range statements {
		switch {
		case stmt.ID.Equal(OIDQcCompliance):
			status.Compliance = true
		case stmt.ID.Equal(OIDQcSSCD):
			status.SSCD = true
		case stmt.ID.Equal(OIDQcType):
			var types []asn1.ObjectIdentifier
			if _, err := asn1.Unmarshal(stmt.Info.FullBytes, &types); err != nil {
				return status, fmt.Errorf("%w: QcType: %v", ErrMalformedQCStatements, err)
			}
			for _, oid := range types {
				status.Types = append(status.Types, QCTypeFromOID(oid))
			}
		case stmt.ID.Equal(OIDPkixQCSyntaxV2):
			if len(stmt.Info.FullBytes) == 0 {
				continue
			}
			var info semanticsInformation
			if _, err := asn1.Unmarshal(stmt.Info.FullBytes, &info); err != nil {
				return status, fmt.Errorf("%w: semantics information: %v", ErrMalformedQCStatements, err)
			}
			if len(info.ID) > 0 {
				status.SemanticsIdentifiers = append(status.SemanticsIdentifiers, info.ID.String())
			}
		}
	}
	return status, nil
}

// EncodeQCStatements builds a QC statements extension value.
func EncodeQCStatements(status QCStatus) ([]byte, error) {
	var statements []qcStatement
	if status.Compliance {
		statements = append(statements, qcStatement{ID: OIDQcCompliance})
	}
	if status.SSCD {
		statements = append(statements, qcStatement{ID: OIDQcSSCD})
	}
	if len(status.Types) > 0 {
		var oids []asn1.ObjectIdentifier
		for _, t := range status.Types {
			switch t {
			case QCTypeEsign:
				oids = append(oids, OIDQcTypeEsign)
			case QCTypeEseal:
				oids = append(oids, OIDQcTypeEseal)
			case QCTypeWeb:
				oids = append(oids, OIDQcTypeWeb)
			}
		}
		der, err := asn1.Marshal(oids)
		if err != nil {
			return nil, err
		}
		statements = append(statements, qcStatement{ID: OIDQcType, Info: asn1.RawValue{FullBytes: der}})
	}
	for _, s := range status.SemanticsIdentifiers {
		oid, err := parseOID(s)
		if err != nil {
			return nil, err
		}
		der, err := asn1.Marshal(semanticsInformation{ID: oid})
		if err != nil {
			return nil, err
		}
		statements = append(statements, qcStatement{ID: OIDPkixQCSyntaxV2, Info: asn1.RawValue{FullBytes: der}})
	}
	return asn1.Marshal(statements)
}

func parseOID(s string) (asn1.ObjectIdentifier, error) {
	var oid asn1.ObjectIdentifier
	var n int
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' {
			if i == 0 || s[i-1] == '.' {
				return nil, fmt.Errorf("invalid OID %q", s)
			}
			oid = append(oid, n)
			n = 0
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return nil, fmt.Errorf("invalid OID %q", s)
		}
		n = n*10 + int(s[i]-'0')
	}
	return oid, nil
}
