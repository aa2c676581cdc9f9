// Package keys provides utilities for loading certificates from PEM, DER
// and PKCS#12 encoded files.
package keys

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"software.sslmate.com/src/go-pkcs12"
)

// Common errors
var (
	ErrNoCertFound   = errors.New("no certificate found in data")
	ErrMultipleCerts = errors.New("expected exactly one certificate")
	ErrPKCS12        = errors.New("failed to decode PKCS#12 data")
)

// LoadCertFromPemDer loads a single certificate from a PEM or DER encoded file.
func LoadCertFromPemDer(filename string) (*x509.Certificate, error) {
	certs, err := LoadCertsFromPemDer(filename)
	if err != nil {
		return nil, err
	}
	if len(certs) != 1 {
		return nil, fmt.Errorf("%w: found %d certificates in %s", ErrMultipleCerts, len(certs), filename)
	}
	return certs[0], nil
}

// LoadCertsFromPemDer loads certificates from a PEM or DER encoded file.
func LoadCertsFromPemDer(filename string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return LoadCertsFromPemDerData(data)
}

// LoadCertsFromPemDerData loads certificates from PEM or DER encoded data.
func LoadCertsFromPemDerData(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate

	if isPEM(data) {
		rest := data
		for len(rest) > 0 {
			var block *pem.Block
			block, rest = pem.Decode(rest)
			if block == nil {
				break
			}

			// Only process CERTIFICATE blocks
			if block.Type == "CERTIFICATE" {
				cert, err := x509.ParseCertificate(block.Bytes)
				if err != nil {
					return nil, fmt.Errorf("failed to parse certificate: %w", err)
				}
				certs = append(certs, cert)
			}
		}
	} else {
		// A single certificate or concatenated DER certificates
		cert, err := x509.ParseCertificate(data)
		if err != nil {
			parsedCerts, parseErr := x509.ParseCertificates(data)
			if parseErr != nil {
				return nil, fmt.Errorf("failed to parse DER certificate: %w", err)
			}
			certs = parsedCerts
		} else {
			certs = []*x509.Certificate{cert}
		}
	}

	if len(certs) == 0 {
		return nil, ErrNoCertFound
	}

	return certs, nil
}

// LoadCertsFromPemDerFiles loads certificates from multiple files.
func LoadCertsFromPemDerFiles(filenames []string) ([]*x509.Certificate, error) {
	var allCerts []*x509.Certificate
	for _, filename := range filenames {
		certs, err := LoadCertsFromPemDer(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to load certs from %s: %w", filename, err)
		}
		allCerts = append(allCerts, certs...)
	}
	return allCerts, nil
}

// LoadTrustStore loads the certificates of a PKCS#12 file.
func LoadTrustStore(filename, password string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return LoadTrustStoreData(data, password)
}

// LoadTrustStoreData decodes PKCS#12 data. Java style trust stores (only
// trusted certificate bags) and key stores (a key, its certificate and CA
// certificates) are both accepted; keys are discarded.
func LoadTrustStoreData(data []byte, password string) ([]*x509.Certificate, error) {
	certs, err := pkcs12.DecodeTrustStore(data, password)
	if err == nil {
		if len(certs) == 0 {
			return nil, ErrNoCertFound
		}
		return certs, nil
	}

	_, cert, caCerts, chainErr := pkcs12.DecodeChain(data, password)
	if chainErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrPKCS12, errors.Join(err, chainErr))
	}
	return append([]*x509.Certificate{cert}, caCerts...), nil
}

// isPEM checks if the data appears to be PEM encoded.
func isPEM(data []byte) bool {
	return len(data) > 10 && string(data[:5]) == "-----"
}

// CertificateChain represents a chain of certificates.
type CertificateChain struct {
	// EndEntity is the end-entity (leaf) certificate.
	EndEntity *x509.Certificate

	// Intermediates are the intermediate certificates.
	Intermediates []*x509.Certificate

	// Root is the root certificate (if present).
	Root *x509.Certificate
}

// All returns the certificates of the chain, end entity first.
func (c *CertificateChain) All() []*x509.Certificate {
	out := []*x509.Certificate{c.EndEntity}
	out = append(out, c.Intermediates...)
	if c.Root != nil {
		out = append(out, c.Root)
	}
	return out
}

// LoadCertificateChain loads a certificate chain from files.
// The first file should contain the end-entity certificate.
func LoadCertificateChain(certFiles []string) (*CertificateChain, error) {
	if len(certFiles) == 0 {
		return nil, errors.New("no certificate files provided")
	}

	allCerts, err := LoadCertsFromPemDerFiles(certFiles)
	if err != nil {
		return nil, err
	}
	if len(allCerts) == 0 {
		return nil, ErrNoCertFound
	}

	chain := &CertificateChain{
		EndEntity: allCerts[0],
	}

	if len(allCerts) > 1 {
		chain.Intermediates = allCerts[1:]

		// Check if the last cert is a root (self-signed)
		lastCert := allCerts[len(allCerts)-1]
		if isSelfSigned(lastCert) {
			chain.Root = lastCert
			chain.Intermediates = allCerts[1 : len(allCerts)-1]
		}
	}

	return chain, nil
}

// isSelfSigned checks if a certificate is self-signed.
func isSelfSigned(cert *x509.Certificate) bool {
	return cert.Subject.String() == cert.Issuer.String()
}
