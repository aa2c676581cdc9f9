// Package certvalidator provides offline X.509 chain building and revocation
// completeness verification for signature validation.
// This file contains error types for certificate validation.
package certvalidator

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrMalformedCertificate = errors.New("malformed certificate")
	ErrChainTooLong         = errors.New("certificate chain exceeds maximum length")
	ErrContextValidated     = errors.New("validation context already validated")
	ErrContextNotValidated  = errors.New("validation context not validated")
)

// PathError is the base error type for chain building errors.
type PathError struct {
	Message string
}

func (e *PathError) Error() string {
	return e.Message
}

// NewPathError creates a new PathError.
func NewPathError(message string) *PathError {
	return &PathError{Message: message}
}

// PathBuildingError occurs when a chain cannot be built for a certificate.
type PathBuildingError struct {
	PathError
	CertificateID string
	Err           error
}

// NewPathBuildingError creates a new PathBuildingError.
func NewPathBuildingError(certID string, err error) *PathBuildingError {
	return &PathBuildingError{
		PathError:     PathError{Message: fmt.Sprintf("chain building failed for %s: %v", certID, err)},
		CertificateID: certID,
		Err:           err,
	}
}

func (e *PathBuildingError) Unwrap() error {
	return e.Err
}

// RevocationDataError occurs when revocation evidence cannot be read.
type RevocationDataError struct {
	PathError
	CertificateID string
	Err           error
}

// NewRevocationDataError creates a new RevocationDataError.
func NewRevocationDataError(certID string, err error) *RevocationDataError {
	return &RevocationDataError{
		PathError:     PathError{Message: fmt.Sprintf("revocation data for %s: %v", certID, err)},
		CertificateID: certID,
		Err:           err,
	}
}

func (e *RevocationDataError) Unwrap() error {
	return e.Err
}

// MissingRevocationError lists certificates without covering revocation data.
type MissingRevocationError struct {
	CertificateIDs []string
}

func (e *MissingRevocationError) Error() string {
	return fmt.Sprintf("no revocation data covering %d certificate(s): %v", len(e.CertificateIDs), e.CertificateIDs)
}
