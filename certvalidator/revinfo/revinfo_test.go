// Package revinfo provides revocation evidence handling tests.
package revinfo

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/ocsp"

	"github.com/georgepadayatti/adesverdict/certvalidator/certtest"
)

func TestRevocationReasonString(t *testing.T) {
	tests := []struct {
		reason   RevocationReason
		expected string
	}{
		{ReasonUnspecified, "unspecified"},
		{ReasonKeyCompromise, "keyCompromise"},
		{ReasonCertificateHold, "certificateHold"},
		{ReasonAACompromise, "aACompromise"},
		{RevocationReason(7), "unknown(7)"},
	}

	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.expected {
			t.Errorf("RevocationReason(%d).String() = %q, want %q", tt.reason, got, tt.expected)
		}
	}
}

func TestRevocationTokenCovers(t *testing.T) {
	now := time.Now()
	next := now.Add(time.Hour)

	bounded := &RevocationToken{ThisUpdate: now.Add(-time.Hour), NextUpdate: &next}
	if !bounded.Covers(now) {
		t.Error("expected token to cover now")
	}
	if !bounded.Covers(next) {
		t.Error("expected token to cover its nextUpdate")
	}
	if bounded.Covers(now.Add(2 * time.Hour)) {
		t.Error("expected token not to cover a time after nextUpdate")
	}
	if bounded.Covers(now.Add(-2 * time.Hour)) {
		t.Error("expected token not to cover a time before thisUpdate")
	}

	open := &RevocationToken{ThisUpdate: now.Add(-time.Hour)}
	if !open.Covers(now.Add(100 * 24 * time.Hour)) {
		t.Error("expected open-ended token to cover any later time")
	}
}

func TestCRLSourceRevocationTokens(t *testing.T) {
	now := time.Now()
	ca := certtest.NewRoot(t, "CA")
	good := ca.NewLeaf(t, "Good")
	held := ca.NewLeaf(t, "Held")

	crl := ca.CRL(t, now.Add(-time.Hour), now.Add(time.Hour),
		certtest.Revoked(held.Cert, now.Add(-30*time.Minute), int(ReasonCertificateHold)))
	src := NewCRLSource(OriginRevocationValues, crl, crl)
	if src.Len() != 1 {
		t.Fatalf("expected duplicate CRL to be stored once, got %d", src.Len())
	}

	tokens, err := src.RevocationTokens(good.Cert, ca.Cert)
	if err != nil {
		t.Fatalf("RevocationTokens failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Status != StatusGood || tokens[0].Kind != KindCRL {
		t.Fatalf("unexpected tokens for good certificate: %+v", tokens)
	}

	tokens, err = src.RevocationTokens(held.Cert, ca.Cert)
	if err != nil {
		t.Fatalf("RevocationTokens failed: %v", err)
	}
	if len(tokens) != 1 || !tokens[0].IsOnHold() {
		t.Fatalf("expected on-hold token, got %+v", tokens)
	}
	if tokens[0].Origin != OriginRevocationValues {
		t.Errorf("Origin = %s, want %s", tokens[0].Origin, OriginRevocationValues)
	}
}

func TestCRLSourceIgnoresOtherIssuers(t *testing.T) {
	now := time.Now()
	ca := certtest.NewRoot(t, "CA")
	other := certtest.NewRoot(t, "Other CA")
	leaf := ca.NewLeaf(t, "Leaf")

	src := NewCRLSource(OriginDSSDictionary, other.CRL(t, now.Add(-time.Hour), now.Add(time.Hour)))
	tokens, err := src.RevocationTokens(leaf.Cert, ca.Cert)
	if err != nil {
		t.Fatalf("RevocationTokens failed: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("expected no tokens, got %d", len(tokens))
	}
}

func TestCRLSourceMalformed(t *testing.T) {
	ca := certtest.NewRoot(t, "CA")
	leaf := ca.NewLeaf(t, "Leaf")

	src := NewCRLSource(OriginExternal, []byte("garbage"))
	_, err := src.RevocationTokens(leaf.Cert, ca.Cert)
	if !errors.Is(err, ErrMalformedCRL) {
		t.Errorf("expected ErrMalformedCRL, got %v", err)
	}

	if _, err := src.RevocationTokens(leaf.Cert, nil); !errors.Is(err, ErrNoIssuer) {
		t.Errorf("expected ErrNoIssuer, got %v", err)
	}
}

func TestOCSPSourceRevocationTokens(t *testing.T) {
	now := time.Now()
	ca := certtest.NewRoot(t, "CA")
	leaf := ca.NewLeaf(t, "Leaf")
	sibling := ca.NewLeaf(t, "Sibling")

	resp := ca.OCSP(t, leaf.Cert, ocsp.Revoked, now.Add(-time.Hour), now.Add(time.Hour))
	src := NewOCSPSource(OriginRevocationValues, resp)

	tokens, err := src.RevocationTokens(leaf.Cert, ca.Cert)
	if err != nil {
		t.Fatalf("RevocationTokens failed: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("expected one token, got %d", len(tokens))
	}
	if tokens[0].Kind != KindOCSP || !tokens[0].IsRevoked() || tokens[0].RevocationTime == nil {
		t.Errorf("unexpected token: %+v", tokens[0])
	}
	if tokens[0].NextUpdate == nil {
		t.Error("expected nextUpdate to be set")
	}

	tokens, err = src.RevocationTokens(sibling.Cert, ca.Cert)
	if err != nil {
		t.Fatalf("RevocationTokens failed: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("expected no token for another serial, got %d", len(tokens))
	}
}

func TestOCSPSourceWrongSigner(t *testing.T) {
	now := time.Now()
	ca := certtest.NewRoot(t, "CA")
	other := certtest.NewRoot(t, "Other CA")
	leaf := ca.NewLeaf(t, "Leaf")

	src := NewOCSPSource(OriginRevocationValues, other.OCSP(t, leaf.Cert, ocsp.Good, now.Add(-time.Hour), now.Add(time.Hour)))
	tokens, err := src.RevocationTokens(leaf.Cert, ca.Cert)
	if err != nil {
		t.Fatalf("RevocationTokens failed: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("expected response signed by another key to be ignored, got %d tokens", len(tokens))
	}
}

func TestOCSPSourceMalformed(t *testing.T) {
	ca := certtest.NewRoot(t, "CA")
	leaf := ca.NewLeaf(t, "Leaf")

	src := NewOCSPSource(OriginRevocationValues, []byte{0x30, 0x00})
	if _, err := src.RevocationTokens(leaf.Cert, ca.Cert); !errors.Is(err, ErrMalformedOCSP) {
		t.Errorf("expected ErrMalformedOCSP, got %v", err)
	}
}

func TestSourceMerge(t *testing.T) {
	a := NewCRLSource(OriginCMSSignedData, []byte{1})
	b := NewCRLSource(OriginDSSDictionary, []byte{1}, []byte{2})
	a.Merge(b)
	a.Merge(nil)
	if a.Len() != 2 {
		t.Errorf("expected 2 CRLs after merge, got %d", a.Len())
	}

	var nilSource *OCSPSource
	if !nilSource.IsEmpty() {
		t.Error("expected nil source to be empty")
	}
}

func TestLatest(t *testing.T) {
	now := time.Now()
	older := &RevocationToken{ProductionTime: now.Add(-time.Hour)}
	newer := &RevocationToken{ProductionTime: now}
	if got := Latest([]*RevocationToken{older, newer}); got != newer {
		t.Error("expected the most recent token")
	}
	if Latest(nil) != nil {
		t.Error("expected nil for no tokens")
	}
}
