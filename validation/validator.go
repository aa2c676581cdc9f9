// Package validation runs the validation processes of a policy over AdES
// signatures and reports their indication, baseline level and
// qualification.
package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/georgepadayatti/adesverdict/certvalidator"
	"github.com/georgepadayatti/adesverdict/validation/baseline"
	"github.com/georgepadayatti/adesverdict/validation/metrics"
	"github.com/georgepadayatti/adesverdict/validation/policy"
	"github.com/georgepadayatti/adesverdict/validation/process"
	"github.com/georgepadayatti/adesverdict/validation/process/checks"
	"github.com/georgepadayatti/adesverdict/validation/qualification"
	"github.com/georgepadayatti/adesverdict/validation/signature"
)

var (
	// ErrNoPolicy is returned when a validator is created without a policy.
	ErrNoPolicy = errors.New("validation: policy cannot be nil")
	// ErrNoOfflineVerifier is returned when a validator is created without
	// an offline verifier.
	ErrNoOfflineVerifier = errors.New("validation: offline verifier cannot be nil")
	// ErrNoSignature is returned when a nil signature is validated.
	ErrNoSignature = errors.New("validation: signature cannot be nil")
)

// DefaultConcurrency bounds ValidateAll when no concurrency is configured.
const DefaultConcurrency = 4

// Validator validates signatures against one policy and one trust
// configuration. It is safe for concurrent use.
type Validator struct {
	policy      *policy.Policy
	verifier    *certvalidator.OfflineVerifier
	engine      *checks.ExpressionEngine
	logger      *slog.Logger
	metrics     *metrics.Metrics
	lang        language.Tag
	concurrency int
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithMetrics records validation outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Validator) {
		v.metrics = m
	}
}

// WithLanguage sets the language of the record texts.
func WithLanguage(tag language.Tag) Option {
	return func(v *Validator) {
		v.lang = tag
	}
}

// WithConcurrency bounds the number of signatures ValidateAll processes at
// once. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// NewValidator creates a validator. The policy is validated and its custom
// expressions compiled up front.
func NewValidator(p *policy.Policy, verifier *certvalidator.OfflineVerifier, opts ...Option) (*Validator, error) {
	if p == nil {
		return nil, ErrNoPolicy
	}
	if verifier == nil {
		return nil, ErrNoOfflineVerifier
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	engine, err := checks.NewExpressionEngine()
	if err != nil {
		return nil, err
	}
	for _, c := range p.Custom {
		if _, err := engine.Compile(c.Expression); err != nil {
			return nil, fmt.Errorf("%w: custom.%s: %v", policy.ErrInvalidPolicy, c.ID, err)
		}
	}

	v := &Validator{
		policy:      p,
		verifier:    verifier,
		engine:      engine,
		logger:      slog.Default(),
		lang:        language.English,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Policy returns the validation policy.
func (v *Validator) Policy() *policy.Policy {
	return v.policy
}

// run holds the state of one validation run.
type run struct {
	sig     *signature.AdvancedSignature
	ctx     *certvalidator.ValidationContext
	printer *message.Printer
	status  qualification.QCStatus
	logger  *slog.Logger
}

// Validate validates sig. Validation failures are reported in the Report;
// an error is returned only for unusable input.
func (v *Validator) Validate(sig *signature.AdvancedSignature) (*Report, error) {
	if sig == nil {
		return nil, ErrNoSignature
	}
	start := time.Now()
	checker, err := baseline.NewChecker(sig, v.verifier, v.logger)
	if err != nil {
		return nil, err
	}

	r := &run{
		sig:     sig,
		ctx:     v.openContext(sig),
		printer: process.NewPrinter(v.lang),
		logger:  v.logger.With(slog.String("signature", sig.ID)),
	}
	if sig.SigningCertificate != nil {
		status, err := qualification.StatusFromCertificate(sig.SigningCertificate.Certificate())
		if err != nil {
			r.logger.Warn("QC statements could not be read", slog.String("error", err.Error()))
		}
		r.status = status
	}

	flags := baseline.Evaluate(checker)
	level := baseline.LevelOf(flags)

	top := v.basicSignatureChain(r, level).Execute()

	report := &Report{
		ID:             uuid.NewString(),
		SignatureID:    sig.ID,
		Format:         sig.Format,
		ValidationTime: r.ctx.ValidationTime(),
		Indication:     top.Indication,
		SubIndication:  top.SubIndication,
		Conclusion:     top,
		Baseline:       flags,
		Level:          level,
		LevelName:      level.Name(sig.Format),
		QCStatus:       r.status,
	}
	for _, ts := range sig.Timestamps {
		report.Timestamps = append(report.Timestamps, &TimestampReport{
			ID:         ts.ID,
			Type:       ts.Type,
			Conclusion: v.timestampChain(r, ts).Execute(),
		})
	}

	report.QualificationConclusion = v.qualificationChain(r).Execute()
	report.Qualification = qualification.ClassifyStatus(qualification.AdESStatusFromIndication(top.Indication), r.status)

	v.metrics.ObserveValidateLatency(time.Since(start))
	v.metrics.IncrementOutcome(string(sig.Format), string(report.Indication))
	v.metrics.IncrementLevel(string(sig.Format), level.String())
	v.metrics.IncrementQualification(report.Qualification.String())

	r.logger.Debug("signature validated",
		slog.String("indication", string(report.Indication)),
		slog.String("level", report.LevelName),
		slog.String("qualification", report.Qualification.String()),
	)
	return report, nil
}

// ValidateAll validates sigs concurrently. The reports are in the order of
// sigs. It stops early when ctx is done or a signature is unusable.
func (v *Validator) ValidateAll(ctx context.Context, sigs []*signature.AdvancedSignature) ([]*Report, error) {
	reports := make([]*Report, len(sigs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i, sig := range sigs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := v.Validate(sig)
			if err != nil {
				return fmt.Errorf("signature %d: %w", i, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// openContext builds the certificate chain and collects the revocation data
// of the signing certificate. Chain building problems are logged; the checks
// then see whatever could be established.
func (v *Validator) openContext(sig *signature.AdvancedSignature) *certvalidator.ValidationContext {
	ctx := v.verifier.NewValidationContext()
	ctx.AddDocumentCertificateSource(sig.CompleteCertificateSource())
	ctx.AddDocumentCRLSource(sig.CompleteCRLSource())
	ctx.AddDocumentOCSPSource(sig.CompleteOCSPSource())
	if sig.SigningCertificate != nil {
		ctx.AddCertificateTokenForVerification(sig.SigningCertificate)
	}
	if err := ctx.Validate(); err != nil {
		v.logger.Warn("signing certificate chain incomplete",
			slog.String("signature", sig.ID),
			slog.String("error", err.Error()),
		)
	}
	return ctx
}

func (v *Validator) chainOptions(r *run) []process.ChainOption {
	return []process.ChainOption{
		process.WithPrinter(r.printer),
		process.WithRecordIgnored(v.policy.RecordIgnored),
	}
}

func (v *Validator) certificateChain(r *run) *process.Chain {
	c := v.policy.Certificate
	subject := checks.CertificateSubject{Token: r.sig.SigningCertificate, Context: r.ctx}
	return process.NewChain(process.TitleCertificate, v.chainOptions(r)...).
		Add(checks.NewSigningCertificateFoundCheck(r.sig), v.policy.Signature.SigningCertificateFound).
		Add(checks.NewCertificateValidityCheck(subject), c.Expiration).
		Add(checks.NewRevocationDataPresentCheck(subject), c.RevocationDataAvailable).
		Add(checks.NewNotRevokedCheck(subject), c.NotRevoked).
		Add(checks.NewNotOnHoldCheck(subject), c.NotOnHold).
		Add(checks.NewSemanticsIdentifierCheck(subject, r.status, c.SemanticsIdentifier), c.SemanticsIdentifier)
}

func (v *Validator) signatureAcceptanceChain(r *run) *process.Chain {
	s := v.policy.Signature
	sa := s.SignedAttributesOrEmpty()
	chain := process.NewChain(process.TitleSignatureAcceptance, v.chainOptions(r)...).
		Add(checks.NewSigningCertificateRefCheck(r.sig), s.SigningCertificateRef).
		Add(checks.NewSigningCertificateMatchCheck(r.sig), s.SigningCertificateMatch).
		Add(checks.NewIssuerSerialMatchCheck(r.sig), s.KeyIdentifierMatch).
		Add(checks.NewPolicyHashCheck(r.sig), s.PolicyHash).
		Add(checks.NewSigningTimeCheck(r.sig), sa.SigningTime).
		Add(checks.NewContentTypeCheck(r.sig, sa.ContentType), sa.ContentType).
		Add(checks.NewContentHintsCheck(r.sig, sa.ContentHints), sa.ContentHints).
		Add(checks.NewContentIdentifierCheck(r.sig, sa.ContentIdentifier), sa.ContentIdentifier).
		Add(checks.NewCommitmentTypeCheck(r.sig, sa.CommitmentTypeIndication), sa.CommitmentTypeIndication).
		Add(checks.NewSignerLocationCheck(r.sig), sa.SignerLocation).
		Add(checks.NewClaimedRolesCheck(r.sig, sa.ClaimedRoles), sa.ClaimedRoles).
		Add(checks.NewCertifiedRolesCheck(r.sig, sa.CertifiedRoles), sa.CertifiedRoles).
		Add(checks.NewContentTimestampCheck(r.sig), sa.ContentTimestamp)

	if len(v.policy.Custom) > 0 {
		facts := r.facts()
		for _, c := range v.policy.Custom {
			chain.Add(checks.NewExpressionCheck(v.engine, c, r.sig.ID, facts, r.logger), c)
		}
	}
	return chain
}

func (v *Validator) basicSignatureChain(r *run, reached baseline.Level) *process.Chain {
	minimum := baseline.LevelB
	if b := v.policy.Signature.Baseline; b != nil && b.Minimum != "" {
		if l, err := baseline.ParseLevel(b.Minimum); err == nil {
			minimum = l
		}
	}
	fail := policy.NewLevelConstraint(policy.LevelFail)
	return process.NewChain(process.TitleBasicSignature, v.chainOptions(r)...).
		Add(process.SubChain(r.sig.ID, v.certificateChain(r)), fail).
		Add(process.SubChain(r.sig.ID, v.signatureAcceptanceChain(r)), fail).
		Add(checks.NewBaselineLevelCheck(r.sig, reached, minimum), v.policy.Signature.Baseline)
}

func (v *Validator) timestampChain(r *run, ts *signature.Timestamp) *process.Chain {
	t := v.policy.Timestamp
	return process.NewChain(process.TitleTimestamp, v.chainOptions(r)...).
		Add(checks.NewMessageImprintFoundCheck(ts), t.MessageImprintFound).
		Add(checks.NewMessageImprintIntactCheck(ts), t.MessageImprintIntact).
		Add(checks.NewTimestampBeforeExpiryCheck(ts, r.sig.SigningCertificate), t.BeforeSigningCertificateExpiry)
}

func (v *Validator) qualificationChain(r *run) *process.Chain {
	q := v.policy.Qualification
	var certID string
	if r.sig.SigningCertificate != nil {
		certID = r.sig.SigningCertificate.ID()
	}
	return process.NewChain(process.TitleQualification, v.chainOptions(r)...).
		Add(checks.NewQCComplianceCheck(certID, r.status), q.QCCompliance).
		Add(checks.NewForESigCheck(certID, r.status), q.ForESig).
		Add(checks.NewQSCDCheck(certID, r.status), q.QSCD)
}

// facts returns the signature facts extended with the signer's QC status.
func (r *run) facts() map[string]any {
	facts := r.sig.Facts()
	facts["qcCompliance"] = r.status.IsQC()
	facts["qscd"] = r.status.IsQSCD()
	facts["forESig"] = r.status.IsForESig()
	return facts
}
