// Package service orchestrates the evidence engine: it loads records through
// the store ports, applies the pure transitions from models, and persists the
// result under a per-record lock. Every instant it stamps comes from the
// injected clock.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"evidentia/internal/evidence/clock"
	"evidentia/internal/evidence/gaps"
	"evidentia/internal/evidence/metrics"
	"evidentia/internal/evidence/models"
	"evidentia/internal/evidence/pack"
	"evidentia/internal/evidence/store"
	"evidentia/internal/platform/lock"
	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
	"evidentia/pkg/platform/audit"
	"evidentia/pkg/platform/sentinel"
	"evidentia/pkg/requestcontext"
)

// RecordStore persists records and their revision ledgers.
type RecordStore interface {
	Get(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) (models.RecordState, error)
	Put(ctx context.Context, state models.RecordState) error
	Delete(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) error
	CompareAndSetFinalized(ctx context.Context, recordID domain.RecordID, expected models.Lifecycle, next models.RecordState) error
	AppendRevision(ctx context.Context, rev models.Revision) error
	ListRevisions(ctx context.Context, recordID domain.RecordID) ([]models.Revision, error)
	Snapshot(ctx context.Context, profileID domain.ProfileID) (store.Snapshot, error)
}

// PackStore is insert-only.
type PackStore interface {
	CreatePack(ctx context.Context, p pack.Pack) error
	GetPack(ctx context.Context, profileID domain.ProfileID, packID domain.PackID) (pack.Pack, error)
	ListPacks(ctx context.Context, profileID domain.ProfileID) ([]pack.Pack, error)
}

type SettingsStore interface {
	EvidenceTracking(ctx context.Context, profileID domain.ProfileID) (bool, error)
	SetEvidenceTracking(ctx context.Context, profileID domain.ProfileID, enabled bool) error
}

type ExplanationStore interface {
	CreateExplanation(ctx context.Context, e gaps.Explanation) error
	ListExplanations(ctx context.Context, profileID domain.ProfileID) ([]gaps.Explanation, error)
}

// CompliancePublisher is fail-closed: an error means the operation must be
// reported as failed.
type CompliancePublisher interface {
	Emit(ctx context.Context, event audit.ComplianceEvent) error
}

// SecurityPublisher never blocks the caller.
type SecurityPublisher interface {
	Emit(ctx context.Context, event audit.SecurityEvent)
}

type OpsPublisher interface {
	Track(ctx context.Context, event audit.OpsEvent)
}

// Service is the evidence engine façade used by handlers and the CLI.
type Service struct {
	records      RecordStore
	packs        PackStore
	settings     SettingsStore
	explanations ExplanationStore

	clock           clock.Clock
	locker          lock.Locker
	detector        *gaps.Detector
	signer          *pack.Signer
	defaultTracking bool

	logger     *slog.Logger
	compliance CompliancePublisher
	security   SecurityPublisher
	ops        OpsPublisher
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithCompliancePublisher(p CompliancePublisher) Option {
	return func(s *Service) {
		s.compliance = p
	}
}

func WithSecurityPublisher(p SecurityPublisher) Option {
	return func(s *Service) {
		s.security = p
	}
}

func WithOpsPublisher(p OpsPublisher) Option {
	return func(s *Service) {
		s.ops = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithLocker replaces the in-process keyed lock, e.g. with the Redis locker
// when several instances share one database.
func WithLocker(l lock.Locker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithGapDetector sets the gap threshold. The default is gaps.DefaultThreshold.
func WithGapDetector(d *gaps.Detector) Option {
	return func(s *Service) {
		s.detector = d
	}
}

// WithDefaultTracking sets whether evidence tracking is on for profiles that
// never chose. The default is on.
func WithDefaultTracking(enabled bool) Option {
	return func(s *Service) {
		s.defaultTracking = enabled
	}
}

// WithSigner enables pack manifest signing.
func WithSigner(signer *pack.Signer) Option {
	return func(s *Service) {
		s.signer = signer
	}
}

// New constructs a Service.
func New(records RecordStore, packs PackStore, settings SettingsStore, explanations ExplanationStore, opts ...Option) *Service {
	s := &Service{
		records:         records,
		packs:           packs,
		settings:        settings,
		explanations:    explanations,
		clock:           clock.System{},
		locker:          lock.NewKeyed(),
		defaultTracking: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.detector == nil {
		s.detector, _ = gaps.NewDetector(gaps.DefaultThreshold)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("evidentia/evidence")
	}
	return s
}

// withRecordLock serializes finalize, revision, update and delete on one record.
func (s *Service) withRecordLock(ctx context.Context, recordID domain.RecordID, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, "record:"+recordID.String())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock record")
	}
	defer unlock()
	return fn()
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "evidence."+name, trace.WithAttributes(attrs...))
}

// finish records the outcome on the span and the operations counter.
func (s *Service) finish(span trace.Span, operation string, err error) {
	defer span.End()
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if de, ok := dErrors.As(err); ok {
			outcome = string(de.Code)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	s.metrics.IncOperation(operation, outcome)
}

// translate maps store sentinels onto domain errors. Coded errors pass through.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, what+" was modified concurrently")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to access "+what)
	}
}

// loadRecord reads and verifies one record. A record that fails verification
// is reported as an integrity violation and a security event.
func (s *Service) loadRecord(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) (models.EvidenceRecord, error) {
	st, err := s.records.Get(ctx, profileID, recordID)
	if err != nil {
		return models.EvidenceRecord{}, translate(err, "record")
	}
	r, err := models.Rehydrate(st)
	if err != nil {
		s.reportIntegrity(ctx, profileID, recordID, err)
		return models.EvidenceRecord{}, err
	}
	return r, nil
}

func (s *Service) loadView(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) (models.RecordView, error) {
	r, err := s.loadRecord(ctx, profileID, recordID)
	if err != nil {
		return models.RecordView{}, err
	}
	revs, err := s.records.ListRevisions(ctx, recordID)
	if err != nil {
		return models.RecordView{}, translate(err, "revisions")
	}
	v, err := models.NewView(r, models.NewLedger(recordID, revs))
	if err != nil {
		s.reportIntegrity(ctx, profileID, recordID, err)
		return models.RecordView{}, err
	}
	return v, nil
}

func (s *Service) reportIntegrity(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID, cause error) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, "record failed integrity verification",
			"profile_id", profileID,
			"record_id", recordID,
			"request_id", requestcontext.RequestID(ctx),
			"error", cause,
		)
	}
	if s.security != nil {
		s.security.Emit(ctx, audit.SecurityEvent{
			Timestamp: s.clock.Now(),
			ProfileID: profileID,
			Subject:   recordID.String(),
			Action:    audit.EventIntegrityViolation,
			Reason:    cause.Error(),
			RequestID: requestcontext.RequestID(ctx),
			Severity:  audit.SeverityCritical,
		})
	}
}

// logAudit writes the audit line and, for compliance events, persists the
// event before the caller may report success.
func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, profileID domain.ProfileID, subject string, attributes ...any) error {
	requestID := requestcontext.RequestID(ctx)
	if s.logger != nil {
		args := append(attributes,
			"profile_id", profileID,
			"subject", subject,
			"request_id", requestID,
			"event", string(event),
			"log_type", "audit",
		)
		s.logger.InfoContext(ctx, string(event), args...)
	}

	if event.Category() != audit.CategoryCompliance {
		if s.ops != nil {
			s.ops.Track(ctx, audit.OpsEvent{
				Timestamp: s.clock.Now(),
				ProfileID: profileID,
				Subject:   subject,
				Action:    event,
				RequestID: requestID,
			})
		}
		return nil
	}
	if s.compliance == nil {
		return nil
	}
	actor := requestcontext.ActorID(ctx)
	if actor.IsNil() {
		actor = profileID
	}
	err := s.compliance.Emit(ctx, audit.ComplianceEvent{
		Timestamp: s.clock.Now(),
		ProfileID: profileID,
		Subject:   subject,
		Action:    event,
		Decision:  "applied",
		RequestID: requestID,
		ActorID:   actor.String(),
		ClientIP:  requestcontext.ClientIP(ctx),
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}
