package audit

import (
	"context"
	"time"

	"evidentia/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with evidential significance: anything
	// that changes what a submission pack could later show.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers tamper signals, such as a stored record whose
	// seal no longer matches its facts.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is the transport-agnostic shape every store persists.
type Event struct {
	Category  EventCategory    `json:"category"`
	Timestamp time.Time        `json:"timestamp"`
	ProfileID domain.ProfileID `json:"profile_id"`
	Subject   string           `json:"subject"`
	Action    string           `json:"action"`
	Reason    string           `json:"reason,omitempty"`
	Decision  string           `json:"decision,omitempty"`
	RequestID string           `json:"request_id,omitempty"`
	ActorID   string           `json:"actor_id,omitempty"`
	ClientIP  string           `json:"client_ip,omitempty"`
}

type AuditEvent string

const (
	// Record lifecycle
	EventRecordCreated   AuditEvent = "record_created"
	EventRecordUpdated   AuditEvent = "record_updated"
	EventRecordFinalized AuditEvent = "record_finalized"
	EventRecordDeleted   AuditEvent = "record_deleted"
	EventRevisionAdded   AuditEvent = "revision_appended"

	// Packs
	EventPackBuilt  AuditEvent = "pack_built"
	EventPackSigned AuditEvent = "pack_signed"

	// Profile settings and annotations
	EventTrackingChanged AuditEvent = "evidence_tracking_changed"
	EventGapExplained    AuditEvent = "gap_explained"

	// Tamper signals
	EventIntegrityViolation AuditEvent = "integrity_violation"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventRecordCreated:   CategoryCompliance,
	EventRecordFinalized: CategoryCompliance,
	EventRecordDeleted:   CategoryCompliance,
	EventRevisionAdded:   CategoryCompliance,
	EventPackBuilt:       CategoryCompliance,
	EventTrackingChanged: CategoryCompliance,

	EventIntegrityViolation: CategorySecurity,

	EventRecordUpdated: CategoryOperations,
	EventPackSigned:    CategoryOperations,
	EventGapExplained:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// ComplianceEvent captures an action that must be recorded before the caller
// may report success. Use with the compliance publisher (fail-closed).
type ComplianceEvent struct {
	Timestamp time.Time
	ProfileID domain.ProfileID // owner of the evidence (required)
	Subject   string           // record, revision or pack id
	Action    AuditEvent
	Decision  string
	RequestID string
	ActorID   string
	ClientIP  string
}

func (e ComplianceEvent) Category() EventCategory { return CategoryCompliance }

// ToEvent converts to the stored shape.
func (e ComplianceEvent) ToEvent() Event {
	return Event{
		Category:  CategoryCompliance,
		Timestamp: e.Timestamp,
		ProfileID: e.ProfileID,
		Subject:   e.Subject,
		Action:    string(e.Action),
		Decision:  e.Decision,
		RequestID: e.RequestID,
		ActorID:   e.ActorID,
		ClientIP:  e.ClientIP,
	}
}

// SecurityEvent captures a tamper signal. Emission never blocks the caller.
type SecurityEvent struct {
	Timestamp time.Time
	ProfileID domain.ProfileID
	Subject   string
	Action    AuditEvent
	Reason    string
	RequestID string
	Severity  Severity
}

// Severity levels for security events.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

func (e SecurityEvent) Category() EventCategory { return CategorySecurity }

// ToEvent converts to the stored shape; severity travels as the decision.
func (e SecurityEvent) ToEvent() Event {
	return Event{
		Category:  CategorySecurity,
		Timestamp: e.Timestamp,
		ProfileID: e.ProfileID,
		Subject:   e.Subject,
		Action:    string(e.Action),
		Reason:    e.Reason,
		Decision:  string(e.Severity),
		RequestID: e.RequestID,
	}
}

// OpsEvent captures routine activity. It may be sampled or dropped.
type OpsEvent struct {
	Timestamp time.Time
	ProfileID domain.ProfileID
	Subject   string
	Action    AuditEvent
	RequestID string
}

func (e OpsEvent) Category() EventCategory { return CategoryOperations }

// ToEvent converts to the stored shape.
func (e OpsEvent) ToEvent() Event {
	return Event{
		Category:  CategoryOperations,
		Timestamp: e.Timestamp,
		ProfileID: e.ProfileID,
		Subject:   e.Subject,
		Action:    string(e.Action),
		RequestID: e.RequestID,
	}
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
