package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "evidentia/pkg/domain-errors"
)

// Typed identifiers. Each wraps a UUID so a RecordID can never be passed where a
// ProfileID is expected. New identifiers are UUIDv7 so they sort by creation time.
//
// Invariant: a parsed ID is a canonical, non-nil UUID.
type (
	ProfileID     uuid.UUID
	RecordID      uuid.UUID
	RevisionID    uuid.UUID
	PackID        uuid.UUID
	ExplanationID uuid.UUID
)

const canonicalUUIDLen = 36

// parseUUID is the single trust-boundary check shared by every ID type.
func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", field)
	}
	if len(s) != canonicalUUIDLen || !utf8.ValidString(s) || strings.TrimSpace(s) != s {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must be a canonical UUID", field)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, field+" must be a canonical UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be the nil UUID", field)
	}
	return u, nil
}

func newV7() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

func ParseProfileID(s string) (ProfileID, error) {
	u, err := parseUUID(s, "profile_id")
	return ProfileID(u), err
}

func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID(s, "record_id")
	return RecordID(u), err
}

func ParseRevisionID(s string) (RevisionID, error) {
	u, err := parseUUID(s, "revision_id")
	return RevisionID(u), err
}

func ParsePackID(s string) (PackID, error) {
	u, err := parseUUID(s, "pack_id")
	return PackID(u), err
}

func ParseExplanationID(s string) (ExplanationID, error) {
	u, err := parseUUID(s, "explanation_id")
	return ExplanationID(u), err
}

func NewProfileID() ProfileID         { return ProfileID(newV7()) }
func NewRecordID() RecordID           { return RecordID(newV7()) }
func NewRevisionID() RevisionID       { return RevisionID(newV7()) }
func NewPackID() PackID               { return PackID(newV7()) }
func NewExplanationID() ExplanationID { return ExplanationID(newV7()) }

func (id ProfileID) String() string     { return uuid.UUID(id).String() }
func (id RecordID) String() string      { return uuid.UUID(id).String() }
func (id RevisionID) String() string    { return uuid.UUID(id).String() }
func (id PackID) String() string        { return uuid.UUID(id).String() }
func (id ExplanationID) String() string { return uuid.UUID(id).String() }

func (id ProfileID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id RecordID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id RevisionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id PackID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ExplanationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id ProfileID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id RecordID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id RevisionID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id PackID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id ExplanationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ProfileID) UnmarshalText(b []byte) error     { return unmarshalID(b, "profile_id", id) }
func (id *RecordID) UnmarshalText(b []byte) error      { return unmarshalID(b, "record_id", id) }
func (id *RevisionID) UnmarshalText(b []byte) error    { return unmarshalID(b, "revision_id", id) }
func (id *PackID) UnmarshalText(b []byte) error        { return unmarshalID(b, "pack_id", id) }
func (id *ExplanationID) UnmarshalText(b []byte) error { return unmarshalID(b, "explanation_id", id) }

func unmarshalID[T ~[16]byte](b []byte, field string, dst *T) error {
	u, err := parseUUID(string(b), field)
	if err != nil {
		return err
	}
	*dst = T(u)
	return nil
}

// RecordIDStrings renders ids in order; used for digests and log attributes.
func RecordIDStrings(ids []RecordID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
