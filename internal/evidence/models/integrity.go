package models

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/crypto/blake2b"

	"evidentia/pkg/domain"
)

const sealVersion = "v1"

// Seal is a BLAKE2b-256 digest over a record's creation facts: identity, dates,
// evidence timestamp and the retrospective context as first attached. It is computed
// once, stored with the record and re-derived on every load; a mismatch means
// an immutable field changed after creation.
type Seal string

type sealInput struct {
	id                domain.RecordID
	profileID         domain.ProfileID
	logicalDate       civil.Date
	createdAt         time.Time
	evidenceTimestamp *time.Time
	retro             *RetrospectiveContext
}

func computeSeal(in sealInput) Seal {
	var b strings.Builder
	field := func(s string) {
		b.WriteString(s)
		b.WriteByte('|')
	}
	field(sealVersion)
	field(in.id.String())
	field(in.profileID.String())
	field(in.logicalDate.String())
	field(in.createdAt.UTC().Format(time.RFC3339Nano))
	if in.evidenceTimestamp != nil {
		field(in.evidenceTimestamp.UTC().Format(time.RFC3339Nano))
	} else {
		field("-")
	}
	if in.retro != nil {
		field(strconv.Itoa(in.retro.DaysDelayed))
		field(in.retro.FlaggedAt.UTC().Format(time.RFC3339Nano))
		field(string(in.retro.Reason))
		field(strconv.Quote(in.retro.Note))
	} else {
		field("-")
	}
	sum := blake2b.Sum256([]byte(b.String()))
	return Seal(hex.EncodeToString(sum[:]))
}
