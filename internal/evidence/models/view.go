package models

// RecordView pairs a verified record with its verified ledger. It is the unit
// the gap detector, statistics engine and pack builder read.
type RecordView struct {
	record EvidenceRecord
	ledger Ledger
}

// NewView verifies the ledger against the record.
func NewView(record EvidenceRecord, ledger Ledger) (RecordView, error) {
	if err := ledger.Verify(record); err != nil {
		return RecordView{}, err
	}
	return RecordView{record: record, ledger: ledger}, nil
}

func (v RecordView) Record() EvidenceRecord { return v.record }
func (v RecordView) Ledger() Ledger         { return v.ledger }

// EffectivePayload is the payload with all revisions applied.
func (v RecordView) EffectivePayload() Payload {
	return v.ledger.EffectivePayload(v.record.payload)
}

// EffectiveRetrospective is the creation-time context with amendments applied.
func (v RecordView) EffectiveRetrospective() *RetrospectiveContext {
	return v.ledger.EffectiveRetrospective(v.record.retro)
}

// EffectiveValue reads one field after revisions.
func (v RecordView) EffectiveValue(path FieldPath) FieldValue {
	return v.ledger.EffectiveValue(v.record, path)
}

// IsRevised reports whether any revision exists.
func (v RecordView) IsRevised() bool { return v.ledger.Len() > 0 }
