package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"evidentia/internal/evidence/export"
	"evidentia/internal/evidence/gaps"
	"evidentia/internal/evidence/pack"
	"evidentia/pkg/domain"
)

// ExportBundle assembles the renderer input for one profile: every verified
// record with its ledger, every gap with its explanations, and every record
// that failed verification.
func (s *Service) ExportBundle(ctx context.Context, profileID domain.ProfileID) (_ export.Bundle, err error) {
	ctx, span := s.startSpan(ctx, "ExportBundle", attribute.String("profile_id", profileID.String()))
	defer func() { s.finish(span, "export_bundle", err) }()

	snap, explanations, err := s.snapshotWithExplanations(ctx, profileID)
	if err != nil {
		return export.Bundle{}, err
	}

	out := export.Bundle{
		ProfileID:         profileID,
		GeneratedAt:       snap.TakenAt,
		Records:           make([]export.Record, 0, len(snap.Views)),
		Revisions:         []export.Revision{},
		IntegrityFailures: snap.Failures,
	}
	for _, v := range snap.Views {
		out.Records = append(out.Records, export.FromView(v))
		out.Revisions = append(out.Revisions, v.Ledger().Revisions()...)
	}
	if out.IntegrityFailures == nil {
		out.IntegrityFailures = []pack.IntegrityFailure{}
	}
	out.Gaps = export.FromGaps(gaps.Annotate(s.detector.Detect(profileID, snap.LogicalDates), explanations))
	return out, nil
}
