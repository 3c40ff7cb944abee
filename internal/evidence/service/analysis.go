package service

import (
	"context"
	"strings"

	"cloud.google.com/go/civil"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"evidentia/internal/evidence/gaps"
	"evidentia/internal/evidence/stats"
	"evidentia/pkg/domain"
	"evidentia/pkg/platform/audit"
)

// DetectGaps finds every gap in the profile's timeline and pairs each with the
// explanations that overlap it. Explained gaps are still reported.
// A zero range covers the whole timeline.
func (s *Service) DetectGaps(ctx context.Context, profileID domain.ProfileID, r domain.DateRange) (_ []gaps.Annotated, err error) {
	ctx, span := s.startSpan(ctx, "DetectGaps", attribute.String("profile_id", profileID.String()))
	defer func() { s.finish(span, "detect_gaps", err) }()

	snap, explanations, err := s.snapshotWithExplanations(ctx, profileID)
	if err != nil {
		return nil, err
	}
	found, err := s.gapsIn(profileID, snap.LogicalDates, r)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("gaps", len(found)))
	return gaps.Annotate(found, explanations), nil
}

func (s *Service) gapsIn(profileID domain.ProfileID, dates []civil.Date, r domain.DateRange) ([]gaps.Gap, error) {
	if r == (domain.DateRange{}) {
		return s.detector.Detect(profileID, dates), nil
	}
	return s.detector.DetectInRange(profileID, dates, r.Start, r.End)
}

// snapshotWithExplanations reads the profile and its explanations in parallel.
func (s *Service) snapshotWithExplanations(ctx context.Context, profileID domain.ProfileID) (ProfileSnapshot, []gaps.Explanation, error) {
	var (
		snap         ProfileSnapshot
		explanations []gaps.Explanation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = s.Snapshot(gctx, profileID)
		return err
	})
	g.Go(func() error {
		var err error
		explanations, err = s.explanations.ListExplanations(gctx, profileID)
		return translate(err, "gap explanations")
	})
	if err := g.Wait(); err != nil {
		return ProfileSnapshot{}, nil, err
	}
	return snap, explanations, nil
}

// ExplainGapRequest annotates a span of days without records.
type ExplainGapRequest struct {
	ProfileID domain.ProfileID
	StartDate civil.Date
	EndDate   civil.Date
	Reason    string
	Note      string
}

// ExplainGap stores an explanation. It never creates records and never hides
// the gap it explains.
func (s *Service) ExplainGap(ctx context.Context, req ExplainGapRequest) (_ gaps.Explanation, err error) {
	ctx, span := s.startSpan(ctx, "ExplainGap", attribute.String("profile_id", req.ProfileID.String()))
	defer func() { s.finish(span, "explain_gap", err) }()

	e, err := gaps.NewExplanation(domain.NewExplanationID(), req.ProfileID, req.StartDate, req.EndDate,
		req.Reason, strings.TrimSpace(req.Note), s.clock.Now())
	if err != nil {
		return gaps.Explanation{}, err
	}
	if err := s.explanations.CreateExplanation(ctx, e); err != nil {
		return gaps.Explanation{}, translate(err, "gap explanation")
	}
	_ = s.logAudit(ctx, audit.EventGapExplained, req.ProfileID, e.ID.String(),
		"start_date", e.StartDate.String(),
		"end_date", e.EndDate.String(),
	)
	return e, nil
}

// ListExplanations returns the profile's gap explanations ordered by start date.
func (s *Service) ListExplanations(ctx context.Context, profileID domain.ProfileID) ([]gaps.Explanation, error) {
	out, err := s.explanations.ListExplanations(ctx, profileID)
	if err != nil {
		return nil, translate(err, "gap explanations")
	}
	return out, nil
}

// ComputeStatistics summarizes the verified records whose logical date falls
// in r. A zero range uses the span of the profile's records. Every result
// lists the records it was computed from.
func (s *Service) ComputeStatistics(ctx context.Context, profileID domain.ProfileID, r domain.DateRange) (_ []stats.Result, err error) {
	ctx, span := s.startSpan(ctx, "ComputeStatistics", attribute.String("profile_id", profileID.String()))
	defer func() { s.finish(span, "compute_statistics", err) }()

	if r != (domain.DateRange{}) {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	snap, err := s.Snapshot(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return stats.Summarize(inRange(snap.Views, r), r), nil
}
