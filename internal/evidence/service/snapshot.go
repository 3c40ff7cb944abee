package service

import (
	"context"
	"runtime"
	"slices"
	"time"

	"cloud.google.com/go/civil"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"evidentia/internal/evidence/models"
	"evidentia/internal/evidence/pack"
	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
)

// ProfileSnapshot is one consistent read of a profile, verified record by
// record. A record that fails verification is listed in Failures and left out
// of Views; the rest of the batch is unaffected.
type ProfileSnapshot struct {
	ProfileID domain.ProfileID
	TakenAt   time.Time
	Views     []models.RecordView
	Failures  []pack.IntegrityFailure
	// LogicalDates covers every stored record, including those that failed
	// verification, so a damaged record never shows up as missing evidence.
	LogicalDates []civil.Date
}

type verified struct {
	view models.RecordView
	err  error
}

// Snapshot loads and verifies every record of a profile. Later writes are not
// reflected; no lock is held against them.
func (s *Service) Snapshot(ctx context.Context, profileID domain.ProfileID) (_ ProfileSnapshot, err error) {
	ctx, span := s.startSpan(ctx, "Snapshot", attribute.String("profile_id", profileID.String()))
	defer func() { s.finish(span, "snapshot", err) }()

	if profileID.IsNil() {
		return ProfileSnapshot{}, dErrors.New(dErrors.CodeValidation, "profile_id is required")
	}
	start := time.Now()
	raw, err := s.records.Snapshot(ctx, profileID)
	if err != nil {
		return ProfileSnapshot{}, translate(err, "profile records")
	}

	results := make([]verified, len(raw.Records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, st := range raw.Records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = verify(st, raw.Revisions[st.ID])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ProfileSnapshot{}, err
	}

	out := ProfileSnapshot{ProfileID: profileID, TakenAt: s.clock.Now()}
	for i, res := range results {
		st := raw.Records[i]
		dated := st.LogicalDate.IsValid() && !domain.IsZeroDate(st.LogicalDate)
		if dated {
			out.LogicalDates = append(out.LogicalDates, st.LogicalDate)
		}
		if res.err != nil {
			failure := pack.IntegrityFailure{RecordID: st.ID, Reason: res.err.Error()}
			if dated {
				failure.LogicalDate = st.LogicalDate
			}
			out.Failures = append(out.Failures, failure)
			s.reportIntegrity(ctx, profileID, st.ID, res.err)
			continue
		}
		out.Views = append(out.Views, res.view)
	}
	slices.SortFunc(out.LogicalDates, domain.CompareDates)

	span.SetAttributes(
		attribute.Int("records", len(out.Views)),
		attribute.Int("integrity_failures", len(out.Failures)),
	)
	s.metrics.AddIntegrityFailures(len(out.Failures))
	s.metrics.ObserveSnapshotLatency(time.Since(start))
	return out, nil
}

func verify(st models.RecordState, revs []models.Revision) verified {
	r, err := models.Rehydrate(st)
	if err != nil {
		return verified{err: err}
	}
	v, err := models.NewView(r, models.NewLedger(st.ID, revs))
	if err != nil {
		return verified{err: err}
	}
	return verified{view: v}
}

// VerifyProfile reports every record of the profile that fails verification.
// An empty result means the whole profile verified.
func (s *Service) VerifyProfile(ctx context.Context, profileID domain.ProfileID) ([]pack.IntegrityFailure, int, error) {
	snap, err := s.Snapshot(ctx, profileID)
	if err != nil {
		return nil, 0, err
	}
	return snap.Failures, len(snap.Views) + len(snap.Failures), nil
}

// inRange keeps the views whose logical date lies in r. A zero range keeps all.
func inRange(views []models.RecordView, r domain.DateRange) []models.RecordView {
	if r == (domain.DateRange{}) {
		return views
	}
	var out []models.RecordView
	for _, v := range views {
		if r.Contains(v.Record().LogicalDate()) {
			out = append(out, v)
		}
	}
	return out
}
