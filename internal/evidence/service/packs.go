package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"evidentia/internal/evidence/pack"
	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
	"evidentia/pkg/platform/audit"
)

// BuildPack freezes the records matching criteria, and the statistics over
// them, into a new immutable pack. Every call creates a new pack id. Records
// that fail verification are listed in the pack rather than silently dropped.
func (s *Service) BuildPack(ctx context.Context, profileID domain.ProfileID, criteria pack.Criteria) (_ pack.Pack, err error) {
	ctx, span := s.startSpan(ctx, "BuildPack", attribute.String("profile_id", profileID.String()))
	defer func() { s.finish(span, "build_pack", err) }()

	criteria = criteria.Normalize()
	if err := criteria.Validate(); err != nil {
		return pack.Pack{}, err
	}
	snap, err := s.Snapshot(ctx, profileID)
	if err != nil {
		return pack.Pack{}, err
	}
	p, err := pack.Build(pack.BuildParams{
		ID:        domain.NewPackID(),
		ProfileID: profileID,
		Criteria:  criteria,
		Views:     snap.Views,
		Failures:  snap.Failures,
		Now:       s.clock.Now(),
	})
	if err != nil {
		return pack.Pack{}, err
	}
	if err := s.packs.CreatePack(ctx, p); err != nil {
		return pack.Pack{}, translate(err, "pack")
	}
	s.metrics.ObservePack(len(p.RecordIDs()))
	span.SetAttributes(attribute.Int("records", len(p.RecordIDs())))

	if err := s.logAudit(ctx, audit.EventPackBuilt, profileID, p.ID().String(),
		"date_range", criteria.Range.String(),
		"record_count", len(p.RecordIDs()),
		"integrity_failures", len(p.IntegrityFailures()),
	); err != nil {
		return pack.Pack{}, err
	}
	return p, nil
}

func (s *Service) GetPack(ctx context.Context, profileID domain.ProfileID, packID domain.PackID) (pack.Pack, error) {
	p, err := s.packs.GetPack(ctx, profileID, packID)
	if err != nil {
		return pack.Pack{}, translate(err, "pack")
	}
	return p, nil
}

// ListPacks returns the profile's packs in creation order.
func (s *Service) ListPacks(ctx context.Context, profileID domain.ProfileID) ([]pack.Pack, error) {
	out, err := s.packs.ListPacks(ctx, profileID)
	if err != nil {
		return nil, translate(err, "packs")
	}
	return out, nil
}

// SignPack issues a signed manifest binding the pack's references, criteria
// and statistics.
func (s *Service) SignPack(ctx context.Context, profileID domain.ProfileID, packID domain.PackID) (_ string, err error) {
	ctx, span := s.startSpan(ctx, "SignPack", attribute.String("pack_id", packID.String()))
	defer func() { s.finish(span, "sign_pack", err) }()

	if s.signer == nil {
		return "", dErrors.New(dErrors.CodeInternal, "pack signing is not configured")
	}
	p, err := s.GetPack(ctx, profileID, packID)
	if err != nil {
		return "", err
	}
	token, err := s.signer.Sign(p, s.clock.Now())
	if err != nil {
		return "", err
	}
	_ = s.logAudit(ctx, audit.EventPackSigned, profileID, packID.String())
	return token, nil
}

// VerifyPack checks a manifest against the stored pack.
func (s *Service) VerifyPack(ctx context.Context, profileID domain.ProfileID, packID domain.PackID, token string) (_ *pack.ManifestClaims, err error) {
	ctx, span := s.startSpan(ctx, "VerifyPack", attribute.String("pack_id", packID.String()))
	defer func() { s.finish(span, "verify_pack", err) }()

	if s.signer == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "pack signing is not configured")
	}
	if token == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "manifest token is required")
	}
	p, err := s.GetPack(ctx, profileID, packID)
	if err != nil {
		return nil, err
	}
	return s.signer.Verify(token, p)
}
