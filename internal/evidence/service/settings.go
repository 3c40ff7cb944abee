package service

import (
	"context"
	"errors"
	"strconv"

	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
	"evidentia/pkg/platform/audit"
	"evidentia/pkg/platform/sentinel"
)

// EvidenceTracking reports whether new records of the profile receive an
// evidence timestamp. Profiles that never chose get the configured default.
func (s *Service) EvidenceTracking(ctx context.Context, profileID domain.ProfileID) (bool, error) {
	if profileID.IsNil() {
		return false, dErrors.New(dErrors.CodeValidation, "profile_id is required")
	}
	return s.trackingFor(ctx, profileID)
}

func (s *Service) trackingFor(ctx context.Context, profileID domain.ProfileID) (bool, error) {
	enabled, err := s.settings.EvidenceTracking(ctx, profileID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return s.defaultTracking, nil
	}
	if err != nil {
		return false, translate(err, "evidence tracking setting")
	}
	return enabled, nil
}

// SetEvidenceTracking changes the setting for records created from now on.
// Existing records keep whatever timestamp they were captured with.
func (s *Service) SetEvidenceTracking(ctx context.Context, profileID domain.ProfileID, enabled bool) error {
	if profileID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "profile_id is required")
	}
	if err := s.settings.SetEvidenceTracking(ctx, profileID, enabled); err != nil {
		return translate(err, "evidence tracking setting")
	}
	return s.logAudit(ctx, audit.EventTrackingChanged, profileID, profileID.String(),
		"enabled", strconv.FormatBool(enabled))
}
