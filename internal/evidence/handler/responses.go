package handler

import (
	"evidentia/internal/evidence/export"
	"evidentia/internal/evidence/gaps"
	"evidentia/internal/evidence/models"
	"evidentia/internal/evidence/pack"
	"evidentia/internal/evidence/stats"
	"evidentia/pkg/domain"
)

// RecordResponse is a record with its revision ledger.
type RecordResponse struct {
	Record    export.Record     `json:"record"`
	Revisions []models.Revision `json:"revisions"`
}

func fromView(v models.RecordView) RecordResponse {
	revs := v.Ledger().Revisions()
	if revs == nil {
		revs = []models.Revision{}
	}
	return RecordResponse{Record: export.FromView(v), Revisions: revs}
}

// RevisionsResponse lists a record's ledger in sequence order.
type RevisionsResponse struct {
	Revisions []models.Revision `json:"revisions"`
}

// GapsResponse lists detected gaps with their explanations.
type GapsResponse struct {
	Gaps []export.Gap `json:"gaps"`
}

func fromGaps(in []gaps.Annotated) GapsResponse {
	return GapsResponse{Gaps: export.FromGaps(in)}
}

// ExplanationsResponse lists a profile's gap explanations.
type ExplanationsResponse struct {
	Explanations []gaps.Explanation `json:"explanations"`
}

// StatisticsResponse holds computed statistics and the window they cover.
type StatisticsResponse struct {
	Range      *domain.DateRange `json:"date_range,omitempty"`
	Statistics []stats.Result    `json:"statistics"`
}

// PacksResponse lists a profile's packs.
type PacksResponse struct {
	Packs []export.Pack `json:"packs"`
}

func fromPacks(in []pack.Pack) PacksResponse {
	out := make([]export.Pack, len(in))
	for i, p := range in {
		out[i] = export.FromPack(p)
	}
	return PacksResponse{Packs: out}
}

// ManifestResponse carries a signed pack manifest.
type ManifestResponse struct {
	PackID domain.PackID `json:"pack_id"`
	Token  string        `json:"token"`
}

// VerifyResponse reports a successful manifest check.
type VerifyResponse struct {
	Valid       bool   `json:"valid"`
	PackID      string `json:"pack_id"`
	RecordCount int    `json:"record_count"`
}

// TrackingResponse reports the evidence tracking setting.
type TrackingResponse struct {
	Enabled bool `json:"enabled"`
}

// IntegrityResponse reports a full-profile verification pass.
type IntegrityResponse struct {
	Checked  int                     `json:"checked"`
	Failures []pack.IntegrityFailure `json:"failures"`
}
