package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"evidentia/internal/evidence/export"
	"evidentia/internal/evidence/gaps"
	"evidentia/internal/evidence/models"
	"evidentia/internal/evidence/pack"
	"evidentia/internal/evidence/service"
	"evidentia/internal/evidence/stats"
	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
	"evidentia/pkg/platform/httputil"
	"evidentia/pkg/requestcontext"
)

// Service defines the evidence operations exposed over HTTP.
type Service interface {
	CreateRecord(ctx context.Context, req service.CreateRecordRequest) (models.EvidenceRecord, error)
	GetRecord(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) (models.RecordView, error)
	UpdateField(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID, path models.FieldPath, value models.FieldValue) (models.EvidenceRecord, error)
	ReplacePayload(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID, payload models.Payload) (models.EvidenceRecord, error)
	Finalize(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID, actor domain.ProfileID) (models.EvidenceRecord, error)
	DeleteRecord(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) error
	AppendRevision(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID, req models.RevisionRequest) (models.Revision, error)
	ListRevisions(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) ([]models.Revision, error)
	DetectGaps(ctx context.Context, profileID domain.ProfileID, r domain.DateRange) ([]gaps.Annotated, error)
	ExplainGap(ctx context.Context, req service.ExplainGapRequest) (gaps.Explanation, error)
	ListExplanations(ctx context.Context, profileID domain.ProfileID) ([]gaps.Explanation, error)
	ComputeStatistics(ctx context.Context, profileID domain.ProfileID, r domain.DateRange) ([]stats.Result, error)
	BuildPack(ctx context.Context, profileID domain.ProfileID, criteria pack.Criteria) (pack.Pack, error)
	GetPack(ctx context.Context, profileID domain.ProfileID, packID domain.PackID) (pack.Pack, error)
	ListPacks(ctx context.Context, profileID domain.ProfileID) ([]pack.Pack, error)
	SignPack(ctx context.Context, profileID domain.ProfileID, packID domain.PackID) (string, error)
	VerifyPack(ctx context.Context, profileID domain.ProfileID, packID domain.PackID, token string) (*pack.ManifestClaims, error)
	EvidenceTracking(ctx context.Context, profileID domain.ProfileID) (bool, error)
	SetEvidenceTracking(ctx context.Context, profileID domain.ProfileID, enabled bool) error
	VerifyProfile(ctx context.Context, profileID domain.ProfileID) ([]pack.IntegrityFailure, int, error)
	ExportBundle(ctx context.Context, profileID domain.ProfileID) (export.Bundle, error)
}

// Handler wires evidence endpoints to the evidence service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an evidence handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the evidence endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/profiles/{profileID}", func(r chi.Router) {
		r.Post("/records", h.HandleCreateRecord)
		r.Route("/records/{recordID}", func(r chi.Router) {
			r.Get("/", h.HandleGetRecord)
			r.Patch("/", h.HandleUpdateField)
			r.Delete("/", h.HandleDeleteRecord)
			r.Put("/payload", h.HandleReplacePayload)
			r.Post("/finalize", h.HandleFinalize)
			r.Get("/revisions", h.HandleListRevisions)
			r.Post("/revisions", h.HandleAppendRevision)
		})

		r.Get("/gaps", h.HandleDetectGaps)
		r.Get("/gap-explanations", h.HandleListExplanations)
		r.Post("/gap-explanations", h.HandleExplainGap)
		r.Get("/statistics", h.HandleStatistics)

		r.Get("/packs", h.HandleListPacks)
		r.Post("/packs", h.HandleBuildPack)
		r.Get("/packs/{packID}", h.HandleGetPack)
		r.Post("/packs/{packID}/manifest", h.HandleSignPack)
		r.Post("/packs/{packID}/verify", h.HandleVerifyPack)

		r.Get("/settings/evidence-tracking", h.HandleGetTracking)
		r.Put("/settings/evidence-tracking", h.HandleSetTracking)
		r.Get("/integrity", h.HandleVerifyProfile)
		r.Get("/export", h.HandleExport)
	})
}

// HandleCreateRecord handles POST /profiles/{profileID}/records.
func (h *Handler) HandleCreateRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	profileID, ok := h.profileParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateRecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.CreateRecord(ctx, service.CreateRecordRequest{
		ProfileID:   profileID,
		LogicalDate: req.logicalDate,
		Payload:     req.Payload,
		Retro:       req.retro(),
	})
	if err != nil {
		h.fail(w, r, "create record failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, export.FromRecord(rec))
}

// HandleGetRecord handles GET /profiles/{profileID}/records/{recordID}.
func (h *Handler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	profileID, recordID, ok := h.recordParams(w, r)
	if !ok {
		return
	}
	v, err := h.service.GetRecord(r.Context(), profileID, recordID)
	if err != nil {
		h.fail(w, r, "get record failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromView(v))
}

// HandleUpdateField handles PATCH /profiles/{profileID}/records/{recordID}.
// Only drafts accept it.
func (h *Handler) HandleUpdateField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, recordID, ok := h.recordParams(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateFieldRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	rec, err := h.service.UpdateField(ctx, profileID, recordID, req.path, req.Value)
	if err != nil {
		h.fail(w, r, "update field failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, export.FromRecord(rec))
}

// HandleReplacePayload handles PUT /profiles/{profileID}/records/{recordID}/payload.
func (h *Handler) HandleReplacePayload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, recordID, ok := h.recordParams(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReplacePayloadRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	rec, err := h.service.ReplacePayload(ctx, profileID, recordID, req.Payload)
	if err != nil {
		h.fail(w, r, "replace payload failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, export.FromRecord(rec))
}

// HandleFinalize handles POST /profiles/{profileID}/records/{recordID}/finalize.
// The actor is the X-Actor-ID caller when present, else the profile itself.
func (h *Handler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, recordID, ok := h.recordParams(w, r)
	if !ok {
		return
	}
	actor := requestcontext.ActorID(ctx)
	if actor.IsNil() {
		actor = profileID
	}
	rec, err := h.service.Finalize(ctx, profileID, recordID, actor)
	if err != nil {
		h.fail(w, r, "finalize failed", err)
		return
	}
	h.logger.InfoContext(ctx, "record finalized",
		"request_id", requestcontext.RequestID(ctx),
		"record_id", recordID,
		"actor", actor,
	)
	httputil.WriteJSON(w, http.StatusOK, export.FromRecord(rec))
}

// HandleDeleteRecord handles DELETE /profiles/{profileID}/records/{recordID}.
func (h *Handler) HandleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	profileID, recordID, ok := h.recordParams(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteRecord(r.Context(), profileID, recordID); err != nil {
		h.fail(w, r, "delete record failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAppendRevision handles POST /profiles/{profileID}/records/{recordID}/revisions.
func (h *Handler) HandleAppendRevision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, recordID, ok := h.recordParams(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AppendRevisionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	rev, err := h.service.AppendRevision(ctx, profileID, recordID, req.parsed)
	if err != nil {
		h.fail(w, r, "append revision failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rev)
}

// HandleListRevisions handles GET /profiles/{profileID}/records/{recordID}/revisions.
func (h *Handler) HandleListRevisions(w http.ResponseWriter, r *http.Request) {
	profileID, recordID, ok := h.recordParams(w, r)
	if !ok {
		return
	}
	revs, err := h.service.ListRevisions(r.Context(), profileID, recordID)
	if err != nil {
		h.fail(w, r, "list revisions failed", err)
		return
	}
	if revs == nil {
		revs = []models.Revision{}
	}
	httputil.WriteJSON(w, http.StatusOK, RevisionsResponse{Revisions: revs})
}

// HandleDetectGaps handles GET /profiles/{profileID}/gaps?start=&end=.
func (h *Handler) HandleDetectGaps(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileParam(w, r)
	if !ok {
		return
	}
	window, ok := h.rangeQuery(w, r)
	if !ok {
		return
	}
	found, err := h.service.DetectGaps(r.Context(), profileID, window)
	if err != nil {
		h.fail(w, r, "detect gaps failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromGaps(found))
}

// HandleExplainGap handles POST /profiles/{profileID}/gap-explanations.
func (h *Handler) HandleExplainGap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.profileParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ExplainGapRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	e, err := h.service.ExplainGap(ctx, service.ExplainGapRequest{
		ProfileID: profileID,
		StartDate: req.span.Start,
		EndDate:   req.span.End,
		Reason:    req.Reason,
		Note:      req.Note,
	})
	if err != nil {
		h.fail(w, r, "explain gap failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, e)
}

// HandleListExplanations handles GET /profiles/{profileID}/gap-explanations.
func (h *Handler) HandleListExplanations(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileParam(w, r)
	if !ok {
		return
	}
	out, err := h.service.ListExplanations(r.Context(), profileID)
	if err != nil {
		h.fail(w, r, "list explanations failed", err)
		return
	}
	if out == nil {
		out = []gaps.Explanation{}
	}
	httputil.WriteJSON(w, http.StatusOK, ExplanationsResponse{Explanations: out})
}

// HandleStatistics handles GET /profiles/{profileID}/statistics?start=&end=.
func (h *Handler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileParam(w, r)
	if !ok {
		return
	}
	window, ok := h.rangeQuery(w, r)
	if !ok {
		return
	}
	results, err := h.service.ComputeStatistics(r.Context(), profileID, window)
	if err != nil {
		h.fail(w, r, "compute statistics failed", err)
		return
	}
	resp := StatisticsResponse{Statistics: results}
	if window != (domain.DateRange{}) {
		resp.Range = &window
	}
	if resp.Statistics == nil {
		resp.Statistics = []stats.Result{}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleBuildPack handles POST /profiles/{profileID}/packs.
func (h *Handler) HandleBuildPack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	profileID, ok := h.profileParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BuildPackRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.BuildPack(ctx, profileID, req.criteria)
	if err != nil {
		h.fail(w, r, "build pack failed", err)
		return
	}
	h.logger.InfoContext(ctx, "pack built",
		"request_id", requestID,
		"pack_id", p.ID(),
		"records", len(p.RecordIDs()),
		"integrity_failures", len(p.IntegrityFailures()),
	)
	httputil.WriteJSON(w, http.StatusCreated, export.FromPack(p))
}

// HandleGetPack handles GET /profiles/{profileID}/packs/{packID}.
func (h *Handler) HandleGetPack(w http.ResponseWriter, r *http.Request) {
	profileID, packID, ok := h.packParams(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetPack(r.Context(), profileID, packID)
	if err != nil {
		h.fail(w, r, "get pack failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, export.FromPack(p))
}

// HandleListPacks handles GET /profiles/{profileID}/packs.
func (h *Handler) HandleListPacks(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileParam(w, r)
	if !ok {
		return
	}
	packs, err := h.service.ListPacks(r.Context(), profileID)
	if err != nil {
		h.fail(w, r, "list packs failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPacks(packs))
}

// HandleSignPack handles POST /profiles/{profileID}/packs/{packID}/manifest.
func (h *Handler) HandleSignPack(w http.ResponseWriter, r *http.Request) {
	profileID, packID, ok := h.packParams(w, r)
	if !ok {
		return
	}
	token, err := h.service.SignPack(r.Context(), profileID, packID)
	if err != nil {
		h.fail(w, r, "sign pack failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ManifestResponse{PackID: packID, Token: token})
}

// HandleVerifyPack handles POST /profiles/{profileID}/packs/{packID}/verify.
func (h *Handler) HandleVerifyPack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, packID, ok := h.packParams(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[VerifyPackRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	claims, err := h.service.VerifyPack(ctx, profileID, packID, req.Token)
	if err != nil {
		h.fail(w, r, "verify pack failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VerifyResponse{
		Valid:       true,
		PackID:      claims.ID,
		RecordCount: claims.RecordCount,
	})
}

// HandleGetTracking handles GET /profiles/{profileID}/settings/evidence-tracking.
func (h *Handler) HandleGetTracking(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileParam(w, r)
	if !ok {
		return
	}
	enabled, err := h.service.EvidenceTracking(r.Context(), profileID)
	if err != nil {
		h.fail(w, r, "read evidence tracking failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TrackingResponse{Enabled: enabled})
}

// HandleSetTracking handles PUT /profiles/{profileID}/settings/evidence-tracking.
func (h *Handler) HandleSetTracking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID, ok := h.profileParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TrackingRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.SetEvidenceTracking(ctx, profileID, *req.Enabled); err != nil {
		h.fail(w, r, "set evidence tracking failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TrackingResponse{Enabled: *req.Enabled})
}

// HandleVerifyProfile handles GET /profiles/{profileID}/integrity.
func (h *Handler) HandleVerifyProfile(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileParam(w, r)
	if !ok {
		return
	}
	failures, checked, err := h.service.VerifyProfile(r.Context(), profileID)
	if err != nil {
		h.fail(w, r, "verify profile failed", err)
		return
	}
	if failures == nil {
		failures = []pack.IntegrityFailure{}
	}
	httputil.WriteJSON(w, http.StatusOK, IntegrityResponse{Checked: checked, Failures: failures})
}

// HandleExport handles GET /profiles/{profileID}/export.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileParam(w, r)
	if !ok {
		return
	}
	bundle, err := h.service.ExportBundle(r.Context(), profileID)
	if err != nil {
		h.fail(w, r, "export failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, bundle)
}

func (h *Handler) profileParam(w http.ResponseWriter, r *http.Request) (domain.ProfileID, bool) {
	id, err := domain.ParseProfileID(chi.URLParam(r, "profileID"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.ProfileID{}, false
	}
	return id, true
}

func (h *Handler) recordParams(w http.ResponseWriter, r *http.Request) (domain.ProfileID, domain.RecordID, bool) {
	profileID, ok := h.profileParam(w, r)
	if !ok {
		return domain.ProfileID{}, domain.RecordID{}, false
	}
	recordID, err := domain.ParseRecordID(chi.URLParam(r, "recordID"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.ProfileID{}, domain.RecordID{}, false
	}
	return profileID, recordID, true
}

func (h *Handler) packParams(w http.ResponseWriter, r *http.Request) (domain.ProfileID, domain.PackID, bool) {
	profileID, ok := h.profileParam(w, r)
	if !ok {
		return domain.ProfileID{}, domain.PackID{}, false
	}
	packID, err := domain.ParsePackID(chi.URLParam(r, "packID"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.ProfileID{}, domain.PackID{}, false
	}
	return profileID, packID, true
}

func (h *Handler) rangeQuery(w http.ResponseWriter, r *http.Request) (domain.DateRange, bool) {
	q := r.URL.Query()
	window, err := parseRange(q.Get("start"), q.Get("end"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.DateRange{}, false
	}
	return window, true
}

// fail logs at Error for internal faults and Warn for everything the caller
// caused, then writes the mapped reply.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	level := slog.LevelWarn
	if de, ok := dErrors.As(err); !ok || de.Code.Kind() == dErrors.KindInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"profile_id", chi.URLParam(r, "profileID"),
		"error", err,
	)
	httputil.WriteError(w, err)
}
