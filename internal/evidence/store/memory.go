package store

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"evidentia/internal/evidence/gaps"
	"evidentia/internal/evidence/models"
	"evidentia/internal/evidence/pack"
	"evidentia/pkg/domain"
	"evidentia/pkg/platform/sentinel"
)

// MemoryStore keeps everything in maps behind one RWMutex. Values are deep
// copied on the way in and out so callers never share memory with the store.
type MemoryStore struct {
	mu           sync.RWMutex
	records      map[domain.RecordID]models.RecordState
	revisions    map[domain.RecordID][]models.Revision
	packs        map[domain.PackID]pack.Pack
	tracking     map[domain.ProfileID]bool
	explanations map[domain.ProfileID][]gaps.Explanation
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		records:      make(map[domain.RecordID]models.RecordState),
		revisions:    make(map[domain.RecordID][]models.Revision),
		packs:        make(map[domain.PackID]pack.Pack),
		tracking:     make(map[domain.ProfileID]bool),
		explanations: make(map[domain.ProfileID][]gaps.Explanation),
	}
}

// withRevisionIDs fills RevisionIDs from the ledger. Caller holds the lock.
func (s *MemoryStore) withRevisionIDs(st models.RecordState) models.RecordState {
	out := st.Clone()
	out.RevisionIDs = nil
	for _, r := range s.revisions[st.ID] {
		out.RevisionIDs = append(out.RevisionIDs, r.ID)
	}
	return out
}

func (s *MemoryStore) Get(_ context.Context, profileID domain.ProfileID, recordID domain.RecordID) (models.RecordState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.records[recordID]
	if !ok || st.ProfileID != profileID {
		return models.RecordState{}, sentinel.ErrNotFound
	}
	return s.withRevisionIDs(st), nil
}

func (s *MemoryStore) ListByProfile(_ context.Context, profileID domain.ProfileID) ([]models.RecordState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(profileID), nil
}

func (s *MemoryStore) listLocked(profileID domain.ProfileID) []models.RecordState {
	var out []models.RecordState
	for _, st := range s.records {
		if st.ProfileID == profileID {
			out = append(out, s.withRevisionIDs(st))
		}
	}
	slices.SortFunc(out, compareStates)
	return out
}

func compareStates(a, b models.RecordState) int {
	if c := domain.CompareDates(a.LogicalDate, b.LogicalDate); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

// Put inserts a draft or overwrites a stored draft. It refuses finalized
// input, a stored finalized row, and any change to a draft's sealed
// creation facts.
func (s *MemoryStore) Put(_ context.Context, st models.RecordState) error {
	if st.Finalized {
		return sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[st.ID]; ok {
		if existing.Finalized {
			return sentinel.ErrInvalidState
		}
		if existing.Seal != st.Seal || existing.ProfileID != st.ProfileID {
			return sentinel.ErrStateMismatch
		}
	}
	stored := st.Clone()
	stored.RevisionIDs = nil
	s.records[st.ID] = stored
	return nil
}

// Delete removes a draft and refuses finalized rows.
func (s *MemoryStore) Delete(_ context.Context, profileID domain.ProfileID, recordID domain.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[recordID]
	if !ok || existing.ProfileID != profileID {
		return sentinel.ErrNotFound
	}
	if existing.Finalized {
		return sentinel.ErrInvalidState
	}
	delete(s.records, recordID)
	return nil
}

// CompareAndSetFinalized replaces the stored row with next only if the stored
// lifecycle equals expected. A lost race returns sentinel.ErrStateMismatch and
// leaves the stored row untouched.
func (s *MemoryStore) CompareAndSetFinalized(_ context.Context, recordID domain.RecordID, expected models.Lifecycle, next models.RecordState) error {
	if !next.Finalized || next.ID != recordID {
		return sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[recordID]
	if !ok || existing.ProfileID != next.ProfileID {
		return sentinel.ErrNotFound
	}
	if existing.Lifecycle() != expected {
		return sentinel.ErrStateMismatch
	}
	if existing.Seal != next.Seal {
		return sentinel.ErrStateMismatch
	}
	stored := next.Clone()
	stored.RevisionIDs = nil
	s.records[recordID] = stored
	return nil
}

// AppendRevision inserts rev as the next entry of its record's ledger. The
// sequence must be exactly one past the stored last; anything else is
// sentinel.ErrConflict, so two appenders can never share a sequence.
func (s *MemoryStore) AppendRevision(_ context.Context, rev models.Revision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[rev.RecordID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !existing.Finalized {
		return sentinel.ErrInvalidState
	}
	ledger := s.revisions[rev.RecordID]
	if rev.Sequence != len(ledger)+1 {
		return sentinel.ErrConflict
	}
	for _, r := range ledger {
		if r.ID == rev.ID {
			return sentinel.ErrConflict
		}
	}
	s.revisions[rev.RecordID] = append(ledger, rev)
	return nil
}

func (s *MemoryStore) ListRevisions(_ context.Context, recordID domain.RecordID) ([]models.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.records[recordID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	return slices.Clone(s.revisions[recordID]), nil
}

func (s *MemoryStore) ListRevisionsByProfile(_ context.Context, profileID domain.ProfileID) (map[domain.RecordID][]models.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revisionsLocked(profileID), nil
}

func (s *MemoryStore) revisionsLocked(profileID domain.ProfileID) map[domain.RecordID][]models.Revision {
	out := make(map[domain.RecordID][]models.Revision)
	for id, st := range s.records {
		if st.ProfileID == profileID && len(s.revisions[id]) > 0 {
			out[id] = slices.Clone(s.revisions[id])
		}
	}
	return out
}

// Snapshot reads records and revisions under one read lock.
func (s *MemoryStore) Snapshot(_ context.Context, profileID domain.ProfileID) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Records:   s.listLocked(profileID),
		Revisions: s.revisionsLocked(profileID),
	}, nil
}

// CreatePack inserts a pack. Packs are never updated or deleted.
func (s *MemoryStore) CreatePack(_ context.Context, p pack.Pack) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.packs[p.ID()]; ok {
		return sentinel.ErrConflict
	}
	s.packs[p.ID()] = p
	return nil
}

func (s *MemoryStore) GetPack(_ context.Context, profileID domain.ProfileID, packID domain.PackID) (pack.Pack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.packs[packID]
	if !ok || p.ProfileID() != profileID {
		return pack.Pack{}, sentinel.ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) ListPacks(_ context.Context, profileID domain.ProfileID) ([]pack.Pack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []pack.Pack
	for _, p := range s.packs {
		if p.ProfileID() == profileID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b pack.Pack) int {
		ai, bi := a.ID(), b.ID()
		return bytes.Compare(ai[:], bi[:])
	})
	return out, nil
}

// EvidenceTracking returns sentinel.ErrNotFound when the profile never set it.
func (s *MemoryStore) EvidenceTracking(_ context.Context, profileID domain.ProfileID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.tracking[profileID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) SetEvidenceTracking(_ context.Context, profileID domain.ProfileID, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracking[profileID] = enabled
	return nil
}

func (s *MemoryStore) CreateExplanation(_ context.Context, e gaps.Explanation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.explanations[e.ProfileID] {
		if existing.ID == e.ID {
			return sentinel.ErrConflict
		}
	}
	s.explanations[e.ProfileID] = append(s.explanations[e.ProfileID], e)
	return nil
}

func (s *MemoryStore) ListExplanations(_ context.Context, profileID domain.ProfileID) ([]gaps.Explanation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.explanations[profileID])
	slices.SortStableFunc(out, func(a, b gaps.Explanation) int { return domain.CompareDates(a.StartDate, b.StartDate) })
	return out, nil
}
