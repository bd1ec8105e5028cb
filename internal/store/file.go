package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-console/internal/model"
)

// Cache filenames are fixed namespace keys; each holds the full collection
// and is overwritten wholesale on every mutation.
const (
	leadsCacheFile         = "mini-seller-leads.json"
	opportunitiesCacheFile = "mini-seller-opportunities.json"
)

// FileStore keeps the authoritative collections in memory and persists
// them as JSON snapshots after every mutation. Persistence is best-effort:
// a failed write is logged, never fatal, and is not transactional with the
// in-memory state.
type FileStore struct {
	dir string

	mu            sync.RWMutex
	leads         []model.Lead
	opportunities []model.Opportunity
	version       uint64
	nextUnique    map[int64]bool

	subMu sync.Mutex
	subs  []chan uint64
}

// NewFile opens the JSON cache under dir, creating it if needed. When the
// lead cache is empty or absent the bundled seed dataset is loaded and
// persisted.
func NewFile(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrap(err, "file store: create cache dir")
	}

	s := &FileStore{dir: dir, nextUnique: make(map[int64]bool)}

	if err := s.load(); err != nil {
		return nil, err
	}

	if len(s.leads) == 0 {
		leads, opps, err := SeedData()
		if err != nil {
			return nil, err
		}
		s.leads = leads
		if len(s.opportunities) == 0 {
			s.opportunities = opps
		}
		s.persistLeads()
		s.persistOpportunities()
		zap.L().Info("file store: seeded initial dataset",
			zap.Int("leads", len(leads)),
			zap.String("dir", dir),
		)
	}

	for _, lead := range s.leads {
		s.nextUnique[lead.ID] = true
	}
	for _, opp := range s.opportunities {
		s.nextUnique[opp.ID] = true
	}

	return s, nil
}

func (s *FileStore) load() error {
	if err := loadJSON(filepath.Join(s.dir, leadsCacheFile), &s.leads); err != nil {
		return err
	}
	return loadJSON(filepath.Join(s.dir, opportunitiesCacheFile), &s.opportunities)
}

func loadJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return eris.Wrapf(err, "file store: read %s", filepath.Base(path))
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return eris.Wrapf(err, "file store: parse %s", filepath.Base(path))
	}
	return nil
}

// persistLeads writes the lead snapshot. Callers hold the write lock.
func (s *FileStore) persistLeads() {
	s.persist(leadsCacheFile, s.leads)
}

func (s *FileStore) persistOpportunities() {
	s.persist(opportunitiesCacheFile, s.opportunities)
}

func (s *FileStore) persist(name string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		zap.L().Error("file store: marshal snapshot", zap.String("file", name), zap.Error(err))
		return
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		zap.L().Error("file store: write snapshot", zap.String("file", name), zap.Error(err))
	}
}

// bump advances the version and notifies subscribers. Callers hold the
// write lock.
func (s *FileStore) bump() {
	s.version++
	v := s.version
	s.subMu.Lock()
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default: // slow subscriber, drop the tick
		}
	}
	s.subMu.Unlock()
}

// Subscribe returns a channel receiving the collection version after each
// mutation. Slow receivers miss ticks rather than blocking mutations.
func (s *FileStore) Subscribe() <-chan uint64 {
	ch := make(chan uint64, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *FileStore) freshID() int64 {
	id := model.NewID()
	for s.nextUnique[id] {
		id++
	}
	s.nextUnique[id] = true
	return id
}

func (s *FileStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *FileStore) ListLeads(_ context.Context, filter Filter) ([]model.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Lead, 0, len(s.leads))
	search := strings.ToLower(filter.Search)
	for _, lead := range s.leads {
		if search != "" &&
			!strings.Contains(strings.ToLower(lead.Name), search) &&
			!strings.Contains(strings.ToLower(lead.Company), search) &&
			!strings.Contains(strings.ToLower(lead.Email), search) {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && string(lead.Status) != filter.Status {
			continue
		}
		out = append(out, lead)
	}

	sortLeads(out, filter.SortBy, filter.SortOrder)
	return out, nil
}

func sortLeads(leads []model.Lead, sortBy, sortOrder string) {
	asc := sortOrder == "asc"
	switch sortBy {
	case "score":
		sort.SliceStable(leads, func(i, j int) bool {
			if asc {
				return leads[i].Score < leads[j].Score
			}
			return leads[i].Score > leads[j].Score
		})
	case "", "createdAt":
		sort.SliceStable(leads, func(i, j int) bool {
			if asc {
				return leads[i].CreatedAt.Before(leads[j].CreatedAt)
			}
			return leads[i].CreatedAt.After(leads[j].CreatedAt)
		})
	}
}

func (s *FileStore) GetLead(_ context.Context, id int64) (*model.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, lead := range s.leads {
		if lead.ID == id {
			found := lead
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) CreateLead(_ context.Context, lead model.Lead) (*model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lead.ID == 0 {
		lead.ID = s.freshID()
	} else {
		s.nextUnique[lead.ID] = true
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	lead.Score = model.ClampScore(lead.Score)
	s.leads = append(s.leads, lead)
	s.persistLeads()
	s.bump()
	return &lead, nil
}

func (s *FileStore) UpdateLead(_ context.Context, id int64, patch Patch) (*model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.leads {
		if s.leads[i].ID == id {
			applyPatch(&s.leads[i], patch)
			updated := s.leads[i]
			s.persistLeads()
			s.bump()
			return &updated, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) DeleteLead(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.leads {
		if s.leads[i].ID == id {
			s.leads = append(s.leads[:i], s.leads[i+1:]...)
			s.persistLeads()
			s.bump()
			return nil
		}
	}
	return ErrNotFound
}

func (s *FileStore) ImportLeads(_ context.Context, leads []model.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[int64]int, len(s.leads))
	for i, lead := range s.leads {
		byID[lead.ID] = i
	}

	for _, incoming := range leads {
		incoming.Score = model.ClampScore(incoming.Score)
		if incoming.CreatedAt.IsZero() {
			incoming.CreatedAt = time.Now().UTC()
		}
		if i, ok := byID[incoming.ID]; ok && incoming.ID != 0 {
			s.leads[i] = incoming
			continue
		}
		if incoming.ID == 0 {
			incoming.ID = s.freshID()
		} else {
			s.nextUnique[incoming.ID] = true
		}
		byID[incoming.ID] = len(s.leads)
		s.leads = append(s.leads, incoming)
	}

	s.persistLeads()
	s.bump()
	return nil
}

func (s *FileStore) ReplaceLeads(_ context.Context, leads []model.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make([]model.Lead, 0, len(leads))
	for _, lead := range leads {
		if lead.ID == 0 {
			lead.ID = s.freshID()
		} else {
			s.nextUnique[lead.ID] = true
		}
		if lead.CreatedAt.IsZero() {
			lead.CreatedAt = time.Now().UTC()
		}
		lead.Score = model.ClampScore(lead.Score)
		replacement = append(replacement, lead)
	}
	s.leads = replacement
	s.persistLeads()
	s.bump()
	return nil
}

func (s *FileStore) ClearLeads(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = nil
	s.persistLeads()
	s.bump()
	return nil
}

func (s *FileStore) ConvertLead(_ context.Context, id int64) (*model.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.leads {
		if s.leads[i].ID != id {
			continue
		}
		opp := model.OpportunityFromLead(s.leads[i])
		for s.nextUnique[opp.ID] {
			opp.ID++
		}
		s.nextUnique[opp.ID] = true

		s.leads = append(s.leads[:i], s.leads[i+1:]...)
		s.opportunities = append(s.opportunities, opp)
		s.persistLeads()
		s.persistOpportunities()
		s.bump()
		return &opp, nil
	}
	return nil, ErrNotFound
}

func (s *FileStore) ListOpportunities(_ context.Context) ([]model.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Opportunity, len(s.opportunities))
	copy(out, s.opportunities)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *FileStore) CreateOpportunity(_ context.Context, opp model.Opportunity) (*model.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opp.ID == 0 {
		opp.ID = s.freshID()
	} else {
		s.nextUnique[opp.ID] = true
	}
	if opp.CreatedAt.IsZero() {
		opp.CreatedAt = time.Now().UTC()
	}
	s.opportunities = append(s.opportunities, opp)
	s.persistOpportunities()
	s.bump()
	return &opp, nil
}

func (s *FileStore) UpdateOpportunity(_ context.Context, id int64, patch OpportunityPatch) (*model.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.opportunities {
		if s.opportunities[i].ID == id {
			applyOpportunityPatch(&s.opportunities[i], patch)
			updated := s.opportunities[i]
			s.persistOpportunities()
			s.bump()
			return &updated, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) DeleteOpportunity(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.opportunities {
		if s.opportunities[i].ID == id {
			s.opportunities = append(s.opportunities[:i], s.opportunities[i+1:]...)
			s.persistOpportunities()
			s.bump()
			return nil
		}
	}
	return ErrNotFound
}

func (s *FileStore) ClearOpportunities(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opportunities = nil
	s.persistOpportunities()
	s.bump()
	return nil
}

// Migrate is a no-op; the cache files are created lazily.
func (s *FileStore) Migrate(context.Context) error { return nil }

func (s *FileStore) Close() error {
	s.subMu.Lock()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.subMu.Unlock()
	return nil
}
