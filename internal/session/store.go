package session

import (
	"sort"
	"sync"

	"secassist/internal/models"
)

// Store is the process-wide session state: uploaded files by identifier and
// the ordered conversation. A single RWMutex guards every read and mutation.
type Store struct {
	mu      sync.RWMutex
	files   map[string]*models.UploadedFile
	history []*models.Message
	epoch   uint64 // bumped on every Reset
}

// Snapshot is a consistent copy of the state a chat request needs.
type Snapshot struct {
	Files   []*models.UploadedFile
	Missing []string
	History []*models.Message
	Epoch   uint64
}

func NewStore() *Store {
	return &Store{
		files: make(map[string]*models.UploadedFile),
	}
}

func (s *Store) AddFile(f *models.UploadedFile) {
	if f == nil || f.ID == "" {
		return
	}
	c := *f
	s.mu.Lock()
	s.files[c.ID] = &c
	s.mu.Unlock()
}

// file looks up a single record by id.
func (s *Store) file(id string) (*models.UploadedFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[id]
	if !ok {
		return nil, false
	}
	c := *f
	return &c, true
}

// ListFiles returns copies of all files ordered by upload time.
func (s *Store) ListFiles() []*models.UploadedFile {
	s.mu.RLock()
	out := make([]*models.UploadedFile, 0, len(s.files))
	for _, f := range s.files {
		c := *f
		out = append(out, &c)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out
}

func (s *Store) messages() []*models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneHistory(s.history)
}

// Snapshot resolves ids in request order (duplicates collapse to the first
// occurrence) and copies the history, all under one read lock.
func (s *Store) Snapshot(ids []string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		History: cloneHistory(s.history),
		Epoch:   s.epoch,
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		f, ok := s.files[id]
		if !ok {
			snap.Missing = append(snap.Missing, id)
			continue
		}
		c := *f
		snap.Files = append(snap.Files, &c)
	}
	return snap
}

// AppendExchange records a user turn and its reply. It reports false and
// records nothing when the state was reset after epoch was observed.
func (s *Store) AppendExchange(epoch uint64, user, assistant *models.Message) bool {
	if user == nil || assistant == nil {
		return false
	}
	u, a := *user, *assistant
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return false
	}
	s.history = append(s.history, &u, &a)
	return true
}

// Reset empties files and history and returns the removed files so the
// caller can delete their disk artifacts.
func (s *Store) Reset() []*models.UploadedFile {
	s.mu.Lock()
	removed := make([]*models.UploadedFile, 0, len(s.files))
	for _, f := range s.files {
		removed = append(removed, f)
	}
	s.files = make(map[string]*models.UploadedFile)
	s.history = nil
	s.epoch++
	s.mu.Unlock()
	return removed
}

func cloneHistory(history []*models.Message) []*models.Message {
	cloned := make([]*models.Message, 0, len(history))
	for _, msg := range history {
		if msg == nil {
			continue
		}
		c := *msg
		cloned = append(cloned, &c)
	}
	return cloned
}
