package storage

import (
	"slices"
	"sync"

	"github.com/boardsnap/boardsnap/internal/models"
)

// DefaultCapacity is the number of analyses kept before the oldest are evicted
const DefaultCapacity = 500

// AnalysisStore keeps the analyses made by this process in memory.
// order holds the IDs oldest first by insertion.
type AnalysisStore struct {
	records  map[string]*models.AnalysisRecord
	order    []string
	capacity int
	mu       sync.RWMutex
}

// New creates a store holding at most capacity records. capacity <= 0 means DefaultCapacity.
func New(capacity int) *AnalysisStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &AnalysisStore{
		records:  make(map[string]*models.AnalysisRecord),
		capacity: capacity,
	}
}

func (s *AnalysisStore) Get(id string) (*models.AnalysisRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, exists := s.records[id]
	return record, exists
}

// Set stores record under its ID, evicting the earliest inserted records when full.
// Replacing an existing ID moves it to the newest position.
func (s *AnalysisStore) Set(record *models.AnalysisRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists {
		s.removeFromOrder(record.ID)
	}
	s.records[record.ID] = record
	s.order = append(s.order, record.ID)

	for len(s.order) > s.capacity {
		delete(s.records, s.order[0])
		s.order = s.order[1:]
	}
}

// List returns all records, most recently inserted first
func (s *AnalysisStore) List() []*models.AnalysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.AnalysisRecord, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		result = append(result, s.records[s.order[i]])
	}
	return result
}

func (s *AnalysisStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[id]; !exists {
		return
	}
	delete(s.records, id)
	s.removeFromOrder(id)
}

func (s *AnalysisStore) removeFromOrder(id string) {
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}
