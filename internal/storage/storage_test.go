package storage

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/boardsnap/boardsnap/internal/analysis"
	"github.com/boardsnap/boardsnap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string, created time.Time) *models.AnalysisRecord {
	return &models.AnalysisRecord{Result: analysis.Result{ID: id, Success: true, CreatedAt: created}}
}

func TestAnalysisStore(t *testing.T) {
	s := New(0)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	s.Set(record("a", base))
	s.Set(record("b", base.Add(time.Minute)))

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)

	s.Delete("a")
	_, ok = s.Get("a")
	assert.False(t, ok)
}

func TestAnalysisStoreEvictsOldest(t *testing.T) {
	s := New(2)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	s.Set(record("first", base))
	s.Set(record("second", base.Add(time.Second)))
	s.Set(record("third", base.Add(2*time.Second)))

	_, ok := s.Get("first")
	assert.False(t, ok)
	assert.Len(t, s.List(), 2)
}

func TestAnalysisStoreEvictsByInsertionOrder(t *testing.T) {
	s := New(2)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	s.Set(record("first", base.Add(time.Hour)))
	s.Set(record("second", base.Add(2*time.Hour)))
	// a clock step backwards must not make the newest record the eviction target
	s.Set(record("third", base))

	_, ok := s.Get("first")
	assert.False(t, ok)
	_, ok = s.Get("third")
	assert.True(t, ok)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].ID)
	assert.Equal(t, "second", list[1].ID)
}

func TestAnalysisStoreReplaceAndDelete(t *testing.T) {
	s := New(2)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	s.Set(record("a", base))
	s.Set(record("b", base))
	s.Set(record("a", base))
	s.Set(record("c", base))

	_, ok := s.Get("b")
	assert.False(t, ok, "b was the earliest insertion left")
	_, ok = s.Get("a")
	assert.True(t, ok)

	s.Delete("a")
	s.Delete("missing")
	s.Set(record("d", base))
	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "d", list[0].ID)
	assert.Equal(t, "c", list[1].ID)
}

func TestAnalysisStoreConcurrent(t *testing.T) {
	s := New(1000)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Set(record(fmt.Sprintf("r%d", i), time.Now()))
			s.List()
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.List(), 50)
}
