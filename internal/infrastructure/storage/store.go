// Package storage keeps the latest status projection per execution and
// persists raw task context documents.
package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/beaconhq/beacon/pkg/domain/projection"
)

// UpdateKind classifies what a Put did to the stored record.
type UpdateKind string

const (
	UpdateCreated    UpdateKind = "created"
	UpdateUnchanged  UpdateKind = "unchanged"
	UpdateProgressed UpdateKind = "progressed"
	// UpdateRegressed marks an overwrite the execution lifecycle has no
	// transition for. Last write still wins; the flag exists so callers can
	// surface the anomaly.
	UpdateRegressed UpdateKind = "regressed"
)

// Record is a stored projection with overwrite bookkeeping.
type Record struct {
	Projection *projection.StatusProjection
	Version    int64
	StoredAt   time.Time
}

// MemoryStore holds the most recent projection per execution. Writes follow
// last-write-wins with a monotonically increasing version per execution.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty projection store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

// Put stores the projection as the new current value for its execution and
// reports how the stored record changed. The projection is always applied;
// even a regression only affects the returned kind.
func (s *MemoryStore) Put(p *projection.StatusProjection) (Record, UpdateKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, exists := s.records[p.ExecutionID]
	kind := UpdateCreated
	if exists {
		kind = classifyUpdate(previous.Projection, p)
	}

	record := Record{
		Projection: p,
		Version:    previous.Version + 1,
		StoredAt:   time.Now().UTC(),
	}
	s.records[p.ExecutionID] = record
	return record, kind
}

func classifyUpdate(previous, next *projection.StatusProjection) UpdateKind {
	if previous.Status == next.Status {
		return UpdateUnchanged
	}
	lc, err := projection.NewLifecycle(next.ExecutionID, previous.Status)
	if err != nil {
		return UpdateProgressed
	}
	if err := lc.Transition(next.Status); err != nil {
		return UpdateRegressed
	}
	return UpdateProgressed
}

// Get returns the current record for an execution.
func (s *MemoryStore) Get(executionID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[executionID]
	return record, ok
}

// List returns all current records ordered by execution id.
func (s *MemoryStore) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		result = append(result, record)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Projection.ExecutionID < result[j].Projection.ExecutionID
	})
	return result
}

// ListByProject returns current records for one project, ordered by
// execution id.
func (s *MemoryStore) ListByProject(projectID string) []Record {
	all := s.List()
	result := make([]Record, 0, len(all))
	for _, record := range all {
		if record.Projection.ProjectID == projectID {
			result = append(result, record)
		}
	}
	return result
}

// Delete removes the record for an execution.
func (s *MemoryStore) Delete(executionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, executionID)
}
