package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"tolninja/internal/errors"
	"tolninja/models"
	"tolninja/ports"
)

// StackupRepository is an in-memory implementation of the persistence
// port, used for DB-less runs and tests.
type StackupRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]models.StackupRecord
}

func NewStackupRepository() ports.StackupRepository {
	return &StackupRepository{records: make(map[uuid.UUID]models.StackupRecord)}
}

func (r *StackupRepository) Save(_ context.Context, record *models.StackupRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = *record
	return nil
}

func (r *StackupRepository) Get(_ context.Context, id uuid.UUID) (*models.StackupRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, errors.NotFound("stackup " + id.String())
	}
	return &record, nil
}

func (r *StackupRepository) List(_ context.Context) ([]*models.StackupRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.StackupRecord, 0, len(r.records))
	for id := range r.records {
		record := r.records[id]
		out = append(out, &record)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *StackupRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return errors.NotFound("stackup " + id.String())
	}
	delete(r.records, id)
	return nil
}
