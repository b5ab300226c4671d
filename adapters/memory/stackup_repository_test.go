package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"tolninja/internal/errors"
	"tolninja/models"
)

func record(name string, createdAt time.Time) *models.StackupRecord {
	return &models.StackupRecord{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestSaveGetDelete(t *testing.T) {
	repo := NewStackupRepository()
	ctx := context.Background()

	rec := record("stack", time.Now())
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "stack" {
		t.Errorf("got name %q", got.Name)
	}

	// Returned records are copies; mutating one must not touch the store.
	got.Name = "mutated"
	again, err := repo.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.Name != "stack" {
		t.Error("stored record was mutated through a returned copy")
	}

	if err := repo.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, rec.ID); errors.GetCode(err) != errors.CodeNotFound {
		t.Errorf("expected not-found after delete, got %v", err)
	}
	if err := repo.Delete(ctx, rec.ID); errors.GetCode(err) != errors.CodeNotFound {
		t.Errorf("expected not-found on double delete, got %v", err)
	}
}

func TestSaveOverwritesByID(t *testing.T) {
	repo := NewStackupRepository()
	ctx := context.Background()

	rec := record("v1", time.Now())
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec.Name = "v2"
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, err := repo.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "v2" {
		t.Errorf("expected overwritten record, got %q", got.Name)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 record, got %d", len(list))
	}
}

func TestListOrderedByCreation(t *testing.T) {
	repo := NewStackupRepository()
	ctx := context.Background()

	base := time.Now()
	newest := record("newest", base.Add(2*time.Hour))
	oldest := record("oldest", base)
	middle := record("middle", base.Add(time.Hour))
	for _, r := range []*models.StackupRecord{newest, oldest, middle} {
		if err := repo.Save(ctx, r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, r := range list {
		names = append(names, r.Name)
	}
	want := []string{"oldest", "middle", "newest"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("list order %v, want %v", names, want)
		}
	}
}
