package store

import (
	"bytes"
	"errors"
	"testing"
)

func TestModels_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Models()

	m := &Model{
		Name:        "v1",
		SampleCount: 42,
		ScalerBlob:  []byte{1, 2, 3},
		TreeBlob:    []byte{4, 5, 6, 7},
	}
	if err := repo.Create(m); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if m.ID == "" {
		t.Fatal("Create should assign a UUID when the ID is empty")
	}

	got, err := repo.GetByID(m.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "v1" || got.SampleCount != 42 {
		t.Errorf("unexpected model: %+v", got)
	}
	if !bytes.Equal(got.ScalerBlob, m.ScalerBlob) || !bytes.Equal(got.TreeBlob, m.TreeBlob) {
		t.Error("blobs should round-trip unchanged")
	}

	byName, err := repo.GetByName("v1")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if byName.ID != m.ID {
		t.Errorf("expected id %q, got %q", m.ID, byName.ID)
	}
}

func TestModels_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Models()

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Latest(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestModels_LatestAndList(t *testing.T) {
	s := newTestStore(t)
	repo := s.Models()

	for _, name := range []string{"v1", "v2", "v3"} {
		m := &Model{Name: name, ScalerBlob: []byte{1}, TreeBlob: []byte{2}}
		if err := repo.Create(m); err != nil {
			t.Fatalf("Create %s failed: %v", name, err)
		}
	}

	latest, err := repo.Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.Name != "v3" {
		t.Errorf("expected latest model v3, got %q", latest.Name)
	}

	models, err := repo.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(models) != 3 {
		t.Fatalf("expected 3 models, got %d", len(models))
	}
	if models[0].Name != "v3" {
		t.Errorf("expected newest first, got %q", models[0].Name)
	}

	// List omits blobs
	if models[0].ScalerBlob != nil || models[0].TreeBlob != nil {
		t.Error("List should not load blobs")
	}
}

func TestModels_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Models()

	m := &Model{Name: "v1", ScalerBlob: []byte{1}, TreeBlob: []byte{2}}
	if err := repo.Create(m); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.Delete(m.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
