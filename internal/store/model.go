package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Model represents a trained classifier stored in the database: the two
// binary artifacts plus bookkeeping about how it was produced.
type Model struct {
	ID          string
	Name        string
	SampleCount int
	ScalerBlob  []byte
	TreeBlob    []byte
	CreatedAt   time.Time
}

// ModelRepository provides CRUD operations for trained models.
type ModelRepository struct {
	db *sql.DB
}

// Models returns the model repository for this store.
func (s *Store) Models() *ModelRepository {
	return &ModelRepository{db: s.db}
}

// Create inserts a new model. A missing ID is filled with a fresh UUID.
func (r *ModelRepository) Create(m *Model) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO models (id, name, sample_count, scaler, tree, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.SampleCount, m.ScalerBlob, m.TreeBlob, m.CreatedAt,
	)
	return err
}

// GetByID retrieves a model by its ID.
func (r *ModelRepository) GetByID(id string) (*Model, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, sample_count, scaler, tree, created_at
		 FROM models WHERE id = ?`, id,
	))
}

// GetByName retrieves a model by its name.
func (r *ModelRepository) GetByName(name string) (*Model, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, sample_count, scaler, tree, created_at
		 FROM models WHERE name = ?`, name,
	))
}

// Latest retrieves the most recently created model.
func (r *ModelRepository) Latest() (*Model, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, sample_count, scaler, tree, created_at
		 FROM models ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	))
}

// List retrieves all models, newest first, without their blobs.
func (r *ModelRepository) List() ([]*Model, error) {
	rows, err := r.db.Query(
		`SELECT id, name, sample_count, created_at
		 FROM models ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []*Model
	for rows.Next() {
		m := &Model{}
		if err := rows.Scan(&m.ID, &m.Name, &m.SampleCount, &m.CreatedAt); err != nil {
			return nil, err
		}
		models = append(models, m)
	}

	return models, rows.Err()
}

// Delete removes a model by its ID.
func (r *ModelRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM models WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *ModelRepository) scanOne(row *sql.Row) (*Model, error) {
	m := &Model{}
	err := row.Scan(&m.ID, &m.Name, &m.SampleCount, &m.ScalerBlob, &m.TreeBlob, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}
