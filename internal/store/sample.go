package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Endy3032/signid/internal/knn"
	"github.com/Endy3032/signid/internal/landmark"
)

// SampleRepository provides CRUD operations for training samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Create inserts a single sample. The vector must be in the engine's
// 64-float layout.
func (r *SampleRepository) Create(label byte, vector []float32) (int64, error) {
	if len(vector) != landmark.FeatureDim {
		return 0, landmark.ErrDimensionMismatch
	}

	coords, handedness, err := encodeVector(vector)
	if err != nil {
		return 0, err
	}

	result, err := r.db.Exec(
		`INSERT INTO samples (label, handedness, landmarks) VALUES (?, ?, ?)`,
		string(label), handedness, coords,
	)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// CreateBatch inserts multiple samples in a single transaction.
func (r *SampleRepository) CreateBatch(samples []knn.Sample) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO samples (label, handedness, landmarks) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range samples {
		if len(s.Vector) != landmark.FeatureDim {
			return fmt.Errorf("sample %d: %w", i, landmark.ErrDimensionMismatch)
		}
		coords, handedness, err := encodeVector(s.Vector)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		if _, err := stmt.Exec(string(s.Label), handedness, coords); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// List retrieves all samples as engine-ready labeled vectors.
func (r *SampleRepository) List() ([]knn.Sample, error) {
	rows, err := r.db.Query(`SELECT label, handedness, landmarks FROM samples ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []knn.Sample
	for rows.Next() {
		var label string
		var handedness int
		var coords string

		if err := rows.Scan(&label, &handedness, &coords); err != nil {
			return nil, err
		}

		vector, err := decodeVector(coords, handedness)
		if err != nil {
			return nil, err
		}
		samples = append(samples, knn.Sample{Vector: vector, Label: label[0]})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// CountByLabel returns the number of stored samples per label.
func (r *SampleRepository) CountByLabel() (map[byte]int, error) {
	rows, err := r.db.Query(`SELECT label, COUNT(*) FROM samples GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[byte]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label[0]] = n
	}

	return counts, rows.Err()
}

// DeleteByLabel removes all samples for the given label and returns the
// number deleted.
func (r *SampleRepository) DeleteByLabel(label byte) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM samples WHERE label = ?`, string(label))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// encodeVector splits an engine vector into its JSON coordinate array
// and handedness column values.
func encodeVector(vector []float32) (string, int, error) {
	coords, err := json.Marshal(vector[:landmark.HandednessIndex])
	if err != nil {
		return "", 0, err
	}

	handedness := 0
	if vector[landmark.HandednessIndex] != 0 {
		handedness = 1
	}

	return string(coords), handedness, nil
}

// decodeVector rebuilds an engine vector from its column values.
func decodeVector(coords string, handedness int) ([]float32, error) {
	var parsed []float32
	if err := json.Unmarshal([]byte(coords), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse landmarks: %w", err)
	}
	if len(parsed) != landmark.HandednessIndex {
		return nil, landmark.ErrDimensionMismatch
	}

	vector := make([]float32, landmark.FeatureDim)
	copy(vector, parsed)
	vector[landmark.HandednessIndex] = float32(handedness)
	return vector, nil
}
