// Package scale provides robust feature scaling (median/IQR normalization)
// for the signid classification engine.
package scale

import (
	"errors"
	"math"
	"slices"

	"github.com/Endy3032/signid/internal/landmark"
)

// ErrEmptyInput is returned when Fit is called with no rows.
var ErrEmptyInput = errors.New("cannot fit scaler on empty input")

// ErrNotFitted is returned when Transform is called before Fit.
var ErrNotFitted = errors.New("scaler has not been fitted")

// RobustScaler normalizes feature vectors per dimension using the median
// and interquartile range, which keeps outlier landmarks from dominating
// the scale. Parameters are set once by Fit and read-only afterwards.
type RobustScaler struct {
	medians []float32
	iqrs    []float32
}

// NewRobustScaler creates an unfitted RobustScaler.
func NewRobustScaler() *RobustScaler {
	return &RobustScaler{}
}

// Fitted reports whether the scaler has parameters.
func (s *RobustScaler) Fitted() bool {
	return s.medians != nil
}

// Fit computes per-dimension medians and interquartile ranges from the
// training matrix. A zero IQR is stored as 1 so Transform never divides
// by zero. Returns ErrEmptyInput for an empty matrix and
// landmark.ErrDimensionMismatch if any row is not FeatureDim long.
func (s *RobustScaler) Fit(data [][]float32) error {
	if len(data) == 0 {
		return ErrEmptyInput
	}
	for _, row := range data {
		if len(row) != landmark.FeatureDim {
			return landmark.ErrDimensionMismatch
		}
	}

	medians := make([]float32, landmark.FeatureDim)
	iqrs := make([]float32, landmark.FeatureDim)
	col := make([]float32, len(data))

	for j := 0; j < landmark.FeatureDim; j++ {
		for i, row := range data {
			col[i] = row[j]
		}
		slices.Sort(col)

		medians[j] = median(col)

		iqr := quantile(col, 0.75) - quantile(col, 0.25)
		if iqr == 0 {
			iqr = 1
		}
		iqrs[j] = iqr
	}

	s.medians = medians
	s.iqrs = iqrs
	return nil
}

// Transform normalizes each row as (x - median) / iqr. The input is not
// modified. Returns ErrNotFitted before Fit and
// landmark.ErrDimensionMismatch if any row is not FeatureDim long.
func (s *RobustScaler) Transform(data [][]float32) ([][]float32, error) {
	if !s.Fitted() {
		return nil, ErrNotFitted
	}

	out := make([][]float32, len(data))
	for i, row := range data {
		scaled, err := s.TransformVector(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}

// TransformVector normalizes a single vector.
func (s *RobustScaler) TransformVector(vec []float32) ([]float32, error) {
	if !s.Fitted() {
		return nil, ErrNotFitted
	}
	if len(vec) != len(s.medians) {
		return nil, landmark.ErrDimensionMismatch
	}

	out := make([]float32, len(vec))
	for j, x := range vec {
		out[j] = (x - s.medians[j]) / s.iqrs[j]
	}
	return out, nil
}

// FitTransform fits the scaler on the data and returns the transformed
// data using the just-computed parameters.
func (s *RobustScaler) FitTransform(data [][]float32) ([][]float32, error) {
	if err := s.Fit(data); err != nil {
		return nil, err
	}
	return s.Transform(data)
}

// median returns the median of a sorted column, averaging the two middle
// elements for even lengths.
func median(sorted []float32) float32 {
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// quantile returns the linearly interpolated q-th quantile of a sorted
// column, using position (n-1)*q.
func quantile(sorted []float32, q float64) float32 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	pos := float64(n-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}

	frac := float32(pos - float64(lo))
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
