// Package classify composes the scaler, the KD-tree index and their
// binary codecs into the signid training and prediction boundary.
package classify

import (
	"fmt"

	"github.com/Endy3032/signid/internal/knn"
	"github.com/Endy3032/signid/internal/scale"
)

// Model holds the two persisted artifacts of a trained classifier: the
// scaler parameter blob and the tree blob. Both use the engine's flat
// little-endian formats with no versioning; format changes are breaking.
type Model struct {
	ScalerBlob []byte
	TreeBlob   []byte
}

// Classifier predicts fingerspelled letters from raw hand-landmark
// feature vectors. It is immutable after construction and safe for
// concurrent use.
type Classifier struct {
	scaler *scale.RobustScaler
	tree   *knn.Tree
}

// Train fits a robust scaler on the raw training vectors, builds a
// KD-tree over the scaled vectors and returns the resulting classifier.
func Train(samples []knn.Sample) (*Classifier, error) {
	if len(samples) == 0 {
		return nil, knn.ErrEmptyDataset
	}

	raw := make([][]float32, len(samples))
	for i, s := range samples {
		raw[i] = s.Vector
	}

	scaler := scale.NewRobustScaler()
	scaled, err := scaler.FitTransform(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to fit scaler: %w", err)
	}

	indexed := make([]knn.Sample, len(samples))
	for i, s := range samples {
		indexed[i] = knn.Sample{Vector: scaled[i], Label: s.Label}
	}

	tree, err := knn.Build(indexed)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	return &Classifier{scaler: scaler, tree: tree}, nil
}

// Load reconstructs a classifier from its persisted blobs.
func Load(treeBlob, scalerBlob []byte) (*Classifier, error) {
	scaler := scale.NewRobustScaler()
	if err := scaler.UnmarshalBinary(scalerBlob); err != nil {
		return nil, fmt.Errorf("failed to decode scaler: %w", err)
	}

	tree, err := knn.UnmarshalTree(treeBlob)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}

	return &Classifier{scaler: scaler, tree: tree}, nil
}

// Encode serializes the classifier into its persistable model blobs.
func (c *Classifier) Encode() (*Model, error) {
	scalerBlob, err := c.scaler.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode scaler: %w", err)
	}

	treeBlob, err := c.tree.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode tree: %w", err)
	}

	return &Model{ScalerBlob: scalerBlob, TreeBlob: treeBlob}, nil
}

// Predict scales the raw feature vector and returns the majority-vote
// letter among its nearest neighbors, using the engine defaults for k
// and the handedness weight.
func (c *Classifier) Predict(raw []float32) (byte, error) {
	return c.PredictK(raw, knn.DefaultK, knn.DefaultHandednessWeight)
}

// PredictK is Predict with explicit query parameters.
func (c *Classifier) PredictK(raw []float32, k int, handednessWeight float64) (byte, error) {
	scaled, err := c.scaler.TransformVector(raw)
	if err != nil {
		return 0, err
	}
	return c.tree.Query(scaled, k, handednessWeight)
}

// Accuracy predicts every sample and returns the fraction of correct
// labels. Useful for evaluating a model against a held-out split.
func (c *Classifier) Accuracy(samples []knn.Sample) (float64, error) {
	if len(samples) == 0 {
		return 0, knn.ErrEmptyDataset
	}

	correct := 0
	for _, s := range samples {
		label, err := c.Predict(s.Vector)
		if err != nil {
			return 0, err
		}
		if label == s.Label {
			correct++
		}
	}

	return float64(correct) / float64(len(samples)), nil
}

// BuildIndex trains on the raw samples and returns the persisted model
// blobs in one step.
func BuildIndex(samples []knn.Sample) (*Model, error) {
	c, err := Train(samples)
	if err != nil {
		return nil, err
	}
	return c.Encode()
}

// Classify decodes both blobs, scales the raw vector and returns the
// predicted letter in one step. Callers issuing repeated predictions
// should Load once and reuse the classifier instead.
func Classify(treeBlob, scalerBlob []byte, raw []float32) (byte, error) {
	c, err := Load(treeBlob, scalerBlob)
	if err != nil {
		return 0, err
	}
	return c.Predict(raw)
}
