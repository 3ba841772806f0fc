package classify

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/Endy3032/signid/internal/knn"
	"github.com/Endy3032/signid/internal/landmark"
	"github.com/Endy3032/signid/internal/scale"
)

// clusteredSamples generates per-letter clusters of vectors: each letter
// gets a well-separated center and n noisy samples around it.
func clusteredSamples(letters string, perLetter int, noise float32, seed int64) []knn.Sample {
	rng := rand.New(rand.NewSource(seed))
	var samples []knn.Sample

	for li, letter := range letters {
		for s := 0; s < perLetter; s++ {
			vec := make([]float32, landmark.FeatureDim)
			for j := range vec {
				vec[j] = float32(li)*10 + rng.Float32()*noise
			}
			vec[landmark.HandednessIndex] = 0
			samples = append(samples, knn.Sample{Vector: vec, Label: byte(letter)})
		}
	}

	return samples
}

func TestTrainPredict_RecoversClusters(t *testing.T) {
	train := clusteredSamples("ABCDE", 10, 0.5, 1)
	held := clusteredSamples("ABCDE", 4, 0.5, 2)

	c, err := Train(train)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	for i, s := range held {
		label, err := c.Predict(s.Vector)
		if err != nil {
			t.Fatalf("sample %d: Predict failed: %v", i, err)
		}
		if label != s.Label {
			t.Errorf("sample %d: expected %q, got %q", i, s.Label, label)
		}
	}

	acc, err := c.Accuracy(held)
	if err != nil {
		t.Fatalf("Accuracy failed: %v", err)
	}
	if acc != 1 {
		t.Errorf("expected perfect accuracy on well-separated clusters, got %f", acc)
	}
}

func TestTrain_Empty(t *testing.T) {
	if _, err := Train(nil); !errors.Is(err, knn.ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestEncodeLoad_RoundTrip(t *testing.T) {
	train := clusteredSamples("ABCDEFG", 8, 0.3, 5)

	c, err := Train(train)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	model, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	loaded, err := Load(model.TreeBlob, model.ScalerBlob)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// The loaded classifier must agree with the original on held-out queries
	held := clusteredSamples("ABCDEFG", 3, 0.3, 6)
	for i, s := range held {
		want, err := c.Predict(s.Vector)
		if err != nil {
			t.Fatalf("sample %d: original Predict failed: %v", i, err)
		}
		got, err := loaded.Predict(s.Vector)
		if err != nil {
			t.Fatalf("sample %d: loaded Predict failed: %v", i, err)
		}
		if got != want {
			t.Errorf("sample %d: loaded classifier returned %q, original %q", i, got, want)
		}
	}
}

func TestBuildIndexClassify_OneShot(t *testing.T) {
	train := clusteredSamples("XY", 6, 0.2, 9)

	model, err := BuildIndex(train)
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}

	label, err := Classify(model.TreeBlob, model.ScalerBlob, train[0].Vector)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if label != train[0].Label {
		t.Errorf("expected %q, got %q", train[0].Label, label)
	}
}

func TestLoad_CorruptBlobs(t *testing.T) {
	model, err := BuildIndex(clusteredSamples("AB", 3, 0.2, 13))
	if err != nil {
		t.Fatalf("BuildIndex failed: %v", err)
	}

	if _, err := Load(model.TreeBlob, []byte{1, 2, 3}); !errors.Is(err, scale.ErrCorruptBuffer) {
		t.Errorf("expected scaler ErrCorruptBuffer, got %v", err)
	}
	if _, err := Load([]byte{0xff}, model.ScalerBlob); !errors.Is(err, knn.ErrCorruptBuffer) {
		t.Errorf("expected tree ErrCorruptBuffer, got %v", err)
	}
}

func TestPredict_DimensionMismatch(t *testing.T) {
	c, err := Train(clusteredSamples("AB", 3, 0.2, 17))
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	if _, err := c.Predict(make([]float32, 7)); !errors.Is(err, landmark.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
