// Package dataset loads and splits labeled hand-landmark corpora for
// training the signid classifier.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Endy3032/signid/internal/knn"
	"github.com/Endy3032/signid/internal/landmark"
)

// Letters is the recognized fingerspelling alphabet: the ASL letters
// with a static handshape (J and Z are motion letters) plus '#' for
// "no sign".
const Letters = "ABCDEFGHIKLMNOPQRSTUVWXY#"

// Header returns the expected CSV column layout:
// letter, hand, then x, y, z per landmark in index order.
func Header() []string {
	cols := []string{"letter", "hand"}
	for i := 0; i < landmark.NumLandmarks; i++ {
		cols = append(cols, fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i), fmt.Sprintf("z%d", i))
	}
	return cols
}

// ValidLabel reports whether b is part of the recognized alphabet.
func ValidLabel(b byte) bool {
	return strings.IndexByte(Letters, b) >= 0
}

// Load reads a labeled corpus in the CSV layout produced by the
// recording tooling and returns samples in the engine's feature vector
// layout (coordinates first, handedness last).
func Load(r io.Reader) ([]knn.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2 + landmark.NumLandmarks*3

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, want := range Header() {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i, header[i], want)
		}
	}

	var samples []knn.Sample
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		sample, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

// LoadFile opens and loads a CSV corpus from disk.
func LoadFile(path string) ([]knn.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return Load(f)
}

func parseRecord(record []string) (knn.Sample, error) {
	if len(record[0]) != 1 || !ValidLabel(record[0][0]) {
		return knn.Sample{}, fmt.Errorf("invalid letter %q", record[0])
	}
	label := record[0][0]

	hand, err := strconv.Atoi(record[1])
	if err != nil || (hand != 0 && hand != 1) {
		return knn.Sample{}, fmt.Errorf("invalid hand value %q", record[1])
	}

	vec := make([]float32, landmark.FeatureDim)
	for i, field := range record[2:] {
		v, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return knn.Sample{}, fmt.Errorf("invalid coordinate %q: %w", field, err)
		}
		vec[i] = float32(v)
	}
	vec[landmark.HandednessIndex] = float32(hand)

	return knn.Sample{Vector: vec, Label: label}, nil
}

// Split partitions samples into train and test sets, stratified by
// label: each label's samples are shuffled with the seeded source and
// the first trainFrac share goes to the train set. Both outputs are
// shuffled as a whole afterwards.
func Split(samples []knn.Sample, trainFrac float64, seed int64) (train, test []knn.Sample) {
	byLabel := make(map[byte][]knn.Sample)
	var labels []byte
	for _, s := range samples {
		if _, ok := byLabel[s.Label]; !ok {
			labels = append(labels, s.Label)
		}
		byLabel[s.Label] = append(byLabel[s.Label], s)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	rng := rand.New(rand.NewSource(seed))
	for _, label := range labels {
		group := byLabel[label]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		cut := int(float64(len(group)) * trainFrac)
		train = append(train, group[:cut]...)
		test = append(test, group[cut:]...)
	}

	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })

	return train, test
}
