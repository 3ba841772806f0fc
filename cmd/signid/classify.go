package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Endy3032/signid/internal/classify"
	"github.com/Endy3032/signid/internal/dataset"
	"github.com/Endy3032/signid/internal/landmark"
	"github.com/Endy3032/signid/internal/store"
	"github.com/spf13/cobra"
)

var (
	classifyDB     string
	classifyModel  string
	classifyCSV    string
	classifyVector string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Predict letters with a stored model",
	Long: `Classify loads a trained model and predicts letters either for a
single comma-separated 64-float vector or for every row of a labeled
CSV corpus, reporting accuracy for the latter.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&classifyDB, "db", "signid.db", "path to the model database")
	classifyCmd.Flags().StringVar(&classifyModel, "model", "", "model name or id (default: latest)")
	classifyCmd.Flags().StringVar(&classifyCSV, "csv", "", "labeled corpus to classify")
	classifyCmd.Flags().StringVar(&classifyVector, "vector", "", "single comma-separated 64-float vector")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	if (classifyCSV == "") == (classifyVector == "") {
		return errors.New("exactly one of --csv and --vector is required")
	}

	st, err := store.New(classifyDB)
	if err != nil {
		return err
	}
	defer st.Close()

	model, err := resolveModel(st, classifyModel)
	if err != nil {
		return err
	}

	classifier, err := classify.Load(model.TreeBlob, model.ScalerBlob)
	if err != nil {
		return fmt.Errorf("failed to load model %s: %w", model.Name, err)
	}

	if classifyVector != "" {
		vec, err := parseVector(classifyVector)
		if err != nil {
			return err
		}
		letter, err := classifier.Predict(vec)
		if err != nil {
			return err
		}
		fmt.Printf("%c\n", letter)
		return nil
	}

	samples, err := dataset.LoadFile(classifyCSV)
	if err != nil {
		return err
	}

	correct := 0
	for _, s := range samples {
		letter, err := classifier.Predict(s.Vector)
		if err != nil {
			return err
		}
		if letter == s.Label {
			correct++
		}
		fmt.Printf("%c\t%c\n", s.Label, letter)
	}
	fmt.Printf("Accuracy: %.2f%% (%d/%d)\n", float64(correct)/float64(len(samples))*100, correct, len(samples))

	return nil
}

// resolveModel finds a model by name, then by id, falling back to the
// most recent model when no selector is given.
func resolveModel(st *store.Store, selector string) (*store.Model, error) {
	if selector == "" {
		return st.Models().Latest()
	}

	model, err := st.Models().GetByName(selector)
	if errors.Is(err, store.ErrNotFound) {
		return st.Models().GetByID(selector)
	}
	return model, err
}

// parseVector parses a comma-separated 64-float feature vector.
func parseVector(s string) ([]float32, error) {
	fields := strings.Split(s, ",")
	if len(fields) != landmark.FeatureDim {
		return nil, landmark.ErrDimensionMismatch
	}

	vec := make([]float32, landmark.FeatureDim)
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid component %d: %w", i, err)
		}
		vec[i] = float32(v)
	}
	return vec, nil
}
