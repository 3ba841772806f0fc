package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Endy3032/signid/internal/classify"
	"github.com/Endy3032/signid/internal/dataset"
	"github.com/Endy3032/signid/internal/store"
	"github.com/spf13/cobra"
)

var (
	trainCSV  string
	trainDB   string
	trainName string
	trainFrac float64
	trainSeed int64
	trainOut  string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a classifier from a CSV corpus",
	Long: `Train loads a labeled landmark corpus, fits the scaler, builds the
KD-tree index and persists the model blobs. A held-out split of the
corpus is used to report accuracy.`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainCSV, "csv", "", "path to the labeled corpus CSV (required)")
	trainCmd.Flags().StringVar(&trainDB, "db", "signid.db", "path to the model database")
	trainCmd.Flags().StringVar(&trainName, "name", "", "model name (default: derived from the CSV file name)")
	trainCmd.Flags().Float64Var(&trainFrac, "split", 0.8, "training fraction of the corpus")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 42, "shuffle seed for the train/test split")
	trainCmd.Flags().StringVar(&trainOut, "out", "", "also write tree.bin and scaler.bin to this directory")
	trainCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	samples, err := dataset.LoadFile(trainCSV)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d samples from %s\n", len(samples), trainCSV)

	trainSet, testSet := dataset.Split(samples, trainFrac, trainSeed)
	fmt.Printf("Split into %d training and %d test samples\n", len(trainSet), len(testSet))

	classifier, err := classify.Train(trainSet)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	if len(testSet) > 0 {
		acc, err := classifier.Accuracy(testSet)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
		fmt.Printf("Held-out accuracy: %.2f%%\n", acc*100)
	}

	blobs, err := classifier.Encode()
	if err != nil {
		return fmt.Errorf("encoding failed: %w", err)
	}

	name := trainName
	if name == "" {
		name = filepath.Base(trainCSV)
	}

	st, err := store.New(trainDB)
	if err != nil {
		return err
	}
	defer st.Close()

	model := &store.Model{
		Name:        name,
		SampleCount: len(trainSet),
		ScalerBlob:  blobs.ScalerBlob,
		TreeBlob:    blobs.TreeBlob,
	}
	if err := st.Models().Create(model); err != nil {
		return fmt.Errorf("failed to store model: %w", err)
	}
	fmt.Printf("Stored model %s (%s)\n", name, model.ID)

	if trainOut != "" {
		if err := writeBlobs(trainOut, blobs); err != nil {
			return err
		}
		fmt.Printf("Wrote tree.bin and scaler.bin to %s\n", trainOut)
	}

	return nil
}

// writeBlobs dumps the two flat model artifacts to a directory.
func writeBlobs(dir string, blobs *classify.Model) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tree.bin"), blobs.TreeBlob, 0644); err != nil {
		return fmt.Errorf("failed to write tree blob: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scaler.bin"), blobs.ScalerBlob, 0644); err != nil {
		return fmt.Errorf("failed to write scaler blob: %w", err)
	}
	return nil
}
