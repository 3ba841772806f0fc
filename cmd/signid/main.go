// signid trains and serves a fingerspelling classifier over hand
// landmark feature vectors.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "signid",
	Short: "Fingerspelling recognition from hand landmarks",
	Long: `signid trains a k-nearest-neighbor classifier over hand landmark
feature vectors and predicts fingerspelled letters, either one-shot
from the command line or as an HTTP service.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
