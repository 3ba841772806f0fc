package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/Endy3032/signid/internal/server"
	"github.com/Endy3032/signid/internal/store"
	"github.com/spf13/cobra"
)

var (
	serveDB     string
	serveAddr   string
	serveStatic string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the classification API",
	Long: `Serve starts the HTTP server with the sample recording, training and
classification endpoints, activating the most recent stored model if
one exists.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveDB, "db", "signid.db", "path to the model database")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveStatic, "static", "", "directory of static files to serve")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	st, err := store.New(serveDB)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(server.Config{
		StaticDir: serveStatic,
		Store:     st,
	})

	// Activate the newest model if any has been trained
	model, err := st.Models().Latest()
	switch {
	case err == nil:
		if err := srv.Activate(model); err != nil {
			return fmt.Errorf("failed to activate model %s: %w", model.Name, err)
		}
		log.Printf("Serving model %s (%s)", model.Name, model.ID)
	case errors.Is(err, store.ErrNotFound):
		log.Println("No trained model yet; classification requests will fail until one is trained")
	default:
		return err
	}

	log.Printf("Starting server on %s", serveAddr)
	return srv.ListenAndServe(serveAddr)
}
