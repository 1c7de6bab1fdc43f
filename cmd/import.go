package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medkadi/boutik-scrap/internal/catalog"
	"github.com/medkadi/boutik-scrap/internal/importer"
	"github.com/medkadi/boutik-scrap/internal/storage"
	"github.com/medkadi/boutik-scrap/pkg/logger"
)

var importCmd = &cobra.Command{
	Use:   "import [products.json]",
	Short: "Import a crawl export into the catalog",
	Long:  "Reads a JSON array of product records (a crawl export or any compatible payload), validates and deduplicates them, mirrors their images into local storage and inserts the survivors into the catalog database.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().Bool("dry-run", false, "Validate and count without writing anything")
	importCmd.Flags().Bool("skip-existing", true, "Skip records whose source key or URL is already in the catalog")
	importCmd.Flags().Bool("download-images", true, "Mirror remote images into local storage")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse %s: expected a JSON array of product objects: %w", args[0], err)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	skipExisting, _ := cmd.Flags().GetBool("skip-existing")
	downloadImages, _ := cmd.Flags().GetBool("download-images")

	if cfg.DatabaseDSN == "" {
		return fmt.Errorf("no database configured: set DATABASE_DSN")
	}
	store, err := catalog.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}

	log := logger.Named("import")
	files := storage.NewLocal(cfg.StorageRoot, cfg.PublicBaseURL)
	imp := importer.New(store, files, log)

	sum := imp.Run(context.Background(), records, importer.Options{
		DryRun:         dryRun,
		SkipExisting:   skipExisting,
		DownloadImages: downloadImages,
		SourceSite:     cfg.SourceSite,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}
