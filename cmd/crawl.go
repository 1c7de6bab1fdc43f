package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medkadi/boutik-scrap/internal/crawler"
	"github.com/medkadi/boutik-scrap/internal/httputil"
	"github.com/medkadi/boutik-scrap/internal/stealth"
	"github.com/medkadi/boutik-scrap/internal/ui"
	"github.com/medkadi/boutik-scrap/pkg/logger"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [root-url]",
	Short: "Crawl a storefront and export discovered products",
	Long:  "Opens a headless browser on the given root page, follows product-looking links, extracts name/price/description/categories heuristically, downloads images and writes products.json and products.csv.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCrawl,
}

func init() {
	crawlCmd.Flags().Bool("dry-run", false, "Extract without downloading images or writing exports")
	crawlCmd.Flags().Int("max-description-lines", 0, "Cap on description lines kept per product")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	rootURL := cfg.SourceRootURL
	if len(args) > 0 {
		rootURL = args[0]
	}
	if rootURL == "" {
		return fmt.Errorf("no root URL: pass it as an argument or set BOUTIK_ROOT_URL")
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	maxLines, _ := cmd.Flags().GetInt("max-description-lines")

	log := logger.Named("crawl")
	pacer := stealth.NewPacer(cfg.MinDelay, cfg.MinDelay/2)

	c := crawler.New(crawler.Config{
		RootURL:             rootURL,
		SourceSite:          cfg.SourceSite,
		UserAgent:           httputil.CrawlerUserAgent,
		NavTimeout:          cfg.NavTimeout,
		Attempts:            cfg.RetryAttempts,
		BaseDelay:           cfg.RetryBase,
		MaxDescriptionLines: maxLines,
		ExportDir:           cfg.ExportDir,
		DryRun:              dryRun,
	}, pacer, buildHTTPClient(), nil, log)

	spin := ui.NewSpinner()
	spin.Start("Crawling " + rootURL + "...")
	c.Progress = spin.Update

	res, err := c.Run(context.Background())
	spin.Stop()
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	log.Info("crawl finished",
		zap.Int("candidates", res.Candidates),
		zap.Int("products", len(res.Products)),
		zap.Int("skipped", res.Skipped))
	if !dryRun {
		fmt.Fprintf(os.Stderr, "Exported %d products to %s and %s\n", len(res.Products), res.JSONPath, res.CSVPath)
	}
	return nil
}
