package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/medkadi/boutik-scrap/config"
	"github.com/medkadi/boutik-scrap/internal/httputil"
	"github.com/medkadi/boutik-scrap/internal/stealth"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "boutik",
	Short: "Boutik Scrap - storefront scraping and catalog import CLI",
	Long:  "A Go-based pipeline that crawls a source storefront with a headless browser and imports the extracted products into the shop catalog.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("source-site", "", "Source site label used for provenance keys")
	rootCmd.PersistentFlags().Bool("respect-robots", true, "Respect robots.txt rules")
	rootCmd.PersistentFlags().Duration("min-delay", 0, "Minimum delay between requests to the source site")
	rootCmd.PersistentFlags().Int("retry-attempts", 0, "Attempts per network operation")
	rootCmd.PersistentFlags().String("export-dir", "", "Directory for crawl exports")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("source-site"); v != "" {
		cfg.SourceSite = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("respect-robots"); !v {
		cfg.RespectRobots = false
	}
	if v, _ := rootCmd.PersistentFlags().GetDuration("min-delay"); v > 0 {
		cfg.MinDelay = v
	}
	if v, _ := rootCmd.PersistentFlags().GetInt("retry-attempts"); v > 0 {
		cfg.RetryAttempts = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("export-dir"); v != "" {
		cfg.ExportDir = v
	}
}

// buildHTTPClient creates the throttled HTTP client used for direct fetches
// (images, robots.txt) from config.
func buildHTTPClient() *http.Client {
	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)

	baseTransport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}

	robots := stealth.NewRobotsChecker(&http.Client{}, cfg.RespectRobots)

	transport := &stealth.ThrottledTransport{
		Base:        baseTransport,
		UserAgent:   httputil.CrawlerUserAgent,
		Headers:     httputil.BrowserHeaders(),
		Robots:      robots,
		RateLimiter: limiter,
	}
	return httputil.NewClient(transport)
}
