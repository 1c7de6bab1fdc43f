package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/medkadi/boutik-scrap/internal/catalog"
	"github.com/medkadi/boutik-scrap/internal/importer"
	"github.com/medkadi/boutik-scrap/internal/server"
	"github.com/medkadi/boutik-scrap/internal/storage"
	"github.com/medkadi/boutik-scrap/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the import HTTP API",
	Long:  "Serves POST /api/products/import so a back office can push product batches over HTTP.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	if cfg.DatabaseDSN == "" {
		return fmt.Errorf("no database configured: set DATABASE_DSN")
	}
	store, err := catalog.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}

	log := logger.Named("serve")
	files := storage.NewLocal(cfg.StorageRoot, cfg.PublicBaseURL)
	srv := server.New(importer.New(store, files, log), log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("port", port))
		if err := srv.Start(":" + port); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
