package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lupertojoele-max/cbk-sub000/internal/scraper"
)

func newScrapeCmd(a *app) *cobra.Command {
	var (
		output   string
		imageDir string
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Populate a catalog document from the configured source shop",
		Long: `Scrape walks the listing URLs configured under scraper.categories, reads
every product detail page and writes a catalog document. The document is
rewritten after each category, so an interrupted run still leaves a valid file.

Examples:
  cbk scrape --config cbk.yaml
  cbk scrape --output data/products.json --images data/images`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Scraper
			if output != "" {
				cfg.Output = output
			}
			if imageDir != "" {
				cfg.ImageDir = imageDir
			}
			if len(cfg.Categories) == 0 {
				return fmt.Errorf("no listing URLs configured under scraper.categories")
			}

			s, err := scraper.New(cfg, a.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			stats, err := s.Run(ctx)
			if err != nil && ctx.Err() == nil {
				return err
			}
			a.logger.Info("scrape finished",
				zap.String("output", cfg.Output),
				zap.Int("products", stats.Products),
				zap.Int("skipped", stats.Skipped),
				zap.Int("images", stats.Images),
				zap.Bool("interrupted", ctx.Err() != nil),
			)
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog written: %s (%d products, %d skipped)\n", cfg.Output, stats.Products, stats.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output document (overrides scraper.output)")
	cmd.Flags().StringVar(&imageDir, "images", "", "download product images into this directory")
	return cmd
}
