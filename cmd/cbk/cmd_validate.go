package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pkgcatalog "github.com/lupertojoele-max/cbk-sub000/pkg/catalog"
	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

func newValidateCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [catalog-file]",
		Short: "Check a catalog document and the rule table",
		Long: `Validate loads the rule table and a catalog document (JSON or CSV) and
reports every issue found. Fatal issues (duplicate ids or slugs, unknown
categories) always fail; warnings fail only with --strict.

Without an argument the configured catalog is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			rules, err := a.rules()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "rules: %d pages OK\n", len(rules.Pages()))

			var (
				products []models.Product
				warnings []pkgcatalog.Issue
			)
			if len(args) == 1 {
				products, warnings, err = readDocument(args[0])
			} else {
				src := a.catalogSource()
				products, err = src.Entries()
				warnings = src.Warnings()
			}
			if err != nil {
				return err
			}

			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %s\n", w.Error())
			}
			fmt.Fprintf(out, "catalog: %d products, %d warnings\n", len(products), len(warnings))
			if strict && len(warnings) > 0 {
				return fmt.Errorf("%d warnings in strict mode", len(warnings))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

// readDocument decodes a catalog file, choosing the codec by extension.
func readDocument(path string) ([]models.Product, []pkgcatalog.Issue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return pkgcatalog.ReadCSV(f)
	}
	return pkgcatalog.Decode(f)
}
