package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	pkgcatalog "github.com/lupertojoele-max/cbk-sub000/pkg/catalog"
	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the configured catalog as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.catalogSource().Entries()
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), output, format, products)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Convert a CSV spreadsheet into a catalog document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			products, warnings, err := pkgcatalog.ReadCSV(f)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Error())
			}
			return writeDocument(cmd.OutOrStdout(), output, "json", products)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output document (default stdout)")
	return cmd
}

// writeDocument encodes products to path, or to stdout when path is empty.
func writeDocument(stdout io.Writer, path, format string, products []models.Product) error {
	var encode func(io.Writer, []models.Product) error
	switch format {
	case "csv":
		encode = pkgcatalog.WriteCSV
	case "json":
		encode = pkgcatalog.Encode
	default:
		return fmt.Errorf("unknown format %q (want csv or json)", format)
	}

	if path == "" {
		return encode(stdout, products)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := encode(f, products); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
