package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/lupertojoele-max/cbk-sub000/internal/catalog"
	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

func newQueryCmd(a *app) *cobra.Command {
	var (
		q        catalog.Query
		category string
		sortKey  string
		sections bool
		facets   bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a catalog query and print the result as JSON",
		Long: `Query runs the same filter pipeline as the HTTP API against the configured
catalog and prints the JSON response.

Examples:
  cbk query --page ricambi-telaio --sub crg --sort name
  cbk query --page motore --sub tutti --sections
  cbk query --category abbigliamento --search casco -n 2
  cbk query --facets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, _, err := a.engine(nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if facets {
				f, err := engine.Facets()
				if err != nil {
					return err
				}
				return printJSON(out, f)
			}

			if category != "" {
				if q.Category, err = models.ParseCategory(category); err != nil {
					return err
				}
			}
			if q.Sort, err = catalog.ParseSortKey(sortKey); err != nil {
				return err
			}

			if sections {
				res, err := engine.Sections(q)
				if err != nil {
					return err
				}
				return printJSON(out, catalog.NewSectionsResponse(res))
			}
			res, err := engine.Query(q)
			if err != nil {
				return err
			}
			return printJSON(out, catalog.NewListResponse(res))
		},
	}

	cmd.Flags().StringVar(&q.Page, "page", "", "page id (e.g. ricambi-telaio)")
	cmd.Flags().StringVar(&q.Subcategory, "sub", "", "subcategory slug within --page")
	cmd.Flags().StringVar(&category, "category", "", "restrict to one category")
	cmd.Flags().StringVar(&q.Brand, "brand", "", "exact brand")
	cmd.Flags().StringVarP(&q.Search, "search", "q", "", "free-text search")
	cmd.Flags().StringVar(&sortKey, "sort", "featured", "featured, name, price-asc or price-desc")
	cmd.Flags().IntVarP(&q.PageNumber, "number", "n", 1, "1-based result page")
	cmd.Flags().BoolVar(&sections, "sections", false, "group the listing into type sections (needs --page)")
	cmd.Flags().BoolVar(&facets, "facets", false, "print category and brand counts instead of a listing")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
