package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/agroexport/cmd/agroexport/output"
	"github.com/marshallshelly/agroexport/pkg/catalog"
)

var relatedLimit int

// relatedCmd previews related items
var relatedCmd = &cobra.Command{
	Use:   "related",
	Short: "Preview related products or posts",
	Long: `Resolve the items shown next to a product or blog post, exactly as the
public API would: curated relations when any exist, otherwise the newest
visible items of the same category.

Examples:
  agroexport related product 3f0c...        # Default product limit
  agroexport related post 9a1e... --limit 5`,
}

var relatedProductCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Related products for a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelated(cmd.Context(), "product", args[0])
	},
}

var relatedPostCmd = &cobra.Command{
	Use:   "post <id>",
	Short: "Related posts for a blog post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelated(cmd.Context(), "post", args[0])
	},
}

func init() {
	rootCmd.AddCommand(relatedCmd)
	relatedCmd.AddCommand(relatedProductCmd, relatedPostCmd)
	relatedCmd.PersistentFlags().IntVar(&relatedLimit, "limit", -1, "Maximum items (default: the configured limit)")
}

// relatedRow is one line of the related-items table.
type relatedRow struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

func runRelated(ctx context.Context, kind, id string) error {
	s, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	products, posts := resolvers(s)

	var rows []relatedRow
	switch kind {
	case "product":
		limit := relatedLimit
		if limit < 0 {
			limit = products.DefaultLimit()
		}
		items, err := products.ResolveFor(ctx, id, limit)
		if err != nil {
			return err
		}
		rows = productRows(items)
	default:
		limit := relatedLimit
		if limit < 0 {
			limit = posts.DefaultLimit()
		}
		items, err := posts.ResolveFor(ctx, id, limit)
		if err != nil {
			return err
		}
		rows = postRows(items)
	}

	if jsonOutput {
		if rows == nil {
			rows = []relatedRow{}
		}
		return printJSON(rows)
	}
	if len(rows) == 0 {
		output.Info("No related %ss", kind)
		return nil
	}

	output.Section(fmt.Sprintf("Related %ss", kind))
	w := tabwriter.NewWriter(output.Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tID\tTITLE\tSLUG")
	for i, r := range rows {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, r.ID, r.Title, r.Slug)
	}
	return w.Flush()
}

func productRows(items []catalog.Product) []relatedRow {
	rows := make([]relatedRow, 0, len(items))
	for _, p := range items {
		rows = append(rows, relatedRow{ID: p.ID, Title: p.Name, Slug: p.Slug})
	}
	return rows
}

func postRows(items []catalog.BlogPost) []relatedRow {
	rows := make([]relatedRow, 0, len(items))
	for _, p := range items {
		rows = append(rows, relatedRow{ID: p.ID, Title: p.Title, Slug: p.Slug})
	}
	return rows
}
