package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/terra-clan/portfolio/internal/catalog"
	"github.com/terra-clan/portfolio/internal/models"
	"github.com/terra-clan/portfolio/internal/render"
	"github.com/terra-clan/portfolio/internal/showcase"
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	metaColor  = color.New(color.FgYellow)
	emptyColor = color.New(color.FgRed)
)

func newProjectsCmd() *cobra.Command {
	var (
		catalogFile string
		category    string
		complexity  string
		technology  string
		sortKey     string
	)

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List catalog projects with the same filters as the site",
		Example: `  portfolio projects --category academic --sort date
  portfolio projects --technology python`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := catalog.Load(catalogFile)
			if err != nil {
				return err
			}
			pipeline := showcase.NewPipeline(projects)

			st := showcase.DefaultState()
			for dim, value := range map[models.Dimension]string{
				models.DimensionCategory:   category,
				models.DimensionComplexity: complexity,
				models.DimensionTechnology: strings.ToLower(technology),
			} {
				if st, err = pipeline.Select(st, dim, value); err != nil {
					return err
				}
			}
			if st, err = pipeline.WithSort(st, sortKey); err != nil {
				return err
			}

			_, err = showcase.NewDispatcher(pipeline, st, terminalSink(cmd.OutOrStdout())).Load()
			return err
		},
	}

	cmd.Flags().StringVar(&catalogFile, "catalog", "", "catalog YAML file or directory (built-in catalog when empty)")
	cmd.Flags().StringVar(&category, "category", models.FilterAll, "category filter")
	cmd.Flags().StringVar(&complexity, "complexity", models.FilterAll, "complexity filter")
	cmd.Flags().StringVar(&technology, "technology", models.FilterAll, "technology filter")
	cmd.Flags().StringVar(&sortKey, "sort", string(models.SortDefault), "sort key: default, name, date or complexity")

	return cmd
}

func init() {
	rootCmd.AddCommand(newProjectsCmd())
}

// terminalSink prints a view as a colored list
func terminalSink(w io.Writer) showcase.Sink {
	return showcase.SinkFunc(func(view showcase.View) error {
		if view.Empty {
			_, err := emptyColor.Fprintln(w, render.EmptyMessage)
			return err
		}
		for _, p := range view.Projects {
			titleColor.Fprintf(w, "%d. %s\n", p.ID, p.Title)
			metaColor.Fprintf(w, "   %s | %s | %s\n", p.Category, p.Complexity, p.Date)
			fmt.Fprintf(w, "   %s\n", strings.Join(p.Technologies, ", "))
		}
		fmt.Fprintf(w, "%d project(s)\n", view.Total)
		return nil
	})
}
