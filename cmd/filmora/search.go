package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mmcdole/filmora/internal/domain"
	"github.com/mmcdole/filmora/internal/search"
	"github.com/spf13/cobra"
)

func newSearchCmd(e *env) *cobra.Command {
	var pages int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search movies by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.catalog()
			if err != nil {
				return err
			}
			st, err := e.store()
			if err != nil {
				return err
			}

			svc := search.NewService(client, st, e.logger)
			res, err := svc.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			for i := 1; i < pages && res.HasMore(); i++ {
				if res, err = svc.LoadMore(cmd.Context()); err != nil {
					return fmt.Errorf("search failed: %w", err)
				}
			}

			printMovies(cmd.OutOrStdout(), res.Movies)
			if res.HasMore() {
				fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d\n", res.Page, res.TotalPages)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of result pages to fetch")
	return cmd
}

func printMovies(out io.Writer, movies []domain.Movie) {
	if len(movies) == 0 {
		fmt.Fprintln(out, "No results")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tYEAR\tRATING")
	for _, m := range movies {
		year := "-"
		if y := m.Year(); y > 0 {
			year = strconv.Itoa(y)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, m.Title, year, m.Rating())
	}
	w.Flush()
}
