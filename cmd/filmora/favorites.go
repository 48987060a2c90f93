package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mmcdole/filmora/internal/domain"
	"github.com/mmcdole/filmora/internal/favorites"
	"github.com/spf13/cobra"
)

func newFavoritesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"favs"},
		Short:   "Inspect the local favorites list",
	}

	var filter string
	list := &cobra.Command{
		Use:   "list",
		Short: "Print stored favorites, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := e.store()
			if err != nil {
				return err
			}
			svc := favorites.NewService(st, nil, nil, nil, e.logger)
			if err := svc.Reload(); err != nil {
				return fmt.Errorf("failed to read favorites: %w", err)
			}

			results := svc.Filter(filter)
			favs := make([]domain.Favorite, len(results))
			for i, r := range results {
				favs[i] = r.Favorite
			}
			printFavorites(cmd.OutOrStdout(), favs)
			return nil
		},
	}
	list.Flags().StringVarP(&filter, "filter", "f", "", "fuzzy-match titles")

	var concurrency int
	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch every favorite and update renamed titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.catalog()
			if err != nil {
				return err
			}
			st, err := e.store()
			if err != nil {
				return err
			}

			before, err := st.Favorites()
			if err != nil {
				return fmt.Errorf("failed to read favorites: %w", err)
			}
			titles := make(map[int]string, len(before))
			for _, f := range before {
				titles[f.ID] = f.Title
			}

			svc := favorites.NewService(st, client, nil, nil, e.logger)
			svc.SetConcurrency(concurrency)
			favs, err := svc.Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renamed := 0
			for _, f := range favs {
				if old := titles[f.ID]; old != f.Title {
					fmt.Fprintf(out, "%d: %q -> %q\n", f.ID, old, f.Title)
					renamed++
				}
			}
			fmt.Fprintf(out, "%d favorites, %d updated\n", len(favs), renamed)
			return nil
		},
	}
	refresh.Flags().IntVar(&concurrency, "concurrency", 8, "max concurrent lookups (0 is unbounded)")

	cmd.AddCommand(list, refresh)
	return cmd
}

func printFavorites(out io.Writer, favs []domain.Favorite) {
	if len(favs) == 0 {
		fmt.Fprintln(out, "No favorites yet")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tADDED")
	for _, f := range favs {
		fmt.Fprintf(w, "%d\t%s\t%s\n", f.ID, f.Title, f.AddedAt.Format("2006-01-02"))
	}
	w.Flush()
}
