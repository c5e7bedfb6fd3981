package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/spboyer/social-media-post-ge/internal/domain"
	"github.com/spboyer/social-media-post-ge/internal/platform"
	syncstore "github.com/spboyer/social-media-post-ge/internal/sync"
)

func openHistory(ctx context.Context) (*historyView, error) {
	st, err := openSync(domain.KeySavedGenerations, "null")
	if err != nil {
		return nil, err
	}
	st.Reconcile(ctx)
	gens, err := domain.DecodeGenerations(st.Value())
	if err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	return &historyView{store: st, gens: gens}, nil
}

type historyView struct {
	store *syncstore.Store
	gens  []domain.Generation
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved generations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		view, err := openHistory(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			data, err := json.MarshalIndent(view.gens, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(view.gens) == 0 {
			fmt.Println(headerStyle.Render("No saved generations"))
			fmt.Println(dimStyle.Render("Generations are saved automatically: postgen generate \"...\""))
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%d saved generation(s)", len(view.gens))))
		fmt.Println()

		w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, platformStyle.Render("ID")+"\t"+platformStyle.Render("When")+"\t"+platformStyle.Render("Platforms")+"\t"+platformStyle.Render("Content")+"\t")
		for _, g := range view.gens {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t\n",
				idStyle.Render(g.ID),
				dimStyle.Render(formatWhen(g.Timestamp)),
				len(g.Posts),
				g.Summary(50))
		}
		w.Flush()

		fmt.Println()
		fmt.Println(dimStyle.Render("Use: postgen history show <id>"))
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the posts of one saved generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := openHistory(context.Background())
		if err != nil {
			return err
		}

		for _, g := range view.gens {
			if g.ID != args[0] {
				continue
			}
			if jsonOutput {
				data, err := json.MarshalIndent(g, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling JSON: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Println(headerStyle.Render(g.Summary(60)))
			fmt.Println(dimStyle.Render(g.Timestamp.Local().Format("2006-01-02 15:04")) + " " + idStyle.Render(g.ID))
			fmt.Println()
			for _, id := range platform.IDs() {
				post, ok := g.Posts[id]
				if !ok {
					continue
				}
				cfg, _ := platform.Get(id)
				fmt.Println(postStyle.Render(platformStyle.Render(cfg.Name) + "\n\n" + post))
				fmt.Println()
			}
			return nil
		}
		return fmt.Errorf("no saved generation with ID %q", args[0])
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one saved generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		view, err := openHistory(ctx)
		if err != nil {
			return err
		}

		found := false
		view.store.Update(ctx, func(prev json.RawMessage) json.RawMessage {
			next, ok, err := domain.RemoveGeneration(prev, args[0])
			if err != nil {
				return prev
			}
			found = ok
			return next
		})
		view.store.Flush()

		if !found {
			return fmt.Errorf("no saved generation with ID %q", args[0])
		}
		fmt.Println(successStyle.Render("Deleted " + args[0]))
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all saved generations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		view, err := openHistory(ctx)
		if err != nil {
			return err
		}

		n := len(view.gens)
		view.store.Clear(ctx)
		view.store.Flush()

		fmt.Println(successStyle.Render(fmt.Sprintf("Cleared %d generation(s)", n)))
		return nil
	},
}

// formatWhen renders a timestamp compactly relative to now.
func formatWhen(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	t = t.Local()
	diff := time.Since(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func init() {
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}
