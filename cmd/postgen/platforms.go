package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/spboyer/social-media-post-ge/internal/domain"
	"github.com/spboyer/social-media-post-ge/internal/platform"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported platforms and the current selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		st, err := openSync(domain.KeySelectedPlatforms, defaultSelection)
		if err != nil {
			return err
		}
		st.Reconcile(ctx)
		selected, err := domain.DecodeSelectedPlatforms(st.Value())
		if err != nil {
			selected = nil
		}
		selectedSet := make(map[string]bool, len(selected))
		for _, id := range selected {
			selectedSet[id] = true
		}

		if jsonOutput {
			out := struct {
				Platforms []platform.Config `json:"platforms"`
				Selected  []string          `json:"selected"`
				Sync      string            `json:"sync"`
			}{platform.All(), selected, st.Status().String()}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Println(headerStyle.Render("Supported platforms") + " " + freshnessNote(st.Status().String()))
		fmt.Println()

		w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, platformStyle.Render("  ID")+"\t"+platformStyle.Render("Name")+"\t"+platformStyle.Render("Max chars")+"\t"+platformStyle.Render("Hashtags")+"\t")
		for _, cfg := range platform.All() {
			mark := "  "
			if selectedSet[cfg.ID] {
				mark = successStyle.Render("* ")
			}
			fmt.Fprintf(w, "%s%s\t%s\t%d\t%d-%d\t\n",
				mark, cfg.ID, cfg.Name, cfg.MaxLength, cfg.MinHashtags, cfg.MaxHashtags)
		}
		w.Flush()

		fmt.Println()
		if len(selected) > 0 {
			fmt.Println(dimStyle.Render("Selected: " + strings.Join(selected, ", ")))
		} else {
			fmt.Println(dimStyle.Render("No selection saved; generate uses twitter, linkedin."))
		}
		return nil
	},
}

var platformsSelectCmd = &cobra.Command{
	Use:   "select <platform>...",
	Short: "Save the default platform selection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := splitPlatformArgs(args)
		if bad := platform.Invalid(ids); len(bad) > 0 {
			return fmt.Errorf("unknown platforms: %s (supported: %s)",
				strings.Join(bad, ", "), strings.Join(platform.IDs(), ", "))
		}

		raw, err := domain.EncodeSelectedPlatforms(ids)
		if err != nil {
			return err
		}

		st, err := openSync(domain.KeySelectedPlatforms, defaultSelection)
		if err != nil {
			return err
		}
		st.Set(context.Background(), raw)
		st.Flush()

		fmt.Println(successStyle.Render("Selection saved: ") + strings.Join(ids, ", ") + " " + freshnessNote(st.Status().String()))
		return nil
	},
}

func init() {
	platformsCmd.AddCommand(platformsSelectCmd)
}
