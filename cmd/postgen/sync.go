package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/spboyer/social-media-post-ge/internal/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Inspect the local cache and its server sync state",
}

// keyReport is the per-key result of "sync status".
type keyReport struct {
	Key             string `json:"key"`
	Local           string `json:"local"`
	Freshness       string `json:"freshness"`
	RemoteUpdatedAt string `json:"remoteUpdatedAt,omitempty"`
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync freshness of the cached values",
	Long: `Report what is cached locally for each well-known key and whether the
most recent server exchange succeeded. With a reachable server the server's
own key listing is shown alongside.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		selection, err := statusFor(ctx, domain.KeySelectedPlatforms, defaultSelection, describeSelection)
		if err != nil {
			return err
		}
		history, err := statusFor(ctx, domain.KeySavedGenerations, "null", describeHistory)
		if err != nil {
			return err
		}
		reports := []keyReport{selection, history}

		var extras []keyReport
		if apiClient != nil {
			summaries, err := apiClient.ListValues(ctx)
			if err != nil {
				fmt.Println(warningStyle.Render("Server listing unavailable: " + err.Error()))
			} else {
				known := make(map[string]int, len(reports))
				for i, rep := range reports {
					known[rep.Key] = i
				}
				for _, s := range summaries {
					if i, ok := known[s.Key]; ok {
						reports[i].RemoteUpdatedAt = s.UpdatedAt
						continue
					}
					extras = append(extras, keyReport{Key: s.Key, RemoteUpdatedAt: s.UpdatedAt})
				}
			}
		}

		if jsonOutput {
			out := struct {
				User string      `json:"user"`
				Keys []keyReport `json:"keys"`
			}{domain.NormalizeUserID(userID), append(reports, extras...)}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Println(headerStyle.Render("Sync status for " + domain.NormalizeUserID(userID)))
		fmt.Println()

		w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, platformStyle.Render("Key")+"\t"+platformStyle.Render("Local")+"\t"+platformStyle.Render("State")+"\t"+platformStyle.Render("Server")+"\t")
		for _, rep := range reports {
			remote := rep.RemoteUpdatedAt
			if remote == "" {
				remote = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
				rep.Key, rep.Local, freshnessNote(rep.Freshness), dimStyle.Render(remote))
		}
		for _, rep := range extras {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
				rep.Key, dimStyle.Render("server only"), "", dimStyle.Render(rep.RemoteUpdatedAt))
		}
		w.Flush()

		if apiClient == nil {
			fmt.Println()
			fmt.Println(dimStyle.Render("Offline; server state not checked."))
		}
		return nil
	},
}

// statusFor opens the sync store for key, runs the one-time reconcile pass and
// summarizes the resulting local state.
func statusFor(ctx context.Context, key, def string, describe func(json.RawMessage) string) (keyReport, error) {
	st, err := openSync(key, def)
	if err != nil {
		return keyReport{}, err
	}
	st.Reconcile(ctx)
	return keyReport{
		Key:       key,
		Local:     describe(st.Value()),
		Freshness: st.Status().String(),
	}, nil
}

func describeSelection(raw json.RawMessage) string {
	ids, err := domain.DecodeSelectedPlatforms(raw)
	if err != nil {
		return "unreadable"
	}
	return fmt.Sprintf("%d platform(s)", len(ids))
}

func describeHistory(raw json.RawMessage) string {
	gens, err := domain.DecodeGenerations(raw)
	if err != nil {
		return "unreadable"
	}
	return fmt.Sprintf("%d generation(s)", len(gens))
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
}
