package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spboyer/social-media-post-ge/internal/client"
	"github.com/spboyer/social-media-post-ge/internal/domain"
	"github.com/spboyer/social-media-post-ge/internal/extract"
	"github.com/spboyer/social-media-post-ge/internal/idgen"
	"github.com/spboyer/social-media-post-ge/internal/platform"
	syncstore "github.com/spboyer/social-media-post-ge/internal/sync"
)

var (
	generatePlatforms []string
	generateIsURL     bool
	generateNoSave    bool
)

// defaultSelection seeds the platform selection for first-time users.
const defaultSelection = `["twitter","linkedin"]`

var generateCmd = &cobra.Command{
	Use:   "generate <content>",
	Short: "Generate platform-tailored posts from content or a URL",
	Long: `Generate one post per selected platform from the given content.

A single argument that parses as an http(s) URL is fetched and summarized
server-side before generation; --url forces that behavior.

Platforms come from --platforms when given, otherwise from the saved
selection (see "postgen platforms select").

Results are saved to the history automatically; pass --no-save to skip.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if apiClient == nil {
			return fmt.Errorf("generation needs the server; --offline only covers platforms and history")
		}
		ctx := context.Background()
		content := strings.TrimSpace(strings.Join(args, " "))

		platforms, err := resolvePlatforms(ctx)
		if err != nil {
			return err
		}
		if bad := platform.Invalid(platforms); len(bad) > 0 {
			return fmt.Errorf("unknown platforms: %s (supported: %s)",
				strings.Join(bad, ", "), strings.Join(platform.IDs(), ", "))
		}

		isURL := generateIsURL || (len(args) == 1 && strings.HasPrefix(content, "http") && extract.ValidateURL(content) == nil)
		if isURL {
			extracted, err := apiClient.ExtractURL(ctx, content)
			if err != nil {
				return fmt.Errorf("extracting URL: %w", err)
			}
			if extracted.Metadata.Fallback {
				fmt.Println(warningStyle.Render("Could not extract page content; posts will reference the link directly."))
			}
			content = extracted.ExtractedContent
		}

		resp, err := apiClient.GeneratePosts(ctx, client.ChatRequest{
			Content:   content,
			Platforms: platforms,
			IsURL:     isURL,
		})
		if err != nil {
			return fmt.Errorf("generating posts: %w", err)
		}

		if jsonOutput {
			data, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
		} else {
			renderPosts(resp)
		}

		if !generateNoSave {
			id, err := saveGeneration(ctx, content, isURL, platforms, resp)
			if err != nil {
				return err
			}
			fmt.Println(successStyle.Render("Saved as "+id) + " " + dimStyle.Render("(postgen history)"))
		}
		return nil
	},
}

// resolvePlatforms picks the target platforms: the --platforms flag wins,
// otherwise the synced selection, otherwise the built-in default.
func resolvePlatforms(ctx context.Context) ([]string, error) {
	if len(generatePlatforms) > 0 {
		return splitPlatformArgs(generatePlatforms), nil
	}

	st, err := openSync(domain.KeySelectedPlatforms, defaultSelection)
	if err != nil {
		return nil, err
	}
	st.Reconcile(ctx)

	selected, err := domain.DecodeSelectedPlatforms(st.Value())
	if err != nil || len(selected) == 0 {
		return []string{platform.Twitter, platform.LinkedIn}, nil
	}
	return selected, nil
}

// splitPlatformArgs accepts both repeated flags and comma-joined values.
func splitPlatformArgs(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, p := range strings.Split(r, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func renderPosts(resp *client.ChatResponse) {
	fmt.Println(headerStyle.Render(fmt.Sprintf("Generated %d post(s)", resp.Metadata.Count)))
	fmt.Println()
	for _, id := range platform.IDs() {
		post, ok := resp.Posts[id]
		if !ok {
			continue
		}
		cfg, _ := platform.Get(id)
		title := platformStyle.Render(cfg.Name) + " " +
			dimStyle.Render(fmt.Sprintf("%d/%d chars", len([]rune(post)), cfg.MaxLength))
		fmt.Println(postStyle.Render(title + "\n\n" + post))
		fmt.Println()
	}
}

// saveGeneration prepends this run to the saved-generation history. The write
// is optimistic: it lands locally first and syncs to the server before exit.
func saveGeneration(ctx context.Context, content string, isURL bool, platforms []string, resp *client.ChatResponse) (string, error) {
	id, err := idgen.Generation()
	if err != nil {
		return "", fmt.Errorf("generating history ID: %w", err)
	}

	st, err := openSync(domain.KeySavedGenerations, "null")
	if err != nil {
		return "", err
	}
	st.Reconcile(ctx)

	gen := domain.Generation{
		ID:            id,
		Timestamp:     time.Now().UTC(),
		SourceContent: content,
		IsURLDerived:  isURL,
		Platforms:     platforms,
		Posts:         resp.Posts,
	}
	st.Update(ctx, func(prev json.RawMessage) json.RawMessage {
		next, err := domain.PrependGeneration(prev, gen)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("history update failed: %v", err)))
			return prev
		}
		return next
	})
	st.Flush()
	if st.Status() == syncstore.Stale {
		fmt.Println(warningStyle.Render("Saved locally; server sync failed and will retry on the next write."))
	}
	return id, nil
}

func init() {
	generateCmd.Flags().StringSliceVarP(&generatePlatforms, "platforms", "p", nil, "target platforms (comma-separated or repeated)")
	generateCmd.Flags().BoolVar(&generateIsURL, "url", false, "treat the content as a URL to summarize")
	generateCmd.Flags().BoolVar(&generateNoSave, "no-save", false, "do not save the result to history")
}
