// Command postgen is the terminal client for the post generator service. It
// generates platform-tailored posts, manages the platform selection and the
// saved-generation history, and keeps working against its local cache when
// the server is unreachable.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spboyer/social-media-post-ge/internal/client"
	"github.com/spboyer/social-media-post-ge/internal/domain"
	syncstore "github.com/spboyer/social-media-post-ge/internal/sync"
)

var (
	serverURL  string
	userID     string
	jsonOutput bool
	offline    bool
	verbose    bool
	version    = "dev"

	apiClient *client.Client
)

func defaultServer() string {
	if s := os.Getenv("POSTGEN_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

func defaultUser() string {
	return os.Getenv("POSTGEN_USER")
}

var rootCmd = &cobra.Command{
	Use:     "postgen",
	Short:   "Generate social media posts from the terminal",
	Version: version,
	Long: `postgen turns one piece of content into platform-tailored social media
posts via the post generator API.

Selections and saved generations are cached locally, so reading and saving
keep working when the server is down; changes sync back on the next run.

Quick start:
  postgen platforms                         # see supported platforms
  postgen platforms select twitter linkedin # pick your defaults
  postgen generate "We just shipped v2"     # generate posts
  postgen history                           # list saved generations`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		fileCfg, err := loadCLIConfig()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("server") && fileCfg.Server != "" {
			serverURL = fileCfg.Server
		}
		if !cmd.Flags().Changed("user") && fileCfg.User != "" {
			userID = fileCfg.User
		}

		if !offline {
			apiClient = client.New(serverURL, userID)
		}
		return nil
	},
}

// cacheDir returns the root of the CLI's local value cache.
func cacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".postgen-cache"
	}
	return filepath.Join(home, ".postgen", "cache")
}

// openSync binds a sync store to key for the current user. With --offline (or
// when the client failed to initialize) the store works purely locally.
func openSync(key string, def string) (*syncstore.Store, error) {
	var remote syncstore.Remote
	if apiClient != nil {
		remote = apiClient
	}
	s, err := syncstore.New(cacheDir(), domain.NormalizeUserID(userID), key, []byte(def), remote)
	if err != nil {
		return nil, fmt.Errorf("opening local cache: %w", err)
	}
	return s, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "post generator server URL")
	rootCmd.PersistentFlags().StringVar(&userID, "user", defaultUser(), "user ID sent with requests (scopes stored values)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "skip all server calls, use the local cache only")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
