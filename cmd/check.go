package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/evotyindia/chatbot-project-intel-hpe/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify configuration, data files, and API keys before serving",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		failures := 0
		report := func(ok bool, format string, args ...any) {
			mark := "ok"
			if !ok {
				mark = "FAIL"
				failures++
			}
			fmt.Printf("[%4s] %s\n", mark, fmt.Sprintf(format, args...))
		}

		err = cfg.Validate()
		report(err == nil, "configuration (%s)", cfgFile)
		if err != nil {
			fmt.Printf("       %v\n", err)
		}

		sources := countSources(cfg)
		info, statErr := os.Stat(cfg.Data.Dir)
		dirOK := statErr == nil && info.IsDir()
		report(dirOK, "data directory %s", cfg.Data.Dir)
		if dirOK {
			report(sources > 0, "%d knowledge files match the include patterns", sources)
		}

		keyVar := config.APIKeyEnvVar(cfg.Generation.Provider)
		report(os.Getenv(keyVar) != "", "%s set (%s provider)", keyVar, cfg.Generation.Provider)

		scaledownSet := os.Getenv(config.ScaleDownAPIKeyEnvVar) != ""
		// Missing compression key degrades rather than breaks; still worth
		// surfacing.
		if scaledownSet {
			report(true, "%s set", config.ScaleDownAPIKeyEnvVar)
		} else {
			fmt.Printf("[warn] %s not set, responses will skip compression\n", config.ScaleDownAPIKeyEnvVar)
		}

		if cfg.Scraping.Enabled {
			report(cfg.Scraping.BaseURL != "", "scraping base URL configured")
		}

		if failures > 0 {
			return fmt.Errorf("%d check(s) failed", failures)
		}
		fmt.Println("All checks passed.")
		return nil
	},
}

func countSources(cfg *config.Config) int {
	fsys := os.DirFS(cfg.Data.Dir)
	seen := map[string]bool{}
	for _, pattern := range cfg.Data.Include {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			continue
		}
		for _, m := range matches {
			seen[filepath.ToSlash(m)] = true
		}
	}
	return len(seen)
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
