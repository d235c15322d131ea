package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// defaultModels maps each provider to its suggested generation model.
var defaultModels = map[ProviderType]string{
	ProviderGoogle: "gemini-2.5-flash",
	ProviderOpenAI: "gpt-4o-mini",
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .chatbot.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to the admissions chatbot! Let's configure the service.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Generation provider.
	providerPrompt := promptui.Select{
		Label: "Select generation provider",
		Items: []string{string(ProviderGoogle), string(ProviderOpenAI)},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)
	cfg.Generation.Provider = provider

	// 2. Model.
	modelPrompt := promptui.Prompt{
		Label:   "Generation model",
		Default: defaultModels[provider],
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	cfg.Generation.Model = model

	// 3. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Directory with university data files (.txt / .md)",
		Default: cfg.Data.Dir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.Data.Dir = dataDir

	// 4. Port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("invalid port")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 5. Web scraping.
	scrapePrompt := promptui.Select{
		Label: "Enable website scraping for live data",
		Items: []string{"no", "yes"},
	}
	scrapeIdx, _, err := scrapePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("scraping selection: %w", err)
	}
	cfg.Scraping.Enabled = scrapeIdx == 1

	// Check for API keys.
	if envVar := APIKeyEnvVar(provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running chatbot serve.\n", envVar)
	}
	if os.Getenv(ScaleDownAPIKeyEnvVar) == "" {
		fmt.Printf("Note: Set %s in your environment before running chatbot serve.\n", ScaleDownAPIKeyEnvVar)
	}

	// Save to .chatbot.yml.
	configPath := ".chatbot.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}
