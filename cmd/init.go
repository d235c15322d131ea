package cmd

import (
	"github.com/spf13/cobra"

	"github.com/evotyindia/chatbot-project-intel-hpe/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize chatbot configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the chatbot and generates a .chatbot.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
