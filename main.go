package main

import (
	"os"

	"github.com/evotyindia/chatbot-project-intel-hpe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
