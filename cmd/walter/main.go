package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/brandonestevez/walter/internal/cli"
)

func main() {
	// Tokens and model overrides may live in a local .env
	// (WALTER_MODEL, OPENAI_API_KEY, GITBOOK_TOKEN, GITHUB_TOKEN).
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
