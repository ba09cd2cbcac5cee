package main

import (
	"fmt"
	"os"

	"student-auth/internal/app"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", app.Version, app.GitCommit, app.BuildTime)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
