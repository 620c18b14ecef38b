// Package main provides the entry point for the resume tailor CLI and
// HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_tailor",
	Short: "Tailored resume generation",
	Long:  "Resume Tailor generates job-specific LaTeX resumes by filtering a candidate's experience corpus against a job description with LLM assistance, compiling the result to PDF.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
