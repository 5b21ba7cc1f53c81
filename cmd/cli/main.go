package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	authToken string
	apiURL    string = "http://localhost:8787"
	output    string = "text" // "text" or "json"
)

// Commands that work without a session token
var anonymousCommands = map[string]bool{
	"help":           true,
	"signin":         true,
	"check-username": true,
	"get":            true,
	"show":           true,
	"posts":          true,
	"comments":       true,
	"followers":      true,
	"following":      true,
}

var rootCmd = &cobra.Command{
	Use:   "verity",
	Short: "Verity CLI - Read and post on Verity from the terminal",
	Long: `Verity CLI provides command-line access to the Verity API.
Sign in, read your feed, publish posts, follow people and manage likes and comments.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if authToken == "" {
			authToken = os.Getenv("VERITY_TOKEN")
		}
		if authToken == "" && !anonymousCommands[cmd.Name()] && cmd.Parent() != nil {
			fmt.Fprintf(os.Stderr, "Error: VERITY_TOKEN environment variable not set\n")
			fmt.Fprintf(os.Stderr, "Sign in first: export VERITY_TOKEN=$(verity auth signin <user> <password>)\n")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "Authentication token (defaults to VERITY_TOKEN env var)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", apiURL, "API server URL")
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	// Add command groups
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(unfollowCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
