package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8000"

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "rede-cli",
	Short: "A CLI client for the relationship management API",
	Long: `A command-line interface for registering pessoas, creating CONHECE relationships
and exploring the social network served by relationship_service.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	server := os.Getenv("REDE_API_URL")
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", server, "base URL of the relationship API (env REDE_API_URL)")
}
