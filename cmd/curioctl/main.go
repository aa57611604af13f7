package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/curiohq/curio/server/internal/auth"
)

var (
	apiFlag string
	keyFlag string
	rootCmd = &cobra.Command{
		Use:   "curioctl",
		Short: "CLI client for the curio backend REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "curio backend base URL")
	rootCmd.PersistentFlags().StringVarP(&keyFlag, "key", "k", auth.LocalDevAPIKey, "API key")

	// search subcommand
	var source string
	searchCmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Run a live search and record the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(args[0], source, os.Stdout)
		},
	}
	searchCmd.Flags().StringVarP(&source, "source", "s", "google", "Search source (google, pexels, github)")
	rootCmd.AddCommand(searchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
