package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	collectionsCmd := &cobra.Command{Use: "collections", Short: "Collection operations"}

	var name string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name required")
			}
			data, err := doPostJSON("/api/collections", map[string]string{"name": name})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Collection name (required)")
	_ = createCmd.MarkFlagRequired("name")
	collectionsCmd.AddCommand(createCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/collections")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	collectionsCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get COLLECTION_ID",
		Short: "Get a collection by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/collections/" + args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	collectionsCmd.AddCommand(getCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete COLLECTION_ID",
		Short: "Delete a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := doDelete("/api/collections/" + args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "deleted")
			return nil
		},
	}
	collectionsCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(collectionsCmd)
}
