package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var (
		collection string
		query      string
		searchType string
		indices    []int
		url        string
		title      string
	)
	bookmarkCmd := &cobra.Command{
		Use:   "bookmark",
		Short: "Add items to a collection",
		Long: "Adds items to a named collection, either directly (--url) or by " +
			"picking indices out of the latest matching search session " +
			"(--query, --type, --indices).",
		RunE: func(cmd *cobra.Command, args []string) error {
			if collection == "" {
				return fmt.Errorf("--collection required")
			}
			payload := map[string]interface{}{"collectionName": collection}
			switch {
			case url != "":
				item := map[string]string{"url": url}
				if title != "" {
					item["title"] = title
				}
				payload["items"] = []map[string]string{item}
			case query != "":
				if searchType == "" || len(indices) == 0 {
					return fmt.Errorf("--type and --indices required with --query")
				}
				payload["searchQuery"] = query
				payload["searchType"] = searchType
				payload["indices"] = indices
			default:
				return fmt.Errorf("provide --url or --query")
			}

			data, err := doPostJSON("/api/tools/collection/add", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	bookmarkCmd.Flags().StringVarP(&collection, "collection", "c", "", "Collection name (required)")
	bookmarkCmd.Flags().StringVarP(&query, "query", "q", "", "Search query of the session to resolve against")
	bookmarkCmd.Flags().StringVarP(&searchType, "type", "t", "", "Search type (web, pexels, github)")
	bookmarkCmd.Flags().IntSliceVarP(&indices, "indices", "i", nil, "Result indices to bookmark")
	bookmarkCmd.Flags().StringVarP(&url, "url", "u", "", "URL for a direct add")
	bookmarkCmd.Flags().StringVar(&title, "title", "", "Title for a direct add")
	_ = bookmarkCmd.MarkFlagRequired("collection")
	rootCmd.AddCommand(bookmarkCmd)
}
