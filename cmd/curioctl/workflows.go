package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	workflowsCmd := &cobra.Command{Use: "workflows", Short: "Research workflow operations"}

	var (
		title   string
		sources []string
		depth   string
		format  string
	)
	createCmd := &cobra.Command{
		Use:   "create QUERY",
		Short: "Start a research workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"query":   args[0],
				"sources": sources,
			}
			if title != "" {
				payload["title"] = title
			}
			if depth != "" {
				payload["depth"] = depth
			}
			if format != "" {
				payload["outputFormat"] = format
			}
			data, err := doPostJSON("/api/workflows", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	createCmd.Flags().StringVar(&title, "title", "", "Workflow title (defaults to the query)")
	createCmd.Flags().StringSliceVarP(&sources, "sources", "s", []string{"web"}, "Search types to gather from (web, pexels, github)")
	createCmd.Flags().StringVarP(&depth, "depth", "d", "", "Research depth (quick, standard, deep)")
	createCmd.Flags().StringVarP(&format, "format", "f", "", "Report format (markdown, text)")
	workflowsCmd.AddCommand(createCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/workflows")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	workflowsCmd.AddCommand(listCmd)

	getCmd := &cobra.Command{
		Use:   "get WORKFLOW_ID",
		Short: "Get a workflow by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet("/api/workflows/" + args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	workflowsCmd.AddCommand(getCmd)

	cancelCmd := &cobra.Command{
		Use:   "cancel WORKFLOW_ID",
		Short: "Cancel a running workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON("/api/workflows/"+args[0]+"/cancel", nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	workflowsCmd.AddCommand(cancelCmd)

	rootCmd.AddCommand(workflowsCmd)
}
