package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// listCmd prints every project under the projects root
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}

	projects, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}

	for _, p := range projects {
		fmt.Printf("Project: %s\n", p.Name)
		if p.Summary.Status != "" {
			fmt.Printf("  Status: %s\n", p.Summary.Status)
		}
		if p.Summary.SearchQuery != "" {
			fmt.Printf("  Query:  %s\n", p.Summary.SearchQuery)
		}
		fmt.Printf("  Modified: %s\n", p.Modified.Format("2006-01-02 15:04:05"))
		fmt.Println(strings.Repeat("-", 40))
	}
	fmt.Printf("Total: %d projects\n", len(projects))
	return nil
}
