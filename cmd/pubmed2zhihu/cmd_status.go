package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd shows pipeline progress for one project, or a roll-up of all
var statusCmd = &cobra.Command{
	Use:   "status [project]",
	Short: "Show project status",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		name := args[0]
		exists, err := store.Exists(name)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("project does not exist: %s", name)
		}

		summary, err := store.Summary(name)
		if err != nil {
			return fmt.Errorf("failed to read summary: %w", err)
		}
		fmt.Printf("Project:      %s\n", name)
		fmt.Printf("Status:       %s\n", orUnknown(summary.Status))
		fmt.Printf("Current step: %d\n", summary.CurrentStep)
		fmt.Printf("Query:        %s\n", orUnknown(summary.SearchQuery))
		fmt.Printf("Last updated: %s\n", orUnknown(summary.LastUpdated))
		return nil
	}

	projects, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}
	fmt.Printf("%d projects:\n", len(projects))
	for _, p := range projects {
		fmt.Printf("  - %s [%s]\n", p.Name, orUnknown(p.Summary.Status))
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
