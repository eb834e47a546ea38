package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wlxklyh/pubmed2zhihu/internal/resolve"
)

// checkCmd prints the candidate path of every artifact kind for a project
// and whether each one exists. This is the path-debugging tool: when a
// report URL misbehaves, the answer is in this output, not in guesswork.
var checkCmd = &cobra.Command{
	Use:   "check <project>",
	Short: "Check which artifact paths exist for a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}

	name := args[0]
	dir, err := store.Path(name)
	if err != nil {
		return err
	}
	exists, err := store.Exists(name)
	if err != nil {
		return err
	}
	fmt.Printf("Project directory: %s (exists: %v)\n\n", dir, exists)

	checks := []struct {
		kind     resolve.Kind
		filename string
	}{
		{resolve.KindReport, ""},
		{resolve.KindMetadata, ""},
	}
	for _, c := range checks {
		statuses, err := store.ArtifactStatus(name, c.kind, c.filename)
		if err != nil {
			return err
		}
		fmt.Printf("%s:\n", c.kind)
		for i, st := range statuses {
			marker := "missing"
			if st.Exists {
				marker = "exists"
			}
			fmt.Printf("  [%d] %-8s %s\n", i+1, marker, st.Path)
		}
	}

	fmt.Println("\nstep directories:")
	for _, step := range resolve.StepDirs() {
		full := filepath.Join(dir, step)
		marker := "missing"
		if fi, err := os.Stat(full); err == nil && fi.IsDir() {
			marker = "exists"
		}
		fmt.Printf("  %-8s %s\n", marker, full)
	}
	return nil
}
