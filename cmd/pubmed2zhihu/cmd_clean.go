package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cleanCmd clears the cache directory
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clear the download cache",
	Long: `Remove and recreate the cache directory.

The cache only holds transient pipeline downloads; clearing it never touches
project directories or generated reports.`,
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	store, err := newStore()
	if err != nil {
		return err
	}
	if err := store.ClearCache(); err != nil {
		return err
	}
	cache, err := cfg.CacheDirAbs()
	if err != nil {
		return err
	}
	fmt.Printf("Cache cleared: %s\n", cache)
	return nil
}
