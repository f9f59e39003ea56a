package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cacheLsLimit int

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the local cache inventory",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache inventory statistics",
	Run:   runCacheStats,
}

var cacheLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List cached artifacts, newest first",
	Run:   runCacheLs,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the inventory records (cached files are kept)",
	Run:   runCacheClear,
}

func init() {
	cacheLsCmd.Flags().IntVar(&cacheLsLimit, "limit", 50, "Maximum entries to list (0 = all)")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheLsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) {
	db, err := getInventory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stats, err := db.Stats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading inventory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Artifacts: %d\n", stats.ArtifactCount)
	fmt.Printf("Total:     %s\n", formatBytes(stats.TotalBytes))
	fmt.Printf("Cache dir: %s\n", mustGetEngine().CacheDir())
}

func runCacheLs(cmd *cobra.Command, args []string) {
	db, err := getInventory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	artifacts, err := db.List(cacheLsLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing inventory: %v\n", err)
		os.Exit(1)
	}

	for _, a := range artifacts {
		fmt.Printf("%-10s  %-40s  %s\n", formatBytes(a.SizeBytes), a.IndexPath, a.Source)
	}
}

func runCacheClear(cmd *cobra.Command, args []string) {
	db, err := getInventory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := db.Clear(); err != nil {
		fmt.Fprintf(os.Stderr, "Error clearing inventory: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Inventory cleared")
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
