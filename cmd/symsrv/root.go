package main

import (
	"symsrv/internal/version"

	"github.com/spf13/cobra"
)

var (
	// configDirFlag is the CLI --config-dir flag value
	configDirFlag string

	// verboseFlag raises the log level to debug
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "symsrv",
	Short: "symsrv - symbol and binary resolution engine",
	Long: `symsrv resolves PDB symbol files and PE binaries from symbol servers,
network shares, and plain directories, following the Microsoft symbol
server conventions: three-segment index paths, compressed artifacts,
pointer files, and a content-addressable local cache.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("symsrv version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "",
		"Configuration directory (default: ~/.symsrv)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"Enable debug logging")
}
