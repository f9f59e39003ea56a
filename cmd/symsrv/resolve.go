package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"symsrv/internal/errors"
)

var (
	resolvePdbGUID string
	resolvePdbAge  uint32

	resolveBinTimestamp string
	resolveBinSize      string
	resolveBinCheck     bool
)

var resolvePdbCmd = &cobra.Command{
	Use:   "resolve-pdb <name>",
	Short: "Resolve a PDB symbol file",
	Long: `Resolve a PDB symbol file by name, GUID, and age, searching each
search path element in order and returning the local path of the first
validated match.

Examples:
  symsrv resolve-pdb ntdll.pdb --guid 11111111-2222-3333-4444-555555555555 --age 2
  symsrv resolve-pdb mylib.pdb --guid $GUID --age 1 -v`,
	Args: cobra.ExactArgs(1),
	Run:  runResolvePdb,
}

var resolveBinaryCmd = &cobra.Command{
	Use:   "resolve-binary <name>",
	Short: "Resolve a PE binary",
	Long: `Resolve a PE binary by name, link timestamp, and image size. Values
are hexadecimal, matching how they appear in symbol server paths.

Examples:
  symsrv resolve-binary ntdll.dll --timestamp 4a5bc123 --size 11a000
  symsrv resolve-binary app.exe --timestamp 4a5bc123 --size 11a000 --check-properties=false`,
	Args: cobra.ExactArgs(1),
	Run:  runResolveBinary,
}

func init() {
	resolvePdbCmd.Flags().StringVar(&resolvePdbGUID, "guid", "", "PDB GUID (required)")
	resolvePdbCmd.Flags().Uint32Var(&resolvePdbAge, "age", 1, "PDB age")
	_ = resolvePdbCmd.MarkFlagRequired("guid")
	rootCmd.AddCommand(resolvePdbCmd)

	resolveBinaryCmd.Flags().StringVar(&resolveBinTimestamp, "timestamp", "", "Link timestamp, hex (required)")
	resolveBinaryCmd.Flags().StringVar(&resolveBinSize, "size", "", "Image size, hex (required)")
	resolveBinaryCmd.Flags().BoolVar(&resolveBinCheck, "check-properties", true, "Verify PE header fields against the request")
	_ = resolveBinaryCmd.MarkFlagRequired("timestamp")
	_ = resolveBinaryCmd.MarkFlagRequired("size")
	rootCmd.AddCommand(resolveBinaryCmd)
}

func runResolvePdb(cmd *cobra.Command, args []string) {
	start := time.Now()
	engine := mustGetEngine()

	guid, err := uuid.Parse(resolvePdbGUID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid GUID %q: %v\n", resolvePdbGUID, err)
		os.Exit(1)
	}

	path, err := engine.FindPDB(context.Background(), args[0], guid, resolvePdbAge)
	reportResolution(args[0], path, err, start)
}

func runResolveBinary(cmd *cobra.Command, args []string) {
	start := time.Now()
	engine := mustGetEngine()

	timestamp, err := strconv.ParseUint(resolveBinTimestamp, 16, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid timestamp %q: %v\n", resolveBinTimestamp, err)
		os.Exit(1)
	}
	size, err := strconv.ParseUint(resolveBinSize, 16, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid size %q: %v\n", resolveBinSize, err)
		os.Exit(1)
	}

	path, err := engine.FindBinary(context.Background(), args[0], uint32(timestamp), uint32(size), resolveBinCheck)
	reportResolution(args[0], path, err, start)
}

func reportResolution(name, path string, err error, start time.Time) {
	if err != nil {
		if errors.IsNotFound(err) {
			fmt.Fprintf(os.Stderr, "%s: not found (searched %s)\n", name, time.Since(start).Round(time.Millisecond))
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error resolving %s: %v\n", name, err)
		os.Exit(1)
	}
	fmt.Println(path)
}
