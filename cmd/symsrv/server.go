package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"symsrv/internal/config"
)

var (
	serverAddCache    string
	serverAddDisabled bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage the symbol server registry",
	Long: `Manage named symbol servers in servers.toml. Registry entries are
searched after the elements from the symbol path string.`,
}

var serverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered symbol servers",
	Run:   runServerList,
}

var serverAddCmd = &cobra.Command{
	Use:   "add <name> <target>",
	Short: "Register a symbol server",
	Long: `Register a symbol server by name and target URL or share path.
Adding a name that already exists replaces the entry.

Examples:
  symsrv server add msdl https://msdl.microsoft.com/download/symbols
  symsrv server add team \\\\fileserver\\symbols --cache /var/cache/team-syms`,
	Args: cobra.ExactArgs(2),
	Run:  runServerAdd,
}

var serverRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a symbol server from the registry",
	Args:  cobra.ExactArgs(1),
	Run:   runServerRemove,
}

func init() {
	serverAddCmd.Flags().StringVar(&serverAddCache, "cache", "", "Cache directory override for this server")
	serverAddCmd.Flags().BoolVar(&serverAddDisabled, "disabled", false, "Register without enabling")
	serverCmd.AddCommand(serverListCmd)
	serverCmd.AddCommand(serverAddCmd)
	serverCmd.AddCommand(serverRemoveCmd)
	rootCmd.AddCommand(serverCmd)
}

func registryPath() string {
	return filepath.Join(configDir(), "servers.toml")
}

func runServerList(cmd *cobra.Command, args []string) {
	reg, err := config.LoadServers(registryPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(reg.Servers) == 0 {
		fmt.Println("No servers registered")
		return
	}

	for _, s := range reg.Servers {
		state := "enabled"
		if !s.Enabled {
			state = "disabled"
		}
		fmt.Printf("%-20s %-8s %s\n", s.Name, state, s.Target)
	}
}

func runServerAdd(cmd *cobra.Command, args []string) {
	reg, err := config.LoadServers(registryPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	reg.Add(config.ServerEntry{
		Name:    args[0],
		Target:  args[1],
		Cache:   serverAddCache,
		Enabled: !serverAddDisabled,
		AddedAt: time.Now().UTC(),
	})

	if err := reg.Save(registryPath()); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving registry: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Registered %s -> %s\n", args[0], args[1])
}

func runServerRemove(cmd *cobra.Command, args []string) {
	reg, err := config.LoadServers(registryPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	kept := reg.Servers[:0]
	found := false
	for _, s := range reg.Servers {
		if s.Name == args[0] {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	if !found {
		fmt.Fprintf(os.Stderr, "Error: no server named %q\n", args[0])
		os.Exit(1)
	}
	reg.Servers = kept

	if err := reg.Save(registryPath()); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving registry: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Removed %s\n", args[0])
}
