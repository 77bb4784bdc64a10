// Package main implements codegraphd, the CodeGraph daemon: it indexes a
// workspace into the graph/vector stores and serves the MCP tool surface
// over STDIO or HTTP+SSE.
//
// File index:
//   - main.go      - entry point, rootCmd, global flags
//   - cmd_serve.go - serveCmd, runServe() transport + dependency wiring
//   - cmd_index.go - indexCmd, runIndex() parser pipeline invocation
//   - cmd_version.go - versionCmd
//   - wiring.go    - buildDependencies() shared by serve and index
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codegraph/internal/logging"
)

var (
	configPath string
	stateDir   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "codegraphd",
	Short: "codegraphd - code-intelligence graph index and MCP server",
	Long: `codegraphd parses a source tree into a durable node/edge graph and a
vector index, exposes graph-analysis and semantic-search tools, and drives
a ReAct agent over both through the Model Context Protocol.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir := stateDir
		if dir == "" {
			dir = ".codegraph"
		}
		if err := logging.Initialize(dir, verbose); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (.json or .yaml)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "override state_dir from config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, indexCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
