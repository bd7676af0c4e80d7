package cmd

import (
	"github.com/leen324/locscope/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [source]",
	Short: "Start the locscope MCP server",
	Long:  `Launch an MCP server on stdio that lets AI agents summarize, list and select commits of a loc.csv dataset.`,
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Stdout carries the protocol, so the tools never print the dataset header.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
