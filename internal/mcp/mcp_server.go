// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the locscope MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"locscope Commit Explorer",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	sourceOpt := mcp.WithString("source", mcp.Description("Path or http(s) URL of a loc.csv file (defaults to the configured source)."))
	cutoffOpt := mcp.WithNumber("cutoff",
		mcp.Description("Slider position between 0 (earliest commit) and 100 (latest commit). Defaults to the configured cutoff."),
		mcp.Min(schema.SliderMin), mcp.Max(schema.SliderMax))

	// --- 1. Tool: get_stats ---
	s.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Summarize a loc.csv dataset: total lines, commits, files, longest file and the most active time of day."),
		sourceOpt,
	), h.handleGetStats)

	// --- 2. Tool: list_commits ---
	s.AddTool(mcp.NewTool("list_commits",
		mcp.WithDescription("List the commits authored up to the cutoff, largest first."),
		sourceOpt,
		cutoffOpt,
		mcp.WithNumber("limit", mcp.Description("Limit the number of commits returned.")),
	), h.handleListCommits)

	// --- 3. Tool: select_region ---
	s.AddTool(mcp.NewTool("select_region",
		mcp.WithDescription("Brush a rectangle on the 1000x600 chart and return the commits inside it with the line breakdown by type."),
		mcp.WithNumber("x0", mcp.Description("First corner, horizontal pixel."), mcp.Required()),
		mcp.WithNumber("y0", mcp.Description("First corner, vertical pixel."), mcp.Required()),
		mcp.WithNumber("x1", mcp.Description("Opposite corner, horizontal pixel."), mcp.Required()),
		mcp.WithNumber("y1", mcp.Description("Opposite corner, vertical pixel."), mcp.Required()),
		sourceOpt,
		cutoffOpt,
	), h.handleSelectRegion)

	// --- 4. Tool: get_breakdown ---
	s.AddTool(mcp.NewTool("get_breakdown",
		mcp.WithDescription("Break down lines by type for a brushed region, or for every visible commit when no region is given."),
		mcp.WithNumber("x0", mcp.Description("First corner, horizontal pixel.")),
		mcp.WithNumber("y0", mcp.Description("First corner, vertical pixel.")),
		mcp.WithNumber("x1", mcp.Description("Opposite corner, horizontal pixel.")),
		mcp.WithNumber("y1", mcp.Description("Opposite corner, vertical pixel.")),
		sourceOpt,
		cutoffOpt,
	), h.handleGetBreakdown)

	// --- 5. Tool: get_commit_lines ---
	s.AddTool(mcp.NewTool("get_commit_lines",
		mcp.WithDescription("Return one commit with the line records it owns and their breakdown by type."),
		mcp.WithString("commit_id", mcp.Description("Commit id as it appears in the loc.csv file."), mcp.Required()),
		sourceOpt,
	), h.handleGetCommitLines)

	return s
}

// StartMCPServer starts the locscope MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
