package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leen324/locscope/internal/contract"
	mcp_internal "github.com/leen324/locscope/internal/mcp"
	"github.com/leen324/locscope/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const locCSV = `file,line,type,commit,author,date,time,timezone,datetime,depth,length
src/app.js,1,js,c1a2b3,Alice,2024-01-01,09:30:00,-05:00,2024-01-01T09:30:00-05:00,0,24
src/app.js,2,js,c1a2b3,Alice,2024-01-01,09:30:00,-05:00,2024-01-01T09:30:00-05:00,1,31
style.css,1,css,c1a2b3,Alice,2024-01-01,09:30:00,-05:00,2024-01-01T09:30:00-05:00,0,18
index.html,1,html,d4e5f6,Bob,2024-01-02,20:00:00,-05:00,2024-01-02T20:00:00-05:00,0,15
`

func baseConfig(t *testing.T) *contract.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loc.csv")
	require.NoError(t, os.WriteFile(path, []byte(locCSV), 0o644))
	return &contract.Config{
		Source:         path,
		CommitHost:     contract.DefaultCommitHost,
		ParsePolicy:    schema.StrictPolicy,
		RadiusMin:      contract.DefaultRadiusMin,
		RadiusMax:      contract.DefaultRadiusMax,
		Cutoff:         schema.SliderMax,
		Output:         schema.JSONOut,
		CacheBackend:   schema.NoneBackend,
		HistoryBackend: schema.NoneBackend,
	}
}

func callTool(t *testing.T, cfg *contract.Config, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var mgr contract.CacheManager
	s := mcp_internal.NewMCPServer(cfg, mgr)

	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	cfg := baseConfig(t)

	t.Run("select_region missing corners", func(t *testing.T) {
		res := callTool(t, cfg, "select_region", map[string]any{"x0": 0.0, "y0": 0.0})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, resultText(t, res), "must be given together")
	})

	t.Run("select_region without rectangle", func(t *testing.T) {
		res := callTool(t, cfg, "select_region", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "are required")
	})

	t.Run("list_commits cutoff out of range", func(t *testing.T) {
		res := callTool(t, cfg, "list_commits", map[string]any{"cutoff": 150.0})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "cutoff must be between")
	})

	t.Run("get_commit_lines without id", func(t *testing.T) {
		res := callTool(t, cfg, "get_commit_lines", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "invalid parameters")
	})

	t.Run("get_commit_lines unknown commit", func(t *testing.T) {
		res := callTool(t, cfg, "get_commit_lines", map[string]any{"commit_id": "ffffff"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), `unknown commit "ffffff"`)
	})

	t.Run("get_stats missing source", func(t *testing.T) {
		res := callTool(t, cfg, "get_stats", map[string]any{"source": filepath.Join(t.TempDir(), "nope.csv")})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "load failed")
	})
}

func TestMCPServerHandlers_Success(t *testing.T) {
	cfg := baseConfig(t)

	t.Run("get_stats", func(t *testing.T) {
		res := callTool(t, cfg, "get_stats", map[string]any{})
		require.False(t, res.IsError, resultText(t, res))

		var stats schema.GlobalStats
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &stats))
		assert.Equal(t, 4, stats.TotalRecords)
		assert.Equal(t, 2, stats.TotalCommits)
		assert.Equal(t, 3, stats.TotalFiles)
	})

	t.Run("list_commits largest first with limit", func(t *testing.T) {
		res := callTool(t, cfg, "list_commits", map[string]any{"limit": 1.0})
		require.False(t, res.IsError, resultText(t, res))

		var out struct {
			Selection schema.SelectionSummary `json:"selection"`
			Commits   []schema.Commit         `json:"commits"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
		require.Len(t, out.Commits, 1)
		assert.Equal(t, "c1a2b3", out.Commits[0].ID)
		assert.Equal(t, 2, out.Selection.Visible)
		assert.Equal(t, "No commits selected", out.Selection.CountText)
	})

	t.Run("select_region whole chart", func(t *testing.T) {
		res := callTool(t, cfg, "select_region", map[string]any{
			"x0": 0.0, "y0": 0.0, "x1": 1000.0, "y1": 600.0,
		})
		require.False(t, res.IsError, resultText(t, res))

		var out struct {
			Selection schema.SelectionSummary `json:"selection"`
			Commits   []schema.Commit         `json:"commits"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
		assert.Len(t, out.Commits, 2)
		assert.Equal(t, "2 commits selected", out.Selection.CountText)
		assert.False(t, out.Selection.BaselineUsed)
		assert.Equal(t, 4, out.Selection.Breakdown.Total)
	})

	t.Run("list_commits without limit", func(t *testing.T) {
		res := callTool(t, cfg, "list_commits", map[string]any{})
		require.False(t, res.IsError, resultText(t, res))

		var out struct {
			Commits []schema.Commit `json:"commits"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
		require.Len(t, out.Commits, 2)
		assert.Equal(t, []string{"c1a2b3", "d4e5f6"}, []string{out.Commits[0].ID, out.Commits[1].ID})
	})

	t.Run("get_commit_lines", func(t *testing.T) {
		res := callTool(t, cfg, "get_commit_lines", map[string]any{"commit_id": "c1a2b3"})
		require.False(t, res.IsError, resultText(t, res))

		var out struct {
			Commit    schema.Commit       `json:"commit"`
			Lines     []schema.LineRecord `json:"lines"`
			Breakdown schema.Breakdown    `json:"breakdown"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
		assert.Equal(t, "Alice", out.Commit.Author)
		assert.Equal(t, 3, out.Commit.TotalLines)
		require.Len(t, out.Lines, 3)
		for _, l := range out.Lines {
			assert.Equal(t, "c1a2b3", l.CommitID)
		}
		assert.Equal(t, 3, out.Breakdown.Total)
		require.Len(t, out.Breakdown.Entries, 2)
		assert.Equal(t, "66.7%", out.Breakdown.Entries[0].Label)
	})

	t.Run("get_breakdown falls back to visible commits", func(t *testing.T) {
		res := callTool(t, cfg, "get_breakdown", map[string]any{})
		require.False(t, res.IsError, resultText(t, res))

		var out struct {
			Breakdown    schema.Breakdown `json:"breakdown"`
			BaselineUsed bool             `json:"baseline_used"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
		assert.True(t, out.BaselineUsed)
		assert.Equal(t, 4, out.Breakdown.Total)
		require.NotEmpty(t, out.Breakdown.Entries)
		assert.Equal(t, "js", out.Breakdown.Entries[0].Type)
	})
}
