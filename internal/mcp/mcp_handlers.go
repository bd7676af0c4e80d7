package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/leen324/locscope/core"
	"github.com/leen324/locscope/core/algo"
	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

var rectArgs = []string{"x0", "y0", "x1", "y1"}

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// selectionResult is the payload of list_commits and select_region.
type selectionResult struct {
	Selection schema.SelectionSummary `json:"selection"`
	Commits   []schema.Commit         `json:"commits"`
}

// breakdownResult is the payload of get_breakdown.
type breakdownResult struct {
	Breakdown    schema.Breakdown `json:"breakdown"`
	BaselineUsed bool             `json:"baseline_used"`
	CountText    string           `json:"count_text"`
	Readout      string           `json:"readout"`
}

// commitLinesResult is the payload of get_commit_lines.
type commitLinesResult struct {
	Commit    schema.Commit       `json:"commit"`
	Lines     []schema.LineRecord `json:"lines"`
	Breakdown schema.Breakdown    `json:"breakdown"`
}

// configFor clones the base config and applies the per-call source and cutoff.
func (h *toolHandler) configFor(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if src := request.GetString("source", ""); src != "" {
		cfg.Source = src
	}
	cfg.Cutoff = request.GetFloat("cutoff", cfg.Cutoff)
	if cfg.Cutoff < schema.SliderMin || cfg.Cutoff > schema.SliderMax {
		return nil, fmt.Errorf("cutoff must be between %g and %g", schema.SliderMin, schema.SliderMax)
	}
	return cfg, nil
}

// rectFrom reads the brush corners. It returns nil when no corner is given and
// an error when only some are.
func rectFrom(request mcp.CallToolRequest) (*schema.Rect, error) {
	args := request.GetArguments()
	present := 0
	for _, name := range rectArgs {
		if _, ok := args[name]; ok {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}
	if present != len(rectArgs) {
		return nil, fmt.Errorf("x0, y0, x1 and y1 must be given together")
	}

	var corners [4]float64
	for i, name := range rectArgs {
		v, err := request.RequireFloat(name)
		if err != nil {
			return nil, err
		}
		corners[i] = v
	}
	return &schema.Rect{X0: corners[0], Y0: corners[1], X1: corners[2], Y1: corners[3]}, nil
}

func (h *toolHandler) evaluate(ctx context.Context, cfg *contract.Config, rect *schema.Rect) (*core.Session, core.Frame, error) {
	s, err := core.OpenSession(ctx, cfg, h.mgr)
	if err != nil {
		return nil, core.Frame{}, err
	}
	frame, err := s.Evaluate(cfg.Cutoff, rect)
	if err != nil {
		return nil, core.Frame{}, err
	}
	return s, frame, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if src := request.GetString("source", ""); src != "" {
		cfg.Source = src
	}

	s, err := core.OpenSession(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	frame, err := s.Dispatcher.Snapshot()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}
	return jsonResult(frame.Stats), nil
}

func (h *toolHandler) handleListCommits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	s, frame, err := h.evaluate(ctx, cfg, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	st, err := s.Dispatcher.State()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}

	commits := algo.RankCommits(st.Visible, request.GetInt("limit", 0))
	if commits == nil {
		commits = []schema.Commit{}
	}
	return jsonResult(selectionResult{Selection: frame.Selection, Commits: commits}), nil
}

func (h *toolHandler) handleSelectRegion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	rect, err := rectFrom(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	if rect == nil {
		return mcp.NewToolResultError("invalid parameters: x0, y0, x1 and y1 are required"), nil
	}

	s, frame, err := h.evaluate(ctx, cfg, rect)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	st, err := s.Dispatcher.State()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("selection failed: %v", err)), nil
	}

	selected := st.Selected
	if selected == nil {
		selected = []schema.Commit{}
	}
	return jsonResult(selectionResult{Selection: frame.Selection, Commits: selected}), nil
}

func (h *toolHandler) handleGetBreakdown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	rect, err := rectFrom(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	_, frame, err := h.evaluate(ctx, cfg, rect)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	return jsonResult(breakdownResult{
		Breakdown:    frame.Selection.Breakdown,
		BaselineUsed: frame.Selection.BaselineUsed,
		CountText:    frame.Selection.CountText,
		Readout:      frame.Selection.Readout,
	}), nil
}

func (h *toolHandler) handleGetCommitLines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("commit_id")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	cfg := h.baseCfg.Clone()
	if src := request.GetString("source", ""); src != "" {
		cfg.Source = src
	}

	s, err := core.OpenSession(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	data, err := s.Dispatcher.Dataset()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}

	idx := slices.IndexFunc(data.Commits, func(c schema.Commit) bool { return c.ID == id })
	if idx < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("unknown commit %q", id)), nil
	}
	lines := data.Index.Lines(id)
	return jsonResult(commitLinesResult{
		Commit:    data.Commits[idx],
		Lines:     lines,
		Breakdown: core.ComputeBreakdown(lines),
	}), nil
}
