package core

import (
	"context"

	"github.com/leen324/locscope/core/agg"
	"github.com/leen324/locscope/internal/contract"
	"github.com/leen324/locscope/schema"
)

// Session ties one dispatcher and its surface to a loader for one data source.
// The HTTP host keeps one per viewer and the CLI and MCP hosts use one per call.
type Session struct {
	Dispatcher *Dispatcher
	Surface    *MemorySurface
	Loader     *Loader
	Source     contract.DataSource
}

// NewSession builds a session for cfg. A nil mgr disables caching and history.
func NewSession(cfg *contract.Config, mgr contract.CacheManager, observer Observer) *Session {
	surface := NewMemorySurface()
	dispatcher := NewDispatcher(surface, DispatcherOptions{
		Layout:   DefaultLayout(),
		Radius:   [2]float64{cfg.RadiusMin, cfg.RadiusMax},
		Location: cfg.Location,
		Observer: observer,
	})
	s := &Session{
		Dispatcher: dispatcher,
		Surface:    surface,
		Source:     contract.NewDataSource(cfg.Source),
	}
	s.Loader = NewLoader(func(a agg.Aggregate) { dispatcher.DataLoaded(a) }, loaderOptions(cfg, mgr))
	return s
}

// Reload fetches the source again and, if this load wins, replaces the dataset.
func (s *Session) Reload(ctx context.Context) (LoadResult, error) {
	return s.Loader.Load(ctx, s.Source)
}

// Evaluate applies a cutoff position and an optional brush, then returns the frame.
func (s *Session) Evaluate(position float64, rect *schema.Rect) (Frame, error) {
	if _, err := s.Dispatcher.CutoffChanged(position); err != nil {
		return Frame{}, err
	}
	return s.Dispatcher.BrushChanged(rect)
}

func loaderOptions(cfg *contract.Config, mgr contract.CacheManager) LoaderOptions {
	opts := LoaderOptions{
		Parse: agg.ParseOptions{
			Policy:   cfg.ParsePolicy,
			Location: cfg.Location,
		},
		URLs:     agg.NewURLBuilder(cfg.CommitHost, cfg.CommitOwner, cfg.CommitRepo),
		Location: cfg.Location,
		Params: map[string]any{
			"parse_policy": string(cfg.ParsePolicy),
			"commit_owner": cfg.CommitOwner,
			"commit_repo":  cfg.CommitRepo,
			"radius_min":   cfg.RadiusMin,
			"radius_max":   cfg.RadiusMax,
		},
	}
	if cfg.Location != nil {
		opts.Params["timezone"] = cfg.Location.String()
	}
	if mgr != nil {
		opts.Cache = mgr.GetIngestStore()
		opts.History = mgr.GetHistoryStore()
	}
	return opts
}
