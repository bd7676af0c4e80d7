package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/leen324/locscope/core"
	"github.com/leen324/locscope/internal/outwriter"
	"github.com/leen324/locscope/schema"
)

const maxBodyBytes = 1 << 20

// StateResponse is the body of GET /api/state.
type StateResponse struct {
	Frame   core.Frame     `json:"frame"`
	Points  []core.Element `json:"points"` // draw order, largest first
	Tooltip schema.Tooltip `json:"tooltip"`
}

// ReloadResponse is the body of POST /api/reload.
type ReloadResponse struct {
	Source     string     `json:"source"`
	Generation uint64     `json:"generation"`
	Applied    bool       `json:"applied"`
	DurationMs int64      `json:"duration_ms"`
	Frame      core.Frame `json:"frame"`
}

type brushRequest struct {
	Rect *schema.Rect `json:"rect"`
}

// cutoffRequest carries either a slider position or an RFC 3339 time.
type cutoffRequest struct {
	Position *float64   `json:"position"`
	Time     *time.Time `json:"time"`
}

type hoverRequest struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Enter bool    `json:"enter"`
}

// decodeBody reads a JSON body into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	vs := s.sessions.acquire(w, r)
	data, err := core.BuildChartData(vs.session.Source.Name(), vs.session)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := outwriter.RenderChartPage(&buf, data); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	vs := s.sessions.acquire(w, r)
	frame, err := vs.session.Dispatcher.Snapshot()
	if err != nil {
		writeMappedError(w, err)
		return
	}
	points := vs.session.Surface.Elements()
	if points == nil {
		points = []core.Element{}
	}
	writeJSON(w, http.StatusOK, StateResponse{
		Frame:   frame,
		Points:  points,
		Tooltip: vs.session.Surface.Tooltip(),
	})
}

func (s *Server) handleBrush(w http.ResponseWriter, r *http.Request) {
	vs := s.sessions.acquire(w, r)
	var req brushRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMappedError(w, err)
		return
	}
	frame, err := vs.session.Dispatcher.BrushChanged(req.Rect)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleCutoff(w http.ResponseWriter, r *http.Request) {
	vs := s.sessions.acquire(w, r)
	var req cutoffRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMappedError(w, err)
		return
	}
	if (req.Position == nil) == (req.Time == nil) {
		writeMappedError(w, fmt.Errorf("%w: exactly one of position or time is required", errBadRequest))
		return
	}

	var frame core.Frame
	var err error
	if req.Time != nil {
		frame, err = vs.session.Dispatcher.CutoffAt(*req.Time)
	} else {
		if *req.Position < schema.SliderMin || *req.Position > schema.SliderMax {
			writeMappedError(w, fmt.Errorf("%w: position must be between %g and %g", errBadRequest, schema.SliderMin, schema.SliderMax))
			return
		}
		frame, err = vs.session.Dispatcher.CutoffChanged(*req.Position)
	}
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	vs := s.sessions.acquire(w, r)
	var req hoverRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeMappedError(w, err)
		return
	}
	if req.ID == "" {
		writeMappedError(w, fmt.Errorf("%w: id is required", errBadRequest))
		return
	}
	if err := vs.session.Dispatcher.Hover(req.ID, req.X, req.Y, req.Enter); err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vs.session.Surface.Tooltip())
}

func (s *Server) handleFragments(w http.ResponseWriter, r *http.Request) {
	vs := s.sessions.acquire(w, r)
	frame, err := vs.session.Dispatcher.Snapshot()
	if err != nil {
		writeMappedError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := core.RenderStatsPanel(&buf, frame.Stats); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if err := core.RenderBreakdownPanel(&buf, frame.Selection.Breakdown); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	vs := s.sessions.acquire(w, r)
	res, err := s.sessions.load(r.Context(), vs)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	frame, err := vs.session.Dispatcher.Snapshot()
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{
		Source:     res.Source,
		Generation: res.Generation,
		Applied:    res.Applied,
		DurationMs: res.Duration.Milliseconds(),
		Frame:      frame,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"sessions":  s.sessions.len(),
		"timestamp": time.Now().UTC(),
	})
}
