package core

import (
	"sync"

	"github.com/leen324/locscope/schema"
)

// Element is one point held by a MemorySurface. Its pointer identity is stable
// for as long as the point stays on the surface.
type Element struct {
	ID       string            `json:"id"`
	Attrs    schema.PointAttrs `json:"attrs"`
	Selected bool              `json:"selected"`

	handlers  PointHandlers
	listeners int
}

// Listeners returns how many pointer listeners are attached.
func (e *Element) Listeners() int { return e.listeners }

// MemorySurface is an in-memory Surface used by the HTTP host and tests.
type MemorySurface struct {
	mu       sync.Mutex
	elements map[string]*Element
	order    []string
	tooltip  schema.Tooltip
	creates  int
	removes  int
}

var _ Surface = &MemorySurface{} // Compile-time check

// NewMemorySurface creates an empty surface with a hidden tooltip.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{
		elements: make(map[string]*Element),
		tooltip:  schema.Tooltip{Hidden: true},
	}
}

// Create implements the Surface interface.
func (s *MemorySurface) Create(id string, attrs schema.PointAttrs, handlers PointHandlers) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &Element{ID: id, Attrs: attrs, handlers: handlers}
	if handlers.OnEnter != nil {
		e.listeners++
	}
	if handlers.OnLeave != nil {
		e.listeners++
	}
	s.elements[id] = e
	s.order = append(s.order, id)
	s.creates++
}

// Update implements the Surface interface.
func (s *MemorySurface) Update(id string, attrs schema.PointAttrs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.elements[id]; ok {
		e.Attrs = attrs
	}
}

// Remove implements the Surface interface.
func (s *MemorySurface) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elements[id]; !ok {
		return
	}
	delete(s.elements, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.removes++
}

// SetSelected implements the Surface interface.
func (s *MemorySurface) SetSelected(id string, selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.elements[id]; ok {
		e.Selected = selected
	}
}

// Order implements the Surface interface. Unknown ids are ignored.
func (s *MemorySurface) Order(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.elements[id]; ok {
			order = append(order, id)
		}
	}
	s.order = order
}

// ShowTooltip implements the Surface interface.
func (s *MemorySurface) ShowTooltip(t schema.Tooltip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Hidden = false
	s.tooltip = t
}

// HideTooltip implements the Surface interface.
func (s *MemorySurface) HideTooltip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tooltip.Hidden = true
}

// Element returns the element for id.
func (s *MemorySurface) Element(id string) (*Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elements[id]
	return e, ok
}

// Elements returns copies of all elements in draw order.
func (s *MemorySurface) Elements() []Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Element, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.elements[id])
	}
	return out
}

// Tooltip returns the current tooltip.
func (s *MemorySurface) Tooltip() schema.Tooltip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tooltip
}

// Counts returns how many elements were ever created and removed.
func (s *MemorySurface) Counts() (creates, removes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates, s.removes
}

// Enter fires the pointer-enter listener of a point, as a pointer would.
func (s *MemorySurface) Enter(id string, x, y float64) bool {
	s.mu.Lock()
	e, ok := s.elements[id]
	s.mu.Unlock()
	if !ok || e.handlers.OnEnter == nil {
		return false
	}
	e.handlers.OnEnter(id, x, y)
	return true
}

// Leave fires the pointer-leave listener of a point.
func (s *MemorySurface) Leave(id string) bool {
	s.mu.Lock()
	e, ok := s.elements[id]
	s.mu.Unlock()
	if !ok || e.handlers.OnLeave == nil {
		return false
	}
	e.handlers.OnLeave(id)
	return true
}
