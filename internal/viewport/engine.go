// Package viewport holds the pan/zoom state for the schematic canvas and the
// cursor-anchored zoom math. The engine is the single writer for this state;
// consumers read snapshots through Zoom and Pan.
package viewport

import "sync"

const (
	// MinZoom is the lowest zoom factor the engine stores.
	MinZoom = 0.1
	// MaxZoom is the highest zoom factor the engine stores.
	MaxZoom = 5.0
	// DefaultZoom is the zoom factor after construction or Reset.
	DefaultZoom = 1.0

	zoomInFactor  = 1.1
	zoomOutFactor = 0.9
)

// Point is a position in container pixel space.
type Point struct {
	X float64
	Y float64
}

// Size is a viewport extent in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Engine owns the zoom factor and pan offset. All setters clamp or store in
// one critical section so a zoom step and its pan compensation are observed
// together, never split across reads.
type Engine struct {
	mu   sync.Mutex
	zoom float64
	pan  Point
}

// NewEngine returns an engine at default zoom with the pan at the origin.
func NewEngine() *Engine {
	return &Engine{zoom: DefaultZoom}
}

// Zoom returns the current zoom factor.
func (e *Engine) Zoom() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zoom
}

// Pan returns the current pan offset.
func (e *Engine) Pan() Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pan
}

// SetZoom stores value clamped to [MinZoom, MaxZoom]. Pan is untouched.
func (e *Engine) SetZoom(value float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.zoom = clampZoom(value)
}

// SetPan stores the offset verbatim; panning past the origin is allowed.
func (e *Engine) SetPan(offset Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pan = offset
}

// Reset restores the default zoom and origin pan.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.zoom = DefaultZoom
	e.pan = Point{}
}

// ZoomAtCursor applies one discrete wheel event: a fixed 10% multiplicative
// zoom step (in for negative wheel deltas, out otherwise) with the pan
// recomputed in the same update so the point under the cursor stays visually
// fixed.
func (e *Engine) ZoomAtCursor(cursor Point, wheelDelta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	factor := zoomOutFactor
	if wheelDelta < 0 {
		factor = zoomInFactor
	}

	newZoom := clampZoom(e.zoom * factor)
	scale := newZoom / e.zoom

	e.pan = Point{
		X: cursor.X - (cursor.X-e.pan.X)*scale,
		Y: cursor.Y - (cursor.Y-e.pan.Y)*scale,
	}
	e.zoom = newZoom
}

// PanTo centers the viewport on a target point in schematic space at the
// current zoom.
func (e *Engine) PanTo(target Point, view Size) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pan = Point{
		X: view.Width/2 - target.X*e.zoom,
		Y: view.Height/2 - target.Y*e.zoom,
	}
}

func clampZoom(value float64) float64 {
	if value < MinZoom {
		return MinZoom
	}
	if value > MaxZoom {
		return MaxZoom
	}
	return value
}
