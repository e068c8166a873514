// Package geo provides the axis-aligned bounding box algebra shared by the
// binary loader, the R-tree, and the public query façade.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// BoundingBox is an axis-aligned rectangle in (x, y) space. For map data x
// is longitude and y is latitude, but the type itself is coordinate-system
// agnostic — the R-tree indexes BoundingBox values without caring what the
// axes mean.
type BoundingBox struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Intersects reports whether b and other share at least one point.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return !(b.MaxX < other.MinX || b.MinX > other.MaxX ||
		b.MaxY < other.MinY || b.MinY > other.MaxY)
}

// Contains reports whether the point (x, y) lies within b, inclusive of
// its edges.
func (b BoundingBox) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Expand grows b to the smallest box that also covers other.
func (b BoundingBox) Expand(other BoundingBox) BoundingBox {
	return BoundingBox{
		MinX: min(b.MinX, other.MinX),
		MinY: min(b.MinY, other.MinY),
		MaxX: max(b.MaxX, other.MaxX),
		MaxY: max(b.MaxY, other.MaxY),
	}
}

// Area returns width*height, or 0 for a degenerate (zero- or negative-width
// or -height) box.
func (b BoundingBox) Area() float64 {
	w, h := b.MaxX-b.MinX, b.MaxY-b.MinY
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Perimeter returns 2*(width+height), or 0 for a degenerate box.
func (b BoundingBox) Perimeter() float64 {
	w, h := b.MaxX-b.MinX, b.MaxY-b.MinY
	if w <= 0 || h <= 0 {
		return 0
	}
	return 2 * (w + h)
}

// Center returns the midpoint of b.
func (b BoundingBox) Center() (x, y float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}

// ExpansionArea returns the increase in area that expanding b to also cover
// other would incur. Used by the R-tree's choose-subtree heuristic.
func (b BoundingBox) ExpansionArea(other BoundingBox) float64 {
	return b.Expand(other).Area() - b.Area()
}

// Finite reports whether every bound is a finite float (no NaN/Inf),
// matching the validation the on-disk R-tree format requires when
// deserializing untrusted bytes.
func (b BoundingBox) Finite() bool {
	return isFinite(b.MinX) && isFinite(b.MinY) && isFinite(b.MaxX) && isFinite(b.MaxY)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ToOrbBound converts b to an orb.Bound, the representation used at the
// public façade boundary for geometry returned to callers.
func (b BoundingBox) ToOrbBound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinX, b.MinY},
		Max: orb.Point{b.MaxX, b.MaxY},
	}
}

// FromOrbBound converts an orb.Bound into a BoundingBox.
func FromOrbBound(b orb.Bound) BoundingBox {
	return BoundingBox{
		MinX: b.Min[0], MinY: b.Min[1],
		MaxX: b.Max[0], MaxY: b.Max[1],
	}
}

// FromPoint returns the degenerate box containing exactly (x, y).
func FromPoint(x, y float64) BoundingBox {
	return BoundingBox{MinX: x, MinY: y, MaxX: x, MaxY: y}
}
