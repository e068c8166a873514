package geo

import (
	"math"
	"testing"
)

func TestBoundingBoxIntersects(t *testing.T) {
	tests := []struct {
		name     string
		a, b     BoundingBox
		expected bool
	}{
		{
			name:     "overlapping",
			a:        BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
			b:        BoundingBox{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15},
			expected: true,
		},
		{
			name:     "touching edge",
			a:        BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
			b:        BoundingBox{MinX: 10, MinY: 0, MaxX: 20, MaxY: 10},
			expected: true,
		},
		{
			name:     "disjoint",
			a:        BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
			b:        BoundingBox{MinX: 11, MinY: 11, MaxX: 20, MaxY: 20},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b); got != tt.expected {
				t.Errorf("Intersects() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBoundingBoxContains(t *testing.T) {
	b := BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	if !b.Contains(5, 5) {
		t.Error("expected box to contain interior point")
	}
	if !b.Contains(0, 0) {
		t.Error("expected box to contain its own corner")
	}
	if b.Contains(11, 5) {
		t.Error("expected box not to contain point outside its x range")
	}
}

func TestBoundingBoxExpand(t *testing.T) {
	a := BoundingBox{MinX: 0, MinY: 0, MaxX: 5, MaxY: 5}
	b := BoundingBox{MinX: 3, MinY: -2, MaxX: 10, MaxY: 4}

	got := a.Expand(b)
	want := BoundingBox{MinX: 0, MinY: -2, MaxX: 10, MaxY: 5}
	if got != want {
		t.Errorf("Expand() = %+v, want %+v", got, want)
	}
}

func TestBoundingBoxAreaDegenerate(t *testing.T) {
	tests := []BoundingBox{
		{MinX: 0, MinY: 0, MaxX: 0, MaxY: 10},
		{MinX: 0, MinY: 0, MaxX: 10, MaxY: 0},
		{MinX: 5, MinY: 5, MaxX: 0, MaxY: 10},
	}
	for _, b := range tests {
		if got := b.Area(); got != 0 {
			t.Errorf("Area() = %v, want 0 for degenerate box %+v", got, b)
		}
		if got := b.Perimeter(); got != 0 {
			t.Errorf("Perimeter() = %v, want 0 for degenerate box %+v", got, b)
		}
	}
}

func TestBoundingBoxArea(t *testing.T) {
	b := BoundingBox{MinX: 0, MinY: 0, MaxX: 4, MaxY: 3}
	if got := b.Area(); got != 12 {
		t.Errorf("Area() = %v, want 12", got)
	}
	if got := b.Perimeter(); got != 14 {
		t.Errorf("Perimeter() = %v, want 14", got)
	}
}

func TestBoundingBoxExpansionArea(t *testing.T) {
	a := BoundingBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	b := BoundingBox{MinX: 0, MinY: 0, MaxX: 5, MaxY: 5}

	if got := a.ExpansionArea(b); got != 0 {
		t.Errorf("ExpansionArea() = %v, want 0 when other is already contained", got)
	}

	c := BoundingBox{MinX: 10, MinY: 0, MaxX: 20, MaxY: 10}
	if got := a.ExpansionArea(c); got != 100 {
		t.Errorf("ExpansionArea() = %v, want 100", got)
	}
}

func TestBoundingBoxFinite(t *testing.T) {
	if !(BoundingBox{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}).Finite() {
		t.Error("expected ordinary box to be finite")
	}
	if (BoundingBox{MinX: math.NaN(), MaxX: 1, MaxY: 1}).Finite() {
		t.Error("expected box with NaN bound to be non-finite")
	}
	if (BoundingBox{MinX: math.Inf(1), MaxX: 1, MaxY: 1}).Finite() {
		t.Error("expected box with Inf bound to be non-finite")
	}
}

func TestBoundingBoxOrbRoundTrip(t *testing.T) {
	b := BoundingBox{MinX: -122.5, MinY: 37.5, MaxX: -122.0, MaxY: 38.0}
	got := FromOrbBound(b.ToOrbBound())
	if got != b {
		t.Errorf("round trip through orb.Bound = %+v, want %+v", got, b)
	}
}
