package world

import "math/rand"

// Vec2 is a point in workspace coordinates.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Lerp interpolates from v to o; t is clamped to [0, 1].
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Workspace is the session rectangle, centered on the origin.
// Immutable for the lifetime of a scene.
type Workspace struct {
	Width  float64
	Height float64
}

// Walls and floor eat into the usable area: one unit on each side and one
// unit of floor.
const (
	insetWidth  = 2
	insetHeight = 1
)

// DefaultAspect is height/width when a scene does not give a height.
const DefaultAspect = 9.0 / 16.0

func (w Workspace) Min() Vec2 { return Vec2{-w.Width / 2, -w.Height / 2} }
func (w Workspace) Max() Vec2 { return Vec2{w.Width / 2, w.Height / 2} }

// InsetSize is the usable area net of the wall and floor margin.
func (w Workspace) InsetSize() Vec2 {
	return Vec2{w.Width - insetWidth, w.Height - insetHeight}
}

// offset maps grid coordinates (origin at the inset's bottom-left ground
// corner) to workspace coordinates.
func (w Workspace) offset() Vec2 {
	return Vec2{(w.Width-1)/2 - 0.5, w.Height/2 - 1}
}

// PositionInScene converts a grid position to workspace coordinates.
func (w Workspace) PositionInScene(grid Vec2) Vec2 {
	off := w.offset()
	return Vec2{grid.X - off.X, grid.Y - off.Y}
}

// GridX converts a 0.0-1.0 fraction of the inset width to a grid x.
func (w Workspace) GridX(fraction float64) float64 {
	return w.InsetSize().X * fraction
}

// GroundedPosition converts a 0.0-1.0 fraction of the inset width to a
// ground-snapped workspace position.
func (w Workspace) GroundedPosition(fraction float64) Vec2 {
	return w.PositionInScene(Vec2{X: w.GridX(fraction)})
}

// GroundY is the y coordinate of the floor surface.
func (w Workspace) GroundY() float64 { return -w.offset().Y }

// RandomBlockPosition picks a spawn point across the inset width, in the
// upper half of the inset height.
func (w Workspace) RandomBlockPosition(r *rand.Rand) Vec2 {
	size := w.InsetSize()
	grid := Vec2{
		X: r.Float64() * size.X,
		Y: size.Y/2 + r.Float64()*size.Y/2,
	}
	return w.PositionInScene(grid)
}

// Contains reports whether p lies within the workspace bounds.
func (w Workspace) Contains(p Vec2) bool {
	lo, hi := w.Min(), w.Max()
	return p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y
}
