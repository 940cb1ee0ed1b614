package world

import (
	"math"

	"github.com/blockbots/server/internal/core/ecs"
)

// SpatialIndex implements a cell-based index along the workspace x axis.
// The robots' vision is a horizontal ray, so only x matters for queries.
// Accessed only from the tick goroutine, no locks.

// Kind separates the entity populations sharing the index.
type Kind uint8

const (
	KindBlock Kind = iota + 1
	KindContainer
	KindRobot
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindContainer:
		return "container"
	case KindRobot:
		return "robot"
	}
	return "unknown"
}

const defaultCellSize = 2.0

type indexEntry struct {
	kind Kind
	x    float64
	cell int64
}

// SpatialIndex tracks which entities are in which x cell.
type SpatialIndex struct {
	cellSize float64
	cells    map[int64]map[ecs.EntityID]struct{}
	entries  map[ecs.EntityID]indexEntry
}

func NewSpatialIndex(cellSize float64) *SpatialIndex {
	if cellSize <= 0 {
		cellSize = defaultCellSize
	}
	return &SpatialIndex{
		cellSize: cellSize,
		cells:    make(map[int64]map[ecs.EntityID]struct{}),
		entries:  make(map[ecs.EntityID]indexEntry),
	}
}

func (g *SpatialIndex) cellOf(x float64) int64 {
	return int64(math.Floor(x / g.cellSize))
}

// Add places an entity into the index. Adding an indexed entity moves it.
func (g *SpatialIndex) Add(id ecs.EntityID, kind Kind, x float64) {
	if _, ok := g.entries[id]; ok {
		g.Remove(id)
	}
	c := g.cellOf(x)
	cell := g.cells[c]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{})
		g.cells[c] = cell
	}
	cell[id] = struct{}{}
	g.entries[id] = indexEntry{kind: kind, x: x, cell: c}
}

// Remove takes an entity out of the index.
func (g *SpatialIndex) Remove(id ecs.EntityID) {
	e, ok := g.entries[id]
	if !ok {
		return
	}
	delete(g.entries, id)
	if cell := g.cells[e.cell]; cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, e.cell)
		}
	}
}

// Move updates an indexed entity's position. Unknown entities are ignored.
func (g *SpatialIndex) Move(id ecs.EntityID, x float64) {
	e, ok := g.entries[id]
	if !ok {
		return
	}
	c := g.cellOf(x)
	if c == e.cell {
		e.x = x
		g.entries[id] = e
		return
	}
	g.Add(id, e.kind, x)
}

func (g *SpatialIndex) Has(id ecs.EntityID) bool {
	_, ok := g.entries[id]
	return ok
}

// Count returns the number of indexed entities of one kind.
func (g *SpatialIndex) Count(kind Kind) int {
	n := 0
	for _, e := range g.entries {
		if e.kind == kind {
			n++
		}
	}
	return n
}

// Clear drops every entry.
func (g *SpatialIndex) Clear() {
	clear(g.cells)
	clear(g.entries)
}

// RayNearest returns the nearest entity of the given kind hit by a ray cast
// from originX toward dir, up to maxRange. Only the first hit counts: cells
// are walked outward and the walk stops at the first cell holding a hit.
// Equal distances resolve to the lower entity ID.
func (g *SpatialIndex) RayNearest(kind Kind, originX float64, dir Direction, maxRange float64) (ecs.EntityID, float64, bool) {
	if !dir.Valid() || maxRange < 0 {
		return ecs.NoEntity, 0, false
	}
	first := g.cellOf(originX)
	last := g.cellOf(originX + dir.Sign()*maxRange)
	step := int64(dir)

	for c := first; ; c += step {
		best, bestDist, found := ecs.NoEntity, 0.0, false
		for id := range g.cells[c] {
			e := g.entries[id]
			if e.kind != kind {
				continue
			}
			d := (e.x - originX) * dir.Sign()
			if d < 0 || d > maxRange {
				continue
			}
			if !found || d < bestDist || (d == bestDist && id < best) {
				best, bestDist, found = id, d, true
			}
		}
		if found {
			return best, bestDist, true
		}
		if c == last {
			break
		}
	}
	return ecs.NoEntity, 0, false
}

// Within returns the IDs of one kind with minX <= x <= maxX, unordered.
func (g *SpatialIndex) Within(kind Kind, minX, maxX float64) []ecs.EntityID {
	var out []ecs.EntityID
	for c := g.cellOf(minX); c <= g.cellOf(maxX); c++ {
		for id := range g.cells[c] {
			e := g.entries[id]
			if e.kind == kind && e.x >= minX && e.x <= maxX {
				out = append(out, id)
			}
		}
	}
	return out
}
