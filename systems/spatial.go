// Package systems holds the particle simulation core: toroidal math, the
// spatial hash grid, the interaction model, the force profile and the
// per-tick integration step.
package systems

import (
	"iter"
	"math"
)

// DefaultGridCells is the reference grid resolution per axis.
const DefaultGridCells = 10

// Entry is an item stored in the grid together with its insertion position.
type Entry[T any] struct {
	Pos  Vec2
	Item T
}

// Neighbour holds a query hit with precomputed spatial data.
// This avoids recomputing the toroidal delta and distance in the force loop.
type Neighbour[T any] struct {
	Pos    Vec2
	Delta  Vec2    // Toroidal displacement from query origin
	DistSq float32 // Squared distance (avoid sqrt in hot path)
	Item   T
}

// Grid is a uniform spatial hash over a toroidal domain. It is rebuilt from
// scratch every tick (Clear then Insert) rather than tracking moves.
type Grid[T any] struct {
	bounds   Rect
	cols     int
	rows     int
	cellSize Vec2
	cells    [][]Entry[T] // flat row-major grid of buckets
	count    int
}

// NewGrid creates a grid with cols×rows cells covering bounds.
func NewGrid[T any](bounds Rect, cols, rows int) *Grid[T] {
	cols = max(cols, 1)
	rows = max(rows, 1)

	cells := make([][]Entry[T], cols*rows)
	for i := range cells {
		cells[i] = make([]Entry[T], 0, 8) // pre-allocate small capacity
	}

	g := &Grid[T]{
		cols:  cols,
		rows:  rows,
		cells: cells,
	}
	g.UpdateBounds(bounds)
	return g
}

// UpdateBounds recomputes the cell size for a new domain. Existing contents
// are not rehashed; call between ticks after Clear.
func (g *Grid[T]) UpdateBounds(bounds Rect) {
	g.bounds = bounds
	g.cellSize = Vec2{
		X: absf(bounds.Width()) / float32(g.cols),
		Y: absf(bounds.Height()) / float32(g.rows),
	}
}

// Bounds returns the domain the grid covers.
func (g *Grid[T]) Bounds() Rect { return g.bounds }

// Dims returns the cell count per axis.
func (g *Grid[T]) Dims() (cols, rows int) { return g.cols, g.rows }

// CellSize returns the world size of one cell.
func (g *Grid[T]) CellSize() Vec2 { return g.cellSize }

// Len returns the number of items inserted since the last Clear.
func (g *Grid[T]) Len() int { return g.count }

// Clear removes all items, keeping bucket capacity for the next tick.
func (g *Grid[T]) Clear() {
	for i := range g.cells {
		clear(g.cells[i]) // drop references held by T
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
}

// Insert adds item at pos. Positions outside the domain (pos should already
// be wrapped) are dropped and Insert reports false.
func (g *Grid[T]) Insert(pos Vec2, item T) bool {
	idx, ok := g.cellIndex(pos)
	if !ok {
		return false
	}
	g.cells[idx] = append(g.cells[idx], Entry[T]{Pos: pos, Item: item})
	g.count++
	return true
}

// CellLen returns how many items share the cell containing pos.
func (g *Grid[T]) CellLen(pos Vec2) int {
	idx, ok := g.cellIndex(pos)
	if !ok {
		return 0
	}
	return len(g.cells[idx])
}

// MaxCellLen returns the occupancy of the most crowded cell.
func (g *Grid[T]) MaxCellLen() int {
	best := 0
	for _, c := range g.cells {
		best = max(best, len(c))
	}
	return best
}

// Query yields every item whose toroidal distance to pos is at most radius.
// The sequence is lazy and may be abandoned early. Yielded pointers are
// valid until the next Clear or Insert.
func (g *Grid[T]) Query(pos Vec2, radius float32) iter.Seq2[Vec2, *T] {
	return func(yield func(Vec2, *T) bool) {
		if !g.queryable(radius) {
			return
		}
		radiusSq := radius * radius
		colLo, colN, rowLo, rowN := g.queryWindow(pos, radius)

		for dc := 0; dc < colN; dc++ {
			col := wrapIndex(colLo+dc, g.cols)
			for dr := 0; dr < rowN; dr++ {
				row := wrapIndex(rowLo+dr, g.rows)
				bucket := g.cells[row*g.cols+col]
				for i := range bucket {
					e := &bucket[i]
					if Displacement(g.bounds, pos, e.Pos).LengthSq() > radiusSq {
						continue
					}
					if !yield(e.Pos, &e.Item) {
						return
					}
				}
			}
		}
	}
}

// QueryInto appends every item within radius of pos to dst and returns the
// extended slice. Reuse dst across calls to avoid allocations.
func (g *Grid[T]) QueryInto(dst []Neighbour[T], pos Vec2, radius float32) []Neighbour[T] {
	if !g.queryable(radius) {
		return dst
	}
	radiusSq := radius * radius
	colLo, colN, rowLo, rowN := g.queryWindow(pos, radius)

	for dc := 0; dc < colN; dc++ {
		col := wrapIndex(colLo+dc, g.cols)
		for dr := 0; dr < rowN; dr++ {
			row := wrapIndex(rowLo+dr, g.rows)
			for _, e := range g.cells[row*g.cols+col] {
				delta := Displacement(g.bounds, pos, e.Pos)
				distSq := delta.LengthSq()
				if distSq <= radiusSq {
					dst = append(dst, Neighbour[T]{Pos: e.Pos, Delta: delta, DistSq: distSq, Item: e.Item})
				}
			}
		}
	}
	return dst
}

func (g *Grid[T]) queryable(radius float32) bool {
	return g.bounds.Valid() && radius >= 0
}

// queryWindow returns the first cell and the number of cells to scan on each
// axis. When the search window would wrap onto itself the whole axis is
// scanned once so no cell is visited twice.
func (g *Grid[T]) queryWindow(pos Vec2, radius float32) (colLo, colN, rowLo, rowN int) {
	if !g.bounds.Contains(pos) {
		pos = Wrap(g.bounds, pos)
	}
	gx, gy := g.worldToGrid(pos)
	colLo, colN = axisWindow(gx, radius/g.cellSize.X, g.cols)
	rowLo, rowN = axisWindow(gy, radius/g.cellSize.Y, g.rows)
	return colLo, colN, rowLo, rowN
}

func axisWindow(center int, cellRadius float32, count int) (lo, n int) {
	r := math.Ceil(float64(cellRadius))
	if math.IsNaN(r) || 2*r+1 >= float64(count) {
		return 0, count
	}
	ri := int(r)
	return center - ri, 2*ri + 1
}

// worldToGrid floor-divides a position into (possibly out of range) cell
// coordinates.
func (g *Grid[T]) worldToGrid(pos Vec2) (int, int) {
	gx := int(math.Floor(float64((pos.X - g.bounds.Min.X) / g.cellSize.X)))
	gy := int(math.Floor(float64((pos.Y - g.bounds.Min.Y) / g.cellSize.Y)))
	return gx, gy
}

// cellIndex returns the flat index for a world position.
func (g *Grid[T]) cellIndex(pos Vec2) (int, bool) {
	if !g.bounds.Valid() || !pos.IsFinite() {
		return 0, false
	}
	inside := g.bounds.Contains(pos)
	gx, gy := g.worldToGrid(pos)
	if inside {
		// Rounding can push a point just below Max onto the far edge.
		gx = min(max(gx, 0), g.cols-1)
		gy = min(max(gy, 0), g.rows-1)
	}
	if gx < 0 || gx >= g.cols || gy < 0 || gy >= g.rows {
		return 0, false
	}
	return gy*g.cols + gx, true
}

// wrapIndex wraps a cell coordinate modulo count.
func wrapIndex(i, count int) int {
	i %= count
	if i < 0 {
		i += count
	}
	return i
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
