package game

import (
	"fmt"
	"strings"
)

// Board dimensions.
const (
	Rows = 4
	Cols = 3
)

// Cell is a board coordinate. Row 0 is Side B's back row.
type Cell struct {
	Row int
	Col int
}

// InBounds reports whether the cell lies on the board.
func (c Cell) InBounds() bool {
	return c.Row >= 0 && c.Row < Rows && c.Col >= 0 && c.Col < Cols
}

func (c Cell) String() string { return fmt.Sprintf("%d,%d", c.Row, c.Col) }

// Board is the 4x3 grid plus one captured-piece pool per side.
// A piece lives either on the grid or in exactly one pool.
type Board struct {
	grid  [Rows][Cols]*Piece
	pools map[Side][]Piece
}

// NewBoard returns a board in the initial layout.
func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// Reset puts every piece back on its starting cell and empties both pools.
func (b *Board) Reset() {
	b.grid = [Rows][Cols]*Piece{}
	b.pools = map[Side][]Piece{SideA: {}, SideB: {}}

	b.put(Cell{3, 0}, Piece{Elephant, SideA})
	b.put(Cell{3, 1}, Piece{King, SideA})
	b.put(Cell{3, 2}, Piece{General, SideA})
	b.put(Cell{2, 1}, Piece{Pawn, SideA})

	b.put(Cell{0, 0}, Piece{General, SideB})
	b.put(Cell{0, 1}, Piece{King, SideB})
	b.put(Cell{0, 2}, Piece{Elephant, SideB})
	b.put(Cell{1, 1}, Piece{Pawn, SideB})
}

func (b *Board) put(c Cell, p Piece) {
	piece := p
	b.grid[c.Row][c.Col] = &piece
}

// PieceAt returns the piece on the cell, if any.
func (b *Board) PieceAt(c Cell) (Piece, bool) {
	if !c.InBounds() || b.grid[c.Row][c.Col] == nil {
		return Piece{}, false
	}
	return *b.grid[c.Row][c.Col], true
}

// Pool returns a copy of the side's captured pieces in arrival order.
func (b *Board) Pool(side Side) []Piece {
	out := make([]Piece, len(b.pools[side]))
	copy(out, b.pools[side])
	return out
}

// PoolContains reports whether the side holds the piece in its pool.
func (b *Board) PoolContains(side Side, p Piece) bool {
	return b.poolIndex(side, p) >= 0
}

func (b *Board) poolIndex(side Side, p Piece) int {
	for i, held := range b.pools[side] {
		if held == p {
			return i
		}
	}
	return -1
}

// ValidDestinations lists the cells the piece on c may step to: its offsets,
// kept in bounds, onto empty or opponent-occupied cells.
func (b *Board) ValidDestinations(c Cell) []Cell {
	p, ok := b.PieceAt(c)
	if !ok {
		return nil
	}
	var cells []Cell
	for _, o := range Offsets(p.Kind, p.Owner) {
		to := Cell{Row: c.Row + o.DR, Col: c.Col + o.DC}
		if !to.InBounds() {
			continue
		}
		if target, occupied := b.PieceAt(to); occupied && target.Owner == p.Owner {
			continue
		}
		cells = append(cells, to)
	}
	return cells
}

// Move steps the piece on from to to. It captures any occupant into the
// mover's pool and promotes a pawn landing on the far row. It returns false,
// leaving the board untouched, when to is not a valid destination.
func (b *Board) Move(from, to Cell) bool {
	p, ok := b.PieceAt(from)
	if !ok || !containsCell(b.ValidDestinations(from), to) {
		return false
	}
	if target, occupied := b.PieceAt(to); occupied {
		b.pools[p.Owner] = append(b.pools[p.Owner], target.captured())
	}
	if p.Kind == Pawn && to.Row == p.Owner.farRow() {
		p = p.promoted()
	}
	b.grid[from.Row][from.Col] = nil
	b.put(to, p)
	return true
}

// Place drops a pooled piece of side onto an empty cell. A pawn may not be
// dropped on the opponent's back row.
func (b *Board) Place(side Side, p Piece, at Cell) bool {
	if !at.InBounds() || b.grid[at.Row][at.Col] != nil {
		return false
	}
	if p.Owner != side {
		return false
	}
	if p.Kind == Pawn && at.Row == side.farRow() {
		return false
	}
	idx := b.poolIndex(side, p)
	if idx < 0 {
		return false
	}
	pool := b.pools[side]
	b.pools[side] = append(pool[:idx:idx], pool[idx+1:]...)
	b.put(at, p)
	return true
}

// Find returns the first cell, in row-major order, holding the piece.
func (b *Board) Find(kind Kind, side Side) (Cell, bool) {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if p := b.grid[r][c]; p != nil && p.Kind == kind && p.Owner == side {
				return Cell{r, c}, true
			}
		}
	}
	return Cell{}, false
}

// Snapshot returns a deep copy of the board.
func (b *Board) Snapshot() *Board {
	cp := &Board{pools: make(map[Side][]Piece, 2)}
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if p := b.grid[r][c]; p != nil {
				cp.put(Cell{r, c}, *p)
			}
		}
	}
	for _, side := range []Side{SideA, SideB} {
		cp.pools[side] = b.Pool(side)
	}
	return cp
}

// Tokens encodes the grid as "TOKEN,row,col;" entries in row-major order.
func (b *Board) Tokens() string {
	var sb strings.Builder
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if p := b.grid[r][c]; p != nil {
				fmt.Fprintf(&sb, "%s,%d,%d;", p.Token(), r, c)
			}
		}
	}
	return sb.String()
}

// PoolTokens encodes a side's pool as comma-separated piece tokens.
func (b *Board) PoolTokens(side Side) string {
	tokens := make([]string, 0, len(b.pools[side]))
	for _, p := range b.pools[side] {
		tokens = append(tokens, p.Token())
	}
	return strings.Join(tokens, ",")
}

func containsCell(cells []Cell, c Cell) bool {
	for _, x := range cells {
		if x == c {
			return true
		}
	}
	return false
}
