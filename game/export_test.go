package game

// Position builders for tests. They skip every rule check.

func (b *Board) Clear() {
	b.grid = [Rows][Cols]*Piece{}
	b.pools = map[Side][]Piece{SideA: {}, SideB: {}}
}

func (b *Board) Put(c Cell, p Piece) {
	if c.InBounds() {
		b.put(c, p)
	}
}

func (b *Board) AddToPool(side Side, p Piece) {
	b.pools[side] = append(b.pools[side], p)
}
