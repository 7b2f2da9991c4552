package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pieceCount counts pieces on the grid and in both pools.
func pieceCount(b *Board) int {
	n := len(b.Pool(SideA)) + len(b.Pool(SideB))
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if _, ok := b.PieceAt(Cell{r, c}); ok {
				n++
			}
		}
	}
	return n
}

func TestNewBoardLayout(t *testing.T) {
	b := NewBoard()
	want := map[Cell]Piece{
		{3, 0}: {Elephant, SideA},
		{3, 1}: {King, SideA},
		{3, 2}: {General, SideA},
		{2, 1}: {Pawn, SideA},
		{0, 0}: {General, SideB},
		{0, 1}: {King, SideB},
		{0, 2}: {Elephant, SideB},
		{1, 1}: {Pawn, SideB},
	}
	for cell, p := range want {
		got, ok := b.PieceAt(cell)
		require.True(t, ok, cell.String())
		assert.Equal(t, p, got, cell.String())
	}
	assert.Equal(t, 8, pieceCount(b))
	assert.Empty(t, b.Pool(SideA))
	assert.Empty(t, b.Pool(SideB))
}

func TestPieceAtOutOfBounds(t *testing.T) {
	b := NewBoard()
	for _, c := range []Cell{{-1, 0}, {4, 0}, {0, -1}, {0, 3}} {
		_, ok := b.PieceAt(c)
		assert.False(t, ok, c.String())
	}
}

func TestOffsetsMirrorForSideB(t *testing.T) {
	assert.Equal(t, []Offset{{-1, 0}}, Offsets(Pawn, SideA))
	assert.Equal(t, []Offset{{1, 0}}, Offsets(Pawn, SideB))

	prince := Offsets(Prince, SideB)
	require.Len(t, prince, 6)
	for _, o := range prince {
		assert.False(t, o.DR == -1 && o.DC != 0, "side B prince must not step back diagonally: %v", o)
	}
	assert.Len(t, Offsets(King, SideA), 8)
	assert.Len(t, Offsets(General, SideB), 4)
	assert.Len(t, Offsets(Elephant, SideB), 4)
}

func TestValidDestinations(t *testing.T) {
	b := NewBoard()
	assert.ElementsMatch(t, []Cell{{2, 0}, {2, 2}}, b.ValidDestinations(Cell{3, 1}))
	assert.ElementsMatch(t, []Cell{{1, 1}}, b.ValidDestinations(Cell{2, 1}), "pawn may capture straight ahead")
	assert.ElementsMatch(t, []Cell{{2, 2}}, b.ValidDestinations(Cell{3, 2}))
	assert.Empty(t, b.ValidDestinations(Cell{3, 0}), "elephant is boxed in by own pawn")
	assert.Nil(t, b.ValidDestinations(Cell{1, 0}))
}

func TestMoveRejectsIllegalStep(t *testing.T) {
	b := NewBoard()
	before := b.Tokens()
	assert.False(t, b.Move(Cell{3, 2}, Cell{2, 1}), "general cannot step diagonally")
	assert.False(t, b.Move(Cell{3, 1}, Cell{1, 1}), "king steps one cell only")
	assert.False(t, b.Move(Cell{1, 0}, Cell{2, 0}), "empty source")
	assert.Equal(t, before, b.Tokens())
}

func TestMoveCaptureFlipsOwner(t *testing.T) {
	b := NewBoard()
	require.True(t, b.Move(Cell{2, 1}, Cell{1, 1}))

	p, ok := b.PieceAt(Cell{1, 1})
	require.True(t, ok)
	assert.Equal(t, Piece{Pawn, SideA}, p)
	assert.Equal(t, []Piece{{Pawn, SideA}}, b.Pool(SideA))
	assert.Equal(t, 8, pieceCount(b))
}

func TestCapturedPrinceDemotes(t *testing.T) {
	b := &Board{}
	b.Clear()
	b.Put(Cell{1, 0}, Piece{General, SideA})
	b.Put(Cell{2, 0}, Piece{Prince, SideB})

	require.True(t, b.Move(Cell{1, 0}, Cell{2, 0}))
	assert.Equal(t, []Piece{{Pawn, SideA}}, b.Pool(SideA))
}

func TestPawnPromotesOnFarRow(t *testing.T) {
	b := &Board{}
	b.Clear()
	b.Put(Cell{1, 2}, Piece{Pawn, SideA})
	b.Put(Cell{2, 0}, Piece{Pawn, SideB})

	require.True(t, b.Move(Cell{1, 2}, Cell{0, 2}))
	p, _ := b.PieceAt(Cell{0, 2})
	assert.Equal(t, Piece{Prince, SideA}, p)

	require.True(t, b.Move(Cell{2, 0}, Cell{3, 0}))
	p, _ = b.PieceAt(Cell{3, 0})
	assert.Equal(t, Piece{Prince, SideB}, p)
}

func TestPlace(t *testing.T) {
	b := &Board{}
	b.Clear()
	b.Put(Cell{3, 1}, Piece{King, SideA})
	b.AddToPool(SideA, Piece{Pawn, SideA})
	b.AddToPool(SideA, Piece{Elephant, SideA})

	assert.False(t, b.Place(SideA, Piece{Pawn, SideA}, Cell{0, 0}), "pawn drop on far row")
	assert.False(t, b.Place(SideA, Piece{Pawn, SideA}, Cell{3, 1}), "occupied cell")
	assert.False(t, b.Place(SideA, Piece{General, SideA}, Cell{2, 2}), "not in pool")
	assert.False(t, b.Place(SideB, Piece{Pawn, SideA}, Cell{2, 2}), "not owned by placer")
	assert.False(t, b.Place(SideA, Piece{Pawn, SideA}, Cell{5, 2}), "out of bounds")

	require.True(t, b.Place(SideA, Piece{Elephant, SideA}, Cell{0, 0}), "non-pawn may drop on far row")
	require.True(t, b.Place(SideA, Piece{Pawn, SideA}, Cell{1, 2}))
	assert.Empty(t, b.Pool(SideA))
	assert.Equal(t, 3, pieceCount(b))
}

func TestSidePawnDropRowIsMirrored(t *testing.T) {
	b := &Board{}
	b.Clear()
	b.AddToPool(SideB, Piece{Pawn, SideB})
	assert.False(t, b.Place(SideB, Piece{Pawn, SideB}, Cell{3, 0}))
	assert.True(t, b.Place(SideB, Piece{Pawn, SideB}, Cell{0, 0}))
}

func TestFind(t *testing.T) {
	b := NewBoard()
	c, ok := b.Find(King, SideB)
	require.True(t, ok)
	assert.Equal(t, Cell{0, 1}, c)

	_, ok = b.Find(Prince, SideA)
	assert.False(t, ok)
}

func TestSnapshotIsDeep(t *testing.T) {
	b := NewBoard()
	snap := b.Snapshot()
	require.True(t, b.Move(Cell{2, 1}, Cell{1, 1}))

	assert.NotEqual(t, b.Tokens(), snap.Tokens())
	assert.Empty(t, snap.Pool(SideA))
	assert.Equal(t, NewBoard().Tokens(), snap.Tokens())
}

func TestTokens(t *testing.T) {
	b := NewBoard()
	assert.Equal(t,
		"B_GENERAL,0,0;B_KING,0,1;B_ELEPHANT,0,2;B_PAWN,1,1;A_PAWN,2,1;A_ELEPHANT,3,0;A_KING,3,1;A_GENERAL,3,2;",
		b.Tokens())

	b.AddToPool(SideA, Piece{Pawn, SideA})
	b.AddToPool(SideA, Piece{General, SideA})
	assert.Equal(t, "A_PAWN,A_GENERAL", b.PoolTokens(SideA))
	assert.Equal(t, "", b.PoolTokens(SideB))
}

func TestParsePieceToken(t *testing.T) {
	p, err := ParsePieceToken("B_PRINCE")
	require.NoError(t, err)
	assert.Equal(t, Piece{Prince, SideB}, p)

	for _, bad := range []string{"", "A", "C_KING", "A_QUEEN", "AKING"} {
		_, err := ParsePieceToken(bad)
		assert.ErrorIs(t, err, ErrUnknownPiece, bad)
	}
}
