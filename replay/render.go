package replay

import (
	"fmt"
	"strings"

	"github.com/beka-birhanu/janggi-game-server/game"
)

// Render draws the position as text: ranks top to bottom, side A in upper
// case and side B in lower case, followed by both pools and the turn.
func Render(l *game.Logic) string {
	b := l.Board()
	var sb strings.Builder
	sb.WriteString("   a b c\n")
	for r := 0; r < game.Rows; r++ {
		fmt.Fprintf(&sb, "%d ", game.Rows-r)
		for c := 0; c < game.Cols; c++ {
			sb.WriteString(" ")
			sb.WriteString(cellGlyph(b, game.Cell{Row: r, Col: c}))
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "pool A: %s\n", poolGlyphs(b.Pool(game.SideA)))
	fmt.Fprintf(&sb, "pool B: %s\n", poolGlyphs(b.Pool(game.SideB)))

	switch l.State() {
	case game.Over:
		winner, _ := l.Winner()
		fmt.Fprintf(&sb, "over: %s wins\n", winner)
	default:
		fmt.Fprintf(&sb, "turn: %s\n", l.Turn())
	}
	return sb.String()
}

func cellGlyph(b *game.Board, c game.Cell) string {
	p, ok := b.PieceAt(c)
	if !ok {
		return "."
	}
	return glyph(p)
}

func glyph(p game.Piece) string {
	if p.Owner == game.SideB {
		return strings.ToLower(p.Kind.Letter())
	}
	return p.Kind.Letter()
}

func poolGlyphs(pool []game.Piece) string {
	if len(pool) == 0 {
		return "-"
	}
	out := make([]string, len(pool))
	for n, p := range pool {
		out[n] = glyph(p)
	}
	return strings.Join(out, " ")
}
