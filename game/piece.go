package game

import (
	"errors"
	"strings"
)

// ErrUnknownPiece is returned when a piece token cannot be parsed.
var ErrUnknownPiece = errors.New("unknown piece token")

// Side identifies one of the two competing players.
type Side int

// Sides. NoSide is the zero value and means "nobody".
const (
	NoSide Side = iota
	SideA
	SideB
)

// Opponent returns the other side. NoSide has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case SideA:
		return SideB
	case SideB:
		return SideA
	}
	return NoSide
}

// String returns the wire name of the side.
func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	}
	return "-"
}

// farRow is the opponent's back row, where pawns promote and kings park.
func (s Side) farRow() int {
	if s == SideA {
		return 0
	}
	return Rows - 1
}

// Kind is the type of a piece.
type Kind int

// Piece kinds. Prince is the promoted pawn.
const (
	King Kind = iota
	General
	Elephant
	Pawn
	Prince
)

var kindNames = [...]string{
	King:     "KING",
	General:  "GENERAL",
	Elephant: "ELEPHANT",
	Pawn:     "PAWN",
	Prince:   "PRINCE",
}

func (k Kind) String() string {
	if k < King || k > Prince {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// Piece is an immutable {kind, owner} value.
type Piece struct {
	Kind  Kind
	Owner Side
}

// Token returns the wire token of the piece, e.g. "A_KING".
func (p Piece) Token() string {
	return p.Owner.String() + "_" + p.Kind.String()
}

func (p Piece) String() string { return p.Token() }

// promoted returns the piece after reaching the far row.
func (p Piece) promoted() Piece {
	if p.Kind == Pawn {
		p.Kind = Prince
	}
	return p
}

// captured returns the piece as it enters the capturer's pool: owner
// flipped and a prince demoted back to a pawn.
func (p Piece) captured() Piece {
	p.Owner = p.Owner.Opponent()
	if p.Kind == Prince {
		p.Kind = Pawn
	}
	return p
}

// ParsePieceToken parses a token produced by Piece.Token.
func ParsePieceToken(token string) (Piece, error) {
	owner, kind, ok := strings.Cut(strings.TrimSpace(token), "_")
	if !ok {
		return Piece{}, ErrUnknownPiece
	}
	var p Piece
	switch owner {
	case "A":
		p.Owner = SideA
	case "B":
		p.Owner = SideB
	default:
		return Piece{}, ErrUnknownPiece
	}
	for k, name := range kindNames {
		if name == kind {
			p.Kind = Kind(k)
			return p, nil
		}
	}
	return Piece{}, ErrUnknownPiece
}

// Offset is a single step (row delta, column delta).
type Offset struct{ DR, DC int }

// Offsets returns the step offsets of a kind for the given owner. Offsets
// are written from Side A's point of view (forward is row -1) and mirrored
// for Side B.
func Offsets(kind Kind, owner Side) []Offset {
	var base []Offset
	switch kind {
	case King:
		base = []Offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	case General:
		base = []Offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	case Elephant:
		base = []Offset{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	case Pawn:
		base = []Offset{{-1, 0}}
	case Prince:
		base = []Offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {-1, -1}, {-1, 1}}
	}
	if owner == SideA {
		return base
	}
	mirrored := make([]Offset, len(base))
	for i, o := range base {
		mirrored[i] = Offset{DR: -o.DR, DC: o.DC}
	}
	return mirrored
}
