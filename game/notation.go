package game

import (
	"errors"
	"regexp"
)

// ErrInvalidNotation is returned when a token matches neither grammar.
var ErrInvalidNotation = errors.New("invalid notation")

var kindLetters = [...]byte{
	King:     'K',
	General:  'G',
	Elephant: 'E',
	Pawn:     'P',
	Prince:   'R',
}

var (
	moveRe  = regexp.MustCompile(`^([KGEPR])([abc][1-4])(x?)([abc][1-4])$`)
	placeRe = regexp.MustCompile(`^([KGEPR])@([abc][1-4])$`)
)

// Notation is a decoded notation token. Place is set for drops, in which
// case From is unused.
type Notation struct {
	Kind    Kind
	From    Cell
	To      Cell
	Capture bool
	Place   bool
}

// Letter returns the notation letter of the kind.
func (k Kind) Letter() string {
	if k < King || k > Prince {
		return "?"
	}
	return string(kindLetters[k])
}

// Square renders a cell as file+rank, e.g. row 3 col 0 is "a1".
func Square(c Cell) string {
	return string([]byte{byte('a' + c.Col), byte('0' + Rows - c.Row)})
}

// ParseSquare is the inverse of Square.
func ParseSquare(s string) (Cell, error) {
	if len(s) != 2 {
		return Cell{}, ErrInvalidNotation
	}
	c := Cell{Row: Rows - int(s[1]-'0'), Col: int(s[0] - 'a')}
	if !c.InBounds() {
		return Cell{}, ErrInvalidNotation
	}
	return c, nil
}

// EncodeMove renders a move of kind from one cell to another.
func EncodeMove(kind Kind, from, to Cell, capture bool) string {
	sep := ""
	if capture {
		sep = "x"
	}
	return string(kindLetters[kind]) + Square(from) + sep + Square(to)
}

// EncodePlacement renders a drop of kind onto a cell.
func EncodePlacement(kind Kind, at Cell) string {
	return string(kindLetters[kind]) + "@" + Square(at)
}

// String re-encodes the notation.
func (n Notation) String() string {
	if n.Place {
		return EncodePlacement(n.Kind, n.To)
	}
	return EncodeMove(n.Kind, n.From, n.To, n.Capture)
}

// Decode parses a move or placement token. The kind letter carries no owner;
// callers pair it with the side to move.
func Decode(token string) (Notation, error) {
	if m := placeRe.FindStringSubmatch(token); m != nil {
		at, err := ParseSquare(m[2])
		if err != nil {
			return Notation{}, err
		}
		return Notation{Kind: kindFromLetter(m[1][0]), To: at, Place: true}, nil
	}
	m := moveRe.FindStringSubmatch(token)
	if m == nil {
		return Notation{}, ErrInvalidNotation
	}
	from, err := ParseSquare(m[2])
	if err != nil {
		return Notation{}, err
	}
	to, err := ParseSquare(m[4])
	if err != nil {
		return Notation{}, err
	}
	return Notation{Kind: kindFromLetter(m[1][0]), From: from, To: to, Capture: m[3] == "x"}, nil
}

func kindFromLetter(l byte) Kind {
	for k, letter := range kindLetters {
		if letter == l {
			return Kind(k)
		}
	}
	return King
}
