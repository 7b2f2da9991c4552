package game

// State is the lifecycle of a single game.
type State int

// Game states.
const (
	Waiting State = iota
	InProgress
	Over
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "WAITING"
	case InProgress:
		return "IN_PROGRESS"
	case Over:
		return "OVER"
	}
	return "UNKNOWN"
}

// WinReason tells how a game was won.
type WinReason int

// Win reasons.
const (
	NoWin WinReason = iota
	KingCaptured
	KingInZone
)

type snapshot struct {
	board      *Board
	kingInZone Side
}

// Logic owns one game: board, turn, history and undo stack.
// It is not safe for concurrent use; the owning session serializes access.
type Logic struct {
	board      *Board
	turn       Side
	state      State
	winner     Side
	reason     WinReason
	history    []string
	snapshots  []snapshot
	kingInZone Side // side whose king sat in the far row after the last move
}

// NewLogic returns a game waiting to be started.
func NewLogic() *Logic {
	return &Logic{board: NewBoard(), state: Waiting}
}

// Start resets the board and history and gives the first turn to Side A.
func (l *Logic) Start() {
	l.board = NewBoard()
	l.turn = SideA
	l.state = InProgress
	l.winner = NoSide
	l.reason = NoWin
	l.history = nil
	l.snapshots = nil
	l.kingInZone = NoSide
}

// Board returns the live board. Callers must not mutate it.
func (l *Logic) Board() *Board { return l.board }

// Turn returns the side to move.
func (l *Logic) Turn() Side { return l.turn }

// State returns the lifecycle state.
func (l *Logic) State() State { return l.state }

// Winner returns the winning side and how it won, or NoSide while undecided.
func (l *Logic) Winner() (Side, WinReason) { return l.winner, l.reason }

// History returns a copy of the notation history.
func (l *Logic) History() []string {
	out := make([]string, len(l.history))
	copy(out, l.history)
	return out
}

// ApplyMove moves side's piece from one cell to another. It returns false
// when it is not side's turn, the game is not running, side does not own the
// source piece, or the step is illegal.
func (l *Logic) ApplyMove(side Side, from, to Cell) bool {
	if l.state != InProgress || side != l.turn {
		return false
	}
	p, ok := l.board.PieceAt(from)
	if !ok || p.Owner != side {
		return false
	}
	_, capture := l.board.PieceAt(to)
	before := snapshot{board: l.board.Snapshot(), kingInZone: l.kingInZone}
	if !l.board.Move(from, to) {
		return false
	}
	l.snapshots = append(l.snapshots, before)
	l.history = append(l.history, EncodeMove(p.Kind, from, to, capture))

	if _, alive := l.board.Find(King, side.Opponent()); !alive {
		l.finish(side, KingCaptured)
		return true
	}
	l.switchTurn()
	l.checkKingInZone()
	return true
}

// ApplyPlacement drops a pooled piece for side. Placements flip the turn
// like moves but never trigger the king-in-zone check.
func (l *Logic) ApplyPlacement(side Side, p Piece, at Cell) bool {
	if l.state != InProgress || side != l.turn {
		return false
	}
	before := snapshot{board: l.board.Snapshot(), kingInZone: l.kingInZone}
	if !l.board.Place(side, p, at) {
		return false
	}
	l.snapshots = append(l.snapshots, before)
	l.history = append(l.history, EncodePlacement(p.Kind, at))
	l.switchTurn()
	return true
}

// Undo restores the board from before the last move or placement, drops the
// last notation entry and flips the turn back. It is a no-op without history.
func (l *Logic) Undo() {
	if len(l.snapshots) == 0 {
		return
	}
	last := l.snapshots[len(l.snapshots)-1]
	l.snapshots = l.snapshots[:len(l.snapshots)-1]
	l.board = last.board
	l.kingInZone = last.kingInZone
	if len(l.history) > 0 {
		l.history = l.history[:len(l.history)-1]
	}
	l.switchTurn()
}

// ReplayToken decodes a notation token and applies it for the side to move.
// A move token must mark a capture exactly when the target cell is occupied.
func (l *Logic) ReplayToken(token string) bool {
	n, err := Decode(token)
	if err != nil {
		return false
	}
	if n.Place {
		return l.ApplyPlacement(l.turn, Piece{Kind: n.Kind, Owner: l.turn}, n.To)
	}
	p, ok := l.board.PieceAt(n.From)
	if !ok || p.Kind != n.Kind {
		return false
	}
	if _, occupied := l.board.PieceAt(n.To); occupied != n.Capture {
		return false
	}
	return l.ApplyMove(l.turn, n.From, n.To)
}

// Abort ends a running game without a winner.
func (l *Logic) Abort() {
	if l.state == InProgress {
		l.state = Over
	}
}

// checkKingInZone runs after a move has passed the turn. A side whose king
// was already parked in the far row before the opponent's reply wins as soon
// as the turn comes back to it.
func (l *Logic) checkKingInZone() {
	if l.kingInZone != NoSide && l.kingInZone == l.turn {
		l.finish(l.kingInZone, KingInZone)
		return
	}
	l.kingInZone = NoSide
	for _, side := range []Side{SideA, SideB} {
		if c, ok := l.board.Find(King, side); ok && c.Row == side.farRow() {
			l.kingInZone = side
			return
		}
	}
}

func (l *Logic) finish(winner Side, reason WinReason) {
	l.state = Over
	l.winner = winner
	l.reason = reason
}

func (l *Logic) switchTurn() { l.turn = l.turn.Opponent() }
