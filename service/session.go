package service

import (
	"fmt"
	"strings"

	"github.com/beka-birhanu/janggi-game-server/game"
	"github.com/beka-birhanu/janggi-game-server/service/i"
	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	"github.com/google/uuid"
)

// sessionOwner is the room side of a session: who to talk to and who to hand
// the winner back to.
type sessionOwner interface {
	broadcast(msg string, except *Player)
	roomTitle() string
	onSessionFinished(s *Session, winner *Player)
	refreshLobby()
}

// Session is one playthrough inside a room, from the ready handshake to game
// over. It holds no lock of its own; every call comes in under the owning
// room's lock.
type Session struct {
	id    uuid.UUID
	owner sessionOwner
	logic *game.Logic

	host  *Player
	guest *Player
	sideA *Player
	sideB *Player

	hostReady     bool
	guestReady    bool
	undoRequester *Player

	replays i.ReplayStore
	coin    func() bool
	logger  general_i.Logger
}

func newSession(owner sessionOwner, host, guest *Player, replays i.ReplayStore, coin func() bool, logger general_i.Logger) *Session {
	return &Session{
		id:      uuid.New(),
		owner:   owner,
		logic:   game.NewLogic(),
		host:    host,
		guest:   guest,
		replays: replays,
		coin:    coin,
		logger:  logger,
	}
}

// State mirrors the game state.
func (s *Session) State() game.State { return s.logic.State() }

// Logic exposes the underlying game.
func (s *Session) Logic() *game.Logic { return s.logic }

// SideOf returns the side assigned to p, NoSide before the game starts or
// for anyone but the two players.
func (s *Session) SideOf(p *Player) game.Side {
	switch {
	case p == nil:
		return game.NoSide
	case p == s.sideA:
		return game.SideA
	case p == s.sideB:
		return game.SideB
	}
	return game.NoSide
}

func (s *Session) playerOf(side game.Side) *Player {
	switch side {
	case game.SideA:
		return s.sideA
	case game.SideB:
		return s.sideB
	}
	return nil
}

// Handle runs a game command for p.
func (s *Session) Handle(p *Player, cmd Command) {
	switch c := cmd.(type) {
	case ReadyCmd:
		s.toggleReady(p)
	case MoveCmd:
		s.move(p, c)
	case PlaceCmd:
		s.place(p, c)
	case ValidMovesCmd:
		s.validMoves(p, c)
	case UndoRequestCmd:
		s.requestUndo(p)
	case UndoResponseCmd:
		s.answerUndo(p, c)
	default:
		p.Send(errorLine("unsupported game command"))
	}
}

func (s *Session) toggleReady(p *Player) {
	if s.logic.State() == game.InProgress {
		p.Send(errorLine("the game is already in progress"))
		return
	}
	var role string
	var ready bool
	switch p {
	case s.host:
		s.hostReady = !s.hostReady
		role, ready = roleHost, s.hostReady
	case s.guest:
		s.guestReady = !s.guestReady
		role, ready = roleGuest, s.guestReady
	default:
		p.Send(errorLine("only the host and the guest can get ready"))
		return
	}
	s.owner.broadcast(line(MsgPlayerReady, role, fmt.Sprint(ready)), nil)

	if s.host != nil && s.guest != nil && s.hostReady && s.guestReady {
		s.start()
	}
}

func (s *Session) start() {
	if s.coin() {
		s.sideA, s.sideB = s.host, s.guest
	} else {
		s.sideA, s.sideB = s.guest, s.host
	}
	s.sideA.Send(line(MsgAssignRole, game.SideA.String()))
	s.sideB.Send(line(MsgAssignRole, game.SideB.String()))

	s.logic.Start()
	s.owner.broadcast(MsgGameStart, nil)
	s.owner.broadcast(StateLine(s.logic), nil)
	s.owner.refreshLobby()
	s.logger.Info(fmt.Sprintf("game %s started in room %q: A=%s B=%s", s.id, s.owner.roomTitle(), s.sideA.Nickname(), s.sideB.Nickname()))
}

// turnOf checks that p may act now and returns p's side.
func (s *Session) turnOf(p *Player) (game.Side, bool) {
	if s.logic.State() != game.InProgress {
		p.Send(errorLine("the game is not in progress"))
		return game.NoSide, false
	}
	side := s.SideOf(p)
	if side == game.NoSide || side != s.logic.Turn() {
		p.Send(errorLine("it is not your turn"))
		return game.NoSide, false
	}
	return side, true
}

func (s *Session) move(p *Player, c MoveCmd) {
	side, ok := s.turnOf(p)
	if !ok {
		return
	}
	if piece, found := s.logic.Board().PieceAt(c.From); !found || piece.Owner != side {
		p.Send(errorLine("you have no piece on that cell"))
		return
	}
	if !s.logic.ApplyMove(side, c.From, c.To) {
		p.Send(errorLine("that move is not allowed"))
		return
	}
	s.afterTurn()
}

func (s *Session) place(p *Player, c PlaceCmd) {
	side, ok := s.turnOf(p)
	if !ok {
		return
	}
	if c.Piece.Owner != side || !s.logic.Board().PoolContains(side, c.Piece) {
		p.Send(errorLine("you do not hold that piece"))
		return
	}
	if !s.logic.ApplyPlacement(side, c.Piece, c.At) {
		p.Send(errorLine("the piece cannot be placed there"))
		return
	}
	s.afterTurn()
}

// afterTurn publishes a successful move or placement and ends the game when
// the logic reports a winner.
func (s *Session) afterTurn() {
	s.undoRequester = nil
	s.owner.broadcast(StateLine(s.logic), nil)
	if s.logic.State() == game.Over {
		s.finish()
	}
}

func (s *Session) validMoves(p *Player, c ValidMovesCmd) {
	if _, ok := s.turnOf(p); !ok {
		return
	}
	if !c.At.InBounds() {
		p.Send(errorLine("that cell is off the board"))
		return
	}
	cells := s.logic.Board().ValidDestinations(c.At)
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = cell.String()
	}
	p.Send(line(MsgValidMoves, strings.Join(out, ";")))
}

func (s *Session) requestUndo(p *Player) {
	if s.logic.State() != game.InProgress {
		p.Send(errorLine("the game is not in progress"))
		return
	}
	side := s.SideOf(p)
	switch {
	case side == game.NoSide:
		p.Send(errorLine("only players can ask for an undo"))
	case side == s.logic.Turn():
		p.Send(errorLine("an undo can only be asked for during the opponent's turn"))
	case s.undoRequester != nil:
		p.Send(errorLine("an undo request is already pending"))
	case len(s.logic.History()) == 0:
		p.Send(errorLine("there is nothing to undo"))
	default:
		s.undoRequester = p
		s.playerOf(side.Opponent()).Send(line(MsgUndoRequested, p.Nickname()))
	}
}

func (s *Session) answerUndo(p *Player, c UndoResponseCmd) {
	if s.logic.State() != game.InProgress {
		p.Send(errorLine("the game is not in progress"))
		return
	}
	if side := s.SideOf(p); side == game.NoSide || side != s.logic.Turn() {
		p.Send(errorLine("you cannot answer an undo request"))
		return
	}
	if s.undoRequester == nil {
		p.Send(errorLine("there is no pending undo request"))
		return
	}
	requester := s.undoRequester
	s.undoRequester = nil
	if !c.Accept {
		requester.Send(systemLine(p.Nickname() + " declined the undo request"))
		return
	}
	s.logic.Undo()
	s.owner.broadcast(systemLine("the undo request was accepted"), nil)
	s.owner.broadcast(StateLine(s.logic), nil)
}

func (s *Session) finish() {
	side, reason := s.logic.Winner()
	winner := s.playerOf(side)
	var text string
	switch reason {
	case game.KingInZone:
		text = winner.Nickname() + " wins: the king held the opponent's back row for a full turn"
	default:
		text = winner.Nickname() + " wins by capturing the opposing king"
	}
	s.owner.broadcast(line(MsgGameOver, text), nil)
	s.persist()
	s.logger.Info(fmt.Sprintf("game %s in room %q over: %s", s.id, s.owner.roomTitle(), text))
	s.owner.onSessionFinished(s, winner)
}

// Abort ends a running game because a player left. The leaver is not told.
func (s *Session) Abort(leaving *Player) {
	if s.logic.State() != game.InProgress {
		return
	}
	s.logic.Abort()
	s.undoRequester = nil
	s.owner.broadcast(line(MsgGameOver, leaving.Nickname()+" left the game"), leaving)
	s.persist()
	s.logger.Info(fmt.Sprintf("game %s in room %q aborted: %s left", s.id, s.owner.roomTitle(), leaving.Nickname()))
}

// persist writes the notation history. Failures are logged and swallowed.
func (s *Session) persist() {
	if s.replays == nil {
		return
	}
	path, err := s.replays.Save(s.owner.roomTitle(), s.logic.History())
	if err != nil {
		s.logger.Error(fmt.Sprintf("saving replay for room %q: %s", s.owner.roomTitle(), err))
		return
	}
	s.logger.Info(fmt.Sprintf("replay saved: %s", path))
}
