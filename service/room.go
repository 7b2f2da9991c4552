package service

import (
	"fmt"
	"slices"
	"sync"

	"github.com/beka-birhanu/janggi-game-server/game"
	"github.com/beka-birhanu/janggi-game-server/service/i"
	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
)

// Room is a named table with a host, a guest, spectators and the current
// session. Every entry point takes mu, so commands for one room never
// interleave.
type Room struct {
	mu         sync.Mutex
	title      string
	password   string
	capacity   int
	host       *Player
	guest      *Player
	spectators []*Player
	session    *Session
	closed     bool

	lobby   *Lobby
	replays i.ReplayStore
	coin    func() bool
	logger  general_i.Logger

	// info is the lobby view, kept behind its own lock so listings never
	// wait on a busy room.
	infoMu sync.RWMutex
	info   i.RoomSummary
}

func newRoom(l *Lobby, title, password string, capacity int, host *Player) *Room {
	r := &Room{
		title:    title,
		password: password,
		capacity: capacity,
		host:     host,
		lobby:    l,
		replays:  l.replays,
		coin:     l.coin,
		logger:   l.roomLogger,
	}
	r.session = newSession(r, host, nil, r.replays, r.coin, r.logger)
	r.publish()
	return r
}

// Title returns the room title.
func (r *Room) Title() string { return r.title }

// Summary returns the last published lobby view of the room.
func (r *Room) Summary() i.RoomSummary {
	r.infoMu.RLock()
	defer r.infoMu.RUnlock()
	return r.info
}

// Host returns the current host.
func (r *Room) Host() *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.host
}

// Guest returns the current guest.
func (r *Room) Guest() *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.guest
}

// Spectators returns the spectators in arrival order.
func (r *Room) Spectators() []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.spectators)
}

// SessionState returns the state of the current session.
func (r *Room) SessionState() game.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.State()
}

// AddPlayer seats p as guest when the seat is free, otherwise as a spectator.
func (r *Room) AddPlayer(p *Player, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.closed:
		return ErrRoomNotFound
	case r.isMember(p):
		return ErrAlreadyInRoom
	case len(r.members()) >= r.capacity:
		return ErrRoomFull
	case r.password != "" && password != r.password:
		return ErrWrongPassword
	}

	p.setRoom(r)
	p.Send(line(MsgJoinSuccess, r.title))
	if r.guest == nil {
		r.guest = p
		r.broadcast(systemLine(p.Nickname()+" joined as guest"), nil)
		r.replaceSession()
	} else {
		r.spectators = append(r.spectators, p)
		r.broadcast(systemLine(p.Nickname()+" joined as spectator"), nil)
		if r.session.State() == game.InProgress {
			p.Send(StateLine(r.session.Logic()))
		}
	}
	r.logger.Info(fmt.Sprintf("%s joined room %q", p.Nickname(), r.title))
	r.refreshLobby()
	return nil
}

// RemovePlayer takes p out of the room, aborting a running game when p was
// playing and promoting the next in line into the vacated seat.
func (r *Room) RemovePlayer(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(p)
}

func (r *Room) remove(p *Player) {
	if !r.isMember(p) {
		return
	}
	core := p == r.host || p == r.guest
	if core && r.session.State() == game.InProgress {
		r.session.Abort(p)
	}

	oldHost := r.host
	switch p {
	case r.host:
		r.host, r.guest = r.guest, nil
	case r.guest:
		r.guest = nil
	default:
		r.spectators = slices.DeleteFunc(r.spectators, func(s *Player) bool { return s == p })
	}
	if r.host == nil {
		r.host = r.nextSpectator()
	}
	if r.guest == nil {
		r.guest = r.nextSpectator()
	}
	p.setRoom(nil)

	r.broadcast(systemLine(p.Nickname()+" left the room"), nil)
	if core {
		if r.host != nil && r.host != oldHost {
			r.broadcast(systemLine(r.host.Nickname()+" is the new host"), nil)
		}
		r.replaceSession()
	}
	r.logger.Info(fmt.Sprintf("%s left room %q", p.Nickname(), r.title))

	if r.host == nil {
		r.closed = true
		r.lobby.removeRoom(r)
	}
	r.refreshLobby()
}

// Dispatch runs a command sent by a member of the room.
func (r *Room) Dispatch(p *Player, cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isMember(p) {
		p.Send(errorLine("you are not in this room"))
		return
	}
	switch c := cmd.(type) {
	case ChatCmd:
		r.broadcast(line(VerbChat, fmt.Sprintf("[%s] %s: %s", r.title, p.Nickname(), c.Text)), nil)
	case LeaveRoomCmd:
		// the room list reaches p through refreshLobby once p is back in the lobby.
		p.Send(MsgGotoLobby)
		r.remove(p)
	case ReadyCmd, MoveCmd, PlaceCmd, ValidMovesCmd, UndoRequestCmd, UndoResponseCmd:
		r.session.Handle(p, cmd)
	default:
		p.Send(errorLine("that command is not available inside a room"))
	}
}

func (r *Room) nextSpectator() *Player {
	if len(r.spectators) == 0 {
		return nil
	}
	next := r.spectators[0]
	r.spectators = r.spectators[1:]
	return next
}

// replaceSession starts a fresh session for the current host and guest.
func (r *Room) replaceSession() {
	r.session = newSession(r, r.host, r.guest, r.replays, r.coin, r.logger)
}

func (r *Room) members() []*Player {
	out := make([]*Player, 0, 2+len(r.spectators))
	if r.host != nil {
		out = append(out, r.host)
	}
	if r.guest != nil {
		out = append(out, r.guest)
	}
	return append(out, r.spectators...)
}

func (r *Room) isMember(p *Player) bool {
	return slices.Contains(r.members(), p)
}

func (r *Room) broadcast(msg string, except *Player) {
	for _, m := range r.members() {
		if m != except {
			m.Send(msg)
		}
	}
}

func (r *Room) roomTitle() string { return r.title }

func (r *Room) onSessionFinished(s *Session, winner *Player) {
	if s != r.session || winner == nil {
		return
	}
	loser := r.guest
	if winner == r.guest {
		loser = r.host
	}
	r.host, r.guest = winner, loser
	r.replaceSession()
	r.broadcast(systemLine(winner.Nickname()+" is the new host"), nil)
	r.refreshLobby()
}

// publish refreshes the lobby view. Callers hold mu.
func (r *Room) publish() {
	info := i.RoomSummary{
		Title:    r.title,
		Players:  len(r.members()),
		Capacity: r.capacity,
		InGame:   r.session.State() == game.InProgress,
		Private:  r.password != "",
	}
	r.infoMu.Lock()
	r.info = info
	r.infoMu.Unlock()
}

func (r *Room) refreshLobby() {
	r.publish()
	r.lobby.BroadcastRoomList()
}
