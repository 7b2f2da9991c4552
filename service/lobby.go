package service

import (
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/beka-birhanu/janggi-game-server/service/i"
	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	"github.com/google/uuid"
)

const (
	minCapacity        = 2
	defaultMaxCapacity = 8
)

// Lobby is the process-wide directory of connected players, nicknames and
// rooms. It routes each inbound line either to lobby handling or to the
// room the sender is attached to.
type Lobby struct {
	players     map[uuid.UUID]*Player
	nicknames   map[string]*Player
	arrivals    []*Player
	rooms       map[string]*Room
	replays     i.ReplayStore
	coin        func() bool
	maxCapacity int
	logger      general_i.Logger
	roomLogger  general_i.Logger
	sync.RWMutex
}

// Config holds the lobby's collaborators. RoomLogger is used by rooms and
// their sessions and falls back to Logger. Coin decides side assignment;
// true puts the host on side A.
type Config struct {
	Replays     i.ReplayStore
	Logger      general_i.Logger
	RoomLogger  general_i.Logger
	MaxCapacity int
	Coin        func() bool
}

// NewLobby creates an empty lobby.
func NewLobby(c *Config) (*Lobby, error) {
	if c.Logger == nil {
		return nil, ErrMissingLogger
	}
	l := &Lobby{
		players:     make(map[uuid.UUID]*Player),
		nicknames:   make(map[string]*Player),
		rooms:       make(map[string]*Room),
		replays:     c.Replays,
		coin:        c.Coin,
		maxCapacity: c.MaxCapacity,
		logger:      c.Logger,
		roomLogger:  c.RoomLogger,
	}
	if l.roomLogger == nil {
		l.roomLogger = l.logger
	}
	if l.coin == nil {
		l.coin = func() bool { return rand.IntN(2) == 0 }
	}
	if l.maxCapacity < minCapacity {
		l.maxCapacity = defaultMaxCapacity
	}
	return l, nil
}

// Register claims nickname for p. The outcome is sent to p as NICKNAME_OK or
// NICKNAME_TAKEN.
func (l *Lobby) Register(p *Player, nickname string) error {
	if err := l.register(p, nickname); err != nil {
		p.Send(MsgNicknameTaken)
		return err
	}
	p.Send(MsgNicknameOK)
	l.logger.Info(fmt.Sprintf("%s entered the lobby", nickname))
	l.BroadcastLobby(systemLine(nickname + " entered the lobby"))
	l.BroadcastRoomList()
	return nil
}

func (l *Lobby) register(p *Player, nickname string) error {
	if !validName(nickname) {
		return ErrInvalidNickname
	}
	l.Lock()
	defer l.Unlock()
	if _, ok := l.players[p.ID()]; ok {
		return ErrAlreadyRegistered
	}
	if _, ok := l.nicknames[nickname]; ok {
		return ErrNicknameTaken
	}
	p.setNickname(nickname)
	l.players[p.ID()] = p
	l.nicknames[nickname] = p
	l.arrivals = append(l.arrivals, p)
	return nil
}

// Unregister forgets p, taking it out of its room first when it has one.
func (l *Lobby) Unregister(p *Player) {
	l.Lock()
	if _, ok := l.players[p.ID()]; !ok {
		l.Unlock()
		return
	}
	nickname := p.Nickname()
	delete(l.players, p.ID())
	delete(l.nicknames, nickname)
	l.arrivals = slices.DeleteFunc(l.arrivals, func(q *Player) bool { return q == p })
	l.Unlock()

	l.logger.Info(fmt.Sprintf("%s disconnected", nickname))
	if r := p.Room(); r != nil {
		// the room refreshes the lobby's room list itself.
		r.RemovePlayer(p)
		return
	}
	l.BroadcastLobby(systemLine(nickname + " left"))
	l.BroadcastRoomList()
}

// ChangeNickname renames a registered player.
func (l *Lobby) ChangeNickname(p *Player, nickname string) error {
	old, err := l.rename(p, nickname)
	if err != nil {
		p.Send(line(MsgNicknameChangeFailed, err.Error()))
		return err
	}
	p.Send(line(MsgNicknameChangedOK, nickname))
	l.BroadcastLobby(systemLine(old + " is now " + nickname))
	l.BroadcastRoomList()
	return nil
}

func (l *Lobby) rename(p *Player, nickname string) (string, error) {
	if !validName(nickname) {
		return "", ErrInvalidNickname
	}
	l.Lock()
	defer l.Unlock()
	if _, ok := l.players[p.ID()]; !ok {
		return "", ErrNotRegistered
	}
	if _, ok := l.nicknames[nickname]; ok {
		return "", ErrNicknameTaken
	}
	old := p.Nickname()
	delete(l.nicknames, old)
	l.nicknames[nickname] = p
	p.setNickname(nickname)
	return old, nil
}

// CreateRoom opens a room with p as host and attaches p to it.
func (l *Lobby) CreateRoom(p *Player, title, password string, capacity int) (*Room, error) {
	switch {
	case strings.TrimSpace(title) == "":
		return nil, ErrBlankTitle
	case strings.ContainsAny(title, ",|"):
		return nil, ErrInvalidTitle
	case capacity < minCapacity || capacity > l.maxCapacity:
		return nil, ErrInvalidCapacity
	case p.Room() != nil:
		return nil, ErrAlreadyInRoom
	}

	l.Lock()
	if _, ok := l.rooms[title]; ok {
		l.Unlock()
		return nil, ErrDuplicateTitle
	}
	r := newRoom(l, title, password, capacity, p)
	l.rooms[title] = r
	l.Unlock()

	p.setRoom(r)
	p.Send(line(MsgJoinSuccess, title))
	l.logger.Info(fmt.Sprintf("%s created room %q (max %d)", p.Nickname(), title, capacity))
	l.BroadcastRoomList()
	return r, nil
}

// JoinRoom attaches p to an existing room.
func (l *Lobby) JoinRoom(p *Player, title, password string) error {
	if p.Room() != nil {
		return ErrAlreadyInRoom
	}
	r := l.Room(title)
	if r == nil {
		return ErrRoomNotFound
	}
	return r.AddPlayer(p, password)
}

// Room looks a room up by title.
func (l *Lobby) Room(title string) *Room {
	l.RLock()
	defer l.RUnlock()
	return l.rooms[title]
}

func (l *Lobby) removeRoom(r *Room) {
	l.Lock()
	defer l.Unlock()
	if l.rooms[r.title] == r {
		delete(l.rooms, r.title)
		l.logger.Info(fmt.Sprintf("room %q closed", r.title))
	}
}

// RoomSummaries returns the lobby view of every room, ordered by title.
func (l *Lobby) RoomSummaries() []i.RoomSummary {
	l.RLock()
	defer l.RUnlock()
	out := make([]i.RoomSummary, 0, len(l.rooms))
	for _, title := range slices.Sorted(maps.Keys(l.rooms)) {
		out = append(out, l.rooms[title].Summary())
	}
	return out
}

// Nicknames returns every registered nickname in arrival order.
func (l *Lobby) Nicknames() []string {
	l.RLock()
	defer l.RUnlock()
	out := make([]string, len(l.arrivals))
	for n, p := range l.arrivals {
		out[n] = p.Nickname()
	}
	return out
}

// ListRooms serializes the room list and the user list as rooms|users.
func (l *Lobby) ListRooms() string {
	summaries := l.RoomSummaries()
	rooms := make([]string, len(summaries))
	for n, s := range summaries {
		rooms[n] = FormatSummary(s)
	}
	return strings.Join(rooms, ",") + "|" + strings.Join(l.Nicknames(), ",")
}

func (l *Lobby) roomListLine() string {
	return line(MsgUpdateRoomList, l.ListRooms())
}

// FormatSummary renders a room as it appears in UPDATE_ROOMLIST.
func FormatSummary(s i.RoomSummary) string {
	status := "[WAITING]"
	if s.InGame {
		status = "[IN_GAME]"
	}
	out := fmt.Sprintf("%s (%d/%d) %s", s.Title, s.Players, s.Capacity, status)
	if s.Private {
		out += " [PRIVATE]"
	}
	return out
}

// BroadcastLobby sends msg to every registered player outside a room.
func (l *Lobby) BroadcastLobby(msg string) {
	l.RLock()
	recipients := make([]*Player, 0, len(l.arrivals))
	for _, p := range l.arrivals {
		if p.Room() == nil {
			recipients = append(recipients, p)
		}
	}
	l.RUnlock()

	for _, p := range recipients {
		p.Send(msg)
	}
}

// BroadcastRoomList sends the current room list to the lobby.
func (l *Lobby) BroadcastRoomList() {
	l.BroadcastLobby(l.roomListLine())
}

// Handle processes one inbound line from a registered player.
func (l *Lobby) Handle(p *Player, raw string) {
	cmd, err := ParseCommand(raw)
	if err != nil {
		p.Send(errorLine(err.Error()))
		return
	}
	if r := p.Room(); r != nil {
		r.Dispatch(p, cmd)
		return
	}

	switch c := cmd.(type) {
	case CreateRoomCmd:
		if _, err := l.CreateRoom(p, c.Title, c.Password, c.Capacity); err != nil {
			p.Send(errorLine("cannot create room: " + err.Error()))
		}
	case JoinRoomCmd:
		if err := l.JoinRoom(p, c.Title, c.Password); err != nil {
			p.Send(errorLine("cannot join room: " + err.Error()))
		}
	case ChatCmd:
		l.BroadcastLobby(line(VerbLobbyChat, p.Nickname()+": "+c.Text))
	case LobbyChatCmd:
		l.BroadcastLobby(line(VerbLobbyChat, p.Nickname()+": "+c.Text))
	case ChangeNickCmd:
		_ = l.ChangeNickname(p, c.Nickname)
	case RoomInfoCmd:
		l.sendRoomInfo(p, c.Title)
	default:
		p.Send(errorLine("join a room first"))
	}
}

func (l *Lobby) sendRoomInfo(p *Player, title string) {
	r := l.Room(title)
	if r == nil {
		p.Send(errorLine(ErrRoomNotFound.Error()))
		return
	}
	if r.Summary().Private {
		p.Send(line(MsgRoomInfoPrivate, title))
		return
	}
	p.Send(line(MsgRoomInfoPublic, title))
}

func validName(name string) bool {
	return strings.TrimSpace(name) != "" && !strings.ContainsAny(name, ",|")
}

// StopAll closes every registered connection. Each connection's read loop
// then unregisters its player as usual.
func (l *Lobby) StopAll() {
	l.RLock()
	players := slices.Clone(l.arrivals)
	l.RUnlock()

	for _, p := range players {
		if err := p.Close(); err != nil {
			l.logger.Warning(fmt.Sprintf("closing connection of %s: %s", p.Nickname(), err))
		}
	}
}
