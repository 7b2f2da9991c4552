package service

import (
	"errors"
	"strconv"
	"strings"

	"github.com/beka-birhanu/janggi-game-server/game"
)

// Client to server verbs.
const (
	VerbCreateRoom      = "CREATE_ROOM"
	VerbJoinRoom        = "JOIN_ROOM"
	VerbLeaveRoom       = "LEAVE_ROOM"
	VerbReady           = "READY"
	VerbMove            = "MOVE"
	VerbPlace           = "PLACE"
	VerbGetValidMoves   = "GET_VALID_MOVES"
	VerbUndoRequest     = "UNDO_REQUEST"
	VerbUndoResponse    = "UNDO_RESPONSE"
	VerbChat            = "CHAT"
	VerbLobbyChat       = "LOBBY_CHAT"
	VerbChangeNickname  = "CHANGE_NICKNAME"
	VerbRequestRoomInfo = "REQUEST_ROOMINFO"
)

// Server to client verbs.
const (
	MsgNicknameOK           = "NICKNAME_OK"
	MsgNicknameTaken        = "NICKNAME_TAKEN"
	MsgNicknameChangedOK    = "NICKNAME_CHANGED_OK"
	MsgNicknameChangeFailed = "NICKNAME_CHANGE_FAILED"
	MsgAssignRole           = "ASSIGN_ROLE"
	MsgUpdateRoomList       = "UPDATE_ROOMLIST"
	MsgJoinSuccess          = "JOIN_SUCCESS"
	MsgGotoLobby            = "GOTO_LOBBY"
	MsgSystem               = "SYSTEM"
	MsgPlayerReady          = "PLAYER_READY"
	MsgGameStart            = "GAME_START"
	MsgUpdateState          = "UPDATE_STATE"
	MsgValidMoves           = "VALID_MOVES"
	MsgGameOver             = "GAME_OVER"
	MsgUndoRequested        = "UNDO_REQUESTED"
	MsgError                = "ERROR"
	MsgRoomInfoPrivate      = "ROOMINFO_PRIVATE"
	MsgRoomInfoPublic       = "ROOMINFO_PUBLIC"

	roleHost  = "HOST"
	roleGuest = "GUEST"
)

// Command decoding errors.
var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrMalformedCommand = errors.New("malformed command")
)

// Command is a decoded client line. The concrete types below are the only
// implementations.
type Command interface {
	verb() string
}

type (
	// CreateRoomCmd is CREATE_ROOM title#password#maxPlayers.
	CreateRoomCmd struct {
		Title    string
		Password string
		Capacity int
	}
	// JoinRoomCmd is JOIN_ROOM title#password.
	JoinRoomCmd struct {
		Title    string
		Password string
	}
	LeaveRoomCmd struct{}
	ReadyCmd     struct{}
	MoveCmd      struct{ From, To game.Cell }
	PlaceCmd     struct {
		Piece game.Piece
		At    game.Cell
	}
	ValidMovesCmd   struct{ At game.Cell }
	UndoRequestCmd  struct{}
	UndoResponseCmd struct{ Accept bool }
	ChatCmd         struct{ Text string }
	LobbyChatCmd    struct{ Text string }
	ChangeNickCmd   struct{ Nickname string }
	RoomInfoCmd     struct{ Title string }
)

func (CreateRoomCmd) verb() string   { return VerbCreateRoom }
func (JoinRoomCmd) verb() string     { return VerbJoinRoom }
func (LeaveRoomCmd) verb() string    { return VerbLeaveRoom }
func (ReadyCmd) verb() string        { return VerbReady }
func (MoveCmd) verb() string         { return VerbMove }
func (PlaceCmd) verb() string        { return VerbPlace }
func (ValidMovesCmd) verb() string   { return VerbGetValidMoves }
func (UndoRequestCmd) verb() string  { return VerbUndoRequest }
func (UndoResponseCmd) verb() string { return VerbUndoResponse }
func (ChatCmd) verb() string         { return VerbChat }
func (LobbyChatCmd) verb() string    { return VerbLobbyChat }
func (ChangeNickCmd) verb() string   { return VerbChangeNickname }
func (RoomInfoCmd) verb() string     { return VerbRequestRoomInfo }

// ParseCommand decodes one wire line into a Command.
func ParseCommand(line string) (Command, error) {
	verb, payload, _ := strings.Cut(strings.TrimRight(line, "\r\n"), " ")
	switch verb {
	case VerbCreateRoom:
		parts := strings.SplitN(payload, "#", 3)
		if len(parts) != 3 {
			return nil, ErrMalformedCommand
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, ErrMalformedCommand
		}
		return CreateRoomCmd{Title: parts[0], Password: parts[1], Capacity: capacity}, nil
	case VerbJoinRoom:
		title, password, _ := strings.Cut(payload, "#")
		return JoinRoomCmd{Title: title, Password: password}, nil
	case VerbLeaveRoom:
		return LeaveRoomCmd{}, nil
	case VerbReady:
		return ReadyCmd{}, nil
	case VerbMove:
		n, err := parseInts(payload, 4)
		if err != nil {
			return nil, err
		}
		return MoveCmd{From: game.Cell{Row: n[0], Col: n[1]}, To: game.Cell{Row: n[2], Col: n[3]}}, nil
	case VerbPlace:
		token, rest, _ := strings.Cut(payload, " ")
		p, err := game.ParsePieceToken(token)
		if err != nil {
			return nil, ErrMalformedCommand
		}
		n, err := parseInts(rest, 2)
		if err != nil {
			return nil, err
		}
		return PlaceCmd{Piece: p, At: game.Cell{Row: n[0], Col: n[1]}}, nil
	case VerbGetValidMoves:
		n, err := parseInts(payload, 2)
		if err != nil {
			return nil, err
		}
		return ValidMovesCmd{At: game.Cell{Row: n[0], Col: n[1]}}, nil
	case VerbUndoRequest:
		return UndoRequestCmd{}, nil
	case VerbUndoResponse:
		accept, err := strconv.ParseBool(strings.TrimSpace(payload))
		if err != nil {
			return nil, ErrMalformedCommand
		}
		return UndoResponseCmd{Accept: accept}, nil
	case VerbChat:
		return ChatCmd{Text: payload}, nil
	case VerbLobbyChat:
		return LobbyChatCmd{Text: payload}, nil
	case VerbChangeNickname:
		return ChangeNickCmd{Nickname: strings.TrimSpace(payload)}, nil
	case VerbRequestRoomInfo:
		return RoomInfoCmd{Title: payload}, nil
	}
	return nil, ErrUnknownCommand
}

func parseInts(payload string, want int) ([]int, error) {
	fields := strings.Fields(payload)
	if len(fields) != want {
		return nil, ErrMalformedCommand
	}
	out := make([]int, want)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, ErrMalformedCommand
		}
		out[i] = n
	}
	return out, nil
}

func line(verb string, args ...string) string {
	if len(args) == 0 {
		return verb
	}
	return verb + " " + strings.Join(args, " ")
}

func errorLine(text string) string { return line(MsgError, text) }

func systemLine(text string) string { return line(MsgSystem, text) }

// StateLine renders UPDATE_STATE for a game: board tokens, both pools, the
// side to move and, when present, the notation history.
func StateLine(l *game.Logic) string {
	b := l.Board()
	payload := strings.Join([]string{
		b.Tokens(),
		b.PoolTokens(game.SideA),
		b.PoolTokens(game.SideB),
		l.Turn().String(),
	}, "|")
	if history := l.History(); len(history) > 0 {
		payload += "#" + strings.Join(history, ",")
	}
	return line(MsgUpdateState, payload)
}
