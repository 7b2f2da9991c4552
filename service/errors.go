package service

import "errors"

// Lobby and room errors. Their text is what the client sees after ERROR.
var (
	ErrInvalidNickname   = errors.New("nickname must not be blank or contain ',' or '|'")
	ErrNicknameTaken     = errors.New("nickname is already taken")
	ErrAlreadyRegistered = errors.New("connection already has a nickname")
	ErrNotRegistered     = errors.New("connection has no nickname")
	ErrBlankTitle        = errors.New("room title must not be blank")
	ErrInvalidTitle      = errors.New("room title must not contain ',' or '|'")
	ErrDuplicateTitle    = errors.New("a room with that title already exists")
	ErrInvalidCapacity   = errors.New("invalid number of players")
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrWrongPassword     = errors.New("wrong password")
	ErrAlreadyInRoom     = errors.New("already in a room")
	ErrMissingLogger     = errors.New("logger is required")
)
