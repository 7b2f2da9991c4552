package service

import (
	"sync"

	"github.com/beka-birhanu/janggi-game-server/service/i"
	"github.com/google/uuid"
)

// Player is one connected client: identity, nickname and current room.
type Player struct {
	id   uuid.UUID
	conn i.Conn

	mu       sync.Mutex
	nickname string
	room     *Room
}

// NewPlayer wraps a connection with a fresh player identity.
func NewPlayer(conn i.Conn) *Player {
	return &Player{id: uuid.New(), conn: conn}
}

// ID returns the player's connection identifier.
func (p *Player) ID() uuid.UUID { return p.id }

// Nickname returns the registered nickname, empty before registration.
func (p *Player) Nickname() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nickname
}

func (p *Player) setNickname(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nickname = name
}

// Room returns the room the player is attached to, nil in the lobby.
func (p *Player) Room() *Room {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.room
}

func (p *Player) setRoom(r *Room) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.room = r
}

// Send queues a line for the player.
func (p *Player) Send(line string) {
	if p != nil && p.conn != nil {
		p.conn.Send(line)
	}
}

// Close closes the underlying connection.
func (p *Player) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
