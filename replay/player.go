package replay

import (
	"github.com/beka-birhanu/janggi-game-server/game"
	"github.com/pkg/errors"
)

// Replay errors.
var (
	ErrOutOfRange   = errors.New("position out of range")
	ErrInvalidToken = errors.New("token does not apply to the position")
)

// Player steps through a notation history. Going back replays from the
// start, since the game keeps no reverse step.
type Player struct {
	tokens []string
	logic  *game.Logic
	index  int
}

// NewPlayer returns a player positioned before the first token.
func NewPlayer(tokens []string) *Player {
	p := &Player{tokens: tokens}
	p.restart()
	return p
}

// Len returns the number of tokens.
func (p *Player) Len() int { return len(p.tokens) }

// Index returns how many tokens have been applied.
func (p *Player) Index() int { return p.index }

// Logic exposes the game at the current position.
func (p *Player) Logic() *game.Logic { return p.logic }

// Next applies the next token. It returns false at the end or when the
// token does not apply.
func (p *Player) Next() bool {
	if p.index >= len(p.tokens) {
		return false
	}
	if !p.logic.ReplayToken(p.tokens[p.index]) {
		return false
	}
	p.index++
	return true
}

// Prev steps one token back.
func (p *Player) Prev() bool {
	if p.index == 0 {
		return false
	}
	return p.Seek(p.index-1) == nil
}

// Seek replays from the start up to position i.
func (p *Player) Seek(i int) error {
	if i < 0 || i > len(p.tokens) {
		return errors.Wrapf(ErrOutOfRange, "seek %d of %d", i, len(p.tokens))
	}
	p.restart()
	for p.index < i {
		if !p.Next() {
			return errors.Wrapf(ErrInvalidToken, "token %d %q", p.index+1, p.tokens[p.index])
		}
	}
	return nil
}

func (p *Player) restart() {
	p.logic = game.NewLogic()
	p.logic.Start()
	p.index = 0
}
