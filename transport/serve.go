package transport

import (
	"fmt"
	"strings"

	"github.com/beka-birhanu/janggi-game-server/service"
	"github.com/beka-birhanu/janggi-game-server/service/i"
	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
)

// Lobby is the part of the lobby a transport drives.
type Lobby interface {
	Register(p *service.Player, nickname string) error
	Unregister(p *service.Player)
	Handle(p *service.Player, line string)
}

// serveLines runs one client on the calling goroutine: nickname attempts
// until one is accepted, then every further line goes to the lobby. next
// reports false once the stream ends, which unregisters the player.
func serveLines(lobby Lobby, conn i.Conn, remote string, next func() (string, bool), logger general_i.Logger) {
	defer conn.Close()
	p := service.NewPlayer(conn)

	for {
		line, ok := next()
		if !ok {
			logger.Info(fmt.Sprintf("%s left before choosing a nickname", remote))
			return
		}
		if err := lobby.Register(p, strings.TrimSpace(line)); err == nil {
			break
		}
	}
	defer lobby.Unregister(p)
	logger.Info(fmt.Sprintf("%s registered as %s", remote, p.Nickname()))

	for {
		line, ok := next()
		if !ok {
			logger.Info(fmt.Sprintf("%s (%s) disconnected", remote, p.Nickname()))
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		lobby.Handle(p, line)
	}
}
