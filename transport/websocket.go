package transport

import (
	"fmt"
	"net/http"
	"time"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// WSHandler serves the line protocol over WebSocket, one text frame per
// line.
type WSHandler struct {
	lobby      Lobby
	outboxSize int
	maxLine    int
	logger     general_i.Logger
	upgrader   websocket.Upgrader
}

// NewWSHandler returns a handler for browser clients.
func NewWSHandler(c *Config) *WSHandler {
	return &WSHandler{
		lobby:      c.Lobby,
		outboxSize: c.OutboxSize,
		maxLine:    c.MaxLineBytes,
		logger:     c.Logger,
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warning(fmt.Sprintf("upgrading %s: %s", r.RemoteAddr, err))
		return
	}
	maxLine := h.maxLine
	if maxLine <= 0 {
		maxLine = defaultMaxLineBytes
	}
	// an over-long frame closes the connection with CloseMessageTooBig.
	ws.SetReadLimit(int64(maxLine))
	remote := r.RemoteAddr
	h.logger.Info(fmt.Sprintf("websocket connection from %s", remote))

	out := newOutbox(h.outboxSize, remote, func(line string) error {
		if err := ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return err
		}
		return ws.WriteMessage(websocket.TextMessage, []byte(line))
	}, ws.Close, h.logger)

	next := func() (string, bool) {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) || websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warning(fmt.Sprintf("reading from %s: %s", remote, err))
			}
			return "", false
		}
		return string(msg), true
	}
	serveLines(h.lobby, out, remote, next, h.logger)
	out.wait()
}
