package service

import (
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/beka-birhanu/janggi-game-server/service/i"
	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	logger "github.com/beka-birhanu/vinom-common/log"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recorder is an i.Conn that keeps every line it is sent.
type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) Send(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *recorder) Close() error { return nil }

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// with returns the recorded lines whose verb is verb.
func (r *recorder) with(verb string) []string {
	var out []string
	for _, l := range r.all() {
		if l == verb || strings.HasPrefix(l, verb+" ") {
			out = append(out, l)
		}
	}
	return out
}

func (r *recorder) last(verb string) string {
	lines := r.with(verb)
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

func (r *recorder) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}

type replayStoreMock struct {
	mock.Mock
}

func (m *replayStoreMock) Save(title string, notation []string) (string, error) {
	args := m.Called(title, notation)
	return args.String(0), args.Error(1)
}

func testLogger(t *testing.T) general_i.Logger {
	t.Helper()
	l, err := logger.New("TEST", "", io.Discard)
	require.NoError(t, err)
	return l
}

func hostOnA() bool  { return true }
func guestOnA() bool { return false }

func newTestLobby(t *testing.T, coin func() bool, store i.ReplayStore) *Lobby {
	t.Helper()
	l, err := NewLobby(&Config{
		Replays:     store,
		Logger:      testLogger(t),
		MaxCapacity: 8,
		Coin:        coin,
	})
	require.NoError(t, err)
	return l
}

func connect(t *testing.T, l *Lobby, nickname string) (*Player, *recorder) {
	t.Helper()
	rec := &recorder{}
	p := NewPlayer(rec)
	require.NoError(t, l.Register(p, nickname))
	return p, rec
}

// table is a lobby with one room r1 holding host and guest.
type table struct {
	lobby *Lobby
	room  *Room
	host  *Player
	hostC *recorder
	guest *Player
	gstC  *recorder
}

func newTable(t *testing.T, coin func() bool, store i.ReplayStore) *table {
	t.Helper()
	l := newTestLobby(t, coin, store)
	h, hr := connect(t, l, "host")
	g, gr := connect(t, l, "guest")
	l.Handle(h, "CREATE_ROOM r1##4")
	l.Handle(g, "JOIN_ROOM r1#")
	r := l.Room("r1")
	require.NotNil(t, r)
	require.Equal(t, g, r.Guest())
	return &table{lobby: l, room: r, host: h, hostC: hr, guest: g, gstC: gr}
}

// started readies both players so the game begins.
func (tb *table) started(t *testing.T) *table {
	t.Helper()
	tb.lobby.Handle(tb.host, "READY")
	tb.lobby.Handle(tb.guest, "READY")
	require.Len(t, tb.hostC.with(MsgGameStart), 1)
	return tb
}

// sideA returns the player on side A and its recorder.
func (tb *table) sideA() (*Player, *recorder) {
	if tb.room.session.SideOf(tb.host).String() == "A" {
		return tb.host, tb.hostC
	}
	return tb.guest, tb.gstC
}

func (tb *table) sideB() (*Player, *recorder) {
	if tb.room.session.SideOf(tb.host).String() == "B" {
		return tb.host, tb.hostC
	}
	return tb.guest, tb.gstC
}
