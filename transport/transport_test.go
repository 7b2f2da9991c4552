package transport

import (
	"bufio"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/beka-birhanu/janggi-game-server/service"
	"github.com/beka-birhanu/janggi-game-server/service/i"
	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	logger "github.com/beka-birhanu/vinom-common/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readTimeout = 2 * time.Second

func testLogger(t *testing.T) general_i.Logger {
	t.Helper()
	l, err := logger.New("TEST", "", io.Discard)
	require.NoError(t, err)
	return l
}

func testLobby(t *testing.T) *service.Lobby {
	t.Helper()
	l, err := service.NewLobby(&service.Config{Logger: testLogger(t), Coin: func() bool { return true }})
	require.NoError(t, err)
	return l
}

type lineClient struct {
	conn net.Conn
	r    *bufio.Reader
}

func dialTCP(t *testing.T, addr string) *lineClient {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return &lineClient{conn: c, r: bufio.NewReader(c)}
}

func (c *lineClient) send(t *testing.T, line string) {
	t.Helper()
	_, err := io.WriteString(c.conn, line+"\n")
	require.NoError(t, err)
}

// expect reads until a line satisfying match arrives.
func (c *lineClient) expect(t *testing.T, match func(string) bool) string {
	t.Helper()
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(readTimeout)))
	for {
		line, err := c.r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if match(line) {
			return line
		}
	}
}

func is(want string) func(string) bool {
	return func(line string) bool { return line == want }
}

func startTCP(t *testing.T, lobby Lobby) *TCPServer {
	t.Helper()
	srv, err := NewTCPServer(&Config{Addr: "127.0.0.1:0", Lobby: lobby, OutboxSize: 16, Logger: testLogger(t)})
	require.NoError(t, err)
	go func() { _ = srv.Serve() }()
	t.Cleanup(func() { _ = srv.Stop() })
	return srv
}

func TestTCPGame(t *testing.T) {
	srv := startTCP(t, testLobby(t))
	addr := srv.Addr().String()

	a := dialTCP(t, addr)
	a.send(t, "   ")
	a.expect(t, is("NICKNAME_TAKEN"))
	a.send(t, "neo")
	a.expect(t, is("NICKNAME_OK"))

	b := dialTCP(t, addr)
	b.send(t, "neo")
	b.expect(t, is("NICKNAME_TAKEN"))
	b.send(t, "trinity\r")
	b.expect(t, is("NICKNAME_OK"))

	a.send(t, "CREATE_ROOM zion##2")
	a.expect(t, is("JOIN_SUCCESS zion"))
	b.send(t, "JOIN_ROOM zion#")
	b.expect(t, is("JOIN_SUCCESS zion"))

	a.send(t, "READY")
	b.send(t, "READY")
	a.expect(t, is("ASSIGN_ROLE A"))
	b.expect(t, is("ASSIGN_ROLE B"))
	b.expect(t, is("GAME_START"))

	a.send(t, "MOVE 3 2 2 2")
	state := b.expect(t, func(l string) bool { return strings.HasSuffix(l, "#Gc1c2") })
	assert.True(t, strings.HasPrefix(state, "UPDATE_STATE "))

	b.send(t, "MOVE 0 0 5 5")
	b.expect(t, is("ERROR that move is not allowed"))

	require.NoError(t, b.conn.Close())
	a.expect(t, is("GAME_OVER trinity left the game"))
}

func TestTCPStopClosesClients(t *testing.T) {
	srv, err := NewTCPServer(&Config{Addr: "127.0.0.1:0", Lobby: testLobby(t), Logger: testLogger(t)})
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	c := dialTCP(t, srv.Addr().String())
	c.send(t, "neo")
	c.expect(t, is("NICKNAME_OK"))
	dialTCP(t, srv.Addr().String())

	require.NoError(t, srv.Stop())
	require.NoError(t, <-done)

	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(readTimeout)))
	_, err = io.ReadAll(c.r)
	assert.NoError(t, err, "stream ends with EOF")
}

func TestOutboxDropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	var written []string
	o := newOutbox(2, "test", func(line string) error {
		<-release
		mu.Lock()
		defer mu.Unlock()
		written = append(written, line)
		return nil
	}, func() error { return nil }, testLogger(t))

	for n := 0; n < 10; n++ {
		o.Send("line")
	}
	close(release)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(written) >= 2
	}, readTimeout, 10*time.Millisecond)

	require.NoError(t, o.Close())
	require.NoError(t, o.Close())
	o.wait()
	o.Send("after close")

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, len(written), 3)
}

func TestWebSocket(t *testing.T) {
	lobby := testLobby(t)
	log := testLogger(t)
	ws := NewWSHandler(&Config{Lobby: lobby, Logger: log})
	srv := httptest.NewServer(NewRouter(lobby, ws, log))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	read := func(want string) {
		t.Helper()
		require.NoError(t, c.SetReadDeadline(time.Now().Add(readTimeout)))
		for {
			_, msg, err := c.ReadMessage()
			require.NoError(t, err)
			if string(msg) == want {
				return
			}
		}
	}
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("neo")))
	read("NICKNAME_OK")
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("CREATE_ROOM zion#pw#3")))
	read("JOIN_SUCCESS zion")

	resp, err := http.Get(srv.URL + "/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	var view lobbyView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, lobbyView{
		Rooms: []roomView{{Title: "zion", Players: 1, Capacity: 3, Private: true}},
		Users: []string{"neo"},
	}, view)
}

type fakeDirectory struct {
	rooms []i.RoomSummary
	users []string
}

func (d fakeDirectory) RoomSummaries() []i.RoomSummary { return d.rooms }
func (d fakeDirectory) Nicknames() []string            { return d.users }

func TestRouter(t *testing.T) {
	dir := fakeDirectory{rooms: []i.RoomSummary{{Title: "zion", Players: 2, Capacity: 2, InGame: true}}}
	router := NewRouter(dir, http.NotFoundHandler(), testLogger(t))

	get := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	rec := get(http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = get(http.MethodGet, "/rooms")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rooms":[{"title":"zion","players":2,"capacity":2,"inGame":true,"private":false}],"users":[]}`, rec.Body.String())

	rec = get(http.MethodGet, "/rooms/zion")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"title":"zion","players":2,"capacity":2,"inGame":true,"private":false}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get(http.MethodGet, "/rooms/nowhere").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, get(http.MethodPost, "/rooms").Code)
}

func TestTCPOverlongLineKeepsConnection(t *testing.T) {
	srv := startTCP(t, testLobby(t))
	c := dialTCP(t, srv.Addr().String())
	c.send(t, "neo")
	c.expect(t, is("NICKNAME_OK"))

	c.send(t, "CHAT "+strings.Repeat("x", 70*1024))
	c.expect(t, is("ERROR line too long"))
	c.send(t, "CREATE_ROOM zion##2")
	c.expect(t, is("JOIN_SUCCESS zion"))
}

func TestLineReader(t *testing.T) {
	long := strings.Repeat("y", 10000)
	lr := newLineReader(strings.NewReader("short\r\n"+long+"\nafter\nlast"), 16)

	line, err := lr.next()
	require.NoError(t, err)
	assert.Equal(t, "short", line)

	_, err = lr.next()
	assert.ErrorIs(t, err, errLineTooLong)

	line, err = lr.next()
	require.NoError(t, err)
	assert.Equal(t, "after", line)

	line, err = lr.next()
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = lr.next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWebSocketReadLimit(t *testing.T) {
	lobby := testLobby(t)
	log := testLogger(t)
	ws := NewWSHandler(&Config{Lobby: lobby, MaxLineBytes: 64, Logger: log})
	srv := httptest.NewServer(NewRouter(lobby, ws, log))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("neo")))
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("CHAT "+strings.Repeat("x", 1024))))

	require.NoError(t, c.SetReadDeadline(time.Now().Add(readTimeout)))
	for {
		if _, _, err = c.ReadMessage(); err != nil {
			break
		}
	}
	assert.True(t, websocket.IsCloseError(err, websocket.CloseMessageTooBig), "got %v", err)
	assert.Eventually(t, func() bool { return len(lobby.Nicknames()) == 0 }, readTimeout, 10*time.Millisecond)
}
