package transport

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/beka-birhanu/janggi-game-server/service"
	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	"github.com/pkg/errors"
)

const writeTimeout = 10 * time.Second

// Config holds what a transport needs to serve clients. MaxLineBytes caps
// one inbound line or WebSocket frame.
type Config struct {
	Addr         string
	Lobby        Lobby
	OutboxSize   int
	MaxLineBytes int
	Logger       general_i.Logger
}

// TCPServer accepts newline-delimited text clients.
type TCPServer struct {
	listener   net.Listener
	lobby      Lobby
	outboxSize int
	maxLine    int
	logger     general_i.Logger
	wg         sync.WaitGroup

	mu      sync.Mutex
	stopped bool
	conns   map[net.Conn]struct{}
}

// NewTCPServer binds the listening socket.
func NewTCPServer(c *Config) (*TCPServer, error) {
	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", c.Addr)
	}
	return &TCPServer{
		listener:   ln,
		lobby:      c.Lobby,
		outboxSize: c.OutboxSize,
		maxLine:    c.MaxLineBytes,
		logger:     c.Logger,
		conns:      make(map[net.Conn]struct{}),
	}, nil
}

// Addr returns the bound address.
func (s *TCPServer) Addr() net.Addr { return s.listener.Addr() }

// Serve accepts clients until Stop is called. Any other accept failure is
// returned.
func (s *TCPServer) Serve() error {
	s.logger.Info(fmt.Sprintf("accepting clients on %s", s.listener.Addr()))
	for {
		c, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return errors.Wrap(err, "accepting connection")
		}
		if !s.track(c) {
			_ = c.Close()
			continue
		}
		go func() {
			defer s.untrack(c)
			s.handle(c)
		}()
	}
}

// Stop closes the listener and every open client, then waits for their
// goroutines to finish.
func (s *TCPServer) Stop() error {
	s.mu.Lock()
	s.stopped = true
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	err := s.listener.Close()
	s.wg.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// track registers an accepted client. It reports false once Stop has run.
func (s *TCPServer) track(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *TCPServer) untrack(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *TCPServer) handle(c net.Conn) {
	remote := c.RemoteAddr().String()
	s.logger.Info(fmt.Sprintf("connection from %s", remote))

	out := newOutbox(s.outboxSize, remote, func(line string) error {
		if err := c.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return err
		}
		_, err := io.WriteString(c, line+"\n")
		return err
	}, c.Close, s.logger)

	lr := newLineReader(c, s.maxLine)
	next := func() (string, bool) {
		for {
			line, err := lr.next()
			switch {
			case err == nil:
				return line, true
			case errors.Is(err, errLineTooLong):
				s.logger.Warning(fmt.Sprintf("discarded an over-long line from %s", remote))
				out.Send(service.MsgError + " " + err.Error())
				continue
			case !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed):
				s.logger.Warning(fmt.Sprintf("reading from %s: %s", remote, err))
			}
			return "", false
		}
	}
	serveLines(s.lobby, out, remote, next, s.logger)
	out.wait()
}
