package transport

import (
	"fmt"
	"sync"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
)

const defaultOutboxSize = 64

// outbox is a connection's outbound queue. A dedicated goroutine drains it,
// so Send never waits on the peer; a full queue drops the line.
type outbox struct {
	lines  chan string
	done   chan struct{}
	once   sync.Once
	write  func(line string) error
	closer func() error
	remote string
	logger general_i.Logger
	wg     sync.WaitGroup
}

func newOutbox(size int, remote string, write func(string) error, closeFn func() error, logger general_i.Logger) *outbox {
	if size <= 0 {
		size = defaultOutboxSize
	}
	o := &outbox{
		lines:  make(chan string, size),
		done:   make(chan struct{}),
		write:  write,
		closer: closeFn,
		remote: remote,
		logger: logger,
	}
	o.wg.Add(1)
	go o.run()
	return o
}

// Send queues line without blocking.
func (o *outbox) Send(line string) {
	select {
	case <-o.done:
		return
	default:
	}
	select {
	case o.lines <- line:
	default:
		o.logger.Warning(fmt.Sprintf("outbox full for %s, dropped: %s", o.remote, line))
	}
}

// Close stops the writer and closes the underlying connection once.
func (o *outbox) Close() error {
	var err error
	o.once.Do(func() {
		close(o.done)
		err = o.closer()
	})
	return err
}

// wait blocks until the writer goroutine has exited.
func (o *outbox) wait() { o.wg.Wait() }

func (o *outbox) run() {
	defer o.wg.Done()
	for {
		select {
		case <-o.done:
			return
		case line := <-o.lines:
			if err := o.write(line); err != nil {
				o.logger.Warning(fmt.Sprintf("writing to %s: %s", o.remote, err))
				_ = o.Close()
				return
			}
		}
	}
}
