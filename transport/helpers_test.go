package transport

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeInstrument is a minimal line-oriented TCP peer for client tests.
//
// It accepts a single connection and applies handler to every received line.
// A nil return from handler means "no response" (command, not query).
type fakeInstrument struct {
	t        *testing.T
	listener net.Listener

	mu    sync.Mutex
	conn  net.Conn
	lines []string

	handler func(line string) *string

	wg sync.WaitGroup
}

func reply(s string) *string { return &s }

func newFakeInstrument(t *testing.T, handler func(line string) *string) *fakeInstrument {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	f := &fakeInstrument{t: t, listener: l, handler: handler}

	f.wg.Add(1)
	go f.serve()

	t.Cleanup(f.stop)

	return f
}

func (f *fakeInstrument) addr() (string, int) {
	tcpAddr := f.listener.Addr().(*net.TCPAddr)
	return "127.0.0.1", tcpAddr.Port
}

func (f *fakeInstrument) serve() {
	defer f.wg.Done()

	conn, err := f.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}

		line = strings.TrimRight(line, "\r\n")

		f.mu.Lock()
		f.lines = append(f.lines, line)
		f.mu.Unlock()

		if f.handler == nil {
			continue
		}
		if rsp := f.handler(line); rsp != nil {
			if _, err := conn.Write([]byte(*rsp + "\r\n")); err != nil {
				return
			}
		}
	}
}

func (f *fakeInstrument) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.lines))
	copy(out, f.lines)

	return out
}

func (f *fakeInstrument) stop() {
	_ = f.listener.Close()

	f.mu.Lock()
	if f.conn != nil {
		_ = f.conn.Close()
	}
	f.mu.Unlock()

	f.wg.Wait()
}

// newTestClient connects a Client to the fake instrument and registers
// cleanup so the connection is always released.
func newTestClient(t *testing.T, f *fakeInstrument, opts ...Option) *Client {
	t.Helper()

	host, port := f.addr()

	cfg, err := NewConfig(host, port, opts...)
	require.NoError(t, err)

	c := NewClient(cfg)
	require.NoError(t, c.Connect(t.Context()))
	t.Cleanup(func() { _ = c.Close() })

	return c
}
