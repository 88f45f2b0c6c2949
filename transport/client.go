package transport

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/4x0/hioctl/internal/queue"
	"github.com/4x0/hioctl/logger"
)

// terminator ends every transmitted command line. The instrument echoes
// responses terminated by LF, with an optional CR before it.
const terminator = "\r\n"

// Client owns the single TCP connection to the instrument and the pending
// command batch.
//
// A Client is driven by one logical thread of control; it performs no
// internal locking around the stream. Exactly one query may be outstanding.
type Client struct {
	cfg    *Config
	logger logger.Logger

	state  AtomicConnState
	conn   net.Conn
	reader *bufio.Reader
	batch  *queue.CommandQueue

	// fatal is the first unrecoverable error observed on the stream.
	// Once set, all further I/O is suppressed.
	fatal error
}

// NewClient creates a Client for the given configuration. The connection is
// not established until Connect.
func NewClient(cfg *Config) *Client {
	return &Client{
		cfg:    cfg,
		logger: cfg.logger,
		batch:  queue.NewCommandQueue(cfg.batchPrealloc),
	}
}

// Connect dials the instrument. It fails with an error wrapping
// [ErrConnection] on refusal or dial timeout.
//
// Every code path that connects must guarantee Close runs, including on
// error; callers defer Close immediately after a successful Connect.
func (c *Client) Connect(ctx context.Context) error {
	if !c.state.ToConnecting() {
		return fmt.Errorf("%w: connect in state %s", ErrConnection, c.state.String())
	}

	dialer := net.Dialer{Timeout: c.cfg.connectTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Addr())
	if err != nil {
		c.state.Set(DisconnectedState)

		return fmt.Errorf("%w: dial %s: %v", ErrConnection, c.cfg.Addr(), err)
	}

	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.state.ToConnected()

	c.logger.Debug("transport: connected", "addr", c.cfg.Addr())

	return nil
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	return c.state.Get()
}

// Pending returns the number of commands awaiting flush.
func (c *Client) Pending() int {
	return c.batch.Length()
}

// Enqueue appends a command to the pending batch. No network I/O occurs
// until Flush or Query.
func (c *Client) Enqueue(cmd string) {
	c.batch.Enqueue(cmd)
}

// Flush writes all pending commands as a single CRLF-joined write and clears
// the batch. It is a no-op when the batch is empty.
func (c *Client) Flush() error {
	if c.fatal != nil {
		return fmt.Errorf("%w: flush after %v", ErrClosed, c.fatal)
	}
	if c.batch.IsEmpty() {
		return nil
	}
	if !c.state.IsConnected() {
		return ErrNotConnected
	}

	payload := c.batch.Join(terminator) + terminator

	if err := c.write(payload); err != nil {
		return err
	}

	c.logger.Debug("transport: batch flushed", "commands", c.batch.Length())
	c.batch.Reset()

	return nil
}

// Query flushes the pending batch, writes the query line, and reads the
// response using the configured default query timeout.
func (c *Client) Query(cmd string) (string, error) {
	return c.QueryTimeout(cmd, c.cfg.queryTimeout)
}

// QueryTimeout flushes the pending batch, writes the query line, and reads
// until a line terminator arrives or timeout elapses.
//
// It fails with an error wrapping [ErrTimeout] if no terminator is observed
// in time, and with [ErrProtocol] on an empty response line.
func (c *Client) QueryTimeout(cmd string, timeout time.Duration) (string, error) {
	if c.fatal != nil {
		return "", fmt.Errorf("%w: query after %v", ErrClosed, c.fatal)
	}
	if !c.state.IsConnected() {
		return "", ErrNotConnected
	}

	// Commands must hit the instrument before the query that depends on them.
	if err := c.Flush(); err != nil {
		return "", err
	}

	if err := c.write(cmd + terminator); err != nil {
		return "", err
	}

	return c.readLine(cmd, timeout)
}

// Close flushes any pending batch on a best-effort basis, then releases the
// connection. It is idempotent.
func (c *Client) Close() error {
	if c.state.IsDisconnected() {
		return nil
	}
	// A fatal stream error has already moved the state to Closing; the
	// connection still has to be released.
	if !c.state.ToClosing() && !c.state.IsClosing() {
		return nil
	}

	if c.conn != nil {
		if c.fatal == nil && !c.batch.IsEmpty() {
			payload := c.batch.Join(terminator) + terminator
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.closeTimeout))
			if _, err := c.conn.Write([]byte(payload)); err != nil {
				c.logger.Warn("transport: final flush failed", "error", err)
			}
		}

		if err := c.conn.Close(); err != nil {
			c.logger.Warn("transport: close failed", "error", err)
		}
		c.conn = nil
		c.reader = nil
	}

	c.batch.Reset()
	c.state.ToDisconnected()

	c.logger.Debug("transport: connection closed", "addr", c.cfg.Addr())

	return nil
}

// write sends raw bytes with a write deadline, recording a fatal error on
// failure so later calls are suppressed.
func (c *Client) write(payload string) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.queryTimeout))

	if _, err := c.conn.Write([]byte(payload)); err != nil {
		c.fail(err)

		return fmt.Errorf("%w: write: %v", ErrConnection, err)
	}

	return nil
}

// readLine reads until LF or timeout. CR bytes are stripped from the result.
func (c *Client) readLine(cmd string, timeout time.Duration) (string, error) {
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	line, err := c.reader.ReadString('\n')
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			c.logger.Warn("transport: query timeout", "command", cmd, "timeout", timeout)

			return "", fmt.Errorf("%w: no response to %q within %v", ErrTimeout, cmd, timeout)
		}

		c.fail(err)

		return "", fmt.Errorf("%w: read: %v", ErrConnection, err)
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.ReplaceAll(line, "\r", "")

	if line == "" {
		return "", fmt.Errorf("%w: empty response to %q", ErrProtocol, cmd)
	}

	return line, nil
}

// fail records the first unrecoverable stream error and moves the connection
// toward Closing so no further writes reach a desynchronized instrument.
func (c *Client) fail(err error) {
	if c.fatal != nil {
		return
	}

	c.fatal = err
	c.state.ToClosing()

	c.logger.Error("transport: unrecoverable stream error", "error", err)
}
