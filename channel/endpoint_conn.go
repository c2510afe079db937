package channel

import (
	"errors"
	"io"
	"net"
	"time"
)

// connPollSlice bounds how long a ConnEndpoint read or write may occupy
// the loop before reporting would-block.
const connPollSlice = time.Millisecond

// ConnEndpoint adapts a deadline-capable net.Conn to the non-blocking
// Endpoint contract. It carries the named-pipe transports, whose handles
// are not poll(2)-able descriptors.
type ConnEndpoint struct {
	conn   net.Conn
	peeked []byte
	closed bool
}

// NewConnEndpoint wraps conn. The endpoint takes ownership of the
// connection.
func NewConnEndpoint(conn net.Conn) *ConnEndpoint {
	return &ConnEndpoint{conn: conn}
}

// Read implements Endpoint. Bytes pulled ahead by Wait are returned first.
func (e *ConnEndpoint) Read(p []byte) (int, error) {
	if e.closed {
		return 0, io.EOF
	}
	if len(e.peeked) > 0 {
		n := copy(p, e.peeked)
		e.peeked = e.peeked[n:]
		return n, nil
	}
	_ = e.conn.SetReadDeadline(time.Now().Add(connPollSlice))
	n, err := e.conn.Read(p)
	return n, e.mapErr(n, err)
}

// Write implements Endpoint. A deadline turns a stalled connection into a
// partial write plus would-block instead of an indefinite stall.
func (e *ConnEndpoint) Write(p []byte) (int, error) {
	if e.closed {
		return 0, io.ErrClosedPipe
	}
	_ = e.conn.SetWriteDeadline(time.Now().Add(connPollSlice))
	n, err := e.conn.Write(p)
	if err != nil && isTimeout(err) {
		return n, ErrWouldBlock
	}
	return n, err
}

// Wait implements Endpoint. Write readiness cannot be observed on a
// net.Conn, so it is assumed; read readiness is probed by pulling a single
// byte ahead, which Read hands back later.
func (e *ConnEndpoint) Wait(interest IOFlags, timeout time.Duration) (IOFlags, error) {
	if e.closed {
		return IOError, nil
	}
	if interest&IOWrite != 0 {
		return IOWrite, nil
	}
	if interest&IORead == 0 {
		time.Sleep(timeout)
		return 0, nil
	}
	if len(e.peeked) > 0 {
		return IORead, nil
	}
	var one [1]byte
	_ = e.conn.SetReadDeadline(time.Now().Add(timeout))
	n, err := e.conn.Read(one[:])
	if n > 0 {
		e.peeked = append(e.peeked, one[:n]...)
		return IORead, nil
	}
	if err != nil && isTimeout(err) {
		return 0, nil
	}
	if err != nil {
		// Let Read surface the EOF or failure.
		return IORead, nil
	}
	return 0, nil
}

// Close implements Endpoint.
func (e *ConnEndpoint) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.conn.Close()
}

// Fd implements Endpoint. Conn endpoints are not descriptor-backed.
func (e *ConnEndpoint) Fd() int { return -1 }

func (e *ConnEndpoint) mapErr(n int, err error) error {
	switch {
	case err == nil:
		return nil
	case isTimeout(err):
		if n > 0 {
			return nil
		}
		return ErrWouldBlock
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrClosedPipe), errors.Is(err, net.ErrClosed):
		if n > 0 {
			return nil
		}
		return io.EOF
	default:
		return err
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
