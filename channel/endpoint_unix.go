//go:build unix

package channel

import (
	"io"
	"time"

	"golang.org/x/sys/unix"
)

// FdEndpoint is an Endpoint over a raw non-blocking POSIX descriptor,
// typically one side of the socket pair shared with the GUI process.
type FdEndpoint struct {
	fd     int
	closed bool
}

// NewFdEndpoint wraps fd and marks it non-blocking. The endpoint takes
// ownership: Close releases the descriptor.
func NewFdEndpoint(fd int) (*FdEndpoint, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, err
	}
	return &FdEndpoint{fd: fd}, nil
}

// Read implements Endpoint. A zero-byte read on a readable socket means
// the peer closed and surfaces as io.EOF.
func (e *FdEndpoint) Read(p []byte) (int, error) {
	if e.closed {
		return 0, io.EOF
	}
	for {
		n, err := unix.Read(e.fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, ErrWouldBlock
		case err != nil:
			return 0, err
		case n == 0:
			return 0, io.EOF
		default:
			return n, nil
		}
	}
}

// Write implements Endpoint.
func (e *FdEndpoint) Write(p []byte) (int, error) {
	if e.closed {
		return 0, io.ErrClosedPipe
	}
	for {
		n, err := unix.Write(e.fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, ErrWouldBlock
		case err != nil:
			return 0, err
		default:
			return n, nil
		}
	}
}

// Wait implements Endpoint via poll(2).
func (e *FdEndpoint) Wait(interest IOFlags, timeout time.Duration) (IOFlags, error) {
	if e.closed {
		return IOError, nil
	}
	var events int16
	if interest&IORead != 0 {
		events |= unix.POLLIN
	}
	if interest&IOWrite != 0 {
		events |= unix.POLLOUT
	}
	fds := []unix.PollFd{{Fd: int32(e.fd), Events: events}}
	for {
		n, err := unix.Poll(fds, int(timeout.Milliseconds()))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, nil
		}
		break
	}
	var ready IOFlags
	re := fds[0].Revents
	if re&(unix.POLLIN|unix.POLLHUP) != 0 {
		ready |= IORead
	}
	if re&unix.POLLOUT != 0 {
		ready |= IOWrite
	}
	if re&(unix.POLLERR|unix.POLLNVAL) != 0 {
		ready |= IOError
	}
	return ready, nil
}

// Close implements Endpoint.
func (e *FdEndpoint) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return unix.Close(e.fd)
}

// Fd implements Endpoint.
func (e *FdEndpoint) Fd() int { return e.fd }
