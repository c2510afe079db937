package channel

import (
	"net"
	"time"
)

// duplexConn welds two unidirectional connections into one net.Conn. The
// named-pipe transport is built from two oppositely-directed pipes; this
// presents them as the single duplex stream the rest of the bridge
// expects.
type duplexConn struct {
	r net.Conn
	w net.Conn
}

// DuplexConn combines a read-side and a write-side connection into one
// duplex net.Conn suitable for NewConnEndpoint.
func DuplexConn(r, w net.Conn) net.Conn {
	return &duplexConn{r: r, w: w}
}

func (d *duplexConn) Read(b []byte) (int, error)  { return d.r.Read(b) }
func (d *duplexConn) Write(b []byte) (int, error) { return d.w.Write(b) }

func (d *duplexConn) Close() error {
	err := d.w.Close()
	if rerr := d.r.Close(); err == nil {
		err = rerr
	}
	return err
}

func (d *duplexConn) LocalAddr() net.Addr  { return d.r.LocalAddr() }
func (d *duplexConn) RemoteAddr() net.Addr { return d.r.RemoteAddr() }

func (d *duplexConn) SetDeadline(t time.Time) error {
	if err := d.r.SetReadDeadline(t); err != nil {
		return err
	}
	return d.w.SetWriteDeadline(t)
}

func (d *duplexConn) SetReadDeadline(t time.Time) error  { return d.r.SetReadDeadline(t) }
func (d *duplexConn) SetWriteDeadline(t time.Time) error { return d.w.SetWriteDeadline(t) }
