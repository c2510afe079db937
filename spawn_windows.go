//go:build windows

package guibridge

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"time"

	winio "github.com/Microsoft/go-winio"
	"github.com/google/uuid"

	"github.com/machinefabric/guibridge-go/channel"
)

// pipeAcceptTimeout bounds how long spawn waits for the child to connect
// to both pipes.
const pipeAcceptTimeout = 10 * time.Second

// acceptOne waits for a single client on l, bounded by pipeAcceptTimeout.
func acceptOne(l net.Listener) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := l.Accept()
		ch <- result{conn, err}
	}()
	select {
	case r := <-ch:
		return r.conn, r.err
	case <-time.After(pipeAcceptTimeout):
		l.Close()
		return nil, spawnError(nil, "timed out waiting for gui to connect")
	}
}

// spawnChild creates a pair of oppositely-directed named pipes, launches
// the GUI executable with the pipe names on its command line, and waits
// for it to connect to both. On failure everything allocated so far is
// released.
func spawnChild(cfg *Config) (*childHandle, channel.Endpoint, error) {
	id := uuid.NewString()
	inName := fmt.Sprintf(`\\.\pipe\guibridge-%s.in`, id)   // plugin → gui
	outName := fmt.Sprintf(`\\.\pipe\guibridge-%s.out`, id) // gui → plugin

	inListener, err := winio.ListenPipe(inName, nil)
	if err != nil {
		return nil, nil, spawnError(err, "create pipe %s", inName)
	}
	outListener, err := winio.ListenPipe(outName, nil)
	if err != nil {
		inListener.Close()
		return nil, nil, spawnError(err, "create pipe %s", outName)
	}

	args := childArgs(cfg, "--pipe-in", inName, "--pipe-out", outName)
	cmd := exec.Command(cfg.GuiExecutable, args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		outListener.Close()
		inListener.Close()
		return nil, nil, spawnError(err, "start %s", cfg.GuiExecutable)
	}
	child := &childHandle{cmd: cmd}

	inConn, err := acceptOne(inListener)
	inListener.Close()
	if err != nil {
		child.kill()
		child.wait()
		outListener.Close()
		return nil, nil, err
	}
	outConn, err := acceptOne(outListener)
	outListener.Close()
	if err != nil {
		inConn.Close()
		child.kill()
		child.wait()
		return nil, nil, err
	}

	ep := channel.NewConnEndpoint(channel.DuplexConn(outConn, inConn))
	return child, ep, nil
}
