//go:build unix

package guibridge

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/machinefabric/guibridge-go/channel"
)

// childEndpointFd is where the inherited socket lands in the child: the
// first entry of ExtraFiles, directly after stderr.
const childEndpointFd = 3

// spawnChild creates a connected stream socket pair, launches the GUI
// executable with the remote end inherited, and returns the child handle
// together with the local endpoint. On failure everything allocated so far
// is released.
func spawnChild(cfg *Config) (*childHandle, channel.Endpoint, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, nil, spawnError(err, "socketpair")
	}
	local, remote := fds[0], fds[1]

	// The remote end is duplicated into the child by ExtraFiles; this
	// copy is closed as soon as the child holds its own.
	remoteFile := os.NewFile(uintptr(remote), "guibridge-endpoint")

	args := childArgs(cfg, "--socket", fmt.Sprintf("%d", childEndpointFd))
	cmd := exec.Command(cfg.GuiExecutable, args...)
	cmd.ExtraFiles = []*os.File{remoteFile}
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		remoteFile.Close()
		unix.Close(local)
		return nil, nil, spawnError(err, "start %s", cfg.GuiExecutable)
	}
	remoteFile.Close()

	ep, err := channel.NewFdEndpoint(local)
	if err != nil {
		child := &childHandle{cmd: cmd}
		child.kill()
		child.wait()
		unix.Close(local)
		return nil, nil, spawnError(err, "endpoint")
	}

	return &childHandle{cmd: cmd}, ep, nil
}
