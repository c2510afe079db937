//go:build unix

package guiapp

import (
	"fmt"

	"github.com/machinefabric/guibridge-go/channel"
)

// openEndpoint recovers the transport endpoint from the inherited socket
// descriptor.
func openEndpoint(opts Options) (channel.Endpoint, error) {
	if opts.SocketFd < 0 {
		return nil, fmt.Errorf("--socket is required")
	}
	ep, err := channel.NewFdEndpoint(opts.SocketFd)
	if err != nil {
		return nil, fmt.Errorf("endpoint fd %d: %w", opts.SocketFd, err)
	}
	return ep, nil
}
