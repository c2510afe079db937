//go:build windows

package guiapp

import (
	"fmt"
	"time"

	winio "github.com/Microsoft/go-winio"

	"github.com/machinefabric/guibridge-go/channel"
)

// pipeDialTimeout bounds how long the GUI waits for the plugin's pipes to
// appear.
const pipeDialTimeout = 10 * time.Second

// openEndpoint connects to the two named pipes created by the plugin
// side. PipeIn carries plugin-to-gui traffic and is our read side.
func openEndpoint(opts Options) (channel.Endpoint, error) {
	if opts.PipeIn == "" || opts.PipeOut == "" {
		return nil, fmt.Errorf("--pipe-in and --pipe-out are required")
	}
	timeout := pipeDialTimeout
	readConn, err := winio.DialPipe(opts.PipeIn, &timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", opts.PipeIn, err)
	}
	writeConn, err := winio.DialPipe(opts.PipeOut, &timeout)
	if err != nil {
		readConn.Close()
		return nil, fmt.Errorf("dial %s: %w", opts.PipeOut, err)
	}
	return channel.NewConnEndpoint(channel.DuplexConn(readConn, writeConn)), nil
}
