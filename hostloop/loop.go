//go:build unix

// Package hostloop is a poll(2)-based event loop that provides the timer
// and descriptor-readiness services the bridge expects from a plugin
// host. Real hosts bring their own loop; this one is a minimal stand-in
// for running the bridge outside a host.
package hostloop

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	guibridge "github.com/machinefabric/guibridge-go"
	"github.com/machinefabric/guibridge-go/channel"
)

type fdReg struct {
	flags channel.IOFlags
}

type timerReg struct {
	period time.Duration
	next   time.Time
}

// Loop is a single-threaded event loop. All methods must be called from
// the thread running it.
type Loop struct {
	fds    map[int]*fdReg
	timers map[guibridge.TimerID]*timerReg

	nextTimerID guibridge.TimerID
	stopped     bool

	onFd    func(fd int, flags channel.IOFlags)
	onTimer func(id guibridge.TimerID)
}

var _ guibridge.HostServices = (*Loop)(nil)

// New creates an empty loop.
func New() *Loop {
	return &Loop{
		fds:         make(map[int]*fdReg),
		timers:      make(map[guibridge.TimerID]*timerReg),
		nextTimerID: 1,
	}
}

// SetFdHandler installs the sink for descriptor readiness.
func (l *Loop) SetFdHandler(h func(fd int, flags channel.IOFlags)) { l.onFd = h }

// SetTimerHandler installs the sink for timer ticks.
func (l *Loop) SetTimerHandler(h func(id guibridge.TimerID)) { l.onTimer = h }

// CanUseTimer implements guibridge.HostServices.
func (l *Loop) CanUseTimer() bool { return true }

// CanUsePollFd implements guibridge.HostServices.
func (l *Loop) CanUsePollFd() bool { return true }

// RegisterTimer implements guibridge.HostServices.
func (l *Loop) RegisterTimer(period time.Duration) (guibridge.TimerID, error) {
	if period <= 0 {
		return guibridge.InvalidTimerID, fmt.Errorf("invalid timer period %v", period)
	}
	id := l.nextTimerID
	l.nextTimerID++
	l.timers[id] = &timerReg{period: period, next: time.Now().Add(period)}
	return id, nil
}

// UnregisterTimer implements guibridge.HostServices.
func (l *Loop) UnregisterTimer(id guibridge.TimerID) error {
	if _, ok := l.timers[id]; !ok {
		return fmt.Errorf("unknown timer %d", id)
	}
	delete(l.timers, id)
	return nil
}

// RegisterPollFd implements guibridge.HostServices.
func (l *Loop) RegisterPollFd(fd int, flags channel.IOFlags) error {
	if _, dup := l.fds[fd]; dup {
		return fmt.Errorf("fd %d already registered", fd)
	}
	l.fds[fd] = &fdReg{flags: flags}
	return nil
}

// ModifyPollFd implements guibridge.HostServices.
func (l *Loop) ModifyPollFd(fd int, flags channel.IOFlags) error {
	reg, ok := l.fds[fd]
	if !ok {
		return fmt.Errorf("fd %d not registered", fd)
	}
	reg.flags = flags
	return nil
}

// UnregisterPollFd implements guibridge.HostServices.
func (l *Loop) UnregisterPollFd(fd int) error {
	if _, ok := l.fds[fd]; !ok {
		return fmt.Errorf("fd %d not registered", fd)
	}
	delete(l.fds, fd)
	return nil
}

// Stop makes Run and RunFor return after the current iteration.
func (l *Loop) Stop() { l.stopped = true }

// RunOnce waits up to maxWait for readiness or a due timer and
// dispatches what fired.
func (l *Loop) RunOnce(maxWait time.Duration) error {
	timeout := maxWait
	now := time.Now()
	for _, t := range l.timers {
		if d := t.next.Sub(now); d < timeout {
			timeout = d
		}
	}
	if timeout < 0 {
		timeout = 0
	}

	pollFds := make([]unix.PollFd, 0, len(l.fds))
	order := make([]int, 0, len(l.fds))
	for fd, reg := range l.fds {
		var events int16
		if reg.flags&channel.IORead != 0 {
			events |= unix.POLLIN
		}
		if reg.flags&channel.IOWrite != 0 {
			events |= unix.POLLOUT
		}
		pollFds = append(pollFds, unix.PollFd{Fd: int32(fd), Events: events})
		order = append(order, fd)
	}

	n, err := unix.Poll(pollFds, int(timeout.Milliseconds()))
	if err != nil && err != unix.EINTR {
		return err
	}

	if n > 0 && l.onFd != nil {
		for i, pfd := range pollFds {
			var ready channel.IOFlags
			if pfd.Revents&(unix.POLLIN|unix.POLLHUP) != 0 {
				ready |= channel.IORead
			}
			if pfd.Revents&unix.POLLOUT != 0 {
				ready |= channel.IOWrite
			}
			if pfd.Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
				ready |= channel.IOError
			}
			if ready == 0 {
				continue
			}
			// The handler may unregister the fd; dispatch only to
			// registrations that still exist.
			if _, live := l.fds[order[i]]; live {
				l.onFd(order[i], ready)
			}
		}
	}

	now = time.Now()
	for id, t := range l.timers {
		if !t.next.After(now) {
			t.next = now.Add(t.period)
			if l.onTimer != nil {
				l.onTimer(id)
			}
		}
	}
	return nil
}

// RunFor drives the loop for a bounded wall-clock duration.
func (l *Loop) RunFor(d time.Duration) error {
	l.stopped = false
	deadline := time.Now().Add(d)
	for !l.stopped && time.Now().Before(deadline) {
		if err := l.RunOnce(20 * time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

// Run drives the loop until Stop is called.
func (l *Loop) Run() error {
	l.stopped = false
	for !l.stopped {
		if err := l.RunOnce(50 * time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}
