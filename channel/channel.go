package channel

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/machinefabric/guibridge-go/logx"
	"github.com/machinefabric/guibridge-go/messages"
	"github.com/machinefabric/guibridge-go/wire"
)

// State is the transport state of a channel. Transitions are monotonic:
// open → half-closed → closed, never back.
type State int

const (
	// StateOpen means both directions are live.
	StateOpen State = iota
	// StateHalfClosed means the peer has closed its write side while our
	// output buffer still holds undelivered bytes.
	StateHalfClosed
	// StateClosed means the channel is dead. Terminal.
	StateClosed
)

// Handler receives every fully-decoded inbound message that is not a reply
// to one of our pending requests.
type Handler func(msg wire.Message)

// ResponseFunc is invoked exactly once for an asynchronous request that
// installed a callback: with the decoded response and ok true, or with ok
// false when the channel closed before the reply arrived.
type ResponseFunc func(resp wire.Message, ok bool)

// readChunk is the granularity of a single non-blocking read.
const readChunk = 32 * 1024

// pumpInterval bounds how long a synchronous request waits between
// readiness polls.
const pumpInterval = 10 * time.Millisecond

type pendingEntry struct {
	responseKind wire.Kind
	callback     ResponseFunc

	// Resolution slot, written exactly once.
	done bool
	ok   bool
	resp wire.Message
}

// RemoteChannel multiplexes request/response traffic over one Endpoint.
//
// All methods must be called from the owning event-loop thread. The only
// suspending operation is SendRequestSync, which pumps the endpoint
// cooperatively until its reply arrives or the channel dies; arbitrary
// inbound messages, including nested synchronous requests, may be handled
// while it waits.
type RemoteChannel struct {
	handler Handler
	ctrl    EventControl
	ep      Endpoint
	log     zerolog.Logger

	state      State
	input      []byte
	output     []byte
	pending    map[uint32]*pendingEntry
	nextCookie uint32
	interest   IOFlags
	removed    bool
}

// New creates a channel over ep. The client flag tags logs with the peer's
// role and picks the side's cookie space: the client draws odd cookies, the
// other side even ones, so a request from the peer never carries a cookie
// that is pending locally. Wire rules are identical on both sides. The
// handler receives unsolicited inbound messages. ctrl is asked for
// readiness-interest changes and for teardown.
func New(handler Handler, client bool, ctrl EventControl, ep Endpoint) *RemoteChannel {
	role := "gui"
	firstCookie := uint32(2)
	if client {
		role = "plugin"
		firstCookie = 1
	}
	c := &RemoteChannel{
		handler:    handler,
		ctrl:       ctrl,
		ep:         ep,
		log:        logx.Log.With().Str("channel", uuid.NewString()[:8]).Str("role", role).Logger(),
		state:      StateOpen,
		pending:    make(map[uint32]*pendingEntry),
		nextCookie: firstCookie,
		interest:   IORead | IOError,
	}
	return c
}

// IsOpen reports whether the channel can still carry new requests.
func (c *RemoteChannel) IsOpen() bool { return c.state == StateOpen }

// Fd returns the descriptor backing the endpoint, or -1.
func (c *RemoteChannel) Fd() int { return c.ep.Fd() }

// allocateCookie draws the next free non-zero cookie of this side's parity.
// Wrapping is allowed; colliding with an outstanding request is not.
func (c *RemoteChannel) allocateCookie() uint32 {
	for {
		cookie := c.nextCookie
		c.nextCookie += 2
		if cookie == 0 {
			continue
		}
		if _, busy := c.pending[cookie]; busy {
			continue
		}
		return cookie
	}
}

// updateInterest recomputes the readiness interest set and forwards it to
// the owner when it changed. Write interest exists exactly while the
// output buffer is non-empty.
func (c *RemoteChannel) updateInterest() {
	if c.state == StateClosed {
		return
	}
	want := IORead | IOError
	if len(c.output) > 0 {
		want |= IOWrite
	}
	if want != c.interest {
		c.interest = want
		c.ctrl.ModifyFd(want)
	}
}

// enqueue frames a message atomically onto the output buffer.
func (c *RemoteChannel) enqueue(kind wire.Kind, cookie uint32, payload []byte) {
	c.output = wire.AppendFrame(c.output, kind, cookie, payload)
	c.updateInterest()
}

// SendRequestAsync frames rq and queues it for delivery. It never blocks
// and no reply is routed back to the caller; a late reply is dropped on
// arrival. Returns false when the channel is not open or rq does not
// encode.
func (c *RemoteChannel) SendRequestAsync(rq messages.Request) bool {
	if c.state != StateOpen {
		return false
	}
	payload, err := wire.EncodePayload(rq)
	if err != nil {
		c.log.Error().Err(err).Str("kind", messages.KindName(rq.Kind())).Msg("encode request")
		return false
	}
	c.enqueue(rq.Kind(), c.allocateCookie(), payload)
	return true
}

// SendRequestAsyncCB is SendRequestAsync with a response callback. The
// callback fires exactly once: with the reply, or with ok false when the
// channel closes first. Only kinds that declare a response may install a
// callback.
func (c *RemoteChannel) SendRequestAsyncCB(rq messages.Request, cb ResponseFunc) bool {
	if c.state != StateOpen {
		return false
	}
	respKind, hasResp := messages.ResponseKindFor(rq.Kind())
	if !hasResp {
		c.log.Error().Str("kind", messages.KindName(rq.Kind())).Msg("request kind has no response")
		return false
	}
	payload, err := wire.EncodePayload(rq)
	if err != nil {
		c.log.Error().Err(err).Str("kind", messages.KindName(rq.Kind())).Msg("encode request")
		return false
	}
	cookie := c.allocateCookie()
	c.pending[cookie] = &pendingEntry{responseKind: respKind, callback: cb}
	c.enqueue(rq.Kind(), cookie, payload)
	return true
}

// SendRequestSync frames rq, queues it, then pumps the endpoint until the
// matching reply arrives or the channel dies. On success the reply payload
// is decoded into resp and true is returned. resp must be a pointer to the
// response type of rq's kind.
//
// This is the only suspending operation on the channel. It must never be
// called from the audio thread.
func (c *RemoteChannel) SendRequestSync(rq messages.Request, resp interface{}) bool {
	if c.state != StateOpen {
		return false
	}
	respKind, hasResp := messages.ResponseKindFor(rq.Kind())
	if !hasResp {
		c.log.Error().Str("kind", messages.KindName(rq.Kind())).Msg("request kind has no response")
		return false
	}
	payload, err := wire.EncodePayload(rq)
	if err != nil {
		c.log.Error().Err(err).Str("kind", messages.KindName(rq.Kind())).Msg("encode request")
		return false
	}

	cookie := c.allocateCookie()
	entry := &pendingEntry{responseKind: respKind}
	c.pending[cookie] = entry
	c.enqueue(rq.Kind(), cookie, payload)

	for !entry.done {
		if c.state == StateClosed {
			// Close cancels every pending entry, so done should
			// already be set; this is the backstop.
			return false
		}
		c.pump()
	}
	if !entry.ok {
		return false
	}
	if resp != nil {
		if err := entry.resp.Get(resp); err != nil {
			c.log.Error().Err(err).Str("kind", messages.KindName(entry.resp.Kind)).Msg("decode response")
			return false
		}
	}
	return true
}

// pump performs one cooperative event-loop iteration: flush what can be
// flushed, wait briefly for readiness, ingest what arrived.
func (c *RemoteChannel) pump() {
	c.TrySend()
	if c.state == StateClosed {
		return
	}
	interest := IORead | IOError
	if len(c.output) > 0 {
		interest |= IOWrite
	}
	ready, err := c.ep.Wait(interest, pumpInterval)
	if err != nil {
		c.OnError()
		return
	}
	if ready&IOError != 0 {
		c.OnError()
		return
	}
	c.TryReceive()
}

// SendResponseAsync frames a reply carrying the given cookie and queues
// it. It never blocks.
func (c *RemoteChannel) SendResponseAsync(rsp messages.Response, cookie uint32) bool {
	if c.state != StateOpen {
		return false
	}
	payload, err := wire.EncodePayload(rsp)
	if err != nil {
		c.log.Error().Err(err).Str("kind", messages.KindName(rsp.Kind())).Msg("encode response")
		return false
	}
	c.enqueue(rsp.Kind(), cookie, payload)
	return true
}

// TryReceive ingests whatever bytes the endpoint has and dispatches every
// complete frame, in arrival order. Short reads are normal; peer close
// moves the channel to half-closed (undelivered output remains) or closed;
// framing corruption kills the channel.
func (c *RemoteChannel) TryReceive() {
	if c.state == StateClosed {
		return
	}

	peerClosed := false
	var chunk [readChunk]byte
	for {
		n, err := c.ep.Read(chunk[:])
		if n > 0 {
			c.input = append(c.input, chunk[:n]...)
		}
		if err == ErrWouldBlock {
			break
		}
		if err == io.EOF {
			peerClosed = true
			break
		}
		if err != nil {
			c.fatal("read", err)
			return
		}
	}

	// Each frame is detached from the input buffer before it is
	// dispatched: a handler may re-enter TryReceive (nested synchronous
	// requests pump the loop), and the buffer must not still hold frames
	// that were already handed out.
	for c.state != StateClosed {
		msg, n, err := wire.ParseFrame(c.input)
		if err != nil {
			c.log.Error().Err(err).Msg("inbound stream corrupt")
			c.fatal("parse", err)
			return
		}
		if n == 0 {
			break
		}
		payload := make([]byte, len(msg.Payload))
		copy(payload, msg.Payload)
		msg.Payload = payload
		c.input = c.input[:copy(c.input, c.input[n:])]
		c.dispatch(msg)
	}

	if peerClosed && c.state == StateOpen {
		if len(c.output) > 0 {
			c.state = StateHalfClosed
			c.log.Debug().Msg("peer closed, draining output")
		} else {
			c.shutdown()
		}
	} else if peerClosed && c.state == StateHalfClosed && len(c.output) == 0 {
		c.shutdown()
	}
}

// dispatch applies the receive rule to one decoded frame: replies route by
// cookie to their pending entry, unmatched replies are dropped as late,
// everything else goes to the handler. A request kind colliding with a
// pending cookie means the streams are out of agreement and the channel is
// killed.
func (c *RemoteChannel) dispatch(msg wire.Message) {
	if !messages.IsKnownKind(msg.Kind) {
		c.log.Error().Uint32("kind", uint32(msg.Kind)).Msg("unknown message kind")
		c.fatal("dispatch", &wire.CorruptionError{Reason: "unknown kind"})
		return
	}

	if messages.IsResponseKind(msg.Kind) {
		if msg.Cookie == 0 {
			c.log.Debug().Str("kind", messages.KindName(msg.Kind)).Msg("response without cookie dropped")
			return
		}
		entry, found := c.pending[msg.Cookie]
		if !found {
			c.log.Debug().Str("kind", messages.KindName(msg.Kind)).Uint32("cookie", msg.Cookie).Msg("late response dropped")
			return
		}
		if msg.Kind != entry.responseKind {
			c.log.Error().Str("kind", messages.KindName(msg.Kind)).Str("want", messages.KindName(entry.responseKind)).Msg("response kind does not match request")
			c.fatal("dispatch", &wire.CorruptionError{Reason: "response kind mismatch"})
			return
		}
		delete(c.pending, msg.Cookie)
		c.satisfy(entry, msg)
		return
	}

	if msg.Cookie != 0 {
		if _, clash := c.pending[msg.Cookie]; clash {
			c.log.Error().Str("kind", messages.KindName(msg.Kind)).Uint32("cookie", msg.Cookie).Msg("request collides with pending cookie")
			c.fatal("dispatch", &wire.CorruptionError{Reason: "request kind on pending cookie"})
			return
		}
	}
	c.handler(msg)
}

// satisfy resolves one pending entry with a live response.
func (c *RemoteChannel) satisfy(entry *pendingEntry, msg wire.Message) {
	if entry.done {
		return
	}
	entry.done = true
	entry.ok = true
	entry.resp = msg
	if entry.callback != nil {
		entry.callback(msg, true)
	}
}

// TrySend drains the output buffer as far as the endpoint allows. A
// partial write keeps the tail at the head of the buffer; once the buffer
// empties, write interest is dropped.
func (c *RemoteChannel) TrySend() {
	if c.state == StateClosed {
		return
	}
	for len(c.output) > 0 {
		n, err := c.ep.Write(c.output)
		if n > 0 {
			c.output = c.output[:copy(c.output, c.output[n:])]
		}
		if err == ErrWouldBlock {
			break
		}
		if err != nil {
			c.fatal("write", err)
			return
		}
	}
	if c.state == StateHalfClosed && len(c.output) == 0 {
		c.shutdown()
		return
	}
	c.updateInterest()
}

// OnError is the readiness entry point for an error condition on the
// endpoint. The channel dies.
func (c *RemoteChannel) OnError() {
	c.fatal("endpoint", io.ErrUnexpectedEOF)
}

// Close shuts the channel down deliberately: a best-effort flush of queued
// output, then cancellation of every pending request and removal of the
// endpoint from the owner's loop.
func (c *RemoteChannel) Close() {
	if c.state == StateClosed {
		return
	}
	c.TrySend()
	if c.state == StateClosed {
		return
	}
	c.shutdown()
}

// fatal collapses the channel after an unrecoverable transport or protocol
// error. Buffers are dropped; nothing more will be sent.
func (c *RemoteChannel) fatal(stage string, err error) {
	if c.state == StateClosed {
		return
	}
	c.log.Warn().Err(err).Str("stage", stage).Msg("channel failed")
	c.output = nil
	c.shutdown()
}

// shutdown is the single closed-state transition: cancel all pending
// entries exactly once each, then hand the endpoint back to the owner.
func (c *RemoteChannel) shutdown() {
	c.state = StateClosed
	c.input = nil
	c.output = nil

	canceled := c.pending
	c.pending = make(map[uint32]*pendingEntry)
	for _, entry := range canceled {
		if entry.done {
			continue
		}
		entry.done = true
		entry.ok = false
		if entry.callback != nil {
			entry.callback(wire.Message{}, false)
		}
	}

	if !c.removed {
		c.removed = true
		c.ctrl.RemoveFd()
	}
	_ = c.ep.Close()
	c.log.Debug().Msg("channel closed")
}
