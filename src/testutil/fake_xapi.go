// Package testutil provides an in-memory xAPI server for tests. It plugs in
// where a socket or WebSocket transport normally goes.
package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

const FakeStreamSessionID = "stream-1"

// -----------------------------------------------------------------------------

// Request is one decoded message written by the client.
type Request struct {
	Command         string
	Arguments       map[string]any
	StreamSessionID string
	CustomTag       string
	Raw             map[string]any
}

// Reply is what a handler answers with. NoReply sends nothing back, which is
// how stream subscriptions behave.
type Reply struct {
	Status          bool
	ReturnData      any
	ErrorCode       string
	ErrorDescr      string
	StreamSessionID string
	Raw             []byte // sent verbatim when set
	NoReply         bool
	WrongTag        bool
}

type Handler func(req Request) Reply

// OK answers status=true with the given returnData.
func OK(returnData any) Reply {
	return Reply{Status: true, ReturnData: returnData}
}

// Fail answers status=false with an error code and description.
func Fail(code, descr string) Reply {
	return Reply{Status: false, ErrorCode: code, ErrorDescr: descr}
}

// -----------------------------------------------------------------------------

// FakeXapi implements interfaces.ITransport.
type FakeXapi struct {
	mu       sync.Mutex
	handlers map[string]Handler
	requests []Request
	inbox    chan []byte
	done     chan struct{}
	open     bool

	opens  int
	closes int
	writes int

	// Failure injection
	OpenErr  error
	WriteErr error
	ReadErr  error

	// SilentUnknown makes unknown commands produce no reply instead of an
	// error response. Streaming fakes use it.
	SilentUnknown bool
}

// -----------------------------------------------------------------------------

// NewFakeXapi returns a command server that already knows login, logout and
// ping.
func NewFakeXapi() *FakeXapi {
	f := &FakeXapi{
		handlers: map[string]Handler{},
		inbox:    make(chan []byte, 256),
		done:     make(chan struct{}),
	}
	f.Handle("login", func(req Request) Reply {
		return Reply{Status: true, StreamSessionID: FakeStreamSessionID}
	})
	f.Handle("logout", func(Request) Reply { return Reply{Status: true} })
	f.Handle("ping", func(Request) Reply { return Reply{Status: true} })
	return f
}

// NewFakeStream returns a streaming server: subscriptions are silent and
// data is pushed with Push.
func NewFakeStream() *FakeXapi {
	f := &FakeXapi{
		handlers:      map[string]Handler{},
		inbox:         make(chan []byte, 256),
		done:          make(chan struct{}),
		SilentUnknown: true,
	}
	return f
}

// -----------------------------------------------------------------------------
// Scripting
// -----------------------------------------------------------------------------

func (f *FakeXapi) Handle(command string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[command] = h
}

// Respond makes command always succeed with returnData.
func (f *FakeXapi) Respond(command string, returnData any) {
	f.Handle(command, func(Request) Reply { return OK(returnData) })
}

// RespondJSON is Respond with returnData given as literal JSON.
func (f *FakeXapi) RespondJSON(command, returnData string) {
	f.Respond(command, json.RawMessage(returnData))
}

// Reject makes command always fail.
func (f *FakeXapi) Reject(command, code, descr string) {
	f.Handle(command, func(Request) Reply { return Fail(code, descr) })
}

// Push queues a message for the next ReadMessage, as a stream server would.
func (f *FakeXapi) Push(command string, data any) {
	msg, err := json.Marshal(map[string]any{"command": command, "data": data})
	if err != nil {
		panic(err)
	}
	f.inbox <- msg
}

// PushRaw queues raw bytes for the next ReadMessage.
func (f *FakeXapi) PushRaw(msg []byte) {
	f.inbox <- msg
}

// -----------------------------------------------------------------------------
// Inspection
// -----------------------------------------------------------------------------

func (f *FakeXapi) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// LastRequest returns the most recent request for command.
func (f *FakeXapi) LastRequest(command string) (Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].Command == command {
			return f.requests[i], true
		}
	}
	return Request{}, false
}

func (f *FakeXapi) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *FakeXapi) Opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

func (f *FakeXapi) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

func (f *FakeXapi) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// -----------------------------------------------------------------------------
// interfaces.ITransport
// -----------------------------------------------------------------------------

func (f *FakeXapi) Address() string {
	return "fake://xapi"
}

func (f *FakeXapi) Open(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.OpenErr != nil {
		return f.OpenErr
	}
	f.open = true
	f.opens++
	f.done = make(chan struct{})
	return nil
}

// -----------------------------------------------------------------------------

func (f *FakeXapi) WriteMessage(ctx context.Context, msg []byte) error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return net.ErrClosed
	}
	f.writes++
	if f.WriteErr != nil {
		err := f.WriteErr
		f.mu.Unlock()
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(msg, &raw); err != nil {
		f.mu.Unlock()
		return fmt.Errorf("fake xapi: request is not a JSON object: %w", err)
	}
	req := Request{Raw: raw}
	req.Command, _ = raw["command"].(string)
	req.Arguments, _ = raw["arguments"].(map[string]any)
	req.StreamSessionID, _ = raw["streamSessionId"].(string)
	req.CustomTag, _ = raw["customTag"].(string)
	f.requests = append(f.requests, req)

	h, ok := f.handlers[req.Command]
	silent := f.SilentUnknown
	f.mu.Unlock()

	var reply Reply
	switch {
	case ok:
		reply = h(req)
	case silent:
		return nil
	default:
		reply = Fail("EX009", fmt.Sprintf("Unknown command: %s", req.Command))
	}
	if reply.NoReply {
		return nil
	}

	out, err := encodeReply(req, reply)
	if err != nil {
		return err
	}
	f.inbox <- out
	return nil
}

func encodeReply(req Request, reply Reply) ([]byte, error) {
	if reply.Raw != nil {
		return reply.Raw, nil
	}
	resp := map[string]any{"status": reply.Status}
	if reply.Status {
		if reply.ReturnData != nil {
			resp["returnData"] = reply.ReturnData
		}
	} else {
		resp["errorCode"] = reply.ErrorCode
		resp["errorDescr"] = reply.ErrorDescr
	}
	if reply.StreamSessionID != "" {
		resp["streamSessionId"] = reply.StreamSessionID
	}
	if req.CustomTag != "" {
		resp["customTag"] = req.CustomTag
		if reply.WrongTag {
			resp["customTag"] = req.CustomTag + "-other"
		}
	}
	return json.Marshal(resp)
}

// -----------------------------------------------------------------------------

func (f *FakeXapi) ReadMessage(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return nil, net.ErrClosed
	}
	if f.ReadErr != nil {
		err := f.ReadErr
		f.mu.Unlock()
		return nil, err
	}
	done := f.done
	f.mu.Unlock()

	select {
	case msg := <-f.inbox:
		return msg, nil
	case <-done:
		return nil, net.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// -----------------------------------------------------------------------------

func (f *FakeXapi) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return errors.New("fake xapi: already closed")
	}
	f.open = false
	f.closes++
	close(f.done)
	for {
		select {
		case <-f.inbox:
		default:
			return nil
		}
	}
}
