package network

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"xapi-connector/src/helpers"
	"xapi-connector/src/models"
	"xapi-connector/src/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireSocketError(t *testing.T, err error, msg string) {
	t.Helper()
	var sockErr *helpers.SocketError
	require.True(t, errors.As(err, &sockErr), "expected SocketError, got %v", err)
	if msg != "" {
		assert.Equal(t, msg, sockErr.Message)
	}
}

func newTestConnector(fake *testutil.FakeXapi) *Connector {
	return NewConnector(fake, 0, nil)
}

// -----------------------------------------------------------------------------

func TestSendBeforeConnectWritesNothing(t *testing.T) {
	fake := testutil.NewFakeXapi()
	c := newTestConnector(fake)

	_, err := c.SendAndReceive(context.Background(), models.MRequest{Command: "getVersion"})
	requireSocketError(t, err, helpers.MsgNotConnected)
	assert.Equal(t, 0, fake.Writes())
	assert.Equal(t, Disconnected, c.State())

	requireSocketError(t, c.Send(context.Background(), map[string]string{"command": "ping"}), helpers.MsgNotConnected)
	_, err = c.Receive(context.Background())
	requireSocketError(t, err, helpers.MsgNotConnected)
	assert.Equal(t, 0, fake.Writes())
}

func TestConnectTwiceKeepsFirstConnection(t *testing.T) {
	fake := testutil.NewFakeXapi()
	c := newTestConnector(fake)

	require.NoError(t, c.Connect(context.Background()))
	requireSocketError(t, c.Connect(context.Background()), helpers.MsgConnectWithoutClose)

	assert.Equal(t, Connected, c.State())
	assert.True(t, fake.IsOpen())
	assert.Equal(t, 1, fake.Opens())
	assert.Equal(t, 0, fake.Closes())
}

func TestCloseTwice(t *testing.T) {
	fake := testutil.NewFakeXapi()
	c := newTestConnector(fake)

	requireSocketError(t, c.Close(), helpers.MsgCloseWithoutConnect)

	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Close())
	requireSocketError(t, c.Close(), helpers.MsgCloseWithoutConnect)
	assert.Equal(t, 1, fake.Closes())
}

func TestReconnectAfterClose(t *testing.T) {
	fake := testutil.NewFakeXapi()
	c := newTestConnector(fake)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Connect(context.Background()))
		require.NoError(t, c.Close())
	}
	assert.Equal(t, 3, fake.Opens())
	assert.Equal(t, Disconnected, c.State())
}

func TestConnectFailureStaysDisconnected(t *testing.T) {
	fake := testutil.NewFakeXapi()
	fake.OpenErr = errors.New("connection refused")
	c := newTestConnector(fake)

	err := c.Connect(context.Background())
	requireSocketError(t, err, "")
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, Disconnected, c.State())
}

// -----------------------------------------------------------------------------

func TestSendAndReceive(t *testing.T) {
	fake := testutil.NewFakeXapi()
	fake.RespondJSON("getVersion", `{"version":"2.5.0"}`)
	c := newTestConnector(fake)
	require.NoError(t, c.Connect(context.Background()))

	resp, err := c.SendAndReceive(context.Background(), models.MRequest{Command: "getVersion", CustomTag: "t-1"})
	require.NoError(t, err)
	assert.True(t, resp.Status)
	assert.Equal(t, "t-1", resp.CustomTag)
	assert.JSONEq(t, `{"version":"2.5.0"}`, string(resp.ReturnData))

	req, ok := fake.LastRequest("getVersion")
	require.True(t, ok)
	assert.Nil(t, req.Arguments)
}

func TestWriteFailureDisconnects(t *testing.T) {
	fake := testutil.NewFakeXapi()
	c := newTestConnector(fake)
	require.NoError(t, c.Connect(context.Background()))

	fake.WriteErr = errors.New("broken pipe")
	_, err := c.SendAndReceive(context.Background(), models.MRequest{Command: "ping"})
	requireSocketError(t, err, "")
	assert.ErrorContains(t, err, "broken pipe")
	assert.Equal(t, Disconnected, c.State())
	assert.False(t, fake.IsOpen())

	// The transport is already released; Close reports misuse.
	requireSocketError(t, c.Close(), helpers.MsgCloseWithoutConnect)
}

func TestReadTimeoutDisconnects(t *testing.T) {
	fake := testutil.NewFakeXapi()
	fake.Handle("getVersion", func(testutil.Request) testutil.Reply { return testutil.Reply{NoReply: true} })
	c := newTestConnector(fake)
	require.NoError(t, c.Connect(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.SendAndReceive(ctx, models.MRequest{Command: "getVersion"})
	requireSocketError(t, err, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Disconnected, c.State())
}

func TestMalformedResponseDisconnects(t *testing.T) {
	fake := testutil.NewFakeXapi()
	fake.Handle("getVersion", func(testutil.Request) testutil.Reply {
		return testutil.Reply{Raw: []byte(`{"status":tru`)}
	})
	c := newTestConnector(fake)
	require.NoError(t, c.Connect(context.Background()))

	_, err := c.SendAndReceive(context.Background(), models.MRequest{Command: "getVersion"})
	requireSocketError(t, err, "")
	assert.Equal(t, Disconnected, c.State())
}

func TestRateLimiterSpacesRequests(t *testing.T) {
	fake := testutil.NewFakeXapi()
	c := NewConnector(fake, 40*time.Millisecond, nil)
	require.NoError(t, c.Connect(context.Background()))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.SendAndReceive(context.Background(), models.MRequest{Command: "ping"})
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestCancelledBeforeSendKeepsConnection(t *testing.T) {
	fake := testutil.NewFakeXapi()
	c := NewConnector(fake, time.Hour, nil)
	require.NoError(t, c.Connect(context.Background()))

	_, err := c.SendAndReceive(context.Background(), models.MRequest{Command: "ping"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.SendAndReceive(ctx, models.MRequest{Command: "ping"})
	requireSocketError(t, err, "")
	assert.Equal(t, Connected, c.State())
	assert.Equal(t, 1, fake.Writes())
}

func TestConnectionStateString(t *testing.T) {
	assert.Equal(t, "Connected", Connected.String())
	assert.Equal(t, "Disconnected", Disconnected.String())
}

// -----------------------------------------------------------------------------

// gatedTransport blocks every read until a result is sent on release.
type gatedTransport struct {
	mu      sync.Mutex
	opens   int
	closes  int
	reading chan struct{}
	release chan error
}

func newGatedTransport() *gatedTransport {
	return &gatedTransport{reading: make(chan struct{}, 1), release: make(chan error)}
}

func (g *gatedTransport) Open(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.opens++
	return nil
}

func (g *gatedTransport) WriteMessage(context.Context, []byte) error { return nil }

func (g *gatedTransport) ReadMessage(context.Context) ([]byte, error) {
	g.reading <- struct{}{}
	if err := <-g.release; err != nil {
		return nil, err
	}
	return []byte(`{"status":true}`), nil
}

func (g *gatedTransport) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closes++
	return nil
}

func (g *gatedTransport) Address() string { return "gated" }

func (g *gatedTransport) counts() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.opens, g.closes
}

func TestStaleFailureKeepsNewConnection(t *testing.T) {
	gate := newGatedTransport()
	c := NewConnector(gate, 0, nil)
	require.NoError(t, c.Connect(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := c.SendAndReceive(context.Background(), models.MRequest{Command: "getVersion"})
		done <- err
	}()

	select {
	case <-gate.reading:
	case <-time.After(2 * time.Second):
		t.Fatal("exchange never reached the read")
	}
	require.NoError(t, c.Close())
	require.NoError(t, c.Connect(context.Background()))

	gate.release <- errors.New("use of closed network connection")
	requireSocketError(t, <-done, "")

	assert.Equal(t, Connected, c.State())
	opens, closes := gate.counts()
	assert.Equal(t, 2, opens)
	assert.Equal(t, 1, closes)
}

func TestFailureOnCurrentConnectionDisconnects(t *testing.T) {
	gate := newGatedTransport()
	c := NewConnector(gate, 0, nil)
	require.NoError(t, c.Connect(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := c.Receive(context.Background())
		done <- err
	}()
	<-gate.reading
	gate.release <- errors.New("connection reset by peer")
	requireSocketError(t, <-done, "")

	assert.Equal(t, Disconnected, c.State())
	_, closes := gate.counts()
	assert.Equal(t, 1, closes)
}
