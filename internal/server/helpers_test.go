package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lox/chipholdem/internal/game"
	"github.com/lox/chipholdem/internal/room"
	"github.com/lox/chipholdem/internal/store"
)

const readTimeout = 5 * time.Second

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

type testServer struct {
	t       *testing.T
	server  *Server
	manager *room.Manager
	http    *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	manager := room.NewManager(store.NewMemory(), testLogger())
	srv := NewServer(manager, testLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Stop()
		ts.Close()
		_ = manager.Close()
	})
	return &testServer{t: t, server: srv, manager: manager, http: ts}
}

func (ts *testServer) post(path, body string) (*http.Response, []byte) {
	ts.t.Helper()
	resp, err := http.Post(ts.http.URL+path, "application/json", strings.NewReader(body))
	require.NoError(ts.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(ts.t, err)
	return resp, data
}

func (ts *testServer) get(path string) (*http.Response, []byte) {
	ts.t.Helper()
	resp, err := http.Get(ts.http.URL + path)
	require.NoError(ts.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(ts.t, err)
	return resp, data
}

func (ts *testServer) createRoom() CreateRoomResponse {
	ts.t.Helper()
	resp, body := ts.post("/api/create", `{}`)
	require.Equal(ts.t, http.StatusOK, resp.StatusCode, string(body))
	var created CreateRoomResponse
	require.NoError(ts.t, json.Unmarshal(body, &created))
	return created
}

func (ts *testServer) wsURL(code string, params url.Values) string {
	return "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/api/room/" + code + "/ws?" + params.Encode()
}

// dial opens a websocket and returns the handshake response even on
// failure.
func (ts *testServer) dial(code string, params url.Values) (*wsClient, *http.Response, error) {
	conn, resp, err := websocket.DefaultDialer.Dial(ts.wsURL(code, params), nil)
	if err != nil {
		return nil, resp, err
	}
	c := &wsClient{t: ts.t, conn: conn}
	ts.t.Cleanup(func() { _ = conn.Close() })
	return c, resp, nil
}

// join dials and consumes the welcome message.
func (ts *testServer) join(code, nick, playerKey, hostKey string) (*wsClient, WelcomeData) {
	ts.t.Helper()
	params := url.Values{"nick": {nick}}
	if playerKey != "" {
		params.Set("playerKey", playerKey)
	}
	if hostKey != "" {
		params.Set("hostKey", hostKey)
	}
	c, _, err := ts.dial(code, params)
	require.NoError(ts.t, err)

	msg := c.read()
	require.Equal(ts.t, MessageTypeWelcome, msg.Type, string(msg.Data))
	var welcome WelcomeData
	require.NoError(ts.t, json.Unmarshal(msg.Data, &welcome))
	return c, welcome
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func (c *wsClient) read() *Message {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	var msg Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return &msg
}

// readState requires the next message to be a state update.
func (c *wsClient) readState() game.View {
	c.t.Helper()
	msg := c.read()
	require.Equal(c.t, MessageTypeState, msg.Type, string(msg.Data))
	return decodeState(c.t, msg)
}

// waitState reads until a state message satisfies cond.
func (c *wsClient) waitState(cond func(game.View) bool) game.View {
	c.t.Helper()
	for {
		msg := c.read()
		if msg.Type != MessageTypeState {
			continue
		}
		if v := decodeState(c.t, msg); cond(v) {
			return v
		}
	}
}

// waitError reads until an error message arrives.
func (c *wsClient) waitError() ErrorData {
	c.t.Helper()
	for {
		msg := c.read()
		if msg.Type != MessageTypeError {
			continue
		}
		var data ErrorData
		require.NoError(c.t, json.Unmarshal(msg.Data, &data))
		return data
	}
}

func (c *wsClient) send(messageType MessageType, data any) {
	c.t.Helper()
	msg, err := NewMessage(messageType, data, time.Now())
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *wsClient) sendRaw(payload string) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

func decodeState(t *testing.T, msg *Message) game.View {
	t.Helper()
	var data StateData
	require.NoError(t, json.NewDecoder(bytes.NewReader(msg.Data)).Decode(&data))
	return data.State
}

func seatByNick(v game.View, nick string) (game.SeatView, bool) {
	for _, p := range v.Players {
		if p.Nick == nick {
			return p, true
		}
	}
	return game.SeatView{}, false
}
