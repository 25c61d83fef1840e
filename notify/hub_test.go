package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastsToClients(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Dispatch(context.Background(), sampleConfirmation()))

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)

	var got OrderConfirmation
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "order-1", got.OrderID)

	client.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubWithoutClientsIsNoop(t *testing.T) {
	assert.NoError(t, NewHub().Dispatch(context.Background(), sampleConfirmation()))
}

func TestHubDropsClientThatCannotKeepUp(t *testing.T) {
	conns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	defer srv.Close()

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer peer.Close()
	conn := <-conns
	defer conn.Close()

	// No writer drains this queue.
	stuck := &client{conn: conn, send: make(chan []byte)}
	hub := NewHub()
	hub.clients[stuck] = struct{}{}

	start := time.Now()
	require.NoError(t, hub.Dispatch(context.Background(), sampleConfirmation()))
	assert.Less(t, time.Since(start), writeWait)
	assert.Equal(t, 0, hub.Clients())

	_, open := <-stuck.send
	assert.False(t, open)
}
