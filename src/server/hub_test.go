package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"deal-observer/src/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func dialQuoteFeed(t *testing.T, s *APIServer) *websocket.Conn {
	t.Helper()

	go s.handleWebsockets()

	srv := httptest.NewServer(s.Engine())
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) *models.MLatestQuotes {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var snapshot models.MLatestQuotes
	require.NoError(t, conn.ReadJSON(&snapshot))
	return &snapshot
}

// -----------------------------------------------------------------------------

func TestWebSocketSendsInitialStateOnConnect(t *testing.T) {
	s := testServer(t, &stubDealsAPI{})
	conn := dialQuoteFeed(t, s)

	snapshot := readSnapshot(t, conn)
	assert.Equal(t, "INITIAL", snapshot.Type)
	assert.Empty(t, snapshot.Quotes)
}

// -----------------------------------------------------------------------------

func TestWebSocketBroadcastReachesSubscriber(t *testing.T) {
	s := testServer(t, &stubDealsAPI{})
	conn := dialQuoteFeed(t, s)

	readSnapshot(t, conn) // initial state

	s.Broadcast(&models.MLatestQuotes{
		Type:   "UPDATE",
		Quotes: map[string]models.MQuoteData{"G1": {Title: "Some Game"}},
	})

	snapshot := readSnapshot(t, conn)
	assert.Equal(t, "UPDATE", snapshot.Type)
	require.Contains(t, snapshot.Quotes, "G1")
	assert.Equal(t, "Some Game", snapshot.Quotes["G1"].Title)
	assert.NotZero(t, snapshot.Timestamp)
}

// -----------------------------------------------------------------------------

func TestSubscribeCommandFiltersSnapshot(t *testing.T) {
	s := testServer(t, &stubDealsAPI{})
	conn := dialQuoteFeed(t, s)

	readSnapshot(t, conn) // initial state

	s.Broadcast(&models.MLatestQuotes{
		Type: "UPDATE",
		Quotes: map[string]models.MQuoteData{
			"G1": {Title: "First"},
			"G2": {Title: "Second"},
		},
	})
	readSnapshot(t, conn) // the broadcast itself

	require.NoError(t, conn.WriteJSON(models.MSubscribeCommand{
		Command: "subscribe",
		GameIDs: []string{"G2"},
	}))

	snapshot := readSnapshot(t, conn)
	assert.Equal(t, "INITIAL", snapshot.Type)
	require.Len(t, snapshot.Quotes, 1)
	assert.Contains(t, snapshot.Quotes, "G2")
}

// -----------------------------------------------------------------------------

func TestStopShutsDownHubCleanly(t *testing.T) {
	s := testServer(t, &stubDealsAPI{})
	conn := dialQuoteFeed(t, s)

	// Registration has completed once the initial state arrives.
	readSnapshot(t, conn)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop(), "repeated stop must be a no-op")

	// A broadcast after shutdown is dropped, never blocked on a dead hub.
	delivered := make(chan struct{})
	go func() {
		s.Broadcast(&models.MLatestQuotes{Type: "UPDATE"})
		close(delivered)
	}()
	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked after shutdown")
	}

	// The hub closed the subscriber's send channel on exit, which ends the
	// connection with a close frame.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
