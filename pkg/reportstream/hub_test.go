package reportstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/engine"
	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func httpHandler(h *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	return mux
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHubSendsLatestThenBroadcasts(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(httpHandler(hub))
	defer srv.Close()

	assert.Nil(t, hub.Latest())
	require.NoError(t, hub.Publish(&engine.Report{Samples: 1}))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var got engine.Report
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, 1, got.Samples)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Publish(&engine.Report{Samples: 2, Cost: types.CostBreakdown{GridCost: 1.25}}))

	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, 2, got.Samples)
	assert.InDelta(t, 1.25, got.Cost.GridCost, 1e-9)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestListenDeliversReports(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(httpHandler(hub))
	defer srv.Close()
	require.NoError(t, hub.Publish(&engine.Report{Samples: 42}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *engine.Report, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- Listen(ctx, wsURL(srv), func(r *engine.Report) {
			select {
			case received <- r:
			default:
			}
		})
	}()

	select {
	case r := <-received:
		assert.Equal(t, 42, r.Samples)
	case <-ctx.Done():
		t.Fatal("no report received")
	}
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestStreamURL(t *testing.T) {
	assert.Equal(t, "ws://host:9040/ws", StreamURL("host:9040", false))
	assert.Equal(t, "wss://host/ws", StreamURL("host", true))
}
