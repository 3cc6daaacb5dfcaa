package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/gridiron/internal/jobs"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyBroadcastsToClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewServer("*", zerolog.Nop())
	go srv.Run(ctx)

	ts := httptest.NewServer(http.HandlerFunc(srv.HandleExports))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return srv.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	ev := jobs.Event{JobID: "job-1", Status: jobs.StatusCompleted, LeagueID: 123, Week: 7, FilePath: "x.json"}
	require.NoError(t, srv.Notify(context.Background(), ev))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "export.completed", msg.Type)
	assert.Equal(t, "job-1", msg.Data.JobID)
	assert.Equal(t, 7, msg.Data.Week)
}

func TestCheckOrigin(t *testing.T) {
	srv := NewServer("https://coach.example", zerolog.Nop())

	req := httptest.NewRequest("GET", "/ws/exports", nil)
	req.Header.Set("Origin", "https://coach.example")
	assert.True(t, srv.upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, srv.upgrader.CheckOrigin(req))
}
