package websocket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/dom/squad-dashboard/internal/websocket"
	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStatuses struct {
	status domain.FinalizationStatus
}

func (s stubStatuses) Status(_ context.Context, gameID uuid.UUID) (domain.FinalizationStatus, error) {
	st := s.status
	st.GameID = gameID
	return st, nil
}

// gatedStatuses holds lookups for one game until release is closed.
type gatedStatuses struct {
	gated   uuid.UUID
	release chan struct{}
}

func (s gatedStatuses) Status(ctx context.Context, gameID uuid.UUID) (domain.FinalizationStatus, error) {
	if gameID == s.gated {
		select {
		case <-s.release:
		case <-ctx.Done():
			return domain.FinalizationStatus{}, ctx.Err()
		}
	}
	return domain.FinalizationStatus{GameID: gameID, State: domain.FinalizationNotStarted, TriggerEnabled: true}, nil
}

func startHub(t *testing.T, src websocket.StatusSource) (*websocket.Hub, string) {
	t.Helper()

	hub := websocket.NewHub(zerolog.Nop())
	hub.SetStatusSource(src)
	go hub.Run()

	upgrader := gws.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := websocket.NewClient(hub, conn, uuid.New())
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))

	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *gws.Conn {
	t.Helper()
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *gws.Conn, msgType websocket.MessageType, payload interface{}) {
	t.Helper()
	msg, err := websocket.NewMessage(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(msg))
}

func read(t *testing.T, conn *gws.Conn, timeout time.Duration) (*websocket.Message, error) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(timeout))
	var msg websocket.Message
	if err := conn.ReadJSON(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func readState(t *testing.T, conn *gws.Conn) websocket.FinalizationStatePayload {
	t.Helper()
	msg, err := read(t, conn, 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, websocket.MessageTypeFinalizationState, msg.Type)

	var payload websocket.FinalizationStatePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	return payload
}

func TestHub_SubscribeSendsSnapshot(t *testing.T) {
	_, url := startHub(t, stubStatuses{status: domain.FinalizationStatus{
		State:          domain.FinalizationNotStarted,
		TriggerEnabled: true,
	}})
	conn := dial(t, url)
	gameID := uuid.New()

	send(t, conn, websocket.MessageTypeSubscribe, websocket.SubscribePayload{GameID: gameID.String()})

	state := readState(t, conn)
	assert.Equal(t, gameID.String(), state.GameID)
	assert.Equal(t, domain.FinalizationNotStarted, state.State)
	assert.True(t, state.TriggerEnabled)
	assert.False(t, state.InFlight)
}

func TestHub_BroadcastsOnlyToSubscribers(t *testing.T) {
	hub, url := startHub(t, stubStatuses{status: domain.FinalizationStatus{State: domain.FinalizationNotStarted, TriggerEnabled: true}})
	gameID := uuid.New()
	otherGame := uuid.New()

	follower := dial(t, url)
	send(t, follower, websocket.MessageTypeSubscribe, websocket.SubscribePayload{GameID: gameID.String()})
	readState(t, follower)

	bystander := dial(t, url)
	send(t, bystander, websocket.MessageTypeSubscribe, websocket.SubscribePayload{GameID: otherGame.String()})
	readState(t, bystander)

	hub.FinalizationChanged(domain.FinalizationStatus{
		GameID:  gameID,
		State:   domain.FinalizationComputing,
		Message: "computing achievements",
	})

	state := readState(t, follower)
	assert.Equal(t, domain.FinalizationComputing, state.State)
	assert.True(t, state.InFlight)
	assert.False(t, state.TriggerEnabled)

	_, err := read(t, bystander, 200*time.Millisecond)
	assert.Error(t, err, "bystander should not receive another game's updates")
}

func TestHub_InvalidMessages(t *testing.T) {
	_, url := startHub(t, stubStatuses{})
	conn := dial(t, url)

	tests := []struct {
		name     string
		msgType  websocket.MessageType
		payload  interface{}
		wantCode string
	}{
		{"bad game id", websocket.MessageTypeSubscribe, websocket.SubscribePayload{GameID: "nope"}, "INVALID_GAME_ID"},
		{"sync before subscribe", websocket.MessageTypeSyncState, struct{}{}, "NOT_SUBSCRIBED"},
		{"unknown type", websocket.MessageType("LOCK_IN"), struct{}{}, "UNKNOWN_MESSAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.msgType, tt.payload)

			msg, err := read(t, conn, 2*time.Second)
			require.NoError(t, err)
			require.Equal(t, websocket.MessageTypeError, msg.Type)

			var payload websocket.ErrorPayload
			require.NoError(t, json.Unmarshal(msg.Payload, &payload))
			assert.Equal(t, tt.wantCode, payload.Code)
		})
	}
}

func TestHub_SlowStatusLookupDoesNotStallBroadcasts(t *testing.T) {
	src := gatedStatuses{gated: uuid.New(), release: make(chan struct{})}
	hub, url := startHub(t, src)
	gameID := uuid.New()

	follower := dial(t, url)
	send(t, follower, websocket.MessageTypeSubscribe, websocket.SubscribePayload{GameID: gameID.String()})
	readState(t, follower)

	waiting := dial(t, url)
	send(t, waiting, websocket.MessageTypeSubscribe, websocket.SubscribePayload{GameID: src.gated.String()})

	hub.FinalizationChanged(domain.FinalizationStatus{GameID: gameID, State: domain.FinalizationComputing})
	assert.Equal(t, domain.FinalizationComputing, readState(t, follower).State)

	// The gated game finishes while its subscriber is still loading a snapshot.
	hub.FinalizationChanged(domain.FinalizationStatus{
		GameID:         src.gated,
		State:          domain.FinalizationSuccess,
		TriggerEnabled: true,
		UpdatedAt:      time.Now(),
	})
	hub.FinalizationChanged(domain.FinalizationStatus{GameID: gameID, State: domain.FinalizationWritingTransactions})
	assert.Equal(t, domain.FinalizationWritingTransactions, readState(t, follower).State)

	close(src.release)

	state := readState(t, waiting)
	assert.Equal(t, domain.FinalizationSuccess, state.State, "a stale snapshot must not replace a newer broadcast")
}

func TestHub_StopIsIdempotent(t *testing.T) {
	hub := websocket.NewHub(zerolog.Nop())
	go hub.Run()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotPanics(t, hub.Stop)
		}()
	}
	wg.Wait()
}
