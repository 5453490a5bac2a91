package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/dom/squad-dashboard/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StatusSource supplies the current finalization status for newly
// subscribed clients.
type StatusSource interface {
	Status(ctx context.Context, gameID uuid.UUID) (domain.FinalizationStatus, error)
}

type subscribeRequest struct {
	client *Client
	gameID uuid.UUID
	status domain.FinalizationStatus
	err    error
}

// Hub fans finalization status changes out to the clients following each game.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscribeRequest
	broadcast  chan domain.FinalizationStatus
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopOnce   sync.Once
	stopped    bool
	seq        int64
	latest     map[uuid.UUID]domain.FinalizationStatus
	statuses   StatusSource
	log        zerolog.Logger
	mu         sync.RWMutex
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscribeRequest),
		broadcast:  make(chan domain.FinalizationStatus, 256),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		latest:     make(map[uuid.UUID]domain.FinalizationStatus),
		log:        log.With().Str("component", "ws_hub").Logger(),
	}
}

// SetStatusSource wires the service that answers snapshot requests. It must
// be called before Run.
func (h *Hub) SetStatusSource(src StatusSource) {
	h.statuses = src
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mu.Unlock()

		case req := <-h.subscribe:
			req.client.setGameID(req.gameID)
			h.sendSnapshot(req)

		case status := <-h.broadcast:
			h.fanOut(status)
		}
	}
}

// Stop closes every client and blocks until Run has returned. It is safe to
// call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe points client at gameID and sends it the current status. The
// status is loaded on the caller's goroutine so Run never waits on the store.
func (h *Hub) Subscribe(client *Client, gameID uuid.UUID) {
	req := subscribeRequest{client: client, gameID: gameID}
	req.status, req.err = h.loadStatus(gameID)

	select {
	case h.subscribe <- req:
	case <-h.done:
	}
}

// FinalizationChanged queues a status for broadcast. It never blocks the
// finalization run; if the queue is full the update is dropped and clients
// catch up on their next SYNC_STATE.
func (h *Hub) FinalizationChanged(status domain.FinalizationStatus) {
	select {
	case h.broadcast <- status:
	default:
		h.log.Warn().
			Str("game_id", status.GameID.String()).
			Str("state", string(status.State)).
			Msg("broadcast queue full, dropping finalization update")
	}
}

// ClientCount returns the number of connected clients following gameID.
func (h *Hub) ClientCount(gameID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for client := range h.clients {
		if client.GameID() == gameID {
			n++
		}
	}
	return n
}

func (h *Hub) fanOut(status domain.FinalizationStatus) {
	msg, err := NewMessage(MessageTypeFinalizationState, NewFinalizationStatePayload(status))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to build finalization message")
		return
	}
	h.seq++
	msg.Seq = h.seq
	h.latest[status.GameID] = status

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.GameID() == status.GameID {
			client.Send(msg)
		}
	}
}

func (h *Hub) loadStatus(gameID uuid.UUID) (domain.FinalizationStatus, error) {
	if h.statuses == nil {
		return domain.FinalizationStatus{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.statuses.Status(ctx, gameID)
}

// sendSnapshot answers a subscription. A status broadcast after the snapshot
// was loaded replaces it, so a late snapshot never rolls a client back.
func (h *Hub) sendSnapshot(req subscribeRequest) {
	if h.statuses == nil {
		return
	}

	status := req.status
	if latest, ok := h.latest[req.gameID]; ok && (req.err != nil || latest.UpdatedAt.After(status.UpdatedAt)) {
		status = latest
	} else if req.err != nil {
		h.log.Warn().Err(req.err).Str("game_id", req.gameID.String()).Msg("failed to load finalization status")
		req.client.sendError("STATUS_UNAVAILABLE", "Could not load finalization status")
		return
	}

	msg, err := NewMessage(MessageTypeFinalizationState, NewFinalizationStatePayload(status))
	if err != nil {
		return
	}
	req.client.Send(msg)
}
