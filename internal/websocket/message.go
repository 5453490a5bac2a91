package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/squad-dashboard/internal/domain"
)

type MessageType string

const (
	// Client to Server
	MessageTypeSubscribe MessageType = "SUBSCRIBE"
	MessageTypeSyncState MessageType = "SYNC_STATE"

	// Server to Client
	MessageTypeFinalizationState MessageType = "FINALIZATION_STATE"
	MessageTypeError             MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
	Seq       int64           `json:"seq,omitempty"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type SubscribePayload struct {
	GameID string `json:"gameId"`
}

// Server to Client payloads

type FinalizationStatePayload struct {
	GameID         string                   `json:"gameId"`
	State          domain.FinalizationState `json:"state"`
	InFlight       bool                     `json:"inFlight"`
	TriggerEnabled bool                     `json:"triggerEnabled"`
	Message        string                   `json:"message"`
	UpdatedAt      int64                    `json:"updatedAt"`
}

func NewFinalizationStatePayload(status domain.FinalizationStatus) FinalizationStatePayload {
	payload := FinalizationStatePayload{
		GameID:         status.GameID.String(),
		State:          status.State,
		InFlight:       status.State.InFlight(),
		TriggerEnabled: status.TriggerEnabled,
		Message:        status.Message,
	}
	if !status.UpdatedAt.IsZero() {
		payload.UpdatedAt = status.UpdatedAt.UnixMilli()
	}
	return payload
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
