package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAPIClient creates a new API client authenticated with token
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type FinalizationResponse struct {
	GameID           string   `json:"gameId"`
	State            string   `json:"state"`
	Message          string   `json:"message"`
	Skipped          bool     `json:"skipped"`
	TransactionCount int      `json:"transactionCount"`
	Warnings         []string `json:"warnings"`
}

type ReconcileResponse struct {
	Expected int   `json:"expected"`
	Inserted int64 `json:"inserted"`
}

type MeritTransaction struct {
	PlayerID        string `json:"playerId"`
	Amount          int    `json:"amount"`
	TransactionType string `json:"transactionType"`
	Description     string `json:"description"`
}

type StatusMessage struct {
	Type    string `json:"type"`
	Payload struct {
		GameID         string `json:"gameId"`
		State          string `json:"state"`
		InFlight       bool   `json:"inFlight"`
		TriggerEnabled bool   `json:"triggerEnabled"`
		Message        string `json:"message"`
	} `json:"payload"`
}

// Finalize triggers finalization. Write failures come back as 502 with a
// regular body, so they are decoded rather than treated as errors.
func (c *APIClient) Finalize(gameID string) (*FinalizationResponse, int, error) {
	resp, err := c.do(http.MethodPost, "/games/"+gameID+"/finalize")
	if err != nil {
		return nil, 0, fmt.Errorf("finalize request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadGateway {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, resp.StatusCode, fmt.Errorf("finalize failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var result FinalizationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, resp.StatusCode, nil
}

// Reconcile re-inserts the merit ledger of a partially finalized game
func (c *APIClient) Reconcile(gameID string) (*ReconcileResponse, error) {
	resp, err := c.do(http.MethodPost, "/games/"+gameID+"/merits/reconcile")
	if err != nil {
		return nil, fmt.Errorf("reconcile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("reconcile failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var result ReconcileResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// GameMerits lists the merit ledger of a game
func (c *APIClient) GameMerits(gameID string) ([]MeritTransaction, error) {
	resp, err := c.do(http.MethodGet, "/games/"+gameID+"/merits")
	if err != nil {
		return nil, fmt.Errorf("merits request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("merits failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var txs []MeritTransaction
	if err := json.NewDecoder(resp.Body).Decode(&txs); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return txs, nil
}

// Watch streams finalization states for a game to onState until a state
// with the trigger re-enabled or a partial failure arrives, or timeout.
func (c *APIClient) Watch(gameID string, timeout time.Duration, onState func(StatusMessage)) error {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws?token=" + c.token + "&gameId=" + gameID

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second
	conn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("websocket dial failed: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	for {
		conn.SetReadDeadline(deadline)
		var msg StatusMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("websocket read failed: %w", err)
		}
		if msg.Type != "FINALIZATION_STATE" {
			continue
		}
		onState(msg)
		if !msg.Payload.InFlight && msg.Payload.State != "not_started" {
			return nil
		}
	}
}

func (c *APIClient) do(method, path string) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
