package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/engine"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

const (
	actionNewGame  = "game:new"
	actionGetGame  = "game:get"
	actionTurn     = "game:turn"
	actionBestMove = "engine:move"
	actionError    = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload - request and response body shared by all actions.
type Payload struct {
	GameID   string               `json:"game_id,omitempty"`
	Options  *usecase.GameOptions `json:"options,omitempty"`
	Move     *entity.Move         `json:"move,omitempty"`
	Board    *entity.Board        `json:"board,omitempty"`
	Mark     entity.Mark          `json:"mark,omitempty"`
	Game     *entity.Game         `json:"game,omitempty"`
	Decision *engine.Decision     `json:"decision,omitempty"`
	Error    string               `json:"error,omitempty"`
}

func newMessage(action string, payload *Payload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	msg, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return msg, nil
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
