package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

var (
	errUnknownAction = errors.New("unknown action")
	errMissingField  = errors.New("missing field")
)

func (that *Server) handleNewGame(ctx context.Context, req *Payload) (*Payload, error) {
	var opts usecase.GameOptions
	if req.Options != nil {
		opts = *req.Options
	}

	game, err := that.manager.NewGame(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return &Payload{GameID: game.ID, Game: game}, nil
}

func (that *Server) handleGetGame(ctx context.Context, req *Payload) (*Payload, error) {
	if req.GameID == "" {
		return nil, fmt.Errorf("%w: game_id", errMissingField)
	}

	game, err := that.manager.GetGame(ctx, req.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &Payload{GameID: game.ID, Game: game}, nil
}

func (that *Server) handleTurn(ctx context.Context, req *Payload) (*Payload, error) {
	if req.GameID == "" {
		return nil, fmt.Errorf("%w: game_id", errMissingField)
	}

	if req.Move == nil {
		return nil, fmt.Errorf("%w: move", errMissingField)
	}

	game, err := that.manager.MakeTurn(ctx, req.GameID, *req.Move)
	if err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	return &Payload{GameID: game.ID, Game: game}, nil
}

func (that *Server) handleBestMove(_ context.Context, req *Payload) (*Payload, error) {
	if req.Board == nil {
		return nil, fmt.Errorf("%w: board", errMissingField)
	}

	if err := req.Board.Validate(); err != nil {
		return nil, fmt.Errorf("invalid board: %w", err)
	}

	decision, err := that.manager.BestMove(*req.Board, req.Mark)
	if err != nil {
		return nil, fmt.Errorf("failed to find best move: %w", err)
	}

	return &Payload{Board: req.Board, Mark: req.Mark, Decision: &decision}, nil
}
