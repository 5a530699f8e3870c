package service

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/engine"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var ErrBotNotFound = errors.New("bot player not found")

type BotService interface {
	MakeTurn(game *entity.Game) (engine.Decision, error)
	Analyze(board entity.Board, mark entity.Mark) (engine.Decision, error)
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

// MakeTurn - plays the engine's best move for the bot seat of game.
func (that *botService) MakeTurn(game *entity.Game) (engine.Decision, error) {
	botPlayer := game.EnginePlayer()
	if botPlayer == nil {
		return engine.Decision{}, ErrBotNotFound
	}

	decision, err := that.Analyze(game.Board, botPlayer.Mark)
	if err != nil {
		return engine.Decision{}, err
	}

	if err = game.MakeTurn(botPlayer.Mark, decision.Move); err != nil {
		return engine.Decision{}, fmt.Errorf("bot failed to make turn: %w", err)
	}

	return decision, nil
}

// Analyze - searches board for mark. The board is a copy, so the caller's game is never touched by the search.
func (that *botService) Analyze(board entity.Board, mark entity.Mark) (engine.Decision, error) {
	eng, err := engine.New(mark)
	if err != nil {
		return engine.Decision{}, fmt.Errorf("failed to create engine: %w", err)
	}

	decision, err := eng.Decide(&board)
	if err != nil {
		return engine.Decision{}, fmt.Errorf("failed to find best move: %w", err)
	}

	return decision, nil
}
