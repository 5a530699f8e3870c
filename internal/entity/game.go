package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Game - a human versus engine session.
type Game struct {
	ID        string    `json:"id"`
	Board     Board     `json:"board"`
	Winner    Mark      `json:"winner"`
	Status    string    `json:"status"`
	Turn      Mark      `json:"player_turn"`
	Players   []*Player `json:"players,omitempty"`
	Moves     []Move    `json:"moves,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:        id,
		Board:     NewBoard(),
		Turn:      PlayerX,
		Status:    StatusWaiting,
		CreatedAt: time.Now().UTC(),
	}
}

// DetermineGameResult - returns the winner, PlayerTie, or EmptyCell if the game continues.
func (that *Game) DetermineGameResult() Mark {
	return that.Board.Result()
}

func (that *Game) UpdateGameState() {
	switch winner := that.DetermineGameResult(); winner {
	// one player wins or the board is full
	case PlayerX, PlayerO, PlayerTie:
		that.Winner = winner
		that.Status = StatusFinished
		that.Turn = EmptyCell
	// game continue
	default:
		that.Status = StatusOngoing
	}
}

func (that *Game) MakeTurn(playerMark Mark, move Move) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if !move.IsValid() {
		return fmt.Errorf("%w: %s", apperror.ErrInvalidCell, move)
	}

	if that.Turn != playerMark {
		return apperror.ErrNotYourTurn
	}

	if err := that.Board.Place(move.Row, move.Col, playerMark); err != nil {
		return err //nolint: wrapcheck // board errors already carry the cell
	}

	that.Moves = append(that.Moves, move)
	that.Turn = playerMark.Opponent()

	that.UpdateGameState()

	return nil
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

// EnginePlayer - returns the bot seat, or nil if the game has none.
func (that *Game) EnginePlayer() *Player {
	for _, player := range that.Players {
		if player.IsBot() {
			return player
		}
	}

	return nil
}

// HumanPlayer - returns the human seat, or nil if the game has none.
func (that *Game) HumanPlayer() *Player {
	for _, player := range that.Players {
		if !player.IsBot() {
			return player
		}
	}

	return nil
}

// IsEngineTurn - reports whether the engine is expected to move next.
func (that *Game) IsEngineTurn() bool {
	engine := that.EnginePlayer()
	return engine != nil && that.IsOngoing() && that.Turn == engine.Mark
}
