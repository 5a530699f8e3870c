// Package engine implements perfect play for 3x3 tic-tac-toe: terminal evaluation and an exhaustive
// minimax search with alpha-beta pruning.
//
// The engine is always the maximizer. A search mutates the board it is given and restores it before
// returning, so callers must not share that board with another goroutine while a search runs.
package engine

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type Engine struct {
	mark     entity.Mark
	opponent entity.Mark
}

// New - creates an engine that plays mark.
func New(mark entity.Mark) (*Engine, error) {
	if !mark.IsPlayer() {
		return nil, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, mark)
	}

	return &Engine{
		mark:     mark,
		opponent: mark.Opponent(),
	}, nil
}

// Mark - returns the mark the engine maximizes for.
func (that *Engine) Mark() entity.Mark {
	return that.mark
}

// Decision - the chosen move with its exact value and the number of positions searched.
type Decision struct {
	Move  entity.Move `json:"move"`
	Score Score       `json:"score"`
	Nodes int         `json:"nodes"`
}

// FindBestMove - returns the optimal move for the engine on board. The board must have an empty cell.
func (that *Engine) FindBestMove(board *entity.Board) (entity.Move, error) {
	decision, err := that.Decide(board)
	if err != nil {
		return entity.Move{}, err
	}

	return decision.Move, nil
}

// Decide - like FindBestMove, but also reports the value of the move and the search size.
func (that *Engine) Decide(board *entity.Board) (Decision, error) {
	if board.IsFull() {
		return Decision{}, fmt.Errorf("%w: board %s is full", apperror.ErrNoAvailableMoves, board)
	}

	s := &search{engine: that, board: board}

	best := Decision{Score: MinScore}
	found := false

	for i := range entity.CellCount {
		if board[i] != entity.EmptyCell {
			continue
		}

		// every root child gets its own unbounded window
		value := s.child(i, that.mark, MinScore, MaxScore, false)
		if !found || value > best.Score {
			best.Move = entity.MoveAt(i)
			best.Score = value
			found = true
		}
	}

	best.Nodes = s.nodes

	return best, nil
}

// Minimax - returns the exact value of board within the (alpha, beta) window. maximizing tells whether
// the engine is to move.
func (that *Engine) Minimax(board *entity.Board, alpha, beta Score, maximizing bool) Score {
	s := &search{engine: that, board: board}
	return s.minimax(alpha, beta, maximizing)
}

// Value - returns the exact value of board searched with a fresh unbounded window.
func (that *Engine) Value(board *entity.Board, maximizing bool) Score {
	return that.Minimax(board, MinScore, MaxScore, maximizing)
}
