package engine

import (
	"math"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// Score - exact game-theoretic value of a position from the engine's point of view.
type Score int

const (
	ScoreLoss Score = -1
	ScoreDraw Score = 0
	ScoreWin  Score = 1
)

// Bounds of the unbounded search window.
const (
	MinScore Score = math.MinInt
	MaxScore Score = math.MaxInt
)

func (that Score) String() string {
	switch {
	case that > ScoreDraw:
		return "win"
	case that < ScoreDraw:
		return "loss"
	default:
		return "draw"
	}
}

// Evaluate - returns ScoreWin if the engine's mark completes a line, ScoreLoss if the opponent's does,
// ScoreDraw otherwise. Open positions also score ScoreDraw; use IsFull to tell them apart.
func (that *Engine) Evaluate(board *entity.Board) Score {
	if board.HasLine(that.mark) {
		return ScoreWin
	}

	if board.HasLine(that.opponent) {
		return ScoreLoss
	}

	return ScoreDraw
}

// IsTerminal - reports whether the position is decided and returns its score.
func (that *Engine) IsTerminal(board *entity.Board) (Score, bool) {
	if score := that.Evaluate(board); score != ScoreDraw {
		return score, true
	}

	return ScoreDraw, board.IsFull()
}
