package engine

import (
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// search - state of one top-level search over a single shared board.
type search struct {
	engine *Engine
	board  *entity.Board
	nodes  int
}

func (that *search) minimax(alpha, beta Score, maximizing bool) Score {
	that.nodes++

	if score, done := that.engine.IsTerminal(that.board); done {
		return score
	}

	if maximizing {
		best := MinScore
		for i := range entity.CellCount {
			if that.board[i] != entity.EmptyCell {
				continue
			}

			best = max(best, that.child(i, that.engine.mark, alpha, beta, false))
			alpha = max(alpha, best)
			// beta cut-off
			if beta <= alpha {
				return best
			}
		}

		return best
	}

	best := MaxScore
	for i := range entity.CellCount {
		if that.board[i] != entity.EmptyCell {
			continue
		}

		best = min(best, that.child(i, that.engine.opponent, alpha, beta, true))
		beta = min(beta, best)
		// alpha cut-off
		if beta <= alpha {
			return best
		}
	}

	return best
}

// child - places mark on cell index, searches the resulting position and clears the cell again.
func (that *search) child(index int, mark entity.Mark, alpha, beta Score, maximizing bool) Score {
	that.board[index] = mark
	defer func() {
		that.board[index] = entity.EmptyCell
	}()

	return that.minimax(alpha, beta, maximizing)
}
