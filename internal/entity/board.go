package entity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

// BoardSize - number of rows and columns on the board.
const BoardSize = 3

// CellCount - number of cells on the board.
const CellCount = BoardSize * BoardSize

type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	PlayerTie Mark = "-"

	EmptyCell Mark = ""
)

// Opponent - returns the mark playing against this one.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Move - a (row, column) coordinate pair on the board.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Move) IsValid() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

// Index - returns the row-major cell index of the move.
func (that Move) Index() int {
	return that.Row*BoardSize + that.Col
}

func (that Move) String() string {
	return fmt.Sprintf("(%d,%d)", that.Row, that.Col)
}

// MoveAt - converts a row-major cell index back into a move.
func MoveAt(index int) Move {
	return Move{Row: index / BoardSize, Col: index % BoardSize}
}

// Board - 3x3 grid of marks stored in row-major order.
type Board [CellCount]Mark

func NewBoard() Board {
	return Board{}
}

// ParseBoard - builds a board from three rows written with X, O and '-' or '.' for empty cells.
func ParseBoard(rows ...string) (Board, error) {
	var board Board

	if len(rows) != BoardSize {
		return board, fmt.Errorf("%w: expected %d rows, got %d", apperror.ErrInvalidCell, BoardSize, len(rows))
	}

	for r, row := range rows {
		if len(row) != BoardSize {
			return board, fmt.Errorf("%w: row %d has %d cells", apperror.ErrInvalidCell, r, len(row))
		}

		for c, ch := range row {
			switch ch {
			case 'X', 'x':
				board[r*BoardSize+c] = PlayerX
			case 'O', 'o':
				board[r*BoardSize+c] = PlayerO
			case '-', '.', ' ':
				board[r*BoardSize+c] = EmptyCell
			default:
				return board, fmt.Errorf("%w: %q at row %d", apperror.ErrInvalidMark, ch, r)
			}
		}
	}

	return board, nil
}

// UnmarshalJSON - decodes a board from a JSON array of exactly CellCount marks.
func (that *Board) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var cells []Mark
	if err := json.Unmarshal(data, &cells); err != nil {
		return fmt.Errorf("failed to decode board: %w", err)
	}

	if len(cells) != CellCount {
		return fmt.Errorf("%w: board has %d cells, expected %d", apperror.ErrInvalidCell, len(cells), CellCount)
	}

	copy(that[:], cells)

	return nil
}

// Validate - checks that every cell holds a player mark or is empty.
func (that *Board) Validate() error {
	for i, cell := range that {
		if cell != EmptyCell && !cell.IsPlayer() {
			return fmt.Errorf("%w: %q at %s", apperror.ErrInvalidMark, cell, MoveAt(i))
		}
	}

	return nil
}

func (that *Board) At(row, col int) Mark {
	return that[row*BoardSize+col]
}

// Place - puts mark on an empty cell.
func (that *Board) Place(row, col int, mark Mark) error {
	move := Move{Row: row, Col: col}
	if !move.IsValid() {
		return fmt.Errorf("%w: %s", apperror.ErrInvalidCell, move)
	}

	if !mark.IsPlayer() {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidMark, mark)
	}

	if that[move.Index()] != EmptyCell {
		return fmt.Errorf("%w: %s", apperror.ErrCellOccupied, move)
	}

	that[move.Index()] = mark

	return nil
}

// Clear - resets a cell to empty, undoing a Place.
func (that *Board) Clear(row, col int) {
	that[row*BoardSize+col] = EmptyCell
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// EmptyCells - returns the free cells in row-major order.
func (that *Board) EmptyCells() []Move {
	moves := make([]Move, 0, CellCount)
	for i, cell := range that {
		if cell == EmptyCell {
			moves = append(moves, MoveAt(i))
		}
	}

	return moves
}

// Count - returns how many cells hold mark.
func (that *Board) Count(mark Mark) int {
	n := 0
	for _, cell := range that {
		if cell == mark {
			n++
		}
	}

	return n
}

func (that *Board) String() string {
	var sb strings.Builder

	for r := range BoardSize {
		for c := range BoardSize {
			cell := that.At(r, c)
			if cell == EmptyCell {
				cell = "-"
			}
			sb.WriteString(string(cell))
		}
		if r < BoardSize-1 {
			sb.WriteString("/")
		}
	}

	return sb.String()
}
