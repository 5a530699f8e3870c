package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var ErrResultNotFound = errors.New("result not found")

type ResultRepository interface {
	Save(ctx context.Context, result *entity.Result) error
	Find(ctx context.Context, gameID string) (*entity.Result, error)
	Summary(ctx context.Context) (*entity.Summary, error)
}

type resultRepository struct {
	conn *sql.DB
}

func NewResultRepository(conn *sql.DB) ResultRepository {
	return &resultRepository{
		conn: conn,
	}
}

// Save - appends a finished game to the history. Saving an id twice is an error.
func (that *resultRepository) Save(ctx context.Context, result *entity.Result) error {
	query := `INSERT INTO results (id, winner, engine_mark, moves, finished_at) VALUES (?, ?, ?, ?, ?)`

	moves, err := json.Marshal(result.Moves)
	if err != nil {
		return fmt.Errorf("can't marshal moves: %w", err)
	}

	_, err = that.conn.ExecContext(ctx, query,
		result.GameID,
		string(result.Winner),
		string(result.EngineMark),
		string(moves),
		result.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("can't save result: %w", err)
	}

	return nil
}

func (that *resultRepository) Find(ctx context.Context, gameID string) (*entity.Result, error) {
	query := `SELECT id, winner, engine_mark, moves, finished_at FROM results WHERE id = ?`

	var (
		result                    entity.Result
		winner, engineMark, moves string
		finishedAt                string
	)

	err := that.conn.QueryRowContext(ctx, query, gameID).Scan(&result.GameID, &winner, &engineMark, &moves, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find result: %w", err)
	}

	result.Winner = entity.Mark(winner)
	result.EngineMark = entity.Mark(engineMark)

	if err = json.Unmarshal([]byte(moves), &result.Moves); err != nil {
		return nil, fmt.Errorf("can't unmarshal moves: %w", err)
	}

	if result.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return nil, fmt.Errorf("can't parse finish time: %w", err)
	}

	return &result, nil
}

func (that *resultRepository) Summary(ctx context.Context) (*entity.Summary, error) {
	query := `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN winner = engine_mark THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END), 0)
	FROM results`

	var summary entity.Summary

	err := that.conn.QueryRowContext(ctx, query, string(entity.PlayerTie)).Scan(&summary.Games, &summary.EngineWins, &summary.Ties)
	if err != nil {
		return nil, fmt.Errorf("can't summarize results: %w", err)
	}

	summary.EngineLosses = summary.Games - summary.EngineWins - summary.Ties

	return &summary, nil
}
