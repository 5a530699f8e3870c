package entity

import "time"

// Result - a finished game as kept in the history.
type Result struct {
	GameID     string    `json:"game_id"`
	Winner     Mark      `json:"winner"`
	EngineMark Mark      `json:"engine_mark"`
	Moves      []Move    `json:"moves"`
	FinishedAt time.Time `json:"finished_at"`
}

func NewResult(game *Game) *Result {
	result := &Result{
		GameID:     game.ID,
		Winner:     game.Winner,
		Moves:      game.Moves,
		FinishedAt: time.Now().UTC(),
	}

	if engine := game.EnginePlayer(); engine != nil {
		result.EngineMark = engine.Mark
	}

	return result
}

// Summary - totals over the history, seen from the engine's side.
type Summary struct {
	Games        int `json:"games"`
	EngineWins   int `json:"engine_wins"`
	EngineLosses int `json:"engine_losses"`
	Ties         int `json:"ties"`
}
