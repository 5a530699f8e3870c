package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/engine"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
)

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type resultRepo interface {
	Save(ctx context.Context, result *entity.Result) error
	Find(ctx context.Context, gameID string) (*entity.Result, error)
	Summary(ctx context.Context) (*entity.Summary, error)
}

type botService interface {
	MakeTurn(game *entity.Game) (engine.Decision, error)
	Analyze(board entity.Board, mark entity.Mark) (engine.Decision, error)
}

// GameOptions - how a new game is seated. An empty HumanMark falls back to the manager defaults.
type GameOptions struct {
	HumanMark   entity.Mark `json:"human_mark,omitempty"`
	EngineFirst bool        `json:"engine_first,omitempty"`
}

type GameManager struct {
	logger *slog.Logger

	gameRepo   gameRepo
	resultRepo resultRepo
	bot        botService

	defaults GameOptions
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, resultRepo resultRepo, bot botService, defaults GameOptions) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		gameRepo:   gameRepo,
		resultRepo: resultRepo,
		bot:        bot,

		defaults: defaults,
	}
}

// NewGame - seats a human against the engine and plays the engine's opening move if it starts.
func (that *GameManager) NewGame(ctx context.Context, opts GameOptions) (*entity.Game, error) {
	log := that.logger.With("method", "NewGame")

	if opts.HumanMark == entity.EmptyCell {
		opts.HumanMark = that.defaults.HumanMark
	}

	if !opts.HumanMark.IsPlayer() {
		return nil, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, opts.HumanMark)
	}

	engineMark := opts.HumanMark.Opponent()

	gameID, err := pkg.GenerateGameID()
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	game := entity.NewGame(gameID)
	game.Status = entity.StatusOngoing
	game.Players = []*entity.Player{
		{ID: pkg.GenerateNewSessionID(), Mark: opts.HumanMark},
		{ID: pkg.GenerateNewSessionID(), Mark: engineMark, Bot: true},
	}

	game.Turn = opts.HumanMark
	if opts.EngineFirst {
		game.Turn = engineMark
	}

	if game.IsEngineTurn() {
		if err = that.engineTurn(game); err != nil {
			return nil, err
		}
	}

	if err = that.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info("game created", "game_id", game.ID, "human_mark", opts.HumanMark, "engine_first", opts.EngineFirst)

	return game, nil
}

// MakeTurn - applies the human move and the engine's reply. A game finished by this call is moved to the history.
func (that *GameManager) MakeTurn(ctx context.Context, gameID string, move entity.Move) (*entity.Game, error) {
	game, err := that.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, fmt.Errorf("failed make turn: %w", err)
	}

	human := game.HumanPlayer()
	if human == nil {
		return game, fmt.Errorf("failed make turn: %w", apperror.ErrNotYourTurn)
	}

	if err = game.MakeTurn(human.Mark, move); err != nil {
		return game, fmt.Errorf("failed make turn: %w", err)
	}

	if game.IsEngineTurn() {
		if err = that.engineTurn(game); err != nil {
			return nil, err
		}
	}

	if game.IsFinished() {
		that.finishGame(ctx, game)

		return game, nil
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// GetGame - returns a live game. Games that already ended report apperror.ErrGameFinished.
func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err == nil {
		return game, nil
	}

	if !errors.Is(err, repository.ErrGameNotFound) {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	_, findErr := that.resultRepo.Find(ctx, id)
	switch {
	case findErr == nil:
		return nil, fmt.Errorf("game %s: %w", id, apperror.ErrGameFinished)
	case errors.Is(findErr, repository.ErrResultNotFound):
		return nil, fmt.Errorf("game %s: %w", id, err)
	default:
		return nil, fmt.Errorf("failed to look up game history: %w", findErr)
	}
}

// BestMove - stateless analysis of board for mark.
func (that *GameManager) BestMove(board entity.Board, mark entity.Mark) (engine.Decision, error) {
	decision, err := that.bot.Analyze(board, mark)
	if err != nil {
		return engine.Decision{}, fmt.Errorf("failed to analyze board: %w", err)
	}

	that.logger.Debug("board analyzed",
		"board", board.String(),
		"mark", mark,
		"move", decision.Move.String(),
		"score", decision.Score.String(),
		"nodes", decision.Nodes,
	)

	return decision, nil
}

// Stats - totals over all finished games.
func (that *GameManager) Stats(ctx context.Context) (*entity.Summary, error) {
	summary, err := that.resultRepo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return summary, nil
}

func (that *GameManager) engineTurn(game *entity.Game) error {
	decision, err := that.bot.MakeTurn(game)
	if err != nil {
		return fmt.Errorf("engine failed to move: %w", err)
	}

	that.logger.Debug("engine moved",
		"game_id", game.ID,
		"move", decision.Move.String(),
		"score", decision.Score.String(),
		"nodes", decision.Nodes,
	)

	return nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

// finishGame - records the result and drops the live game. Failures are logged, the game itself is already decided.
// A game whose result could not be saved stays in live storage until it expires.
func (that *GameManager) finishGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "finishGame", "game_id", game.ID)

	if err := that.resultRepo.Save(ctx, entity.NewResult(game)); err != nil {
		log.Error("failed to save result, keeping live game", "error", err)

		if err = that.updateGame(ctx, game); err != nil {
			log.Error("failed to store finished game", "error", err)
		}

		return
	}

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil && !errors.Is(err, repository.ErrGameNotFound) {
		log.Error("failed to delete game", "error", err)
	}

	log.Info("game finished", "winner", game.Winner)
}
