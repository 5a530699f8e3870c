package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/engine"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/service"
)

var errRedisDown = errors.New("redis down")

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) Create(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

type mockResultRepo struct {
	mock.Mock
}

func (that *mockResultRepo) Save(ctx context.Context, result *entity.Result) error {
	args := that.Called(ctx, result)
	return args.Error(0)
}

func (that *mockResultRepo) Find(ctx context.Context, gameID string) (*entity.Result, error) {
	args := that.Called(ctx, gameID)
	result, _ := args.Get(0).(*entity.Result)
	return result, args.Error(1)
}

func (that *mockResultRepo) Summary(ctx context.Context) (*entity.Summary, error) {
	args := that.Called(ctx)
	summary, _ := args.Get(0).(*entity.Summary)
	return summary, args.Error(1)
}

func newManager(t *testing.T) (*GameManager, *mockGameRepo, *mockResultRepo) {
	t.Helper()

	gameRepo := &mockGameRepo{}
	resultRepo := &mockResultRepo{}
	t.Cleanup(func() {
		gameRepo.AssertExpectations(t)
		resultRepo.AssertExpectations(t)
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := NewGameManager(logger, gameRepo, resultRepo, service.NewBotService(), GameOptions{HumanMark: entity.PlayerO})

	return manager, gameRepo, resultRepo
}

// storedGame - an ongoing game with the human on humanMark and the board from rows.
func storedGame(t *testing.T, humanMark entity.Mark, rows ...string) *entity.Game {
	t.Helper()

	board, err := entity.ParseBoard(rows...)
	require.NoError(t, err)

	game := entity.NewGame("g1")
	game.Board = board
	game.Status = entity.StatusOngoing
	game.Turn = humanMark
	game.Players = []*entity.Player{
		{ID: "human", Mark: humanMark},
		{ID: "engine", Mark: humanMark.Opponent(), Bot: true},
	}

	return game
}

func TestGameManager_NewGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Human opens with the default mark", func(t *testing.T) {
		// Given: a manager whose default human mark is O
		manager, gameRepo, _ := newManager(t)
		gameRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		// When: a game is created without options
		game, err := manager.NewGame(ctx, GameOptions{})

		// Then: the human holds O and moves first on an empty board
		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
		assert.Equal(t, entity.StatusOngoing, game.Status)
		assert.Equal(t, entity.PlayerO, game.HumanPlayer().Mark)
		assert.Equal(t, entity.PlayerX, game.EnginePlayer().Mark)
		assert.Equal(t, entity.PlayerO, game.Turn)
		assert.Equal(t, entity.NewBoard(), game.Board)
	})

	t.Run("Engine opens when asked", func(t *testing.T) {
		// Given: a manager
		manager, gameRepo, _ := newManager(t)
		gameRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		// When: a game is created with the engine first
		game, err := manager.NewGame(ctx, GameOptions{HumanMark: entity.PlayerO, EngineFirst: true})

		// Then: the engine already played the first cell in scan order
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, game.Board.At(0, 0))
		assert.Equal(t, []entity.Move{{Row: 0, Col: 0}}, game.Moves)
		assert.Equal(t, entity.PlayerO, game.Turn)
	})

	t.Run("Rejects an invalid mark", func(t *testing.T) {
		manager, _, _ := newManager(t)

		_, err := manager.NewGame(ctx, GameOptions{HumanMark: entity.PlayerTie})

		require.ErrorIs(t, err, apperror.ErrInvalidMark)
	})

	t.Run("Storage failure is returned", func(t *testing.T) {
		manager, gameRepo, _ := newManager(t)
		gameRepo.On("Create", mock.Anything, mock.Anything).Return(errRedisDown).Once()

		_, err := manager.NewGame(ctx, GameOptions{})

		require.ErrorIs(t, err, errRedisDown)
	})

	t.Run("Taken id is not overwritten", func(t *testing.T) {
		// Given: a repository that already holds the generated id
		manager, gameRepo, _ := newManager(t)
		gameRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrGameExists).Once()

		// When: a game is created
		game, err := manager.NewGame(ctx, GameOptions{})

		// Then: the collision is reported and no update is attempted
		require.ErrorIs(t, err, repository.ErrGameExists)
		assert.Nil(t, game)
		gameRepo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Every game gets its own id", func(t *testing.T) {
		manager, gameRepo, _ := newManager(t)
		gameRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()

		first, err := manager.NewGame(ctx, GameOptions{})
		require.NoError(t, err)
		second, err := manager.NewGame(ctx, GameOptions{})
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestGameManager_MakeTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Engine replies to the human move", func(t *testing.T) {
		// Given: an empty game where the human plays X
		manager, gameRepo, _ := newManager(t)
		game := storedGame(t, entity.PlayerX, "---", "---", "---")
		gameRepo.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
		gameRepo.On("CreateOrUpdate", mock.Anything, game).Return(nil).Once()

		// When: the human takes the centre
		updated, err := manager.MakeTurn(ctx, "g1", entity.Move{Row: 1, Col: 1})

		// Then: the engine answers in the corner and it is the human's turn again
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, updated.Board.At(1, 1))
		assert.Equal(t, entity.PlayerO, updated.Board.At(0, 0))
		assert.Equal(t, entity.PlayerX, updated.Turn)
		assert.Len(t, updated.Moves, 2)
	})

	t.Run("Human win is moved to the history", func(t *testing.T) {
		// Given: a game where the human (X) can complete the top row
		manager, gameRepo, resultRepo := newManager(t)
		game := storedGame(t, entity.PlayerX, "XX-", "OO-", "---")
		gameRepo.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
		gameRepo.On("DeleteByID", mock.Anything, "g1").Return(nil).Once()
		resultRepo.On("Save", mock.Anything, mock.MatchedBy(func(result *entity.Result) bool {
			return result.GameID == "g1" && result.Winner == entity.PlayerX && result.EngineMark == entity.PlayerO
		})).Return(nil).Once()

		// When: the human completes the row
		updated, err := manager.MakeTurn(ctx, "g1", entity.Move{Row: 0, Col: 2})

		// Then: the game is finished and the engine did not move
		require.NoError(t, err)
		assert.True(t, updated.IsFinished())
		assert.Equal(t, entity.PlayerX, updated.Winner)
		assert.Len(t, updated.Moves, 1)
	})

	t.Run("Engine reply can finish the game", func(t *testing.T) {
		// Given: a game where the engine (O) holds half the middle row
		manager, gameRepo, resultRepo := newManager(t)
		game := storedGame(t, entity.PlayerX, "---", "OO-", "X-X")
		gameRepo.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
		gameRepo.On("DeleteByID", mock.Anything, "g1").Return(nil).Once()
		resultRepo.On("Save", mock.Anything, mock.AnythingOfType("*entity.Result")).Return(nil).Once()

		// When: the human neither wins nor blocks
		updated, err := manager.MakeTurn(ctx, "g1", entity.Move{Row: 0, Col: 0})

		// Then: the engine completes the middle row
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, updated.Board.At(1, 2))
		assert.Equal(t, entity.PlayerO, updated.Winner)
		assert.True(t, updated.IsFinished())
	})

	t.Run("Delete failures do not fail the turn", func(t *testing.T) {
		manager, gameRepo, resultRepo := newManager(t)
		game := storedGame(t, entity.PlayerX, "XX-", "OO-", "---")
		gameRepo.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
		gameRepo.On("DeleteByID", mock.Anything, "g1").Return(errRedisDown).Once()
		resultRepo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

		updated, err := manager.MakeTurn(ctx, "g1", entity.Move{Row: 0, Col: 2})

		require.NoError(t, err)
		assert.True(t, updated.IsFinished())
	})

	t.Run("Finished game stays live when the history save fails", func(t *testing.T) {
		// Given: a history store that rejects the result
		manager, gameRepo, resultRepo := newManager(t)
		game := storedGame(t, entity.PlayerX, "XX-", "OO-", "---")
		gameRepo.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
		resultRepo.On("Save", mock.Anything, mock.Anything).Return(errRedisDown).Once()
		gameRepo.On("CreateOrUpdate", mock.Anything, mock.MatchedBy(func(stored *entity.Game) bool {
			return stored.ID == "g1" && stored.IsFinished() && stored.Winner == entity.PlayerX
		})).Return(nil).Once()

		// When: the human wins
		updated, err := manager.MakeTurn(ctx, "g1", entity.Move{Row: 0, Col: 2})

		// Then: the turn succeeds, the finished game is written back and never deleted
		require.NoError(t, err)
		assert.True(t, updated.IsFinished())
		gameRepo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
	})

	t.Run("Occupied cell is rejected", func(t *testing.T) {
		// Given: a game with the centre taken
		manager, gameRepo, _ := newManager(t)
		game := storedGame(t, entity.PlayerX, "---", "-O-", "X--")
		gameRepo.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()

		// When: the human plays the centre
		_, err := manager.MakeTurn(ctx, "g1", entity.Move{Row: 1, Col: 1})

		// Then: ErrCellOccupied is returned and nothing is stored
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Finished game reports ErrGameFinished", func(t *testing.T) {
		// Given: a game that is only in the history
		manager, gameRepo, resultRepo := newManager(t)
		gameRepo.On("GetByID", mock.Anything, "g1").Return(&entity.Game{}, repository.ErrGameNotFound).Once()
		resultRepo.On("Find", mock.Anything, "g1").Return(&entity.Result{GameID: "g1"}, nil).Once()

		// When: the human tries to move
		_, err := manager.MakeTurn(ctx, "g1", entity.Move{Row: 0, Col: 0})

		// Then: ErrGameFinished is returned
		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Unknown game reports ErrGameNotFound", func(t *testing.T) {
		manager, gameRepo, resultRepo := newManager(t)
		gameRepo.On("GetByID", mock.Anything, "nope").Return(&entity.Game{}, repository.ErrGameNotFound).Once()
		resultRepo.On("Find", mock.Anything, "nope").Return(nil, repository.ErrResultNotFound).Once()

		_, err := manager.MakeTurn(ctx, "nope", entity.Move{Row: 0, Col: 0})

		require.ErrorIs(t, err, repository.ErrGameNotFound)
	})

	t.Run("History failure is not reported as an unknown game", func(t *testing.T) {
		// Given: a game missing from live storage and a failing history store
		manager, gameRepo, resultRepo := newManager(t)
		gameRepo.On("GetByID", mock.Anything, "g1").Return(&entity.Game{}, repository.ErrGameNotFound).Once()
		resultRepo.On("Find", mock.Anything, "g1").Return(nil, errRedisDown).Once()

		// When: the human tries to move
		_, err := manager.MakeTurn(ctx, "g1", entity.Move{Row: 0, Col: 0})

		// Then: the storage error surfaces instead of ErrGameNotFound
		require.ErrorIs(t, err, errRedisDown)
		assert.NotErrorIs(t, err, repository.ErrGameNotFound)
	})

	t.Run("Storage failure is returned", func(t *testing.T) {
		manager, gameRepo, _ := newManager(t)
		gameRepo.On("GetByID", mock.Anything, "g1").Return(nil, errRedisDown).Once()

		_, err := manager.MakeTurn(ctx, "g1", entity.Move{Row: 0, Col: 0})

		require.ErrorIs(t, err, errRedisDown)
	})
}

func TestGameManager_BestMove(t *testing.T) {
	manager, _, _ := newManager(t)

	t.Run("Immediate win first in scan order", func(t *testing.T) {
		board, err := entity.ParseBoard("OO-", "XX-", "X--")
		require.NoError(t, err)

		decision, err := manager.BestMove(board, entity.PlayerO)

		require.NoError(t, err)
		assert.Equal(t, entity.Move{Row: 0, Col: 2}, decision.Move)
		assert.Equal(t, engine.ScoreWin, decision.Score)
	})

	t.Run("Earlier forced win beats a later immediate win", func(t *testing.T) {
		// Given: O can win at once on (1,2), and (0,2) blocks X while forking
		board, err := entity.ParseBoard("XX-", "OO-", "---")
		require.NoError(t, err)

		// When: the engine plays O
		decision, err := manager.BestMove(board, entity.PlayerO)

		// Then: both are worth a win and the first one in scan order is kept
		require.NoError(t, err)
		assert.Equal(t, entity.Move{Row: 0, Col: 2}, decision.Move)
		assert.Equal(t, engine.ScoreWin, decision.Score)
	})

	_, err := manager.BestMove(entity.Board{
		entity.PlayerX, entity.PlayerO, entity.PlayerX,
		entity.PlayerO, entity.PlayerX, entity.PlayerO,
		entity.PlayerO, entity.PlayerX, entity.PlayerO,
	}, entity.PlayerX)
	require.ErrorIs(t, err, apperror.ErrNoAvailableMoves)
}

func TestGameManager_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the history summary", func(t *testing.T) {
		manager, _, resultRepo := newManager(t)
		want := &entity.Summary{Games: 3, EngineWins: 1, Ties: 2}
		resultRepo.On("Summary", mock.Anything).Return(want, nil).Once()

		summary, err := manager.Stats(ctx)

		require.NoError(t, err)
		assert.Equal(t, want, summary)
	})

	t.Run("Wraps storage errors", func(t *testing.T) {
		manager, _, resultRepo := newManager(t)
		resultRepo.On("Summary", mock.Anything).Return(nil, errRedisDown).Once()

		_, err := manager.Stats(ctx)

		require.ErrorIs(t, err, errRedisDown)
	})
}
