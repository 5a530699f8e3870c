package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

var errBadRequestBody = errors.New("invalid request body")

type bestMoveRequest struct {
	Board entity.Board `json:"board"`
	Mark  entity.Mark  `json:"mark"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var opts usecase.GameOptions
	if err := decodeBody(r, &opts); err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.manager.NewGame(r.Context(), opts)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, game)
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.manager.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var move entity.Move
	if err := decodeBody(r, &move); err != nil {
		that.writeError(w, err)
		return
	}

	game, err := that.manager.MakeTurn(r.Context(), r.PathValue("id"), move)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) handleBestMove(w http.ResponseWriter, r *http.Request) {
	var req bestMoveRequest
	if err := decodeBody(r, &req); err != nil {
		that.writeError(w, err)
		return
	}

	if err := req.Board.Validate(); err != nil {
		that.writeError(w, err)
		return
	}

	decision, err := that.manager.BestMove(req.Board, req.Mark)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, decision)
}

func (that *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	summary, err := that.manager.Stats(r.Context())
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, summary)
}

func decodeBody(r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequestBody, err)
	}

	return nil
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor - maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequestBody),
		errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrInvalidMark),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrNoAvailableMoves):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameIsNotStarted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
