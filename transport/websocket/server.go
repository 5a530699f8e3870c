package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-engine/internal/engine"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

const (
	shutdownTimeout = 5 * time.Second
	sendBufferSize  = 16
)

type gameManager interface {
	NewGame(ctx context.Context, opts usecase.GameOptions) (*entity.Game, error)
	MakeTurn(ctx context.Context, gameID string, move entity.Move) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	BestMove(board entity.Board, mark entity.Mark) (engine.Decision, error)
}

type handlerFunc func(ctx context.Context, req *Payload) (*Payload, error)

type Server struct {
	logger   *slog.Logger
	manager  gameManager
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, manager gameManager) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		manager:  manager,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionNewGame] = server.handleNewGame
	server.handlers[actionGetGame] = server.handleGetGame
	server.handlers[actionTurn] = server.handleTurn
	server.handlers[actionBestMove] = server.handleBestMove

	return server
}

// Handler - returns the HTTP routes of the server.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	defer conn.Close()

	log.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until it disconnects.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMessages")

	send := make(chan []byte, sendBufferSize)
	writerDone := make(chan error, 1)

	go func() {
		writerDone <- writeWithHeartbeat(conn, send)
	}()

	defer close(send)

	for {
		_, body, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		response := that.process(ctx, body)

		select {
		case send <- response:
		case err = <-writerDone:
			return err
		case <-ctx.Done():
			log.Info("context canceled, closing connection")
			return nil
		}
	}
}

// process - runs the handler for one raw message and returns the encoded reply.
func (that *Server) process(ctx context.Context, body []byte) []byte {
	log := that.logger.With("method", "process")

	var message Message
	if err := json.Unmarshal(body, &message); err != nil {
		log.Error("failed to unmarshal message", "error", err)
		return that.errorMessage(actionError, fmt.Errorf("failed to unmarshal message: %w", err))
	}

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Error("unknown action", "action", message.Action)
		return that.errorMessage(message.Action, fmt.Errorf("%w: %q", errUnknownAction, message.Action))
	}

	req := &Payload{}
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, req); err != nil {
			return that.errorMessage(message.Action, fmt.Errorf("failed to unmarshal payload: %w", err))
		}
	}

	resp, err := handler(ctx, req)
	if err != nil {
		log.Error("error processing message", "action", message.Action, "error", err)
		return that.errorMessage(message.Action, err)
	}

	out, err := newMessage(message.Action, resp)
	if err != nil {
		return that.errorMessage(message.Action, err)
	}

	return out
}

func (that *Server) errorMessage(action string, err error) []byte {
	out, marshalErr := newMessage(action, &Payload{Error: err.Error()})
	if marshalErr != nil {
		that.logger.Error("failed to marshal error", "error", marshalErr)
		return mustMarshal(Message{Action: actionError})
	}

	return out
}
