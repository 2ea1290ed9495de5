package room

import (
	"context"
	"ctchen222/tictactoe-bot/internal/bot"
	"ctchen222/tictactoe-bot/internal/game"
	"ctchen222/tictactoe-bot/internal/player"
	"ctchen222/tictactoe-bot/internal/repository"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	heartbeatInterval = 10 * time.Second
)

var tracer = otel.Tracer("room")

// MoveCalculator defines an interface for an agent that can calculate a game move.
type MoveCalculator interface {
	CalculateNextMove(ctx context.Context, board game.Board, mark game.PlayerMark, difficulty bot.Difficulty) (game.Move, error)
}

// Room represents a game between a human player and the bot.
type Room struct {
	ID             string
	gameRepo       repository.GameRepository
	Players        []*player.Player
	mu             sync.Mutex
	incomingMoves  chan *player.Message
	moveCalculator MoveCalculator
	moveTimeout    time.Duration
	Done           chan struct{}
	closeOnce      sync.Once
	stopped        chan struct{}
}

// NewRoom creates a new game room. A zero timeout disables proxy moves for idle players.
func NewRoom(id string, gameRepo repository.GameRepository, calculator MoveCalculator, timeout time.Duration) *Room {
	return &Room{
		ID:             id,
		gameRepo:       gameRepo,
		Players:        make([]*player.Player, 0, 2),
		incomingMoves:  make(chan *player.Message, 10),
		moveCalculator: calculator,
		moveTimeout:    timeout,
		Done:           make(chan struct{}),
		stopped:        make(chan struct{}),
	}
}

// Start stores a fresh game for the two players, tells each one its mark and
// the initial board, then launches the read pumps and the game loop.
func (r *Room) Start(ctx context.Context, playerX, playerO *player.Player) error {
	ctx, span := tracer.Start(ctx, "room.Start", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("player.x", playerX.ID),
		attribute.String("player.o", playerO.ID),
	))
	defer span.End()

	r.AddPlayer(playerX)
	r.AddPlayer(playerO)

	if err := r.gameRepo.Create(ctx, r.ID, playerX.ID, playerO.ID); err != nil {
		close(r.stopped)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create game")
		return fmt.Errorf("failed to create game for room %s: %w", r.ID, err)
	}
	gameState, err := r.gameRepo.FindByID(ctx, r.ID)
	if err != nil {
		close(r.stopped)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not find game state")
		return fmt.Errorf("failed to load game for room %s: %w", r.ID, err)
	}

	r.sendAssignments(ctx, gameState)
	r.broadcastState(ctx, gameState, nil)

	for _, p := range r.Players {
		if !p.IsBot {
			go r.ReadPump(p)
		}
	}
	go r.run()

	slog.InfoContext(ctx, "Room started", "room.id", r.ID, "player.x", playerX.ID, "player.o", playerO.ID)
	return nil
}

// Close stops the game loop. It is safe to call more than once.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.Done)
	})
}

// Stopped is closed once the game loop has exited and the room released its resources.
func (r *Room) Stopped() <-chan struct{} {
	return r.stopped
}

// run is the main game loop for the room.
func (r *Room) run() {
	ctx := context.Background()
	moveTimer := time.NewTimer(time.Hour)
	moveTimer.Stop()
	pingTicker := time.NewTicker(heartbeatInterval)

	defer func() {
		moveTimer.Stop()
		pingTicker.Stop()
		r.shutdown(ctx)
		close(r.stopped)
	}()

	lastTurn := -1
	for {
		gameState, err := r.gameRepo.FindByID(ctx, r.ID)
		if err != nil {
			slog.ErrorContext(ctx, "run loop cannot get game state, closing room", "room.id", r.ID, "error", err)
			r.Close()
			return
		}

		currentPlayer := r.playerWithMark(gameState, gameState.CurrentTurn)
		isHumanTurn := currentPlayer != nil && !currentPlayer.IsBot && !gameState.IsOver()

		// Only a new turn restarts the clock, so pings do not extend it.
		turn := len(gameState.Board.EmptyCells())
		if !isHumanTurn || r.moveTimeout <= 0 {
			moveTimer.Stop()
			lastTurn = -1
		} else if turn != lastTurn {
			moveTimer.Reset(r.moveTimeout)
			lastTurn = turn
		}

		select {
		case <-r.Done:
			slog.InfoContext(ctx, "Room run goroutine stopping.", "room.id", r.ID)
			return

		case move := <-r.incomingMoves:
			r.HandleMessage(ctx, move.Player, move.Data)

		case <-moveTimer.C:
			lastTurn = -1
			if !isHumanTurn {
				continue
			}
			slog.InfoContext(ctx, "Player timed out", "player.id", currentPlayer.ID, "room.id", r.ID)
			r.proxyMove(ctx, currentPlayer, gameState)

		case <-pingTicker.C:
			for _, p := range r.Players {
				if p.IsBot {
					continue
				}
				if err := p.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					slog.WarnContext(ctx, "Failed to send ping to player, assuming disconnect", "player.id", p.ID, "error", err)
				}
			}
		}
	}
}

// proxyMove plays a medium-strength move on behalf of an idle player.
func (r *Room) proxyMove(ctx context.Context, p *player.Player, gameState *game.GameStateDTO) {
	move, err := r.moveCalculator.CalculateNextMove(ctx, gameState.Board, gameState.CurrentTurn, bot.Medium)
	if err != nil {
		slog.ErrorContext(ctx, "Could not calculate proxy move", "player.id", p.ID, "room.id", r.ID, "error", err)
		return
	}

	slog.InfoContext(ctx, "Proxy move for player", "player.id", p.ID, "row", move.Row, "col", move.Col)
	moveBytes, _ := json.Marshal(moveMessage(move))
	r.HandleMessage(ctx, p, moveBytes)
}

func (r *Room) playerWithMark(gameState *game.GameStateDTO, mark game.PlayerMark) *player.Player {
	for _, p := range r.Players {
		if gameState.MarkOf(p.ID) == mark {
			return p
		}
	}
	return nil
}

// shutdown removes the stored game and closes every connection.
func (r *Room) shutdown(ctx context.Context) {
	if err := r.gameRepo.Delete(ctx, r.ID); err != nil {
		slog.WarnContext(ctx, "Failed to delete game for closed room", "room.id", r.ID, "error", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.Players {
		p.Conn.Close()
	}
}
