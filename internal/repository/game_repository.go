package repository

import (
	"context"
	"ctchen222/tictactoe-bot/internal/game"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("repository.game")

// ErrGameNotFound is returned when no game is stored under an id.
var ErrGameNotFound = errors.New("game not found")

// gameTTL bounds how long an abandoned game stays in Redis.
const gameTTL = 24 * time.Hour

//go:generate mockgen -source=game_repository.go -destination=mocks/mock_game_repository.go -package=mocks

// GameRepository defines the interface for game data operations.
type GameRepository interface {
	Create(ctx context.Context, roomID, playerXID, playerOID string) error
	FindByID(ctx context.Context, id string) (*game.GameStateDTO, error)
	Update(ctx context.Context, id string, mark game.PlayerMark, row, col int) (*game.GameStateDTO, error)
	Delete(ctx context.Context, id string) error
}

type redisGameRepository struct {
	rdb *redis.Client
}

// NewGameRepository creates a new Redis-based GameRepository.
func NewGameRepository(rdb *redis.Client) GameRepository {
	return &redisGameRepository{rdb: rdb}
}

func roomKey(id string) string {
	return fmt.Sprintf("room:%s", id)
}

// Create initializes a new game state in Redis. X always moves first.
func (r *redisGameRepository) Create(ctx context.Context, roomID, playerXID, playerOID string) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Create")
	defer span.End()

	boardJSON, err := json.Marshal(game.Board{})
	if err != nil {
		return fmt.Errorf("failed to marshal initial board: %w", err)
	}

	key := roomKey(roomID)
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		game.FieldBoard, boardJSON,
		game.FieldPlayerX, playerXID,
		game.FieldPlayerO, playerOID,
		game.FieldNextTurn, string(game.PlayerX),
		game.FieldWinner, "",
		game.FieldStatus, game.StatusInProgress,
	)
	pipe.Expire(ctx, key, gameTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create game in redis: %w", err)
	}
	return nil
}

// FindByID retrieves the current game state from Redis.
func (r *redisGameRepository) FindByID(ctx context.Context, id string) (*game.GameStateDTO, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.FindByID")
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, roomKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get game state from redis: %w", err)
	}
	return decodeState(data)
}

func decodeState(data map[string]string) (*game.GameStateDTO, error) {
	if len(data) == 0 {
		return nil, ErrGameNotFound
	}

	var board game.Board
	if err := json.Unmarshal([]byte(data[game.FieldBoard]), &board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}

	winner := game.PlayerMark(data[game.FieldWinner])
	return &game.GameStateDTO{
		Board:       board,
		CurrentTurn: game.PlayerMark(data[game.FieldNextTurn]),
		Winner:      winner,
		IsDraw:      game.IsBoardFull(board) && winner == game.None,
		PlayerXID:   data[game.FieldPlayerX],
		PlayerOID:   data[game.FieldPlayerO],
	}, nil
}

// Update applies a player's move to the game state in Redis.
func (r *redisGameRepository) Update(ctx context.Context, id string, mark game.PlayerMark, row, col int) (*game.GameStateDTO, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.Update")
	defer span.End()

	key := roomKey(id)
	var state *game.GameStateDTO

	txf := func(tx *redis.Tx) error {
		data, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		state, err = decodeState(data)
		if err != nil {
			return err
		}
		if err := state.Apply(mark, row, col); err != nil {
			return err
		}

		newBoardJSON, err := json.Marshal(state.Board)
		if err != nil {
			return fmt.Errorf("failed to marshal updated board: %w", err)
		}
		status := game.StatusInProgress
		if state.IsOver() {
			status = game.StatusFinished
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				game.FieldBoard, newBoardJSON,
				game.FieldNextTurn, string(state.CurrentTurn),
				game.FieldWinner, string(state.Winner),
				game.FieldStatus, status,
			)
			return nil
		})
		return err
	}

	if err := r.rdb.Watch(ctx, txf, key); err != nil {
		return nil, err
	}
	return state, nil
}

// Delete removes a game from Redis.
func (r *redisGameRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Delete")
	defer span.End()

	return r.rdb.Del(ctx, roomKey(id)).Err()
}
