package repository

import (
	"context"
	"ctchen222/tictactoe-bot/internal/game"
	"sync"
)

type memoryGameRepository struct {
	mu    sync.Mutex
	games map[string]game.GameStateDTO
}

// NewMemoryGameRepository creates a GameRepository that keeps games in process memory.
func NewMemoryGameRepository() GameRepository {
	return &memoryGameRepository{games: make(map[string]game.GameStateDTO)}
}

func (r *memoryGameRepository) Create(ctx context.Context, roomID, playerXID, playerOID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.games[roomID] = game.GameStateDTO{
		CurrentTurn: game.PlayerX,
		PlayerXID:   playerXID,
		PlayerOID:   playerOID,
	}
	return nil
}

func (r *memoryGameRepository) FindByID(ctx context.Context, id string) (*game.GameStateDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return &state, nil
}

func (r *memoryGameRepository) Update(ctx context.Context, id string, mark game.PlayerMark, row, col int) (*game.GameStateDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	if err := state.Apply(mark, row, col); err != nil {
		return nil, err
	}
	r.games[id] = state
	return &state, nil
}

func (r *memoryGameRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.games, id)
	return nil
}
