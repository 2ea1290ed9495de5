package bot

import (
	"context"
	"ctchen222/tictactoe-bot/internal/game"
	"fmt"
	"math/rand/v2"
)

// Difficulty selects how strong the bot plays.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Calculator implements the room.MoveCalculator interface. Hard moves are
// delegated to an Engine built with the calculator's algorithm and depth.
type Calculator struct {
	algorithm Algorithm
	depth     int
}

// NewCalculator creates a calculator whose hard level searches depth plies with algorithm.
func NewCalculator(algorithm Algorithm, depth int) *Calculator {
	return &Calculator{algorithm: algorithm, depth: depth}
}

var defaultCalculator = NewCalculator(AlphaBeta, DefaultDepth)

// CalculateNextMove determines the next move for mark based on the specified difficulty.
// Unknown difficulties play as Hard.
func (c *Calculator) CalculateNextMove(ctx context.Context, board game.Board, mark game.PlayerMark, difficulty Difficulty) (game.Move, error) {
	if !mark.IsPlayer() {
		return game.NoMove, fmt.Errorf("%w: got %q", ErrInvalidSide, mark)
	}
	if err := board.Validate(); err != nil {
		return game.NoMove, fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}
	if game.CheckWinner(board) != game.None {
		return game.NoMove, ErrInvalidState
	}

	switch difficulty {
	case Easy:
		return easyMove(board), nil
	case Medium:
		return mediumMove(board, mark), nil
	default:
		return c.hardMove(ctx, board, mark)
	}
}

// CalculateNextMove uses the default alpha-beta calculator.
func CalculateNextMove(ctx context.Context, board game.Board, mark game.PlayerMark, difficulty Difficulty) (game.Move, error) {
	return defaultCalculator.CalculateNextMove(ctx, board, mark, difficulty)
}

// easyMove makes a completely random move.
func easyMove(board game.Board) game.Move {
	availableMoves := board.EmptyCells()
	if len(availableMoves) == 0 {
		return game.NoMove
	}
	return availableMoves[rand.IntN(len(availableMoves))]
}

// mediumMove will win if it can, block if it must, otherwise move randomly.
func mediumMove(board game.Board, mark game.PlayerMark) game.Move {
	if move, canWin := findWinningMove(board, mark); canWin {
		return move
	}
	if move, canBlock := findWinningMove(board, game.Opponent(mark)); canBlock {
		return move
	}
	return easyMove(board)
}

// hardMove runs the minimax search.
func (c *Calculator) hardMove(ctx context.Context, board game.Board, mark game.PlayerMark) (game.Move, error) {
	engine, err := NewEngine(mark, c.algorithm, WithDepth(c.depth))
	if err != nil {
		return game.NoMove, err
	}
	return engine.SelectMove(ctx, board)
}

// findWinningMove checks if a player has a potential winning move (two in a row with an empty third).
func findWinningMove(board game.Board, mark game.PlayerMark) (game.Move, bool) {
	for _, line := range game.Lines {
		owned, empty := 0, game.NoMove
		for _, cell := range line {
			switch board[cell.Row][cell.Col] {
			case mark:
				owned++
			case game.None:
				empty = cell
			}
		}
		if owned == 2 && empty != game.NoMove {
			return empty, true
		}
	}
	return game.NoMove, false
}
