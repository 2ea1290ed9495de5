package bot

import (
	"ctchen222/tictactoe-bot/internal/game"
	"fmt"
)

// evaluate scores the working board from mySide's point of view as the sum
// of all eight lines.
func (s *search) evaluate() int {
	score := 0
	for _, line := range game.Lines {
		score += s.evaluateLine(line)
	}
	return score
}

// evaluateLine returns 0 for a line holding both sides or no mark, and
// +-1, +-10, +-100 for one, two or three marks of a single side.
func (s *search) evaluateLine(line game.Line) int {
	score := 0
	for _, cell := range line {
		var sign int
		switch s.cells[cell.Row][cell.Col] {
		case s.mySide:
			sign = 1
		case s.oppSide:
			sign = -1
		default:
			continue
		}

		switch {
		case score == 0:
			score = sign
		case (score > 0) == (sign > 0):
			score *= 10
		default:
			return 0
		}
	}
	return score
}

// Evaluate returns the static score of board from side's point of view, the
// value the search assigns to a leaf.
func Evaluate(board game.Board, side game.PlayerMark) (int, error) {
	if !side.IsPlayer() {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidSide, side)
	}
	if err := board.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}
	return newSearch(board, side, game.Opponent(side)).evaluate(), nil
}
