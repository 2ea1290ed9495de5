package bot

import (
	"ctchen222/tictactoe-bot/internal/game"
	"math"
)

// search holds the working copy of the board for one Search call. Marks are
// placed and removed in place; every placement is undone before the call that
// made it returns.
type search struct {
	cells   game.Board
	mySide  game.PlayerMark
	oppSide game.PlayerMark
	nodes   int
}

func newSearch(board game.Board, mySide, oppSide game.PlayerMark) *search {
	return &search{
		cells:   board,
		mySide:  mySide,
		oppSide: oppSide,
	}
}

// generateMoves lists the empty cells in row-major order, or nothing once
// either side has completed a line.
func (s *search) generateMoves() []game.Move {
	if game.HasWon(&s.cells, s.mySide) || game.HasWon(&s.cells, s.oppSide) {
		return nil
	}
	return s.cells.EmptyCells()
}

// minimax keeps the first move reaching the extreme score; later equal scores
// never replace it.
func (s *search) minimax(depth int, side game.PlayerMark) (int, game.Move) {
	s.nodes++
	moves := s.generateMoves()
	if len(moves) == 0 || depth == 0 {
		return s.evaluate(), game.NoMove
	}

	maximizing := side == s.mySide
	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}
	bestMove := game.NoMove
	next := game.Opponent(side)

	for _, m := range moves {
		s.cells[m.Row][m.Col] = side
		score, _ := s.minimax(depth-1, next)
		s.cells[m.Row][m.Col] = game.None

		if maximizing {
			if score > best {
				best, bestMove = score, m
			}
		} else if score < best {
			best, bestMove = score, m
		}
	}
	return best, bestMove
}

// alphaBeta is minimax with fail-hard cutoffs. alpha is the score the
// maximizer is already guaranteed, beta the score the minimizer is.
func (s *search) alphaBeta(depth int, side game.PlayerMark, alpha, beta int) (int, game.Move) {
	s.nodes++
	moves := s.generateMoves()
	if len(moves) == 0 || depth == 0 {
		return s.evaluate(), game.NoMove
	}

	maximizing := side == s.mySide
	bestMove := game.NoMove
	next := game.Opponent(side)

	for _, m := range moves {
		s.cells[m.Row][m.Col] = side
		score, _ := s.alphaBeta(depth-1, next, alpha, beta)
		s.cells[m.Row][m.Col] = game.None

		if maximizing {
			if score > alpha {
				alpha, bestMove = score, m
			}
		} else if score < beta {
			beta, bestMove = score, m
		}
		if alpha >= beta {
			break
		}
	}

	if maximizing {
		return alpha, bestMove
	}
	return beta, bestMove
}
