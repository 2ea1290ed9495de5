package game

import (
	"errors"
)

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string
type GameResult string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Game results
	Draw GameResult = "Draw"

	// Board boundaries
	BorderMin = 0
	BorderMax = 2
)

var (
	ErrGameOver     = errors.New("game already finished")
	ErrOutOfRange   = errors.New("invalid move")
	ErrCellOccupied = errors.New("cell already occupied")
	ErrNotPlayer    = errors.New("mark is not a player")
	ErrNotYourTurn  = errors.New("not player's turn")
)

// IsPlayer reports whether m is one of the two sides.
func (m PlayerMark) IsPlayer() bool {
	return m == PlayerX || m == PlayerO
}

// Opponent returns the other side. It returns None for anything that is not a side.
func Opponent(mark PlayerMark) PlayerMark {
	switch mark {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return None
	}
}

type Game struct {
	Board       Board
	CurrentTurn PlayerMark
	Winner      PlayerMark
}

// NewGame starts an empty game where first moves first.
func NewGame(first PlayerMark) (*Game, error) {
	if !first.IsPlayer() {
		return nil, ErrNotPlayer
	}
	return &Game{
		CurrentTurn: first,
		Winner:      None,
	}, nil
}

func (g *Game) Move(row, col int) error {
	if g.IsOver() {
		return ErrGameOver
	}
	m := Move{Row: row, Col: col}
	if !m.Valid() {
		return ErrOutOfRange
	}
	if g.Board[row][col] != None {
		return ErrCellOccupied
	}

	g.Board[row][col] = g.CurrentTurn
	g.CurrentTurn = Opponent(g.CurrentTurn)
	g.Winner = CheckWinner(g.Board)
	return nil
}

// IsOver reports whether the game has a winner or ended in a draw.
func (g *Game) IsOver() bool {
	return g.Winner != None
}

// IsDraw checks if the game is a draw.
func (g *Game) IsDraw() bool {
	return g.Winner == PlayerMark(Draw)
}
