package game

// Redis hash fields of a stored game.
const (
	FieldBoard    = "board"
	FieldPlayerX  = "player_x"
	FieldPlayerO  = "player_o"
	FieldNextTurn = "next_turn"
	FieldWinner   = "winner"
	FieldStatus   = "status"
)

const (
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

// GameStateDTO is a snapshot of a stored game.
type GameStateDTO struct {
	Board       Board
	CurrentTurn PlayerMark
	Winner      PlayerMark
	IsDraw      bool
	PlayerXID   string
	PlayerOID   string
}

// MarkOf returns the mark played by playerID, or None if the player is not in the game.
func (s *GameStateDTO) MarkOf(playerID string) PlayerMark {
	switch playerID {
	case s.PlayerXID:
		return PlayerX
	case s.PlayerOID:
		return PlayerO
	default:
		return None
	}
}

// IsOver reports whether the game has been won or drawn.
func (s *GameStateDTO) IsOver() bool {
	return s.IsDraw || s.Winner != None
}

// Apply plays mark at (row, col) following the turn order.
func (s *GameStateDTO) Apply(mark PlayerMark, row, col int) error {
	if s.IsOver() {
		return ErrGameOver
	}
	if mark != s.CurrentTurn {
		return ErrNotYourTurn
	}
	g := Game{Board: s.Board, CurrentTurn: s.CurrentTurn}
	if err := g.Move(row, col); err != nil {
		return err
	}

	s.Board = g.Board
	s.CurrentTurn = g.CurrentTurn
	s.Winner = None
	s.IsDraw = false
	switch g.Winner {
	case PlayerMark(Draw):
		s.IsDraw = true
	default:
		s.Winner = g.Winner
	}
	return nil
}
