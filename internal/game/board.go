package game

import "fmt"

const Size = 3

// Board is a 3x3 grid indexed [row][col].
type Board [Size][Size]PlayerMark

// Move is a 0-indexed (row, col) pair.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// NoMove is returned where no cell applies.
var NoMove = Move{Row: -1, Col: -1}

func (m Move) Valid() bool {
	return m.Row >= BorderMin && m.Row <= BorderMax && m.Col >= BorderMin && m.Col <= BorderMax
}

func (m Move) String() string {
	return fmt.Sprintf("(%d, %d)", m.Row, m.Col)
}

// Line is one of the eight winning triples.
type Line [Size]Move

// Lines holds rows, then columns, then the two diagonals.
var Lines = [8]Line{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// winningPatterns mirror Lines as occupancy bitmasks, bit row*3+col.
var winningPatterns = [8]uint16{
	0b000000111, 0b000111000, 0b111000000,
	0b001001001, 0b010010010, 0b100100100,
	0b100010001, 0b001010100,
}

const fullPattern uint16 = 0b111111111

// Pattern returns the occupancy bitmask of mark on the board.
func (b *Board) Pattern(mark PlayerMark) uint16 {
	var pattern uint16
	for r := range Size {
		for c := range Size {
			if b[r][c] == mark {
				pattern |= 1 << (r*Size + c)
			}
		}
	}
	return pattern
}

// HasWon reports whether mark occupies a complete line.
func HasWon(b *Board, mark PlayerMark) bool {
	pattern := b.Pattern(mark)
	for _, mask := range winningPatterns {
		if pattern&mask == mask {
			return true
		}
	}
	return false
}

// CheckWinner returns the winning mark, Draw for a full board without a winner, or None.
func CheckWinner(board Board) PlayerMark {
	if HasWon(&board, PlayerX) {
		return PlayerX
	}
	if HasWon(&board, PlayerO) {
		return PlayerO
	}
	if IsBoardFull(board) {
		return PlayerMark(Draw)
	}
	return None
}

// IsBoardFull checks if every cell holds a mark.
func IsBoardFull(board Board) bool {
	return board.Pattern(None) == 0
}

// EmptyCells lists the empty cells in row-major order.
func (b *Board) EmptyCells() []Move {
	free := fullPattern &^ (b.Pattern(PlayerX) | b.Pattern(PlayerO))
	moves := make([]Move, 0, Size*Size)
	for i := range Size * Size {
		if free&(1<<i) != 0 {
			moves = append(moves, Move{Row: i / Size, Col: i % Size})
		}
	}
	return moves
}

// Validate rejects cells holding anything other than None, X or O.
func (b *Board) Validate() error {
	for r := range Size {
		for c := range Size {
			if m := b[r][c]; m != None && !m.IsPlayer() {
				return fmt.Errorf("cell (%d, %d) holds unknown mark %q", r, c, m)
			}
		}
	}
	return nil
}

// Slice converts the board to the slice-of-slices shape used on the wire.
func (b Board) Slice() [][]PlayerMark {
	board := make([][]PlayerMark, Size)
	for i := range Size {
		board[i] = make([]PlayerMark, Size)
		copy(board[i], b[i][:])
	}
	return board
}

// BoardFromSlice converts a wire board into a Board, rejecting any shape other than 3x3.
func BoardFromSlice(rows [][]PlayerMark) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("board must have %d rows, got %d", Size, len(rows))
	}
	for r, row := range rows {
		if len(row) != Size {
			return b, fmt.Errorf("row %d must have %d cells, got %d", r, Size, len(row))
		}
		copy(b[r][:], row)
	}
	if err := b.Validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}
