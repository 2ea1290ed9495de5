package bot

import (
	"context"
	"ctchen222/tictactoe-bot/internal/game"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	X = game.PlayerX
	O = game.PlayerO
)

// reachableBoards walks every legal game from the empty board with either side
// opening and returns the positions in which nobody has won and a cell is free.
func reachableBoards() []game.Board {
	seen := make(map[game.Board]struct{})
	var walk func(b game.Board, turn game.PlayerMark)
	walk = func(b game.Board, turn game.PlayerMark) {
		if game.CheckWinner(b) != game.None {
			return
		}
		if _, ok := seen[b]; ok {
			return
		}
		seen[b] = struct{}{}
		for _, m := range b.EmptyCells() {
			b[m.Row][m.Col] = turn
			walk(b, game.Opponent(turn))
			b[m.Row][m.Col] = game.None
		}
	}
	walk(game.Board{}, X)
	walk(game.Board{}, O)

	boards := make([]game.Board, 0, len(seen))
	for b := range seen {
		boards = append(boards, b)
	}
	return boards
}

func TestNewEngine(t *testing.T) {
	t.Run("derives opponent", func(t *testing.T) {
		e, err := NewMinimax(O)
		require.NoError(t, err)
		assert.Equal(t, O, e.mySide)
		assert.Equal(t, X, e.oppSide)
		assert.Equal(t, DefaultDepth, e.depth)
		assert.Equal(t, Minimax, e.Algorithm())
	})

	t.Run("rejects empty side", func(t *testing.T) {
		_, err := NewAlphaBeta(game.None)
		assert.ErrorIs(t, err, ErrInvalidSide)
	})

	t.Run("rejects zero depth", func(t *testing.T) {
		_, err := NewAlphaBeta(X, WithDepth(0))
		assert.ErrorIs(t, err, ErrInvalidDepth)
	})

	t.Run("rejects unknown algorithm", func(t *testing.T) {
		_, err := NewEngine(X, "negamax")
		assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	})
}

func TestParseAlgorithm(t *testing.T) {
	got, err := ParseAlgorithm("minimax")
	require.NoError(t, err)
	assert.Equal(t, Minimax, got)

	got, err = ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, AlphaBeta, got)

	_, err = ParseAlgorithm("mcts")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestEvaluateLine(t *testing.T) {
	row0 := game.Lines[0]
	tests := []struct {
		name  string
		cells [3]game.PlayerMark
		side  game.PlayerMark
		want  int
	}{
		{"two of mine, third empty", [3]game.PlayerMark{X, X, game.None}, X, 10},
		{"two of opponent's, third empty", [3]game.PlayerMark{X, X, game.None}, O, -10},
		{"mixed line is dead", [3]game.PlayerMark{X, O, game.None}, X, 0},
		{"contradiction on third cell", [3]game.PlayerMark{X, X, O}, X, 0},
		{"single mark in the middle", [3]game.PlayerMark{game.None, O, game.None}, X, -1},
		{"neutral line inherits third cell", [3]game.PlayerMark{game.None, game.None, X}, X, 1},
		{"gap between two marks", [3]game.PlayerMark{O, game.None, O}, O, 10},
		{"completed line", [3]game.PlayerMark{X, X, X}, X, 100},
		{"completed opponent line", [3]game.PlayerMark{O, O, O}, X, -100},
		{"empty line", [3]game.PlayerMark{}, X, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b game.Board
			for i, cell := range row0 {
				b[cell.Row][cell.Col] = tt.cells[i]
			}
			s := newSearch(b, tt.side, game.Opponent(tt.side))
			assert.Equal(t, tt.want, s.evaluateLine(row0))
		})
	}
}

func TestEvaluate(t *testing.T) {
	board := game.Board{
		{X, X, X},
		{game.None, O, game.None},
		{game.None, game.None, game.None},
	}
	s := newSearch(board, X, O)
	// rows 100, -1, 0; columns 1, 0, 1; diagonals 0, 0
	assert.Equal(t, 101, s.evaluate())

	s = newSearch(board, O, X)
	assert.Equal(t, -101, s.evaluate())

	score, err := Evaluate(board, O)
	require.NoError(t, err)
	assert.Equal(t, -101, score)

	_, err = Evaluate(board, game.None)
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestGenerateMoves(t *testing.T) {
	t.Run("terminal board yields no moves", func(t *testing.T) {
		board := game.Board{
			{X, X, X},
			{game.None, game.None, game.None},
			{game.None, game.None, game.None},
		}
		assert.True(t, game.HasWon(&board, X))
		assert.False(t, game.HasWon(&board, O))

		s := newSearch(board, O, X)
		assert.Empty(t, s.generateMoves())
	})

	t.Run("row-major empty cells", func(t *testing.T) {
		board := game.Board{
			{X, game.None, game.None},
			{game.None, O, game.None},
			{game.None, game.None, X},
		}
		s := newSearch(board, X, O)
		assert.Equal(t, []game.Move{{Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 1, Col: 0}, {Row: 1, Col: 2}, {Row: 2, Col: 0}, {Row: 2, Col: 1}}, s.generateMoves())
	})
}

func TestSearchRestoresWorkingBoard(t *testing.T) {
	for _, board := range reachableBoards()[:200] {
		s := newSearch(board, X, O)
		s.minimax(DefaultDepth, X)
		require.Equal(t, board, s.cells)

		s = newSearch(board, O, X)
		s.alphaBeta(DefaultDepth, O, math.MinInt, math.MaxInt)
		require.Equal(t, board, s.cells)
	}
}

func TestMinimaxNodeCount(t *testing.T) {
	e, err := NewMinimax(X)
	require.NoError(t, err)

	res, err := e.Search(context.Background(), game.Board{})
	require.NoError(t, err)
	// root + 9 replies + 9*8 leaves
	assert.Equal(t, 82, res.Nodes)
}

func TestSelectMove(t *testing.T) {
	tests := []struct {
		name  string
		board game.Board
		side  game.PlayerMark
		want  game.Move
	}{
		{
			name: "X completes the first row",
			board: game.Board{
				{X, X, game.None},
				{O, O, game.None},
				{game.None, game.None, game.None},
			},
			side: X,
			want: game.Move{Row: 0, Col: 2},
		},
		{
			name: "O completes the second column before X completes the first",
			board: game.Board{
				{X, O, game.None},
				{X, O, game.None},
				{game.None, game.None, game.None},
			},
			side: O,
			want: game.Move{Row: 2, Col: 1},
		},
		{
			name: "X blocks the first row",
			board: game.Board{
				{O, O, game.None},
				{X, game.None, game.None},
				{game.None, game.None, game.None},
			},
			side: X,
			want: game.Move{Row: 0, Col: 2},
		},
		{
			name: "X blocks the middle row",
			board: game.Board{
				{X, game.None, game.None},
				{O, O, game.None},
				{game.None, game.None, X},
			},
			side: X,
			want: game.Move{Row: 1, Col: 2},
		},
		{
			name: "last free cell",
			board: game.Board{
				{X, O, X},
				{X, O, O},
				{O, X, game.None},
			},
			side: X,
			want: game.Move{Row: 2, Col: 2},
		},
	}

	for _, algorithm := range []Algorithm{Minimax, AlphaBeta} {
		for _, tt := range tests {
			t.Run(string(algorithm)+"/"+tt.name, func(t *testing.T) {
				e, err := NewEngine(tt.side, algorithm)
				require.NoError(t, err)

				before := tt.board
				got, err := e.SelectMove(context.Background(), tt.board)
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				assert.Equal(t, before, tt.board)
			})
		}
	}
}

func TestSelectMoveInvalidState(t *testing.T) {
	tests := []struct {
		name  string
		board game.Board
	}{
		{
			name: "already won",
			board: game.Board{
				{X, X, X},
				{O, O, game.None},
				{game.None, game.None, game.None},
			},
		},
		{
			name: "full board",
			board: game.Board{
				{X, O, X},
				{X, O, O},
				{O, X, X},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, algorithm := range []Algorithm{Minimax, AlphaBeta} {
				e, err := NewEngine(O, algorithm)
				require.NoError(t, err)

				move, err := e.SelectMove(context.Background(), tt.board)
				assert.ErrorIs(t, err, ErrInvalidState)
				assert.Equal(t, game.NoMove, move)
			}
		})
	}
}

func TestSelectMoveInvalidBoard(t *testing.T) {
	e, err := NewAlphaBeta(X)
	require.NoError(t, err)

	board := game.Board{{"Z"}}
	_, err = e.SelectMove(context.Background(), board)
	assert.ErrorIs(t, err, ErrInvalidBoard)
}

func TestSelectMoveIsDeterministicAndLegal(t *testing.T) {
	ctx := context.Background()
	for _, algorithm := range []Algorithm{Minimax, AlphaBeta} {
		e, err := NewEngine(X, algorithm)
		require.NoError(t, err)

		for _, board := range reachableBoards()[:500] {
			first, err := e.SelectMove(ctx, board)
			require.NoError(t, err)
			require.True(t, first.Valid())
			require.Equal(t, game.None, board[first.Row][first.Col], "move %v is not on an empty cell", first)

			for range 3 {
				again, err := e.SelectMove(ctx, board)
				require.NoError(t, err)
				require.Equal(t, first, again)
			}
		}
	}
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	ctx := context.Background()
	boards := reachableBoards()
	require.NotEmpty(t, boards)

	depths := []int{1, 2, 3}
	if testing.Short() {
		depths = []int{DefaultDepth}
	}

	for _, depth := range depths {
		for _, side := range []game.PlayerMark{X, O} {
			plain, err := NewMinimax(side, WithDepth(depth))
			require.NoError(t, err)
			pruned, err := NewAlphaBeta(side, WithDepth(depth))
			require.NoError(t, err)

			plainNodes, prunedNodes := 0, 0
			for _, board := range boards {
				want, err := plain.Search(ctx, board)
				require.NoError(t, err)
				got, err := pruned.Search(ctx, board)
				require.NoError(t, err)

				require.Equal(t, want.Move, got.Move, "depth %d side %s board %v", depth, side, board)
				require.Equal(t, want.Score, got.Score, "depth %d side %s board %v", depth, side, board)
				require.LessOrEqual(t, got.Nodes, want.Nodes)

				plainNodes += want.Nodes
				prunedNodes += got.Nodes
			}
			if depth > 1 {
				assert.Less(t, prunedNodes, plainNodes, "depth %d side %s", depth, side)
			}
		}
	}
}
