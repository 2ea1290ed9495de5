package bot

import (
	"context"
	"ctchen222/tictactoe-bot/internal/game"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

// DefaultDepth is the number of plies searched below the current position.
const DefaultDepth = 2

// Algorithm selects the search strategy of an Engine.
type Algorithm string

const (
	Minimax   Algorithm = "minimax"
	AlphaBeta Algorithm = "alphabeta"
)

var (
	ErrInvalidSide      = errors.New("engine side must be X or O")
	ErrInvalidDepth     = errors.New("search depth must be at least 1")
	ErrInvalidState     = errors.New("no move to search: game is already decided or the board is full")
	ErrInvalidBoard     = errors.New("invalid board")
	ErrUnknownAlgorithm = errors.New("unknown search algorithm")
)

var (
	tracer      = otel.Tracer("bot")
	searchNodes metric.Int64Counter
)

func init() {
	var err error
	searchNodes, err = otel.Meter("bot").Int64Counter("bot.search.nodes",
		metric.WithDescription("Positions visited by the move search"),
	)
	if err != nil {
		otel.Handle(err)
		searchNodes = noop.Int64Counter{}
	}
}

// ParseAlgorithm maps a configuration or request value to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case Minimax:
		return Minimax, nil
	case AlphaBeta, "":
		return AlphaBeta, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

// MoveSelector picks the move to play on a board for the side it is bound to.
type MoveSelector interface {
	SelectMove(ctx context.Context, board game.Board) (game.Move, error)
}

// Result is the outcome of a single search.
type Result struct {
	Move  game.Move
	Score int
	Nodes int
}

// Engine is a fixed-depth minimax searcher bound to one side. It keeps no
// state between searches and may be shared across goroutines.
type Engine struct {
	algorithm Algorithm
	mySide    game.PlayerMark
	oppSide   game.PlayerMark
	depth     int
}

type Option func(*Engine)

// WithDepth overrides DefaultDepth.
func WithDepth(depth int) Option {
	return func(e *Engine) {
		e.depth = depth
	}
}

// NewEngine creates an engine that selects moves for side.
func NewEngine(side game.PlayerMark, algorithm Algorithm, opts ...Option) (*Engine, error) {
	if !side.IsPlayer() {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidSide, side)
	}
	if algorithm != Minimax && algorithm != AlphaBeta {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}

	e := &Engine{
		algorithm: algorithm,
		mySide:    side,
		oppSide:   game.Opponent(side),
		depth:     DefaultDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.depth < 1 {
		return nil, ErrInvalidDepth
	}
	return e, nil
}

// NewMinimax creates an engine running the plain exhaustive search.
func NewMinimax(side game.PlayerMark, opts ...Option) (*Engine, error) {
	return NewEngine(side, Minimax, opts...)
}

// NewAlphaBeta creates an engine running the pruned search.
func NewAlphaBeta(side game.PlayerMark, opts ...Option) (*Engine, error) {
	return NewEngine(side, AlphaBeta, opts...)
}

func (e *Engine) Algorithm() Algorithm {
	return e.algorithm
}

func (e *Engine) Side() game.PlayerMark {
	return e.mySide
}

// SelectMove returns the move to play on board.
func (e *Engine) SelectMove(ctx context.Context, board game.Board) (game.Move, error) {
	res, err := e.Search(ctx, board)
	if err != nil {
		return game.NoMove, err
	}
	return res.Move, nil
}

// Search runs the configured algorithm from board with the engine's side to
// move. The caller's board is never modified.
func (e *Engine) Search(ctx context.Context, board game.Board) (Result, error) {
	ctx, span := tracer.Start(ctx, "bot.Search", trace.WithAttributes(
		attribute.String("bot.algorithm", string(e.algorithm)),
		attribute.String("bot.side", string(e.mySide)),
		attribute.Int("bot.depth", e.depth),
	))
	defer span.End()

	if err := board.Validate(); err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidBoard, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid board")
		return Result{}, err
	}

	s := newSearch(board, e.mySide, e.oppSide)
	if len(s.generateMoves()) == 0 {
		span.RecordError(ErrInvalidState)
		span.SetStatus(codes.Error, "Search on finished game")
		return Result{}, ErrInvalidState
	}

	var (
		score int
		move  game.Move
	)
	switch e.algorithm {
	case AlphaBeta:
		score, move = s.alphaBeta(e.depth, e.mySide, math.MinInt, math.MaxInt)
	default:
		score, move = s.minimax(e.depth, e.mySide)
	}
	if move == game.NoMove {
		panic(fmt.Sprintf("bot: %s search found no move on a live board %v", e.algorithm, board))
	}

	searchNodes.Add(ctx, int64(s.nodes), metric.WithAttributes(
		attribute.String("bot.algorithm", string(e.algorithm)),
	))
	span.SetAttributes(
		attribute.Int("bot.nodes", s.nodes),
		attribute.Int("bot.score", score),
		attribute.Int("move.row", move.Row),
		attribute.Int("move.col", move.Col),
	)
	slog.DebugContext(ctx, "search finished",
		"bot.algorithm", e.algorithm,
		"bot.side", e.mySide,
		"move.row", move.Row,
		"move.col", move.Col,
		"bot.score", score,
		"bot.nodes", s.nodes,
	)

	return Result{Move: move, Score: score, Nodes: s.nodes}, nil
}
