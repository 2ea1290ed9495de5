package service

import (
	"context"
	"ctchen222/tictactoe-bot/internal/api/models"
	"ctchen222/tictactoe-bot/internal/bot"
	"ctchen222/tictactoe-bot/internal/game"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("api.service")

// MoveService defines the stateless bot queries served over HTTP.
type MoveService interface {
	NextMove(ctx context.Context, req *models.MoveRequest) (*models.MoveResponse, error)
	Evaluate(ctx context.Context, req *models.EvaluateRequest) (*models.EvaluateResponse, error)
}

type moveService struct {
	algorithm bot.Algorithm
	depth     int
}

// NewMoveService creates a MoveService whose searches default to algorithm and depth.
func NewMoveService(algorithm bot.Algorithm, depth int) MoveService {
	return &moveService{algorithm: algorithm, depth: depth}
}

// NextMove picks the move for req.Mark. Hard requests run the engine directly
// so the score and node count can be reported.
func (s *moveService) NextMove(ctx context.Context, req *models.MoveRequest) (*models.MoveResponse, error) {
	ctx, span := tracer.Start(ctx, "MoveService.NextMove", trace.WithAttributes(
		attribute.String("player.mark", string(req.Mark)),
		attribute.String("bot.difficulty", req.Difficulty),
	))
	defer span.End()

	board, err := game.BoardFromSlice(req.Board)
	if err != nil {
		err = fmt.Errorf("%w: %v", bot.ErrInvalidBoard, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid board")
		return nil, err
	}

	difficulty := bot.Difficulty(req.Difficulty)
	if difficulty == "" {
		difficulty = bot.Hard
	}
	algorithm := s.algorithm
	if req.Algorithm != "" {
		if algorithm, err = bot.ParseAlgorithm(req.Algorithm); err != nil {
			return nil, err
		}
	}
	depth := s.depth
	if req.Depth > 0 {
		depth = req.Depth
	}

	resp := &models.MoveResponse{Difficulty: string(difficulty)}
	if difficulty == bot.Easy || difficulty == bot.Medium {
		move, err := bot.NewCalculator(algorithm, depth).CalculateNextMove(ctx, board, req.Mark, difficulty)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to calculate move")
			return nil, err
		}
		resp.Row, resp.Col = move.Row, move.Col
		return resp, nil
	}

	engine, err := bot.NewEngine(req.Mark, algorithm, bot.WithDepth(depth))
	if err != nil {
		return nil, err
	}
	result, err := engine.Search(ctx, board)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Search failed")
		return nil, err
	}

	resp.Difficulty = string(bot.Hard)
	resp.Algorithm = string(algorithm)
	resp.Row, resp.Col = result.Move.Row, result.Move.Col
	resp.Score = &result.Score
	resp.Nodes = result.Nodes
	return resp, nil
}

// Evaluate scores a board statically and reports whether it is already decided.
func (s *moveService) Evaluate(ctx context.Context, req *models.EvaluateRequest) (*models.EvaluateResponse, error) {
	_, span := tracer.Start(ctx, "MoveService.Evaluate")
	defer span.End()

	board, err := game.BoardFromSlice(req.Board)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bot.ErrInvalidBoard, err)
	}
	score, err := bot.Evaluate(board, req.Mark)
	if err != nil {
		return nil, err
	}
	return &models.EvaluateResponse{Score: score, Winner: game.CheckWinner(board)}, nil
}
