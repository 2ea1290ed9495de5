package room

import (
	"context"
	"ctchen222/tictactoe-bot/internal/game"
	"ctchen222/tictactoe-bot/internal/player"
	"ctchen222/tictactoe-bot/internal/validator"
	"ctchen222/tictactoe-bot/pkg/proto"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandleMessage handles a message from a player. It acts as a dispatcher.
func (r *Room) HandleMessage(ctx context.Context, p *player.Player, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.ErrorContext(ctx, "error unmarshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		r.sendError(ctx, p, "malformed message")
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from player", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		r.sendError(ctx, p, "invalid message")
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeMove:
		r.handleMove(ctx, p, &message)
	case proto.TypeRematch:
		r.handleRematch(ctx, p)
	}
}

// handleMove processes a player's move.
func (r *Room) handleMove(ctx context.Context, p *player.Player, message *proto.ClientToServerMessage) {
	ctx, moveSpan := tracer.Start(ctx, "room.handleMove", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer moveSpan.End()

	if len(message.Position) != 2 {
		moveSpan.SetStatus(codes.Error, "Move without position")
		r.sendError(ctx, p, "move requires a [row, col] position")
		return
	}
	move := game.Move{Row: message.Position[0], Col: message.Position[1]}
	moveSpan.SetAttributes(attribute.Int("move.row", move.Row), attribute.Int("move.col", move.Col))

	gameState, err := r.gameRepo.FindByID(ctx, r.ID)
	if err != nil {
		slog.ErrorContext(ctx, "handleMove could not find game state for room", "room.id", r.ID, "error", err)
		moveSpan.RecordError(err)
		moveSpan.SetStatus(codes.Error, "Could not find game state")
		return
	}

	playerMark := gameState.MarkOf(p.ID)
	if playerMark == game.None {
		slog.WarnContext(ctx, "player is not part of room", "player.id", p.ID, "room.id", r.ID)
		moveSpan.SetStatus(codes.Error, "Player not part of room")
		return
	}

	gameState, err = r.gameRepo.Update(ctx, r.ID, playerMark, move.Row, move.Col)
	if err != nil {
		slog.WarnContext(ctx, "invalid move from player", "player.id", p.ID, "error", err)
		moveSpan.SetAttributes(attribute.Bool("move.valid", false))
		moveSpan.RecordError(err)
		moveSpan.SetStatus(codes.Error, "Invalid move")
		r.sendError(ctx, p, err.Error())
		return
	}
	moveSpan.SetAttributes(attribute.Bool("move.valid", true))

	r.broadcastState(ctx, gameState, &move)
	if gameState.IsOver() {
		slog.InfoContext(ctx, "Game finished", "room.id", r.ID, "winner", gameState.Winner, "draw", gameState.IsDraw)
	}
}

// handleRematch resets a finished game. The bot always accepts, and the
// players swap marks so the other side opens.
func (r *Room) handleRematch(ctx context.Context, p *player.Player) {
	ctx, span := tracer.Start(ctx, "room.handleRematch", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	gameState, err := r.gameRepo.FindByID(ctx, r.ID)
	if err != nil {
		slog.ErrorContext(ctx, "could not get game state for rematch", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not get game state for rematch")
		return
	}

	if !gameState.IsOver() {
		slog.WarnContext(ctx, "Player requested rematch, but game is not over", "player.id", p.ID)
		span.SetStatus(codes.Error, "Rematch requested before game over")
		r.sendError(ctx, p, "game is not over")
		return
	}

	if err := r.gameRepo.Create(ctx, r.ID, gameState.PlayerOID, gameState.PlayerXID); err != nil {
		slog.ErrorContext(ctx, "failed to reset game for rematch", "room.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to reset game for rematch")
		return
	}
	gameState, err = r.gameRepo.FindByID(ctx, r.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not get game state after rematch")
		return
	}

	slog.InfoContext(ctx, "Bot auto-accepts rematch. Game reset.", "room.id", r.ID)
	r.sendAssignments(ctx, gameState)
	r.broadcastState(ctx, gameState, nil)
}
