package room

import (
	"context"
	"ctchen222/tictactoe-bot/internal/game"
	"ctchen222/tictactoe-bot/internal/player"
	"ctchen222/tictactoe-bot/pkg/proto"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Broadcast sends a message to all players in the room.
func (r *Room) Broadcast(ctx context.Context, message *proto.ServerToClientMessage) {
	ctx, span := tracer.Start(ctx, "room.Broadcast", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("message.type", message.Type),
	))
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	for _, p := range r.Players {
		if err := p.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.ErrorContext(ctx, "error writing message to player", "player.id", p.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Error writing message to player")
		}
	}
}

// send writes a single message to one player.
func (r *Room) send(ctx context.Context, p *player.Player, message any) {
	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		return
	}
	if err := p.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.ErrorContext(ctx, "error writing message to player", "player.id", p.ID, "error", err)
	}
}

func (r *Room) sendError(ctx context.Context, p *player.Player, reason string) {
	r.send(ctx, p, &proto.ServerToClientMessage{Type: proto.TypeError, Reason: reason})
}

// sendAssignments tells every player which mark it plays.
func (r *Room) sendAssignments(ctx context.Context, gameState *game.GameStateDTO) {
	for _, p := range r.Players {
		r.send(ctx, p, &proto.PlayerAssignmentMessage{
			Type:     proto.TypeAssignment,
			PlayerID: p.ID,
			Mark:     gameState.MarkOf(p.ID),
		})
	}
}

// broadcastState sends the board, whose turn it is and the result so far.
func (r *Room) broadcastState(ctx context.Context, gameState *game.GameStateDTO, lastMove *game.Move) {
	winner := gameState.Winner
	if gameState.IsDraw {
		winner = game.PlayerMark(game.Draw)
	}
	r.Broadcast(ctx, &proto.ServerToClientMessage{
		Type:     proto.TypeUpdate,
		Board:    gameState.Board.Slice(),
		Next:     gameState.CurrentTurn,
		Winner:   winner,
		LastMove: lastMove,
	})
}

// ReadPump pumps messages from the websocket connection to the room's incomingMoves channel.
func (r *Room) ReadPump(p *player.Player) {
	ctx, span := tracer.Start(context.Background(), "room.ReadPump", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()
	defer r.Close()

	for {
		_, msg, err := p.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Player connection error", "player.id", p.ID, "room.id", r.ID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Player connection error")
			}
			slog.InfoContext(ctx, "Player disconnected", "player.id", p.ID, "room.id", r.ID)
			return
		}

		select {
		case r.incomingMoves <- &player.Message{Player: p, Data: msg}:
		case <-r.Done:
			return
		}
	}
}
