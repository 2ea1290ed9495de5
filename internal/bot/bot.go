package bot

import (
	"context"
	"ctchen222/tictactoe-bot/internal/game"
	"ctchen222/tictactoe-bot/internal/player"
	"ctchen222/tictactoe-bot/pkg/proto"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// BotConnection simulates a websocket connection for a bot player.
// It implements the player.Connection interface: the room writes game
// updates to it, and the bot answers by pushing its move onto the room's
// incoming channel.
type BotConnection struct {
	playerID      string
	player        *player.Player
	mark          game.PlayerMark // Stores the bot's mark ('X' or 'O')
	difficulty    Difficulty
	calculator    *Calculator
	thinkDelay    time.Duration
	incomingMoves chan<- *player.Message
}

// NewBotConnection creates a new connection for a bot.
func NewBotConnection(playerID string, difficulty Difficulty, calculator *Calculator, thinkDelay time.Duration, p *player.Player, incomingMoves chan<- *player.Message) *BotConnection {
	return &BotConnection{
		playerID:      playerID,
		player:        p,
		difficulty:    difficulty,
		calculator:    calculator,
		thinkDelay:    thinkDelay,
		incomingMoves: incomingMoves,
	}
}

// WriteMessage is called by the room to send game state to the bot.
func (bc *BotConnection) WriteMessage(messageType int, data []byte) error {
	// First, try to unmarshal as a generic message to find the type
	var genericMsg map[string]any
	if err := json.Unmarshal(data, &genericMsg); err != nil {
		return err
	}

	msgType, ok := genericMsg["type"].(string)
	if !ok {
		return nil // Not a valid message for the bot
	}

	switch msgType {
	case proto.TypeAssignment:
		var msg proto.PlayerAssignmentMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return err
		}
		bc.mark = msg.Mark
		slog.Info("Bot assigned mark", "player.id", bc.playerID, "mark", bc.mark)

	case proto.TypeUpdate:
		var msg proto.ServerToClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return err
		}

		// The bot only acts if it has a mark, it's its turn, and there is no winner
		if bc.mark != game.None && msg.Next == bc.mark && msg.Winner == game.None {
			board, err := game.BoardFromSlice(msg.Board)
			if err != nil {
				return err
			}
			go bc.play(board, bc.mark)
		}
	}

	return nil
}

// play runs off the room's goroutine, so it takes the mark by value.
func (bc *BotConnection) play(board game.Board, mark game.PlayerMark) {
	ctx := context.Background()
	slog.InfoContext(ctx, "Bot is thinking", "player.id", bc.playerID, "mark", mark, "difficulty", bc.difficulty)
	time.Sleep(bc.thinkDelay)

	move, err := bc.calculator.CalculateNextMove(ctx, board, mark, bc.difficulty)
	if err != nil {
		slog.ErrorContext(ctx, "Bot could not calculate a move", "player.id", bc.playerID, "error", err)
		return
	}

	moveBytes, err := json.Marshal(proto.ClientToServerMessage{
		Type:     proto.TypeMove,
		Position: []int{move.Row, move.Col},
	})
	if err != nil {
		slog.ErrorContext(ctx, "Bot could not encode its move", "player.id", bc.playerID, "error", err)
		return
	}

	select {
	case bc.incomingMoves <- &player.Message{Player: bc.player, Data: moveBytes}:
	default:
		slog.WarnContext(ctx, "Room is not accepting moves, dropping bot move", "player.id", bc.playerID)
	}
}

// ReadMessage reports EOF: bot moves never arrive through a read pump.
func (bc *BotConnection) ReadMessage() (int, []byte, error) {
	return 0, nil, io.EOF
}

// Close is a no-op for the bot.
func (bc *BotConnection) Close() error {
	return nil
}

// NewBotPlayer creates a new player instance that is a bot.
func NewBotPlayer(difficulty Difficulty, calculator *Calculator, thinkDelay time.Duration, incomingMoves chan<- *player.Message) *player.Player {
	botID := "bot-" + uuid.New().String()[:8]
	p := &player.Player{ID: botID, IsBot: true}
	p.Conn = NewBotConnection(botID, difficulty, calculator, thinkDelay, p, incomingMoves)
	return p
}
