package bot

import (
	"ctchen222/tictactoe-bot/internal/game"
	"ctchen222/tictactoe-bot/internal/player"
	"ctchen222/tictactoe-bot/pkg/proto"
	"encoding/json"
	"io"
	"testing"
	"time"
)

func newTestBot(difficulty Difficulty) (*BotConnection, *player.Player, chan *player.Message) {
	p := &player.Player{ID: "testBot", IsBot: true}
	incomingMoves := make(chan *player.Message, 1)
	bc := NewBotConnection(p.ID, difficulty, NewCalculator(AlphaBeta, DefaultDepth), 0, p, incomingMoves)
	p.Conn = bc
	return bc, p, incomingMoves
}

func TestNewBotConnection(t *testing.T) {
	bc, p, incomingMoves := newTestBot(Easy)

	if bc.playerID != "testBot" {
		t.Errorf("Expected playerID %s, got %s", "testBot", bc.playerID)
	}
	if bc.difficulty != Easy {
		t.Errorf("Expected difficulty %s, got %s", Easy, bc.difficulty)
	}
	if bc.player != p {
		t.Error("Expected player to be set correctly")
	}
	if bc.incomingMoves != (chan<- *player.Message)(incomingMoves) {
		t.Error("Expected incomingMoves channel to be set correctly")
	}
	if bc.mark != game.None {
		t.Errorf("Expected initial mark to be empty, got %s", bc.mark)
	}
}

func TestBotConnection_WriteMessage_Assignment(t *testing.T) {
	bc, _, _ := newTestBot(Easy)
	data, _ := json.Marshal(proto.PlayerAssignmentMessage{
		Type: proto.TypeAssignment,
		Mark: game.PlayerX,
	})

	if err := bc.WriteMessage(1, data); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}
	if bc.mark != game.PlayerX {
		t.Errorf("Expected bot mark to be %s, got %s", game.PlayerX, bc.mark)
	}
}

func TestBotConnection_WriteMessage_Update_BotTurn_MakesMove(t *testing.T) {
	bc, p, incomingMoves := newTestBot(Hard)
	bc.mark = game.PlayerO

	board := game.Board{
		{game.PlayerX, game.PlayerX, game.None},
		{game.PlayerO, game.None, game.None},
		{game.None, game.None, game.None},
	}
	data, _ := json.Marshal(proto.ServerToClientMessage{
		Type:  proto.TypeUpdate,
		Board: board.Slice(),
		Next:  game.PlayerO,
	})

	if err := bc.WriteMessage(1, data); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}

	select {
	case moveToSend := <-incomingMoves:
		if moveToSend.Player != p {
			t.Errorf("Expected move from player %v, got %v", p, moveToSend.Player)
		}
		var move proto.ClientToServerMessage
		if err := json.Unmarshal(moveToSend.Data, &move); err != nil {
			t.Fatalf("Failed to unmarshal bot's move: %v", err)
		}
		if move.Type != proto.TypeMove || len(move.Position) != 2 {
			t.Fatalf("Invalid move received from bot: %+v", move)
		}
		if move.Position[0] != 0 || move.Position[1] != 2 {
			t.Errorf("Expected bot to block at (0, 2), got %v", move.Position)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Bot did not make a move within the expected time")
	}
}

func TestBotConnection_WriteMessage_Update_NotBotTurn_NoMove(t *testing.T) {
	bc, _, incomingMoves := newTestBot(Easy)
	bc.mark = game.PlayerX

	data, _ := json.Marshal(proto.ServerToClientMessage{
		Type:  proto.TypeUpdate,
		Board: game.Board{}.Slice(),
		Next:  game.PlayerO, // Not bot's turn
	})

	if err := bc.WriteMessage(1, data); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}

	select {
	case <-incomingMoves:
		t.Error("Bot made a move when it wasn't its turn")
	case <-time.After(100 * time.Millisecond):
		// Expected behavior: Bot does not make a move
	}
}

func TestBotConnection_WriteMessage_Update_GameEnded_NoMove(t *testing.T) {
	bc, _, incomingMoves := newTestBot(Easy)
	bc.mark = game.PlayerX

	data, _ := json.Marshal(proto.ServerToClientMessage{
		Type:   proto.TypeUpdate,
		Board:  game.Board{}.Slice(),
		Next:   game.PlayerX,
		Winner: game.PlayerO, // Game ended
	})

	if err := bc.WriteMessage(1, data); err != nil {
		t.Fatalf("WriteMessage failed: %v", err)
	}

	select {
	case <-incomingMoves:
		t.Error("Bot made a move when the game had already ended")
	case <-time.After(100 * time.Millisecond):
		// Expected behavior: Bot does not make a move
	}
}

func TestBotConnection_WriteMessage_InvalidJSON(t *testing.T) {
	bc, _, _ := newTestBot(Easy)
	if err := bc.WriteMessage(1, []byte("{")); err == nil {
		t.Error("Expected an error for malformed JSON")
	}
}

func TestBotConnection_ReadMessage(t *testing.T) {
	bc, _, _ := newTestBot(Easy)
	_, _, err := bc.ReadMessage()
	if err != io.EOF {
		t.Errorf("Expected ReadMessage to return io.EOF, got %v", err)
	}
}

func TestBotConnection_Close(t *testing.T) {
	bc, _, _ := newTestBot(Easy)
	if err := bc.Close(); err != nil {
		t.Errorf("Expected Close to return nil, got %v", err)
	}
}

func TestNewBotPlayer(t *testing.T) {
	p := NewBotPlayer(Medium, NewCalculator(Minimax, DefaultDepth), 0, make(chan *player.Message, 1))
	if !p.IsBot {
		t.Error("Expected bot player to be flagged as bot")
	}
	bc, ok := p.Conn.(*BotConnection)
	if !ok {
		t.Fatalf("Expected *BotConnection, got %T", p.Conn)
	}
	if bc.player != p || bc.playerID != p.ID {
		t.Error("Expected bot connection to point back at its player")
	}
}
