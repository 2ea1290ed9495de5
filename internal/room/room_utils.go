package room

import (
	"ctchen222/tictactoe-bot/internal/game"
	"ctchen222/tictactoe-bot/internal/player"
	"ctchen222/tictactoe-bot/pkg/proto"
)

// AddPlayer adds a player to the room.
func (r *Room) AddPlayer(p *player.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Players = append(r.Players, p)
}

// IncomingMoves returns the channel for incoming player moves.
func (r *Room) IncomingMoves() chan<- *player.Message {
	return r.incomingMoves
}

func moveMessage(m game.Move) proto.ClientToServerMessage {
	return proto.ClientToServerMessage{Type: proto.TypeMove, Position: []int{m.Row, m.Col}}
}
