package models

import "ctchen222/tictactoe-bot/internal/game"

// MoveRequest asks for the move the bot would play for Mark on Board.
type MoveRequest struct {
	Board      [][]game.PlayerMark `json:"board" binding:"required,len=3,dive,len=3"`
	Mark       game.PlayerMark     `json:"mark" binding:"required,oneof=X O"`
	Difficulty string              `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Algorithm  string              `json:"algorithm" binding:"omitempty,oneof=minimax alphabeta"`
	Depth      int                 `json:"depth" binding:"omitempty,min=1,max=9"`
}

// MoveResponse carries the selected cell. Score and Nodes are only set for
// searched (hard) moves.
type MoveResponse struct {
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Difficulty string `json:"difficulty"`
	Algorithm  string `json:"algorithm,omitempty"`
	Score      *int   `json:"score,omitempty"`
	Nodes      int    `json:"nodes,omitempty"`
}

// EvaluateRequest asks for the static score of Board from Mark's side.
type EvaluateRequest struct {
	Board [][]game.PlayerMark `json:"board" binding:"required,len=3,dive,len=3"`
	Mark  game.PlayerMark     `json:"mark" binding:"required,oneof=X O"`
}

// EvaluateResponse is the static evaluation plus the terminal state of the board.
type EvaluateResponse struct {
	Score  int             `json:"score"`
	Winner game.PlayerMark `json:"winner,omitempty"`
}
