package player

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Player represents a player in a room.
type Player struct {
	ID    string
	Conn  Connection
	IsBot bool
}

// NewPlayer creates a player backed by conn.
func NewPlayer(id string, conn Connection) *Player {
	return &Player{
		ID:   id,
		Conn: conn,
	}
}

// Message is a raw message received from a player.
type Message struct {
	Player *Player
	Data   []byte
}
