package server

import (
	"context"
	"ctchen222/tictactoe-bot/internal/api/controller"
	"ctchen222/tictactoe-bot/internal/api/response"
	"ctchen222/tictactoe-bot/internal/bot"
	"ctchen222/tictactoe-bot/internal/game"
	"ctchen222/tictactoe-bot/internal/player"
	"ctchen222/tictactoe-bot/internal/repository"
	"ctchen222/tictactoe-bot/internal/room"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

// Options tune the games started over /ws.
type Options struct {
	Difficulty  bot.Difficulty
	ThinkDelay  time.Duration
	MoveTimeout time.Duration
}

type Server struct {
	engine     *gin.Engine
	upgrader   websocket.Upgrader
	gameRepo   repository.GameRepository
	calculator *bot.Calculator
	opts       Options

	mu    sync.Mutex
	rooms map[string]*room.Room
}

func NewServer(gameRepo repository.GameRepository, calculator *bot.Calculator, moveController *controller.MoveController, opts Options) *Server {
	if opts.Difficulty == "" {
		opts.Difficulty = bot.Hard
	}
	s := &Server{
		engine:     gin.New(),
		gameRepo:   gameRepo,
		calculator: calculator,
		opts:       opts,
		rooms:      make(map[string]*room.Room),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.engine.Use(gin.Recovery())
	s.registerHandlers(moveController)
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerHandlers(moveController *controller.MoveController) {
	s.engine.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})

	v1 := s.engine.Group("/api/v1")
	v1.POST("/move", moveController.NextMove)
	v1.POST("/evaluate", moveController.Evaluate)

	s.engine.GET("/ws", s.handleWebSocket)
}

// handleWebSocket upgrades the connection and starts a room pairing the
// caller with a bot. Query "mark" picks the caller's side (X moves first),
// "difficulty" the bot's strength.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	mark := game.PlayerMark(c.DefaultQuery("mark", string(game.PlayerX)))
	if !mark.IsPlayer() {
		response.ErrorResponse(c, http.StatusBadRequest, "mark must be X or O")
		return
	}
	difficulty := bot.Difficulty(c.DefaultQuery("difficulty", string(s.opts.Difficulty)))
	switch difficulty {
	case bot.Easy, bot.Medium, bot.Hard:
	default:
		response.ErrorResponse(c, http.StatusBadRequest, "difficulty must be easy, medium or hard")
		return
	}
	span.SetAttributes(attribute.String("player.mark", string(mark)), attribute.String("bot.difficulty", string(difficulty)))

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	roomID := uuid.New().String()
	span.SetAttributes(attribute.String("room.id", roomID))

	r := room.NewRoom(roomID, s.gameRepo, s.calculator, s.opts.MoveTimeout)
	human := player.NewPlayer(uuid.New().String(), conn)
	botPlayer := bot.NewBotPlayer(difficulty, s.calculator, s.opts.ThinkDelay, r.IncomingMoves())

	playerX, playerO := human, botPlayer
	if mark == game.PlayerO {
		playerX, playerO = botPlayer, human
	}

	if err := r.Start(context.WithoutCancel(ctx), playerX, playerO); err != nil {
		slog.ErrorContext(ctx, "Failed to start room", "room.id", roomID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to start room")
		conn.Close()
		return
	}
	s.track(r)

	slog.InfoContext(ctx, "Room started", "room.id", roomID, "player.id", human.ID, "player.mark", mark, "bot.difficulty", difficulty)
}

func (s *Server) track(r *room.Room) {
	s.mu.Lock()
	s.rooms[r.ID] = r
	s.mu.Unlock()

	go func() {
		<-r.Stopped()
		s.mu.Lock()
		delete(s.rooms, r.ID)
		s.mu.Unlock()
	}()
}

// RoomCount returns the number of running rooms.
func (s *Server) RoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// CloseRooms stops every running room and waits for them until ctx is done.
func (s *Server) CloseRooms(ctx context.Context) error {
	s.mu.Lock()
	rooms := make([]*room.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()

	for _, r := range rooms {
		r.Close()
	}
	for _, r := range rooms {
		select {
		case <-r.Stopped():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
