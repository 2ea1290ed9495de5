package controller

import (
	"ctchen222/tictactoe-bot/internal/api/models"
	"ctchen222/tictactoe-bot/internal/api/response"
	"ctchen222/tictactoe-bot/internal/api/service"
	"ctchen222/tictactoe-bot/internal/bot"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MoveController handles the stateless bot endpoints.
type MoveController struct {
	moveService service.MoveService
}

// NewMoveController creates a new MoveController.
func NewMoveController(moveService service.MoveService) *MoveController {
	return &MoveController{
		moveService: moveService,
	}
}

// NextMove handles POST /api/v1/move.
func (mc *MoveController) NextMove(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := mc.moveService.NextMove(c.Request.Context(), &req)
	if err != nil {
		response.ErrorResponse(c, statusFor(err), err.Error())
		return
	}

	response.SuccessResponse(c, resp)
}

// Evaluate handles POST /api/v1/evaluate.
func (mc *MoveController) Evaluate(c *gin.Context) {
	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := mc.moveService.Evaluate(c.Request.Context(), &req)
	if err != nil {
		response.ErrorResponse(c, statusFor(err), err.Error())
		return
	}

	response.SuccessResponse(c, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, bot.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, bot.ErrInvalidBoard),
		errors.Is(err, bot.ErrInvalidSide),
		errors.Is(err, bot.ErrInvalidDepth),
		errors.Is(err, bot.ErrUnknownAlgorithm):
		return http.StatusBadRequest
	default:
		slog.Error("Unexpected move service error", "error", err)
		return http.StatusInternalServerError
	}
}
