package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"staybot/models"
	"staybot/services/chat"
	"staybot/utils"
)

// ChatHandler exposes the booking assistant over HTTP.
type ChatHandler struct {
	Service chat.ChatService
	Logger  *zap.Logger
}

func NewChatHandler(service chat.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Service: service, Logger: logger}
}

// HandleChat handles POST /chat.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	logger := getLogger(c, h.Logger)

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Message) == "" {
		logger.Warn("Invalid chat request", zap.NamedError("bindError", err))
		c.JSON(http.StatusBadRequest, utils.ErrorResponse{Error: "Missing required fields"})
		return
	}

	reply, err := h.Service.HandleMessage(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		utils.JSONError(c, logger.With(zap.String("userId", req.UserID)), err)
		return
	}
	c.JSON(http.StatusOK, models.ChatResponse{Reply: reply})
}

// Welcome handles GET /.
func Welcome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to my hotel booking chatbot API.")
}
