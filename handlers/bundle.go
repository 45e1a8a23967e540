package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Welcome gin.HandlerFunc
	Health  gin.HandlerFunc
	Chat    gin.HandlerFunc
}

// NewHandlerBundle assembles the bundle from the concrete handlers.
func NewHandlerBundle(chatHandler *ChatHandler, healthHandler *HealthHandler) *HandlerBundle {
	return &HandlerBundle{
		Welcome: Welcome,
		Health:  healthHandler.HandleHealth,
		Chat:    chatHandler.HandleChat,
	}
}
