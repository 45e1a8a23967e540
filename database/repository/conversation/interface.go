package conversationRepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"staybot/models"
)

// ErrNotFound is returned by FindByUserID when the user has no conversation yet.
var ErrNotFound = errors.New("conversation not found")

// ConversationRepository stores one conversation per user id.
//
// Save overwrites the stored record only if its version still equals
// conv.Version, and bumps conv.Version on success. A lost race returns
// utils.ErrConflict. Create also returns utils.ErrConflict if the user
// already has a record.
type ConversationRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Conversation, error)
	Create(ctx context.Context, userID string) (*models.Conversation, error)
	Save(ctx context.Context, conv *models.Conversation) error
}

// newConversation builds the zeroed record every backend persists on Create.
func newConversation(userID string) *models.Conversation {
	now := time.Now().UTC()
	return &models.Conversation{
		ID:           uuid.New().String(),
		UserID:       userID,
		Messages:     []models.Message{},
		BookingState: models.NewBookingState(),
		Version:      0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
