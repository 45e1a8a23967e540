package chat

import (
	"context"

	"staybot/models"
)

// ChatService runs one conversational turn for a user.
type ChatService interface {
	HandleMessage(ctx context.Context, userID, message string) (string, error)
}

// FieldExtractor fills absent booking fields from model output.
type FieldExtractor interface {
	Apply(state *models.BookingState, text string)
}

// TurnLocker serializes turns of the same user. The returned func releases the lock.
type TurnLocker interface {
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}
