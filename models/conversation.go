package models

import "time"

// Message roles stored in a transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
)

// Message is one role-tagged transcript entry. Name is set on function results.
type Message struct {
	Role    string `json:"role" bson:"role"`
	Content string `json:"content" bson:"content"`
	Name    string `json:"name,omitempty" bson:"name,omitempty"`
}

// Conversation is the single stored record per user.
// Version increases by one on every successful save.
type Conversation struct {
	ID           string       `json:"id" bson:"_id"`
	UserID       string       `json:"userId" bson:"userId"`
	Messages     []Message    `json:"messages" bson:"messages"`
	BookingState BookingState `json:"bookingState" bson:"bookingState"`
	Version      int64        `json:"version" bson:"version"`
	CreatedAt    time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate it without touching the original.
func (c *Conversation) Clone() *Conversation {
	out := *c
	out.Messages = append([]Message(nil), c.Messages...)
	if out.Messages == nil {
		out.Messages = []Message{}
	}
	out.BookingState = c.BookingState.Clone()
	return &out
}
