package conversationRepo

import (
	"context"
	"sync"
	"time"

	"staybot/models"
	"staybot/utils"
)

// MemoryConversationRepo keeps conversations in process memory. Records are
// copied on every read and write so callers never share state with the store.
type MemoryConversationRepo struct {
	mu    sync.RWMutex
	byUID map[string]*models.Conversation
}

// NewMemoryConversationRepo returns an empty process-local repository.
func NewMemoryConversationRepo() *MemoryConversationRepo {
	return &MemoryConversationRepo{byUID: make(map[string]*models.Conversation)}
}

func (r *MemoryConversationRepo) FindByUserID(_ context.Context, userID string) (*models.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conv, ok := r.byUID[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return conv.Clone(), nil
}

func (r *MemoryConversationRepo) Create(_ context.Context, userID string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUID[userID]; exists {
		return nil, utils.ErrConflict
	}
	conv := newConversation(userID)
	r.byUID[userID] = conv.Clone()
	return conv, nil
}

func (r *MemoryConversationRepo) Save(_ context.Context, conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byUID[conv.UserID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != conv.Version {
		return utils.ErrConflict
	}

	conv.Version++
	conv.UpdatedAt = time.Now().UTC()
	r.byUID[conv.UserID] = conv.Clone()
	return nil
}
