package conversationRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"staybot/models"
	"staybot/utils"
)

const conversationPrefix = "conversation:"

// RedisConversationRepo stores each conversation as one JSON value.
// A zero ttl keeps records forever; otherwise every write refreshes the expiry.
type RedisConversationRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisConversationRepo(client *redis.Client, ttl time.Duration) *RedisConversationRepo {
	return &RedisConversationRepo{client: client, ttl: ttl}
}

func conversationKey(userID string) string {
	return conversationPrefix + userID
}

func (r *RedisConversationRepo) FindByUserID(ctx context.Context, userID string) (*models.Conversation, error) {
	data, err := r.client.Get(ctx, conversationKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation for user %s: %w", userID, err)
	}
	return decodeConversation(data)
}

func (r *RedisConversationRepo) Create(ctx context.Context, userID string) (*models.Conversation, error) {
	conv := newConversation(userID)
	b, err := json.Marshal(conv)
	if err != nil {
		return nil, err
	}

	created, err := r.client.SetNX(ctx, conversationKey(userID), b, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation for user %s: %w", userID, err)
	}
	if !created {
		return nil, utils.ErrConflict
	}
	return conv, nil
}

func (r *RedisConversationRepo) Save(ctx context.Context, conv *models.Conversation) error {
	key := conversationKey(conv.UserID)

	next := *conv
	next.Version = conv.Version + 1
	next.UpdatedAt = time.Now().UTC()
	b, err := json.Marshal(&next)
	if err != nil {
		return err
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		stored, err := decodeConversation(data)
		if err != nil {
			return err
		}
		if stored.Version != conv.Version {
			return utils.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, r.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
	case errors.Is(err, redis.TxFailedErr):
		return utils.ErrConflict
	case errors.Is(err, utils.ErrConflict), errors.Is(err, ErrNotFound):
		return err
	default:
		return fmt.Errorf("failed to save conversation for user %s: %w", conv.UserID, err)
	}

	conv.Version = next.Version
	conv.UpdatedAt = next.UpdatedAt
	return nil
}

func decodeConversation(data []byte) (*models.Conversation, error) {
	var conv models.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	if conv.Messages == nil {
		conv.Messages = []models.Message{}
	}
	return &conv, nil
}
