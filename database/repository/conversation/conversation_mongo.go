package conversationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"staybot/models"
	"staybot/utils"
)

const conversationsCollection = "conversations"

// MongoConversationRepo implements ConversationRepository using MongoDB.
type MongoConversationRepo struct {
	coll *mongo.Collection
}

// NewMongoConversationRepo returns a repository over db.conversations. It
// fails if the unique userId index cannot be ensured, since Create relies on
// it to detect a concurrent first turn.
func NewMongoConversationRepo(db *mongo.Database, logger *zap.Logger) (*MongoConversationRepo, error) {
	repo := &MongoConversationRepo{coll: db.Collection(conversationsCollection)}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	logger.Debug("conversation indexes ensured", zap.String("collection", conversationsCollection))
	return repo, nil
}

// newContext creates a context with the given timeout.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (r *MongoConversationRepo) FindByUserID(ctx context.Context, userID string) (*models.Conversation, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var conv models.Conversation
	err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation for user %s: %w", userID, err)
	}
	if conv.Messages == nil {
		conv.Messages = []models.Message{}
	}
	return &conv, nil
}

func (r *MongoConversationRepo) Create(ctx context.Context, userID string) (*models.Conversation, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	conv := newConversation(userID)
	if _, err := r.coll.InsertOne(ctx, conv); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, utils.ErrConflict
		}
		return nil, fmt.Errorf("failed to create conversation for user %s: %w", userID, err)
	}
	return conv, nil
}

func (r *MongoConversationRepo) Save(ctx context.Context, conv *models.Conversation) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	next := *conv
	next.Version = conv.Version + 1
	next.UpdatedAt = time.Now().UTC()

	filter := bson.M{"userId": conv.UserID, "version": conv.Version}
	res, err := r.coll.ReplaceOne(ctx, filter, next, options.Replace().SetUpsert(false))
	if err != nil {
		return fmt.Errorf("failed to save conversation for user %s: %w", conv.UserID, err)
	}
	if res.MatchedCount == 0 {
		return utils.ErrConflict
	}

	conv.Version = next.Version
	conv.UpdatedAt = next.UpdatedAt
	return nil
}
