package conversationRepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"

	"staybot/models"
	"staybot/utils"
)

func TestMongoConversationRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ns := "staybot.conversations"

	mt.Run("constructor ensures index", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		repo, err := NewMongoConversationRepo(mt.DB, zap.NewNop())
		require.NoError(mt, err)
		assert.NotNil(mt, repo)
	})

	mt.Run("constructor fails without index", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    86,
			Name:    "IndexKeySpecsConflict",
			Message: "index with name userId_1 already exists with different options",
		}))

		repo, err := NewMongoConversationRepo(mt.DB, zap.NewNop())
		require.Error(mt, err)
		assert.Nil(mt, repo)
	})

	mt.Run("find decodes stored conversation", func(mt *mtest.T) {
		repo := &MongoConversationRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "c1"},
			{Key: "userId", Value: "u1"},
			{Key: "messages", Value: bson.A{bson.D{{Key: "role", Value: "user"}, {Key: "content", Value: "hi"}}}},
			{Key: "bookingState", Value: bson.D{{Key: "stage", Value: "initial"}, {Key: "fullName", Value: "Jane"}}},
			{Key: "version", Value: int64(4)},
		}))

		conv, err := repo.FindByUserID(ctx, "u1")
		require.NoError(mt, err)
		assert.Equal(mt, "u1", conv.UserID)
		assert.Equal(mt, int64(4), conv.Version)
		require.Len(mt, conv.Messages, 1)
		assert.Equal(mt, models.RoleUser, conv.Messages[0].Role)
		require.NotNil(mt, conv.BookingState.FullName)
		assert.Equal(mt, "Jane", *conv.BookingState.FullName)
		assert.Nil(mt, conv.BookingState.Email)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		repo := &MongoConversationRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByUserID(ctx, "nobody")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("create", func(mt *mtest.T) {
		repo := &MongoConversationRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		conv, err := repo.Create(ctx, "u1")
		require.NoError(mt, err)
		assert.Equal(mt, "u1", conv.UserID)
		assert.Equal(mt, models.StageInitial, conv.BookingState.Stage)
		assert.Empty(mt, conv.Messages)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		repo := &MongoConversationRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		_, err := repo.Create(ctx, "u1")
		assert.ErrorIs(mt, err, utils.ErrConflict)
	})

	mt.Run("save bumps version", func(mt *mtest.T) {
		repo := &MongoConversationRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		conv := &models.Conversation{UserID: "u1", Version: 2, BookingState: models.NewBookingState()}
		require.NoError(mt, repo.Save(ctx, conv))
		assert.Equal(mt, int64(3), conv.Version)
	})

	mt.Run("save stale version", func(mt *mtest.T) {
		repo := &MongoConversationRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		conv := &models.Conversation{UserID: "u1", Version: 2, BookingState: models.NewBookingState()}
		assert.ErrorIs(mt, repo.Save(ctx, conv), utils.ErrConflict)
		assert.Equal(mt, int64(2), conv.Version)
	})
}
