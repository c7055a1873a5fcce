package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/models"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create user", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := store.CreateUser(ctx, &models.User{ID: primitive.NewObjectID().Hex(), Username: "alice", Email: "a@x.com"})
		assert.NoError(mt, err)
	})

	mt.Run("create user duplicate", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: username_1",
		}))

		err := store.CreateUser(ctx, &models.User{ID: primitive.NewObjectID().Hex(), Username: "alice", Email: "a@x.com"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("get user by id", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "username", Value: "alice"},
			{Key: "email", Value: "a@x.com"},
		}))

		u, err := store.GetUserByID(ctx, oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, &models.User{ID: oid.Hex(), Username: "alice", Email: "a@x.com"}, u)
	})

	mt.Run("get user not found", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.users", mtest.FirstBatch))

		_, err := store.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("get user malformed id", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)

		_, err := store.GetUserByID(ctx, "abc")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("list expenses", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		userID := primitive.NewObjectID()
		newer := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
		older := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.expenses", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "userId", Value: userID},
				{Key: "title", Value: "Lunch"},
				{Key: "amount", Value: 12.5},
				{Key: "category", Value: "Food"},
				{Key: "date", Value: newer},
			},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "userId", Value: userID},
				{Key: "title", Value: "Coffee"},
				{Key: "amount", Value: 4.5},
				{Key: "description", Value: "flat white"},
				{Key: "category", Value: "Food"},
				{Key: "date", Value: older},
			},
		))

		expenses, err := store.ListExpensesByUser(ctx, userID.Hex())
		require.NoError(mt, err)
		require.Len(mt, expenses, 2)
		assert.Equal(mt, "Lunch", expenses[0].Title)
		assert.Equal(mt, userID.Hex(), expenses[0].UserID)
		assert.Equal(mt, "flat white", expenses[1].Description)
		assert.True(mt, expenses[1].Date.Equal(older))
	})

	mt.Run("create expense rejects bad user id", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)

		err := store.CreateExpense(ctx, &models.Expense{ID: primitive.NewObjectID().Hex(), UserID: "nope", Title: "x", Category: "y"})
		assert.Error(mt, err)
	})

	mt.Run("create expense", func(mt *mtest.T) {
		store := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		e := &models.Expense{ID: primitive.NewObjectID().Hex(), UserID: primitive.NewObjectID().Hex(), Title: "Coffee", Amount: 4.5, Category: "Food"}
		require.NoError(mt, store.CreateExpense(ctx, e))
		assert.False(mt, e.Date.IsZero(), "date should default to now")
	})
}
