package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/models"
)

const (
	usersCollection    = "users"
	expensesCollection = "expenses"
)

type userDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
	Email    string             `bson:"email"`
}

type expenseDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	UserID      primitive.ObjectID `bson:"userId"`
	Title       string             `bson:"title"`
	Amount      float64            `bson:"amount"`
	Description string             `bson:"description,omitempty"`
	Category    string             `bson:"category"`
	Date        time.Time          `bson:"date"`
}

func (d userDoc) model() *models.User {
	return &models.User{ID: d.ID.Hex(), Username: d.Username, Email: d.Email}
}

func (d expenseDoc) model() models.Expense {
	return models.Expense{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Title:       d.Title,
		Amount:      d.Amount,
		Description: d.Description,
		Category:    d.Category,
		Date:        d.Date,
	}
}

// MongoStore is the document-database implementation of Store.
type MongoStore struct {
	client   *mongo.Client
	users    *mongo.Collection
	expenses *mongo.Collection
}

// OpenMongo connects to uri, verifies the connection and ensures indexes.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo: empty connection URI")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := NewMongoStore(client.Database(database))
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewMongoStore builds a store over db without touching the server.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		client:   db.Client(),
		users:    db.Collection(usersCollection),
		expenses: db.Collection(expensesCollection),
	}
}

// EnsureIndexes creates the unique username/email indexes and the history
// index. It is idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	_, err = s.expenses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create expense indexes: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// CreateUser inserts a new user.
func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	_, err = s.users.InsertOne(ctx, userDoc{ID: oid, Username: u.Username, Email: u.Email})
	return translateMongo(err)
}

// GetUserByID retrieves a user by ID.
func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, bson.D{{Key: "_id", Value: oid}})
}

// GetUserByUsername retrieves a user by username.
func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, bson.D{{Key: "username", Value: username}})
}

// GetUserByEmail retrieves a user by email.
func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.D) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongo(err)
	}
	return doc.model(), nil
}

// CreateExpense inserts a new expense.
func (s *MongoStore) CreateExpense(ctx context.Context, e *models.Expense) error {
	oid, err := primitive.ObjectIDFromHex(e.ID)
	if err != nil {
		return fmt.Errorf("expense id: %w", err)
	}
	userID, err := primitive.ObjectIDFromHex(e.UserID)
	if err != nil {
		return fmt.Errorf("expense user id: %w", err)
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	_, err = s.expenses.InsertOne(ctx, expenseDoc{
		ID:          oid,
		UserID:      userID,
		Title:       e.Title,
		Amount:      e.Amount,
		Description: e.Description,
		Category:    e.Category,
		Date:        e.Date,
	})
	return translateMongo(err)
}

// ListExpensesByUser retrieves the user's expenses ordered by date descending.
func (s *MongoStore) ListExpensesByUser(ctx context.Context, userID string) ([]models.Expense, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []models.Expense{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.expenses.Find(ctx, bson.D{{Key: "userId", Value: oid}}, opts)
	if err != nil {
		return nil, translateMongo(err)
	}
	defer cur.Close(ctx)

	expenses := []models.Expense{}
	for cur.Next(ctx) {
		var doc expenseDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		expenses = append(expenses, doc.model())
	}
	return expenses, cur.Err()
}

func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(ErrDuplicate, err)
	}
	return err
}
