package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// Supported values for Options.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// UserStore persists and retrieves users.
type UserStore interface {
	// CreateUser inserts u. Username and email collisions fail with ErrDuplicate.
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// ExpenseStore persists expenses and lists them per user.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e *models.Expense) error
	// ListExpensesByUser returns the user's expenses, most recent first.
	ListExpensesByUser(ctx context.Context, userID string) ([]models.Expense, error)
}

// Store is the full storage surface used by the server.
type Store interface {
	UserStore
	ExpenseStore
	Ping(ctx context.Context) error
	Close() error
}

// Options selects and configures a storage backend.
type Options struct {
	Driver        string
	Path          string // SQLite file
	DSN           string // Postgres connection string
	MongoURI      string
	MongoDatabase string
}

// Open connects to the backend named by opts.Driver and prepares its schema.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		return NewDB(opts.Path)
	case DriverPostgres:
		return NewPostgresDB(opts.DSN)
	case DriverMongo:
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
