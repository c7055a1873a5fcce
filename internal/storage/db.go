package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/models"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// DB is the SQL implementation of Store. It runs on SQLite by default and on
// Postgres when opened with NewPostgresDB.
type DB struct {
	conn *sqlx.DB
}

// NewDB opens a SQLite database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	return open(DriverSQLite, path)
}

// NewPostgresDB opens a Postgres database and runs migrations.
func NewPostgresDB(dsn string) (*DB, error) {
	return open(DriverPostgres, dsn)
}

// Wrap builds a DB around an existing connection without migrating it.
func Wrap(conn *sql.DB, driver string) *DB {
	return &DB{conn: sqlx.NewDb(conn, driver)}
}

func open(driver, dsn string) (*DB, error) {
	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// One connection keeps ":memory:" databases shared and serializes writers.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

var migrations = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			amount REAL NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			date DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses (user_id, date DESC)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			date TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses (user_id, date DESC)`,
	},
}

func (db *DB) migrate() error {
	for _, m := range migrations[db.conn.DriverName()] {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateUser inserts a new user.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	_, err := db.conn.ExecContext(ctx,
		db.conn.Rebind("INSERT INTO users (id, username, email) VALUES (?, ?, ?)"),
		strings.ToLower(u.ID), u.Username, u.Email,
	)
	return translate(err)
}

// GetUserByID retrieves a user by ID. IDs are hex, so the match ignores case.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return db.getUser(ctx, "id", strings.ToLower(id))
}

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.getUser(ctx, "username", username)
}

// GetUserByEmail retrieves a user by email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.getUser(ctx, "email", email)
}

func (db *DB) getUser(ctx context.Context, column, value string) (*models.User, error) {
	var u models.User
	err := db.conn.GetContext(ctx, &u,
		db.conn.Rebind("SELECT id, username, email FROM users WHERE "+column+" = ?"),
		value,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// CreateExpense inserts a new expense. Dates are stored in UTC so that they
// sort chronologically.
func (db *DB) CreateExpense(ctx context.Context, e *models.Expense) error {
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	_, err := db.conn.ExecContext(ctx,
		db.conn.Rebind("INSERT INTO expenses (id, user_id, title, amount, description, category, date) VALUES (?, ?, ?, ?, ?, ?, ?)"),
		strings.ToLower(e.ID), strings.ToLower(e.UserID), e.Title, e.Amount, e.Description, e.Category, e.Date.UTC(),
	)
	return translate(err)
}

// ListExpensesByUser retrieves the user's expenses ordered by date descending.
func (db *DB) ListExpensesByUser(ctx context.Context, userID string) ([]models.Expense, error) {
	expenses := []models.Expense{}
	err := db.conn.SelectContext(ctx, &expenses,
		db.conn.Rebind("SELECT id, user_id, title, amount, description, category, date FROM expenses WHERE user_id = ? ORDER BY date DESC, id DESC"),
		strings.ToLower(userID),
	)
	if err != nil {
		return nil, translate(err)
	}
	return expenses, nil
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case isUniqueViolation(err):
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
			strings.Contains(liteErr.Error(), "UNIQUE")
	}
	return false
}
