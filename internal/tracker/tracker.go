// Package tracker implements the expense tracking workflows: resolving the
// user a request is scoped to, registering users, recording expenses and
// reading a user's history.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/ident"
	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/models"
	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/storage"
)

// DefaultDateLayout renders dates as the en-US short date, e.g. 1/15/2024.
const DefaultDateLayout = "1/2/2006"

// SavedMessage is shown after an expense has been recorded.
const SavedMessage = "Expense saved successfully."

// dateLayouts are the accepted formats for a caller supplied expense date.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Service runs the workflows against injected stores.
type Service struct {
	users      storage.UserStore
	expenses   storage.ExpenseStore
	log        logrus.FieldLogger
	dateLayout string
	now        func() time.Time
}

// NewService creates a Service. An empty dateLayout selects DefaultDateLayout.
func NewService(users storage.UserStore, expenses storage.ExpenseStore, log logrus.FieldLogger, dateLayout string) *Service {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	return &Service{
		users:      users,
		expenses:   expenses,
		log:        log,
		dateLayout: dateLayout,
		now:        time.Now,
	}
}

// UserInput carries the fields of a registration request.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ExpenseInput carries the fields of an expense submission. UserID and
// RouteUserID are raw, unvalidated identifier candidates; Amount may be a
// number or a numeric string.
type ExpenseInput struct {
	UserID      any    `json:"userId"`
	RouteUserID string `json:"-"`
	Title       string `json:"title"`
	Amount      any    `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

// ExpenseResult is returned after an expense has been recorded.
type ExpenseResult struct {
	UserID            string          `json:"userId"`
	Expense           *models.Expense `json:"expense"`
	Message           string          `json:"message"`
	ShowHistoryChoice bool            `json:"showHistoryChoice"`
}

// FormResult is what the expense form needs to render.
type FormResult struct {
	UserID            string `json:"userId"`
	Message           string `json:"message,omitempty"`
	ShowHistoryChoice bool   `json:"showHistoryChoice"`
}

// HistoryEntry is an expense with its display date.
type HistoryEntry struct {
	models.Expense
	FormattedDate string `json:"formattedDate"`
}

// HistoryResult lists a user's expenses, most recent first.
type HistoryResult struct {
	UserID   string         `json:"userId"`
	Expenses []HistoryEntry `json:"expenses"`
}

// ResolveUser picks the first non-empty candidate, validates it and loads the
// matching user. Every failure is logged and yields nil: callers decide what
// an absent user means.
func (s *Service) ResolveUser(ctx context.Context, candidates ...any) *models.User {
	raw := firstPresent(candidates...)
	id, ok := ident.Normalize(raw)
	if !ok {
		return nil
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		entry := s.log.WithField("user_id", id).WithError(err)
		if errors.Is(err, storage.ErrNotFound) {
			entry.Debug("resolve user: no such user")
		} else {
			entry.Warn("resolve user: lookup failed")
		}
		return nil
	}
	return user
}

// CreateUser registers a user.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (user *models.User, err error) {
	defer func() { record("create_user", err) }()

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" {
		return nil, invalid("username", "is required")
	}
	if email == "" {
		return nil, invalid("email", "is required")
	}

	user = &models.User{ID: ident.New(), Username: username, Email: email}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, invalid("username or email", "is already in use")
		}
		return nil, unavailable("create user", err)
	}

	s.log.WithField("user_id", user.ID).WithField("username", user.Username).Info("user created")
	return user, nil
}

// CreateExpense records an expense. A valid identifier in the request body
// or route wins over the resolved user; the resolved user is the fallback.
func (s *Service) CreateExpense(ctx context.Context, resolved *models.User, in ExpenseInput) (result *ExpenseResult, err error) {
	defer func() { record("create_expense", err) }()

	userID, ok := ident.Normalize(firstPresent(in.UserID, in.RouteUserID))
	if !ok && resolved != nil {
		userID, ok = resolved.ID, true
	}
	if !ok {
		return nil, ErrMissingUser
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return nil, unavailable("find user", err)
	}

	expense, err := s.buildExpense(user.ID, in)
	if err != nil {
		return nil, err
	}
	if err := s.expenses.CreateExpense(ctx, expense); err != nil {
		return nil, unavailable("create expense", err)
	}

	s.log.WithField("user_id", user.ID).WithField("expense_id", expense.ID).Info("expense created")
	return &ExpenseResult{
		UserID:            user.ID,
		Expense:           expense,
		Message:           SavedMessage,
		ShowHistoryChoice: true,
	}, nil
}

func (s *Service) buildExpense(userID string, in ExpenseInput) (*models.Expense, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "is required")
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, invalid("category", "is required")
	}
	date, err := s.parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	return &models.Expense{
		ID:          ident.New(),
		UserID:      userID,
		Title:       title,
		Amount:      amount,
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		Date:        date,
	}, nil
}

// ExpenseForm returns the identifier the expense form should carry.
func (s *Service) ExpenseForm(resolved *models.User, routeID any) FormResult {
	return FormResult{UserID: scopeID(resolved, routeID)}
}

// History lists the user's expenses, most recent first, each with a
// formatted date. The resolved user wins over the route identifier.
func (s *Service) History(ctx context.Context, resolved *models.User, routeID any) (result *HistoryResult, err error) {
	defer func() { record("history", err) }()

	userID := scopeID(resolved, routeID)
	if userID == "" {
		return nil, ErrMissingUser
	}

	expenses, err := s.expenses.ListExpensesByUser(ctx, userID)
	if err != nil {
		return nil, unavailable("list expenses", err)
	}

	entries := make([]HistoryEntry, 0, len(expenses))
	for _, e := range expenses {
		entries = append(entries, HistoryEntry{Expense: e, FormattedDate: s.formatDate(e.Date)})
	}
	return &HistoryResult{UserID: userID, Expenses: entries}, nil
}

func (s *Service) formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(s.dateLayout)
}

func (s *Service) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.now(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalid("date", "is not a valid date")
}

func parseAmount(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case json.Number:
		return parseAmount(v.String())
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, invalid("amount", "is required")
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, invalid("amount", "must be a number")
		}
		return f, nil
	case nil:
		return 0, invalid("amount", "is required")
	}
	return 0, invalid("amount", "must be a number")
}

func scopeID(resolved *models.User, routeID any) string {
	if resolved != nil {
		return resolved.ID
	}
	id, _ := ident.Normalize(routeID)
	return id
}

// firstPresent returns the first candidate that is neither nil nor an empty
// string.
func firstPresent(candidates ...any) any {
	for _, c := range candidates {
		switch v := c.(type) {
		case nil:
			continue
		case string:
			if v == "" {
				continue
			}
		}
		return c
	}
	return nil
}
