package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/storage"
	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/tracker"
)

const maxBodyBytes = 1 << 20

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	svc         *tracker.Service
	store       Pinger
	templateDir string
	log         logrus.FieldLogger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *tracker.Service, store Pinger, templateDir string, log logrus.FieldLogger) *Handlers {
	return &Handlers{svc: svc, store: store, templateDir: templateDir, log: log}
}

// HomeViewModel holds data for the registration page.
type HomeViewModel struct {
	Username string
	Email    string
	Error    string
}

// FormViewModel is the data passed to the expense form template.
type FormViewModel struct {
	UserID            string
	Message           string
	ShowHistoryChoice bool
	Error             string
	Input             tracker.ExpenseInput
	Categories        []CategoryDef
}

// Home renders the registration form.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home.html", HomeViewModel{})
}

// CreateUser registers a user and sends them to the expense form.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in tracker.UserInput
	if err := decodeRequest(w, r, &in, func(form func(string) string) {
		in.Username = form("username")
		in.Email = form("email")
	}); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user, err := h.svc.CreateUser(r.Context(), in)
	if err != nil {
		if errors.Is(err, tracker.ErrValidation) && !wantsJSON(r) {
			h.render(w, r, http.StatusBadRequest, "home.html", HomeViewModel{
				Username: in.Username,
				Email:    in.Email,
				Error:    "Error creating user: " + err.Error(),
			})
			return
		}
		h.writeError(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, map[string]string{
			"userId":   user.ID,
			"username": user.Username,
			"email":    user.Email,
		})
		return
	}
	http.Redirect(w, r, expensesPath(user.ID), http.StatusSeeOther)
}

// ExpenseForm renders the form to create a new expense for the user in scope.
func (h *Handlers) ExpenseForm(w http.ResponseWriter, r *http.Request) {
	routeID := r.PathValue("userId")
	resolved := h.svc.ResolveUser(r.Context(), routeID)
	form := h.svc.ExpenseForm(resolved, routeID)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, form)
		return
	}
	h.render(w, r, http.StatusOK, "expenses.html", FormViewModel{
		UserID:            form.UserID,
		Message:           form.Message,
		ShowHistoryChoice: form.ShowHistoryChoice,
		Categories:        categories,
	})
}

// CreateExpense handles the creation of a new expense.
func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var in tracker.ExpenseInput
	if err := decodeRequest(w, r, &in, func(form func(string) string) {
		if v := form("userId"); v != "" {
			in.UserID = v
		}
		in.Title = form("title")
		in.Amount = form("amount")
		in.Description = form("description")
		in.Category = form("category")
		in.Date = form("date")
	}); err != nil {
		h.badRequest(w, r, err)
		return
	}
	in.RouteUserID = r.PathValue("userId")

	resolved := h.svc.ResolveUser(r.Context(), in.RouteUserID, in.UserID)
	result, err := h.svc.CreateExpense(r.Context(), resolved, in)
	if err != nil {
		if errors.Is(err, tracker.ErrValidation) && !wantsJSON(r) {
			h.render(w, r, http.StatusBadRequest, "expenses.html", FormViewModel{
				UserID:     h.svc.ExpenseForm(resolved, in.RouteUserID).UserID,
				Error:      "Error creating expense: " + err.Error(),
				Input:      in,
				Categories: categories,
			})
			return
		}
		h.writeError(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, result)
		return
	}
	h.render(w, r, http.StatusOK, "expenses.html", FormViewModel{
		UserID:            result.UserID,
		Message:           result.Message,
		ShowHistoryChoice: result.ShowHistoryChoice,
		Categories:        categories,
	})
}

// History renders the user's expenses, most recent first.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	routeID := r.PathValue("userId")
	resolved := h.svc.ResolveUser(r.Context(), routeID)

	result, err := h.svc.History(r.Context(), resolved, routeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}
	h.render(w, r, http.StatusOK, "history.html", newHistoryViewModel(result))
}

// Health reports whether the store answers a ping.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("health check failed")
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}

func expensesPath(userID string) string {
	return "/api/users/" + userID + "/expenses"
}

// decodeRequest fills dst from a JSON body, or calls fromForm with a lookup
// over the submitted form fields.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any, fromForm func(form func(string) string)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if isJSONBody(r) {
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		return dec.Decode(dst)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	fromForm(r.PostForm.Get)
	return nil
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func wantsJSON(r *http.Request) bool {
	return isJSONBody(r) || strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handlers) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.log.WithError(err).Debug("malformed request body")
	if wantsJSON(r) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	http.Error(w, "Invalid request body", http.StatusBadRequest)
}

// writeError maps workflow errors onto status codes.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	http.Error(w, msg, status)
}

func classify(err error) (int, string) {
	var verr *tracker.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error()
	case errors.Is(err, tracker.ErrMissingUser):
		return http.StatusBadRequest, "User ID required"
	case errors.Is(err, tracker.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "Not found"
	}
	return http.StatusInternalServerError, "Internal server error"
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, viewName string, data any) {
	tmpl, err := template.ParseFiles(filepath.Join(h.templateDir, "base.html"), filepath.Join(h.templateDir, viewName))
	if err != nil {
		h.log.WithError(err).WithField("view", viewName).Error("template error")
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		h.log.WithError(err).WithField("view", viewName).Error("template execution error")
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
