package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/DrashtiGohil19/bookingcrown/libs/auth"
	"github.com/DrashtiGohil19/bookingcrown/libs/httpx"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/clock"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgExpenseFieldsRequired = "Date, description, and amount fields are required."
	msgExpenseAdded          = "Expense detail added successfully."
	msgExpenseUpdated        = "Expense updated successfully."
	msgExpenseDeleted        = "Expense detail deleted successfully."
	msgExpenseNotFound       = "Expense not found."
	msgExpensesFound         = "Expense data retrieved successfully."
)

type ExpenseStore interface {
	Create(ctx context.Context, e model.Expense) error
	Get(ctx context.Context, ownerID, id string) (model.Expense, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Expense, error)
	Update(ctx context.Context, e model.Expense) error
	Delete(ctx context.Context, ownerID, id string) error
}

type ExpenseRecorder interface {
	ExpenseWritten(op string)
}

type ExpenseHandler struct {
	store    ExpenseStore
	clock    *clock.Clock
	metrics  ExpenseRecorder
	logger   *slog.Logger
	validate *validator.Validate
}

func NewExpenseHandler(store ExpenseStore, clk *clock.Clock, metrics ExpenseRecorder, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		store:    store,
		clock:    clk,
		metrics:  metrics,
		logger:   logger,
		validate: newValidator(),
	}
}

type expenseRequest struct {
	Date        string   `json:"date" validate:"required"`
	Description string   `json:"description" validate:"required,max=500"`
	Amount      *float64 `json:"amount" validate:"required,gt=0"`
}

// decode returns the parsed expense fields, or writes a 400 and reports false.
func (h *ExpenseHandler) decode(w http.ResponseWriter, r *http.Request) (model.Expense, bool) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid json body: "+err.Error())
		return model.Expense{}, false
	}
	req.Description = strings.TrimSpace(req.Description)
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Tag() == "required" {
			httpx.WriteMessage(w, http.StatusBadRequest, msgExpenseFieldsRequired)
			return model.Expense{}, false
		}
		httpx.WriteMessage(w, http.StatusBadRequest, validationMessage(err))
		return model.Expense{}, false
	}
	day, err := h.clock.ParseDate(req.Date)
	if err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return model.Expense{}, false
	}
	return model.Expense{Date: day, Description: req.Description, Amount: *req.Amount}, true
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	e, ok := h.decode(w, r)
	if !ok {
		return
	}
	now := h.clock.Now()
	e.ID = uuid.NewString()
	e.OwnerID = auth.OwnerID(r.Context())
	e.CreatedAt, e.UpdatedAt = now, now

	if err := h.store.Create(r.Context(), e); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.metrics.ExpenseWritten("create")
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		"success": true,
		"message": msgExpenseAdded,
		"data":    newExpenseView(e),
	})
}

func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListByOwner(r.Context(), auth.OwnerID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		"success": true,
		"message": msgExpensesFound,
		"data":    newExpenseViews(list),
	})
}

func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.Get(r.Context(), auth.OwnerID(r.Context()), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		"success": true,
		"message": msgExpensesFound,
		"data":    newExpenseView(e),
	})
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerID(r.Context())
	id := r.PathValue("id")
	next, ok := h.decode(w, r)
	if !ok {
		return
	}

	e, err := h.store.Get(r.Context(), ownerID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	e.Date, e.Description, e.Amount = next.Date, next.Description, next.Amount
	e.UpdatedAt = h.clock.Now()
	if err := h.store.Update(r.Context(), e); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.metrics.ExpenseWritten("update")
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		"success": true,
		"message": msgExpenseUpdated,
		"data":    newExpenseView(e),
	})
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), auth.OwnerID(r.Context()), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.metrics.ExpenseWritten("delete")
	httpx.WriteMessage(w, http.StatusOK, msgExpenseDeleted)
}

func (h *ExpenseHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		httpx.WriteMessage(w, http.StatusNotFound, msgExpenseNotFound)
		return
	}
	h.logger.Error("expense request failed", "err", err, "path", r.URL.Path, "request_id", httpx.RequestIDFromContext(r.Context()))
	httpx.WriteServerError(w, err)
}
