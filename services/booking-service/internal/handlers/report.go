package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/libs/auth"
	"github.com/DrashtiGohil19/bookingcrown/libs/httpx"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/clock"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/reports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reports *reports.Service
	clock   *clock.Clock
	logger  *slog.Logger
}

func NewReportHandler(svc *reports.Service, clk *clock.Clock, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: svc, clock: clk, logger: logger}
}

// monthBounds reads ?month= as YYYY-MM or any date inside the month; absent means this month.
func (h *ReportHandler) monthBounds(r *http.Request) (time.Time, time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	if raw == "" {
		first, last := clock.MonthBounds(h.clock.Today())
		return first, last, nil
	}
	if first, last, err := h.clock.ParseMonth(raw); err == nil {
		return first, last, nil
	}
	day, err := h.clock.ParseDate(raw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	first, last := clock.MonthBounds(day)
	return first, last, nil
}

func (h *ReportHandler) summary(w http.ResponseWriter, r *http.Request) (reports.Summary, bool) {
	first, last, err := h.monthBounds(r)
	if err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "month must be YYYY-MM")
		return reports.Summary{}, false
	}
	sum, err := h.reports.Monthly(r.Context(), auth.OwnerID(r.Context()), first, last)
	if err != nil {
		h.logger.Error("monthly report failed", "err", err, "month", first.Format(clock.MonthLayout))
		httpx.WriteJSON(w, http.StatusInternalServerError, httpx.Envelope{
			"success": false,
			"message": "An error occurred while creating expense data",
			"error":   err.Error(),
		})
		return reports.Summary{}, false
	}
	return sum, true
}

func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	sum, ok := h.summary(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		"success": true,
		"message": fmt.Sprintf("Income and Expense data for %s retrieved successfully.", sum.Label()),
		"incomeData": httpx.Envelope{
			"data":        newBookingViews(sum.Bookings),
			"totalIncome": sum.TotalIncome,
		},
		"expenseData": httpx.Envelope{
			"data":         newExpenseViews(sum.Expenses),
			"totalExpense": sum.TotalExpense,
		},
		"profitOrLoss": sum.ProfitOrLoss,
	})
}

func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	sum, ok := h.summary(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := reports.ExportXLSX(&buf, sum); err != nil {
		h.logger.Error("report export failed", "err", err)
		httpx.WriteServerError(w, err)
		return
	}
	name := fmt.Sprintf("income-expense-%s.xlsx", sum.First.Format(clock.MonthLayout))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
