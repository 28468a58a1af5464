package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DrashtiGohil19/bookingcrown/libs/auth"
	"github.com/DrashtiGohil19/bookingcrown/libs/httpx"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/availability"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/bookings"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/clock"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"
	"github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/storage"
	"github.com/go-playground/validator/v10"
)

const (
	msgBookingConflict = "Booking already exists for the given time and date"
	msgBookingCreated  = "Booking created succesfully"
	msgBookingUpdated  = "Booking updated successfully"
	msgBookingDeleted  = "Booking deleted successfully"
	msgBookingsFound   = "Booking data retrieved successfully"
	msgNoBookings      = "No bookings found"
	msgBookingNotFound = "Booking not found"
)

type ProfileLookup interface {
	Get(ctx context.Context, ownerID string) (model.OwnerProfile, error)
}

type SlotSource interface {
	HourlyWindowsOn(ctx context.Context, ownerID, item string, day time.Time) ([]model.TimeWindow, error)
}

// OpeningHours bounds the free-slot search. Step is the spacing of candidate starts in minutes.
type OpeningHours struct {
	Window model.TimeWindow
	Step   int
}

type BookingHandler struct {
	writer   *bookings.Writer
	profiles ProfileLookup
	slots    SlotSource
	clock    *clock.Clock
	hours    OpeningHours
	logger   *slog.Logger
	validate *validator.Validate
}

func NewBookingHandler(writer *bookings.Writer, profiles ProfileLookup, slots SlotSource, clk *clock.Clock, hours OpeningHours, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		writer:   writer,
		profiles: profiles,
		slots:    slots,
		clock:    clk,
		hours:    hours,
		logger:   logger,
		validate: newValidator(),
	}
}

type timeRequest struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

type installmentRequest struct {
	Amount float64 `json:"amount" validate:"gte=0"`
	Date   string  `json:"date" validate:"required"`
	Status string  `json:"status"`
}

// bookingRequest is the create and update body. Absent fields stay nil; item, date
// and the mobile number accept the shapes older clients send.
type bookingRequest struct {
	CustomerName *string              `json:"customerName" validate:"omitempty,max=120"`
	MobileNumber *looseString         `json:"mobileNumber" validate:"omitempty,len=10,numeric"`
	MobileNu     *looseString         `json:"mobilenu" validate:"omitempty,len=10,numeric"`
	Item         stringList           `json:"item"`
	Items        stringList           `json:"items"`
	Date         json.RawMessage      `json:"date"`
	DateRange    []string             `json:"dateRange"`
	Time         *timeRequest         `json:"time"`
	TotalHours   *string              `json:"totalHours"`
	Session      *string              `json:"session"`
	PaymentType  *string              `json:"paymentType"`
	Installments []installmentRequest `json:"installments" validate:"omitempty,dive"`
	Installment  []installmentRequest `json:"installment" validate:"omitempty,dive"`
	Amount       *float64             `json:"amount" validate:"omitempty,gte=0"`
	Advance      *float64             `json:"advance" validate:"omitempty,gte=0"`
	Pending      *float64             `json:"pending" validate:"omitempty,gte=0"`
	Description  *string              `json:"description"`
	Note         *string              `json:"note"`
	FullyPaid    bool                 `json:"fullyPaid"`
}

// normalize drops blank optional strings so they are treated as absent.
func (req *bookingRequest) normalize() {
	for _, p := range []**looseString{&req.MobileNumber, &req.MobileNu} {
		if *p != nil && strings.TrimSpace(string(**p)) == "" {
			*p = nil
		}
	}
}

func (req *bookingRequest) fields() (bookings.Fields, error) {
	f := bookings.Fields{
		CustomerName: req.CustomerName,
		TotalHours:   req.TotalHours,
		Session:      req.Session,
		PaymentType:  req.PaymentType,
		Amount:       req.Amount,
		Advance:      req.Advance,
		Pending:      req.Pending,
		Description:  req.Description,
		Note:         req.Note,
		DateRange:    req.DateRange,
	}

	mobile := req.MobileNumber
	if mobile == nil {
		mobile = req.MobileNu
	}
	if mobile != nil {
		s := string(*mobile)
		f.MobileNumber = &s
	}

	switch {
	case req.Items != nil:
		f.Items = req.Items
	case req.Item != nil:
		f.Items = req.Item
	}

	raw := bytes.TrimSpace(req.Date)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		var dates stringList
		if err := json.Unmarshal(raw, &dates); err != nil {
			return bookings.Fields{}, errors.New("date must be a date or a [start, end] list")
		}
		if raw[0] == '[' {
			if f.DateRange == nil {
				f.DateRange = dates
			}
		} else {
			f.Date = &dates[0]
		}
	}

	if req.Time != nil {
		f.Time = &bookings.TimeInput{Start: req.Time.Start, End: req.Time.End}
	}

	installments := req.Installments
	if installments == nil {
		installments = req.Installment
	}
	if installments != nil {
		list := make([]bookings.InstallmentInput, 0, len(installments))
		for _, in := range installments {
			list = append(list, bookings.InstallmentInput{Amount: in.Amount, Date: in.Date, Status: in.Status})
		}
		f.Installments = &list
	}
	return f, nil
}

func (h *BookingHandler) decode(w http.ResponseWriter, r *http.Request) (bookings.Fields, bool, bool) {
	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid json body: "+err.Error())
		return bookings.Fields{}, false, false
	}
	req.normalize()
	if err := h.validate.Struct(req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, validationMessage(err))
		return bookings.Fields{}, false, false
	}
	f, err := req.fields()
	if err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, err.Error())
		return bookings.Fields{}, false, false
	}
	return f, req.FullyPaid, true
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	f, _, ok := h.decode(w, r)
	if !ok {
		return
	}

	b, err := h.writer.Create(r.Context(), auth.OwnerID(r.Context()), kindFor(claims, f), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.Annotate(r.Context(), "booking_id", b.ID)
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		"success": true,
		"message": msgBookingCreated,
		"booking": newBookingView(b),
	})
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerID(r.Context())
	id := r.PathValue("id")
	f, fullyPaid, ok := h.decode(w, r)
	if !ok {
		return
	}

	b, err := h.writer.Update(r.Context(), ownerID, id, f, fullyPaid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.Annotate(r.Context(), "booking_id", id)
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		"success": true,
		"message": msgBookingUpdated,
		"booking": newBookingView(b),
	})
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.writer.Delete(r.Context(), auth.OwnerID(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.Annotate(r.Context(), "booking_id", id)
	httpx.WriteMessage(w, http.StatusOK, msgBookingDeleted)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.writer.List(r.Context(), auth.OwnerID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if len(list) == 0 {
		httpx.WriteMessage(w, http.StatusBadRequest, msgNoBookings)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		"success":  true,
		"message":  msgBookingsFound,
		"bookings": newBookingViews(list),
	})
}

// Get is public: a customer can open a booking link and see the venue's details.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.writer.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, bookings.ErrNotFound) {
			httpx.WriteMessage(w, http.StatusNotFound, msgNoBookings)
			return
		}
		h.writeError(w, r, err)
		return
	}

	view := newBookingView(b)
	profile, err := h.profiles.Get(r.Context(), b.OwnerID)
	switch {
	case err == nil:
		view.OwnerData = newOwnerView(profile)
	case errors.Is(err, storage.ErrNotFound):
	default:
		h.logger.Warn("owner profile lookup failed", "owner_id", b.OwnerID, "err", err)
	}

	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		"success":  true,
		"message":  msgBookingsFound,
		"bookings": view,
	})
}

type slotView struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailableSlots lists the free hourly windows for ?item=&date=&duration= (minutes, default 60).
func (h *BookingHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	item := strings.TrimSpace(q.Get("item"))
	if item == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, "item is required")
		return
	}
	day, err := h.clock.ParseDate(q.Get("date"))
	if err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	duration := 60
	if raw := q.Get("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration <= 0 || duration > model.MinutesPerDay {
			httpx.WriteMessage(w, http.StatusBadRequest, "duration must be a positive number of minutes")
			return
		}
	}

	ownerID := auth.OwnerID(r.Context())
	busy, err := h.slots.HourlyWindowsOn(r.Context(), ownerID, item, day)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	// Windows from the previous day that run past midnight also block the early hours.
	prev, err := h.slots.HourlyWindowsOn(r.Context(), ownerID, item, day.AddDate(0, 0, -1))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	for _, p := range prev {
		if p.End > model.MinutesPerDay {
			busy = append(busy, model.TimeWindow{Start: 0, End: p.End - model.MinutesPerDay})
		}
	}

	free := availability.FreeSlots(h.hours.Window, h.hours.Step, duration, busy)
	if day.Equal(h.clock.Today()) {
		now := h.clock.Now()
		free = availability.StartingFrom(free, now.Hour()*60+now.Minute())
	}

	out := make([]slotView, 0, len(free))
	for _, s := range free {
		out = append(out, slotView{Start: clock.FormatWallClock(s.Start), End: clock.FormatWallClock(s.End)})
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		"success": true,
		"message": fmt.Sprintf("%d slots available", len(out)),
		"date":    clock.FormatDate(day),
		"item":    item,
		"slots":   out,
	})
}

func (h *BookingHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, bookings.ErrConflict):
		httpx.WriteMessage(w, http.StatusBadRequest, msgBookingConflict)
	case errors.Is(err, bookings.ErrNotFound):
		httpx.WriteMessage(w, http.StatusNotFound, msgBookingNotFound)
	case errors.Is(err, bookings.ErrInvalid):
		httpx.WriteMessage(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), bookings.ErrInvalid.Error()+": "))
	default:
		h.logger.Error("booking request failed", "err", err, "path", r.URL.Path, "request_id", httpx.RequestIDFromContext(r.Context()))
		httpx.WriteServerError(w, err)
	}
}

// kindFor decides how a new booking is scheduled. The token's kind wins; tokens
// without one fall back to the business type and then to the request's shape.
func kindFor(claims *auth.Claims, f bookings.Fields) model.Kind {
	if claims != nil {
		if k, ok := model.ParseKind(claims.Kind); ok {
			return k
		}
		if claims.BusinessType != "" {
			return model.KindForBusinessType(claims.BusinessType)
		}
	}
	if f.DateRange != nil || f.Session != nil {
		return model.KindDaily
	}
	return model.KindHourly
}
