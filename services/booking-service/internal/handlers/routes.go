package handlers

import "net/http"

// Mount registers the booking service API on mux. Every route except the public
// booking view goes through requireOwner.
func Mount(mux *http.ServeMux, requireOwner func(http.Handler) http.Handler, b *BookingHandler, e *ExpenseHandler, rep *ReportHandler) {
	owner := func(fn http.HandlerFunc) http.Handler { return requireOwner(annotateOwner(fn)) }

	mux.Handle("POST /api/createBooking", owner(b.Create))
	mux.Handle("PUT /api/updateBooking/{id}", owner(b.Update))
	mux.Handle("DELETE /api/deleteBooking/{id}", owner(b.Delete))
	mux.Handle("GET /api/getAllBookings", owner(b.List))
	mux.Handle("GET /api/availableSlots", owner(b.AvailableSlots))
	mux.HandleFunc("GET /api/getSingleBooking/{id}", b.Get)

	mux.Handle("POST /api/add-expense", owner(e.Create))
	mux.Handle("GET /api/all-expense", owner(e.List))
	mux.Handle("GET /api/get-expense/{id}", owner(e.Get))
	mux.Handle("PUT /api/update-expense/{id}", owner(e.Update))
	mux.Handle("DELETE /api/delete-expense/{id}", owner(e.Delete))

	mux.Handle("GET /api/all-income-expense", owner(rep.Monthly))
	mux.Handle("GET /api/income-expense/export", owner(rep.Export))
}
