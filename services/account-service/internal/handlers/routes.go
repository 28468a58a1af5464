package handlers

import (
	"net/http"
)

// Mount registers the account API on mux. Profile routes require a valid owner token.
func Mount(mux *http.ServeMux, requireOwner func(http.Handler) http.Handler, h *AccountHandler) {
	mux.HandleFunc("POST /api/register", h.Register)
	mux.HandleFunc("POST /api/login", h.Login)
	mux.Handle("GET /api/getUserData", requireOwner(http.HandlerFunc(h.GetUserData)))
	mux.Handle("PUT /api/updateUser", requireOwner(http.HandlerFunc(h.UpdateUser)))
	mux.Handle("PUT /api/changePassword", requireOwner(http.HandlerFunc(h.ChangePassword)))
}
