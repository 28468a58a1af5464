package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/DrashtiGohil19/bookingcrown/libs/httpx"
)

// accountPaths are served by the account service; every other /api path belongs to bookings.
var accountPaths = []string{
	"/api/register",
	"/api/login",
	"/api/getUserData",
	"/api/updateUser",
	"/api/changePassword",
}

func registerRoutes(mux *http.ServeMux, accountURL, bookingURL *url.URL, transport http.RoundTripper) {
	accountProxy := newProxy(accountURL, transport)
	bookingProxy := newProxy(bookingURL, transport)

	for _, p := range accountPaths {
		mux.Handle(p, accountProxy)
	}
	mux.Handle("/api/", bookingProxy)
}

func newProxy(target *url.URL, transport http.RoundTripper) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = transport
	proxy.ErrorHandler = func(w http.ResponseWriter, _ *http.Request, _ error) {
		httpx.WriteMessage(w, http.StatusBadGateway, "upstream unavailable")
	}
	return proxy
}
