package httpx

import (
	"net/http"
	"strings"

	"github.com/DrashtiGohil19/bookingcrown/libs/config"
)

const (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsHeaders = "Authorization, Content-Type, " + RequestIDHeader
	// The report download reads its filename from Content-Disposition.
	corsExposed = "Content-Disposition, " + RequestIDHeader
	corsMaxAge  = "600"
)

// BrowserOrigins lists the web client origins allowed to call the API with a
// bearer token. An empty set disables CORS headers entirely.
type BrowserOrigins struct {
	any     bool
	origins map[string]struct{}
}

// NewBrowserOrigins accepts exact origins, compared case-insensitively, or "*".
func NewBrowserOrigins(origins ...string) BrowserOrigins {
	b := BrowserOrigins{origins: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
		switch o {
		case "":
		case "*":
			b.any = true
		default:
			b.origins[o] = struct{}{}
		}
	}
	return b
}

// BrowserOriginsFromEnv reads the comma separated CORS_ALLOWED_ORIGINS.
func BrowserOriginsFromEnv() BrowserOrigins {
	return NewBrowserOrigins(config.List("CORS_ALLOWED_ORIGINS")...)
}

func (b BrowserOrigins) Empty() bool {
	return !b.any && len(b.origins) == 0
}

func (b BrowserOrigins) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	if b.any {
		return true
	}
	_, ok := b.origins[strings.ToLower(origin)]
	return ok
}

// WithCORS echoes allowed origins back with credentials enabled and answers
// preflight requests itself. Requests from other origins pass through untouched.
func WithCORS(allowed BrowserOrigins) Middleware {
	return func(next http.Handler) http.Handler {
		if allowed.Empty() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()
			h.Add("Vary", "Origin")
			if !allowed.Allows(origin) {
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", corsExposed)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Max-Age", corsMaxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
