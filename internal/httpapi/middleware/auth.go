package middleware

import (
	"net/http"
	"strings"
)

// Keys holds the configured API keys per role. Empty sets disable the
// corresponding check, which keeps local development friction-free.
type Keys struct {
	Public []string
	Admin  []string
}

func presentedKey(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if k := r.Header.Get("X-API-Key"); k != "" {
		return strings.TrimSpace(k)
	}
	return ""
}

func matches(given string, set []string) bool {
	if given == "" {
		return false
	}
	for _, k := range set {
		if k == given {
			return true
		}
	}
	return false
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

// RequireReader admits requests carrying either a public or admin key.
// With no keys configured it admits everything.
func RequireReader(keys Keys) func(http.Handler) http.Handler {
	enabled := len(keys.Public) > 0 || len(keys.Admin) > 0
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := presentedKey(r)
			if matches(key, keys.Public) || matches(key, keys.Admin) {
				next.ServeHTTP(w, r)
				return
			}
			deny(w, http.StatusUnauthorized, "unauthorized")
		})
	}
}

// RequireAdmin only admits requests carrying an admin key (run triggers
// hit the network on behalf of the caller, so readers don't qualify).
func RequireAdmin(keys Keys) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(keys.Admin) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if matches(presentedKey(r), keys.Admin) {
				next.ServeHTTP(w, r)
				return
			}
			deny(w, http.StatusForbidden, "forbidden")
		})
	}
}
