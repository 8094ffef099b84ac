package api

import (
	"context"
	"net/http"
	"strings"
)

// RequestBaseURL returns the base URL recorded for the inbound request carried
// by ctx. It reports false outside request scope.
func RequestBaseURL(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	url, ok := ctx.Value(baseURLContextKey).(string)
	if !ok || url == "" {
		return "", false
	}
	return url, true
}

// baseURLMiddleware records scheme://host[prefix] of each request in its context.
// Reverse proxy headers take precedence over the connection itself.
func baseURLMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), baseURLContextKey, baseURLFromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func baseURLFromRequest(r *http.Request) string {
	proto := firstHeaderValue(r.Header.Get("X-Forwarded-Proto"))
	if proto == "" {
		if r.TLS != nil {
			proto = "https"
		} else {
			proto = "http"
		}
	}

	host := firstHeaderValue(r.Header.Get("X-Forwarded-Host"))
	if host == "" {
		host = r.Host
	}

	prefix := strings.TrimRight(firstHeaderValue(r.Header.Get("X-Forwarded-Prefix")), "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	return strings.ToLower(proto) + "://" + host + prefix
}

// firstHeaderValue takes the client-most entry of a comma separated proxy header.
func firstHeaderValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
