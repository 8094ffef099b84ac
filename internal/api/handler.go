package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/eugenenazirov/appsettings/internal/metrics"
)

type contextKey string

const (
	requestIDContextKey contextKey = "requestID"
	baseURLContextKey   contextKey = "baseURL"
)

// Settings is the read-only view of the settings store served over HTTP.
type Settings interface {
	Lookup(key string) (string, bool)
	Properties() map[string]string
	BaseURL(ctx context.Context) string
	IsProduction() bool
}

// Handler exposes the settings store through HTTP handlers.
type Handler struct {
	settings Settings
	clock    func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler over the provided settings.
func NewHandler(settings Settings, opts ...HandlerOption) *Handler {
	h := &Handler{
		settings: settings,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
		Mode:      modeName(h.settings.IsProduction()),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleBaseURL(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, baseURLResponse{BaseURL: h.settings.BaseURL(r.Context())})
}

func (h *Handler) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.PathValue("key"))
	if key == "" {
		writeError(w, http.StatusBadRequest, "Invalid request", "setting key must not be empty")
		return
	}

	value, ok := h.settings.Lookup(key)
	metrics.ObserveLookup(ok)
	if !ok {
		writeError(w, http.StatusNotFound, "Setting not found", "no setting named "+key)
		return
	}

	writeJSON(w, http.StatusOK, settingResponse{Key: key, Value: value})
}

func (h *Handler) handleListSettings(w http.ResponseWriter, _ *http.Request) {
	if h.settings.IsProduction() {
		writeError(w, http.StatusForbidden, "Forbidden", "settings listing is disabled in production mode")
		return
	}

	raw := h.settings.Properties()
	values := make(map[string]string, len(raw))
	for key := range raw {
		if value, ok := h.settings.Lookup(key); ok {
			values[key] = value
		}
	}

	writeJSON(w, http.StatusOK, settingsResponse{Settings: values, Count: len(values)})
}

func modeName(production bool) string {
	if production {
		return "production"
	}
	return "dev"
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Mode      string    `json:"mode"`
}

type baseURLResponse struct {
	BaseURL string `json:"baseUrl"`
}

type settingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type settingsResponse struct {
	Settings map[string]string `json:"settings"`
	Count    int               `json:"count"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}
