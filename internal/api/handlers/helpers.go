package handlers

import (
	"delivery-dispatch-service/internal/api/dto"
	"delivery-dispatch-service/internal/domain"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("encode failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// Clock supplies the wall-clock time used when a request omits "at".
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// reportTime reads the "at" query parameter ("10:30", "10:30 AM").
// An empty value means the current time of day.
func reportTime(r *http.Request, clock Clock) (domain.TimeOfDay, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("at"))
	if raw == "" {
		return domain.TimeOfDayOf(clock.now()), nil
	}

	at, err := domain.ParseClock(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid at %q: use HH:MM", raw)
	}
	return at, nil
}

func locationResponse(loc domain.Location) dto.LocationResponse {
	return dto.LocationResponse{Name: loc.Name, Address: loc.Address.String()}
}
