package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sarunasign/btd/pkg/baltic"
	"github.com/sarunasign/btd/pkg/log"
)

func (s *Server) handleListSeries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(baltic.Catalog()); err != nil {
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")
	if _, ok := baltic.Lookup(name); !ok {
		writeJSONError(w, "unknown series: "+name, http.StatusNotFound)
		return
	}

	start, end := parseDateRange(r)
	opts := []baltic.Option{baltic.WithHTTPClient(s.client)}
	if s.apiBaseURL != "" {
		opts = append(opts, baltic.WithBaseURL(s.apiBaseURL))
	}
	client, err := baltic.New(start, end, opts...)
	if err != nil {
		writeJSONError(w, "invalid date range: "+err.Error(), http.StatusBadRequest)
		return
	}

	frame, err := client.Series(ctx, name)
	if err != nil {
		var statusErr *baltic.StatusError
		if errors.As(err, &statusErr) {
			log.Ctx(ctx).ErrorContext(ctx, "upstream returned error status",
				slog.String("series", name), slog.Int("status", statusErr.StatusCode))
			writeJSONError(w, fmt.Sprintf("upstream returned status %d", statusErr.StatusCode), http.StatusBadGateway)
			return
		}
		log.Ctx(ctx).ErrorContext(ctx, "failed to fetch series",
			slog.String("series", name), slog.Any("error", err))
		writeJSONError(w, "failed to fetch series", http.StatusBadGateway)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
		if err := frame.WriteCSV(w); err != nil {
			panic(http.ErrAbortHandler)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(frame); err != nil {
		panic(http.ErrAbortHandler)
	}
}

// parseDateRange reads start/end query params. When absent it defaults to the
// last full day. Validation of the strings themselves is left to baltic.New.
func parseDateRange(r *http.Request) (string, string) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" && end == "" {
		now := time.Now()
		return now.AddDate(0, 0, -1).Format("2006-01-02"), now.Format("2006-01-02")
	}
	return start, end
}
