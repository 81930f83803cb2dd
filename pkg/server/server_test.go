package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sarunasign/btd/pkg/baltic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, upstream http.HandlerFunc) *httptest.Server {
	t.Helper()
	api := httptest.NewServer(upstream)
	t.Cleanup(api.Close)

	s := &Server{
		apiBaseURL:  api.URL,
		corsOrigins: []string{"*"},
		serverName:  "btd",
		client:      api.Client(),
	}
	srv := httptest.NewServer(s.setupHandler())
	t.Cleanup(srv.Close)
	return srv
}

func TestServer(t *testing.T) {
	upstreamBody := `{"data":{
		"columns":[
			{"index":0,"group_level_0":"Estonia"},
			{"index":1,"group_level_0":"Latvia"}
		],
		"timeseries":[{"from":"2024-01-15T10:00:00Z","values":[1.5, 2.5]}]
	}}`

	t.Run("ListSeries", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

		resp, err := http.Get(srv.URL + "/api/series")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "btd", resp.Header.Get("Server"))

		var entries []baltic.Series
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
		assert.Len(t, entries, 15)
	})

	t.Run("SeriesJSON", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "imbalance_volumes_v2", r.URL.Query().Get("id"))
			assert.Equal(t, "2024-01-15T00:00", r.URL.Query().Get("start_date"))
			_, _ = w.Write([]byte(upstreamBody))
		})

		resp, err := http.Get(srv.URL + "/api/series/imbalance_volumes?start=2024-01-15&end=2024-01-16")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

		var frame struct {
			Columns []string `json:"columns"`
			Rows    []struct {
				Time   string `json:"time"`
				Values []any  `json:"values"`
			} `json:"rows"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&frame))
		assert.Equal(t, []string{"Estonia", "Latvia"}, frame.Columns)
		require.Len(t, frame.Rows, 1)
		// 10:00 UTC in January is 12:00 in Vilnius, rendered without offset
		assert.Equal(t, "2024-01-15T12:00:00", frame.Rows[0].Time)
		assert.Equal(t, []any{1.5, 2.5}, frame.Rows[0].Values)
	})

	t.Run("SeriesCSV", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(upstreamBody))
		})

		resp, err := http.Get(srv.URL + "/api/series/imbalance_volumes?start=2024-01-15&end=2024-01-16&format=csv")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "imbalance_volumes.csv")

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(body)), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "time,Estonia,Latvia", lines[0])
		assert.Equal(t, "2024-01-15 12:00:00,1.5,2.5", lines[1])
	})

	t.Run("UnknownSeries", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("upstream should not be called for unknown series")
		})

		resp, err := http.Get(srv.URL + "/api/series/nope?start=2024-01-15&end=2024-01-16")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("InvalidDates", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("upstream should not be called for invalid dates")
		})

		resp, err := http.Get(srv.URL + "/api/series/imbalance_volumes?start=2024-13-01&end=2024-01-16")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var errResp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Contains(t, errResp.Error, "invalid date range")
	})

	t.Run("DefaultDateRange", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			start := r.URL.Query().Get("start_date")
			assert.Equal(t, time.Now().AddDate(0, 0, -1).Format("2006-01-02")+"T00:00", start)
			_, _ = w.Write([]byte(upstreamBody))
		})

		resp, err := http.Get(srv.URL + "/api/series/imbalance_volumes")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("UpstreamError", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusInternalServerError)
		})

		resp, err := http.Get(srv.URL + "/api/series/imbalance_volumes?start=2024-01-15&end=2024-01-16")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var errResp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Contains(t, errResp.Error, "500")
	})

	t.Run("Healthz", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))
	})
}
