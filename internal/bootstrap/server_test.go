package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/Domenick1991/flightdesk/internal/service/directory"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/Domenick1991/flightdesk/internal/service/weather"
	"github.com/Domenick1991/flightdesk/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	log := logging.Discard()
	svc := Services{
		Flights: flights.NewFlightService(repository.NewSQLiteFlightRepository(store, log), flights.WithLogger(log)),
		Directory: directory.NewDirectoryService(
			repository.NewSQLitePilotRepository(store, log),
			repository.NewSQLiteAircraftRepository(store, log),
		),
		Weather: weather.NewWeatherService(config.Default().Weather,
			weather.WithEnvLookup(func(string) (string, bool) { return "", false })),
		Store: store,
	}

	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>flightdesk</h1>"), 0o600))

	return NewRouter(config.HTTPConfig{StaticDir: static}, svc, log)
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_FlightLifecycle(t *testing.T) {
	router := newTestRouter(t)
	departure := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	w := do(router, http.MethodPost, "/flights/schedule",
		`{"flight_id":1,"pilot_id":101,"aircraft_id":202,"flight_plan":"VFR direct","departure_time":"`+departure.Format(time.RFC3339)+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(router, http.MethodPost, "/flights/schedule",
		`{"flight_id":1,"pilot_id":101,"aircraft_id":202,"flight_plan":"again","departure_time":"`+departure.Format(time.RFC3339)+`"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Flight ID already exists.", w.Body.String())

	w = do(router, http.MethodGet, "/flights/view", "")
	require.Equal(t, http.StatusOK, w.Code)
	var upcoming []domain.Flight
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upcoming))
	require.Len(t, upcoming, 1)
	assert.Equal(t, "VFR direct", upcoming[0].FlightPlan)
	assert.True(t, upcoming[0].DepartureTime.Equal(departure))

	w = do(router, http.MethodGet, "/flights/history", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = do(router, http.MethodPut, "/flights/1/plan", `"IFR via VOR"`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/flights/view", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upcoming))
	require.Len(t, upcoming, 1)
	assert.Equal(t, "IFR via VOR", upcoming[0].FlightPlan)

	w = do(router, http.MethodDelete, "/flights/1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodDelete, "/flights/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Flight not found.", w.Body.String())
}

func TestRouter_Directory(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/pilots", "")
	require.Equal(t, http.StatusOK, w.Code)
	var pilots []domain.Pilot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pilots))
	assert.Len(t, pilots, 2)

	w = do(router, http.MethodGet, "/aircraft", "")
	require.Equal(t, http.StatusOK, w.Code)
	var aircraft []domain.Aircraft
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &aircraft))
	assert.Len(t, aircraft, 2)
}

func TestRouter_WeatherWithoutKey(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/weather?latitude=1.35&longitude=103.99", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Missing API key", w.Body.String())
}

func TestRouter_Ambient(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flightdesk")

	w = do(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flightdesk_http_requests_total")

	w = do(router, http.MethodPost, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_ScheduleRequiresIDs(t *testing.T) {
	router := newTestRouter(t)
	departure := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

	w := do(router, http.MethodPost, "/flights/schedule", `{"flight_plan":"VFR direct","departure_time":"`+departure+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/flights/view", "")
	assert.Equal(t, "[]", w.Body.String())

	w = do(router, http.MethodPut, "/flights/0/plan", `"IFR via VOR"`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodDelete, "/flights/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
