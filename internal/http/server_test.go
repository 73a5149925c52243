package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"nadgodziny/internal/core"
	"nadgodziny/internal/log"
	"nadgodziny/internal/profile"
	"nadgodziny/internal/storage"
	"nadgodziny/internal/store"
)

type blobMap struct {
	data map[string][]byte
}

func newBlobMap() *blobMap {
	return &blobMap{data: map[string][]byte{}}
}

func (b *blobMap) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := b.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrKeyNotFound, key)
	}
	return v, nil
}

func (b *blobMap) Put(_ context.Context, key string, value []byte) error {
	b.data[key] = value
	return nil
}

type fakeQueue struct {
	year, month int
	calls       int
	err         error
}

func (q *fakeQueue) PublishReportRequest(_ context.Context, year, month int) error {
	q.calls++
	q.year, q.month = year, month
	return q.err
}

type fakeGeocoder struct {
	city string
	err  error
}

func (g *fakeGeocoder) Resolve(_ context.Context, _ core.Coordinates) (string, error) {
	return g.city, g.err
}

func newTestServer(t *testing.T, reports ReportQueue, geocoder Geocoder) *Server {
	t.Helper()
	return newTestServerWithBlobs(t, newBlobMap(), reports, geocoder)
}

func newTestServerWithBlobs(t *testing.T, blobs *blobMap, reports ReportQueue, geocoder Geocoder) *Server {
	t.Helper()
	logger := log.New(log.DefaultConfig())
	records := store.Open(context.Background(), blobs, logger)
	profiles := profile.NewCoordinator(records, nil, logger)
	return NewServer(records, profiles, reports, geocoder, logger)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func onboard(t *testing.T, s *Server) core.User {
	t.Helper()
	rec := doJSON(t, s, http.MethodPut, "/api/profile", map[string]any{
		"name":             "Jan Kowalski",
		"email":            "jan@example.com",
		"department":       "IT",
		"supervisorEmail":  "szef@example.com",
		"notificationTime": "18:00",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var u core.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	return u
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestProfileLifecycle(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	u := onboard(t, s)
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", u.ID.String())
	require.True(t, u.IsActive)

	rec = doJSON(t, s, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got core.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "jan@example.com", got.Email)

	// Updating the profile keeps its identity.
	rec = doJSON(t, s, http.MethodPut, "/api/profile", map[string]any{
		"name":             "Jan Kowalski",
		"email":            "jan.nowy@example.com",
		"department":       "IT",
		"supervisorEmail":  "szef@example.com",
		"notificationTime": "19:30",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated core.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, u.ID, updated.ID)
	require.Equal(t, "jan.nowy@example.com", updated.Email)
}

func TestPutProfileRejectsIncomplete(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doJSON(t, s, http.MethodPut, "/api/profile", map[string]any{
		"name":  "Jan",
		"email": "",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAddEntryRequiresProfile(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/entries", map[string]any{
		"hours": 2.5,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestEntriesLifecycle(t *testing.T) {
	s := newTestServer(t, nil, nil)
	u := onboard(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/entries", map[string]any{
		"date":        time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC),
		"hours":       2.5,
		"description": "wdrożenie",
		"city":        "Warszawa",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created core.Overtime
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, u.ID, created.UserID)
	require.InDelta(t, 2.5, created.Hours, 1e-9)

	rec = doJSON(t, s, http.MethodPost, "/api/entries", map[string]any{
		"date":  time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
		"hours": 1.0,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/entries", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []core.Overtime
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	require.True(t, entries[0].Date.After(entries[1].Date))

	rec = doJSON(t, s, http.MethodGet, "/api/entries?year=2024&month=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	require.Equal(t, "wdrożenie", entries[0].Description)

	rec = doJSON(t, s, http.MethodDelete, "/api/entries", map[string]any{
		"positions": []int{0},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/entries", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
}

func TestListEntriesOnlyShowsOwnEntries(t *testing.T) {
	owner := core.User{
		ID:               uuid.New(),
		Name:             "Jan Kowalski",
		Email:            "jan@example.com",
		Department:       "IT",
		SupervisorEmail:  "szef@example.com",
		NotificationTime: core.ClockTime{Hour: 18},
		IsActive:         true,
	}
	blobs := newBlobMap()

	profileJSON, err := json.Marshal(owner)
	require.NoError(t, err)
	blobs.data["currentUser"] = profileJSON

	entriesJSON, err := json.Marshal([]core.Overtime{
		{ID: uuid.New(), UserID: owner.ID, Date: time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC), Hours: 2},
		{ID: uuid.New(), UserID: uuid.New(), Date: time.Date(2024, 3, 6, 18, 0, 0, 0, time.UTC), Hours: 4},
	})
	require.NoError(t, err)
	blobs.data["savedOvertimes"] = entriesJSON

	s := newTestServerWithBlobs(t, blobs, nil, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/entries", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []core.Overtime
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	require.Equal(t, owner.ID, entries[0].UserID)
}

func TestAddEntryRejectsNegativeHours(t *testing.T) {
	s := newTestServer(t, nil, nil)
	onboard(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/entries", map[string]any{
		"hours": -1.0,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAddEntryRejectsBadCoordinates(t *testing.T) {
	s := newTestServer(t, nil, nil)
	onboard(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/entries", map[string]any{
		"hours":     1.0,
		"latitude":  120.0,
		"longitude": 21.0,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStats(t *testing.T) {
	s := newTestServer(t, nil, nil)
	onboard(t, s)

	now := time.Now()
	for _, hours := range []float64{1.5, 2.0} {
		rec := doJSON(t, s, http.MethodPost, "/api/entries", map[string]any{
			"date":  now,
			"hours": hours,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		TodayHours float64 `json:"todayHours"`
		MonthHours float64 `json:"monthHours"`
		TotalHours float64 `json:"totalHours"`
		Days       []struct {
			Hours float64 `json:"hours"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.InDelta(t, 3.5, stats.TodayHours, 1e-9)
	require.InDelta(t, 3.5, stats.MonthHours, 1e-9)
	require.InDelta(t, 3.5, stats.TotalHours, 1e-9)
	require.Len(t, stats.Days, 1)
	require.InDelta(t, 3.5, stats.Days[0].Hours, 1e-9)
}

func TestReportPreview(t *testing.T) {
	s := newTestServer(t, nil, nil)
	onboard(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/entries", map[string]any{
		"date":  time.Date(2024, 3, 5, 18, 30, 0, 0, time.Local),
		"hours": 2.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/report?year=2024&month=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rep struct {
		Recipient  string  `json:"recipient"`
		Subject    string  `json:"subject"`
		Body       string  `json:"body"`
		TotalHours float64 `json:"totalHours"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	require.Equal(t, "szef@example.com", rep.Recipient)
	require.Equal(t, "Raport nadgodzin za marca 2024", rep.Subject)
	require.True(t, strings.Contains(rep.Body, "2.5 godzin"))
	require.InDelta(t, 2.5, rep.TotalHours, 1e-9)
}

func TestReportPreviewRequiresProfile(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doJSON(t, s, http.MethodGet, "/api/report", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportSendQueues(t *testing.T) {
	queue := &fakeQueue{}
	s := newTestServer(t, queue, nil)
	onboard(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/report/send?year=2024&month=3", nil)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, queue.calls)
	require.Equal(t, 2024, queue.year)
	require.Equal(t, 3, queue.month)
}

func TestReportSendWithoutQueue(t *testing.T) {
	s := newTestServer(t, nil, nil)
	onboard(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/report/send", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Error, "Nie można wysłać maila")
}

func TestReportSendQueueFailure(t *testing.T) {
	queue := &fakeQueue{err: errors.New("broker down")}
	s := newTestServer(t, queue, nil)
	onboard(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/report/send", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGeocode(t *testing.T) {
	s := newTestServer(t, nil, &fakeGeocoder{city: "Kraków"})

	rec := doJSON(t, s, http.MethodGet, "/api/geocode?lat=50.06&lon=19.94", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"city":"Kraków"}`, rec.Body.String())
}

func TestGeocodeFailureYieldsEmptyCity(t *testing.T) {
	s := newTestServer(t, nil, &fakeGeocoder{err: errors.New("no locality")})

	rec := doJSON(t, s, http.MethodGet, "/api/geocode?lat=50.06&lon=19.94", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"city":""}`, rec.Body.String())
}

func TestGeocodeRequiresCoordinates(t *testing.T) {
	s := newTestServer(t, nil, &fakeGeocoder{city: "Kraków"})

	rec := doJSON(t, s, http.MethodGet, "/api/geocode?lat=50.06", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
