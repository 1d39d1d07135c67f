package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-events-service/internal/config"
	"plate-events-service/internal/domain/anpr"
	"plate-events-service/internal/repository"
	"plate-events-service/internal/service"
)

const testSecret = "test-secret"

type stubStore struct {
	reads   []repository.PlateRead
	created int
}

func (s *stubStore) CreateRead(_ context.Context, read *anpr.Read) error {
	s.created++
	read.ID = int64(s.created)
	return nil
}

func (s *stubStore) CountReads(context.Context, anpr.ReadFilter) (int64, error) {
	return int64(len(s.reads)), nil
}

func (s *stubStore) ListReads(_ context.Context, _ anpr.ReadFilter, limit, offset int) ([]repository.PlateRead, error) {
	if offset >= len(s.reads) {
		return nil, nil
	}
	return s.reads[offset:min(offset+limit, len(s.reads))], nil
}

func (s *stubStore) FindReadsForGrouping(_ context.Context, _ anpr.ReadFilter, limit int) ([]repository.PlateRead, error) {
	if limit > 0 && limit < len(s.reads) {
		return s.reads[:limit], nil
	}
	return s.reads, nil
}

func (s *stubStore) DailyCounts(context.Context, time.Time) ([]anpr.DailyCount, error) {
	return []anpr.DailyCount{}, nil
}

func (s *stubStore) HourlyCounts(context.Context, time.Time) ([]anpr.HourlyCount, error) {
	return []anpr.HourlyCount{{Hour: 8, Count: 2}}, nil
}

func (s *stubStore) TopPlates(context.Context, time.Time, int) ([]anpr.PlateFrequency, error) {
	return []anpr.PlateFrequency{}, nil
}

func (s *stubStore) CountAll(context.Context) (int64, error) { return int64(len(s.reads)), nil }

func (s *stubStore) CountOnDate(context.Context, time.Time) (int64, error) { return 0, nil }

func (s *stubStore) CountDistinctPlates(context.Context) (int64, error) { return 0, nil }

func (s *stubStore) AverageConfidence(context.Context) (float64, error) { return 0, nil }

func (s *stubStore) LastReadTime(context.Context) (*time.Time, error) { return nil, nil }

func (s *stubStore) DeleteReadsBefore(context.Context, time.Time) (int64, error) { return 3, nil }

func stubRead(id int64, seconds int, plate string, score float64) repository.PlateRead {
	ts := time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC).Add(time.Duration(seconds) * time.Second)
	return repository.PlateRead{ID: id, LicenseNumber: plate, Score: score, DetectedAt: &ts}
}

func newTestRouter(store *stubStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zerolog.New(io.Discard)
	cfg := &config.Config{
		Grouping: config.GroupingConfig{
			WindowSeconds:       5,
			SimilarityThreshold: 0.8,
			Policy:              "strict",
			MaxSimilarityBatch:  3,
		},
		Retention: config.RetentionConfig{Days: 30},
	}

	r := gin.New()
	r.Use(RequestID(), RequestLogger(log))
	h := NewHandler(service.NewReadsService(store, "cam", log), cfg, log)
	h.Register(r, JWTAuth(testSecret))
	return r
}

func do(t *testing.T, r *gin.Engine, method, target, body string, header http.Header) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Body.String(), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestCreateRead(t *testing.T) {
	store := &stubStore{}
	r := newTestRouter(store)

	w, body := do(t, r, http.MethodPost, "/api/v1/anpr/events", `{"plate":"pus-4919","confidence":0.92}`, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "PUS4919", body["plate"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w, _ = do(t, r, http.MethodPost, "/api/v1/anpr/events", `{"plate":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/anpr/events", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListReads(t *testing.T) {
	store := &stubStore{reads: []repository.PlateRead{stubRead(1, 0, "ABC123", 0.9), stubRead(2, 1, "ABC123", 0.8)}}
	r := newTestRouter(store)

	w, body := do(t, r, http.MethodGet, "/api/v1/plates?page=1&per_page=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 2, body["total_pages"])
	assert.Len(t, body["data"], 1)

	w, _ = do(t, r, http.MethodGet, "/api/v1/plates?date_from=yesterday", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/plates?page=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListGroupedReads(t *testing.T) {
	store := &stubStore{reads: []repository.PlateRead{
		stubRead(1, 0, "PWS4919", 0.7),
		stubRead(2, 1, "PUS4919", 0.92),
	}}
	r := newTestRouter(store)

	w, body := do(t, r, http.MethodGet, "/api/v1/plates/grouped?policy=similarity", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 2, body["original_count"])
	assert.EqualValues(t, 50, body["reduction_percentage"])

	data := body["data"].([]any)
	require.Len(t, data, 1)
	group := data[0].(map[string]any)
	assert.EqualValues(t, 2, group["id"])
	assert.EqualValues(t, 2, group["group_size"])
	assert.ElementsMatch(t, []any{"PWS4919", "PUS4919"}, group["group_plates"])

	// Strict grouping ignores plate strings.
	w, body = do(t, r, http.MethodGet, "/api/v1/plates/grouped", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])
	assert.Equal(t, "strict", body["policy"])
}

func TestListGroupedReadsHugePerPage(t *testing.T) {
	store := &stubStore{reads: []repository.PlateRead{
		stubRead(1, 0, "ABC123", 0.5),
		stubRead(2, 100, "ABC123", 0.5),
	}}
	r := newTestRouter(store)

	w, body := do(t, r, http.MethodGet, "/api/v1/plates/grouped?per_page=9223372036854775807", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 1, body["total_pages"])
	assert.EqualValues(t, 500, body["per_page"])
	assert.Len(t, body["data"], 2)
}

func TestListGroupedReadsErrors(t *testing.T) {
	store := &stubStore{}
	for i := 0; i < 5; i++ {
		store.reads = append(store.reads, stubRead(int64(i+1), i, "ABC123", 0.5))
	}
	r := newTestRouter(store)

	tests := []struct {
		query string
		want  int
	}{
		{"similarity_threshold=1.01", http.StatusBadRequest},
		{"window_seconds=-1", http.StatusBadRequest},
		{"per_page=0", http.StatusBadRequest},
		{"policy=nearest", http.StatusBadRequest},
		{"window_seconds=abc", http.StatusBadRequest},
		{"policy=similarity", http.StatusRequestEntityTooLarge},
		{"policy=strict", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w, _ := do(t, r, http.MethodGet, "/api/v1/plates/grouped?"+tt.query, "", nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestStatsRoutes(t *testing.T) {
	r := newTestRouter(&stubStore{})

	for _, target := range []string{
		"/api/v1/stats/daily",
		"/api/v1/stats/hourly?date=2024-03-14",
		"/api/v1/stats/top-plates?limit=5&days=3",
		"/api/v1/stats/overview",
		"/healthz",
	} {
		w, _ := do(t, r, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, target)
	}

	w, _ := do(t, r, http.MethodGet, "/api/v1/stats/daily?days=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func signedToken(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestCleanupRequiresToken(t *testing.T) {
	r := newTestRouter(&stubStore{})

	w, _ := do(t, r, http.MethodDelete, "/api/v1/plates", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	bad := http.Header{"Authorization": {"Bearer " + signedToken(t, "other", time.Now().Add(time.Hour))}}
	w, _ = do(t, r, http.MethodDelete, "/api/v1/plates", "", bad)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired := http.Header{"Authorization": {"Bearer " + signedToken(t, testSecret, time.Now().Add(-time.Hour))}}
	w, body := do(t, r, http.MethodDelete, "/api/v1/plates", "", expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token expired", body["error"])

	good := http.Header{"Authorization": {"Bearer " + signedToken(t, testSecret, time.Now().Add(time.Hour))}}
	w, body = do(t, r, http.MethodDelete, "/api/v1/plates?older_than_days=10", "", good)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, body["deleted"])
}

func TestJWTAuthWithoutSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", JWTAuth(""), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDKeepsValidHeader(t *testing.T) {
	r := newTestRouter(&stubStore{})
	id := "6f1c2a4e-8d0b-4f5e-9a3c-2b7d1e0f4a5b"
	w, _ := do(t, r, http.MethodGet, "/healthz", "", http.Header{requestIDHeader: {id}})
	assert.Equal(t, id, w.Header().Get(requestIDHeader))
}
