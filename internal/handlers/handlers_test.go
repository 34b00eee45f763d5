package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/thennow/internal/capture"
	"github.com/lehigh-university-libraries/thennow/internal/images"
	"github.com/lehigh-university-libraries/thennow/internal/models"
	"github.com/lehigh-university-libraries/thennow/internal/storage"
)

type stubSyncer struct {
	pushErr error
	pulled  []models.LocationRecord
	block   chan struct{}
	started chan struct{}
	once    sync.Once
}

func (s *stubSyncer) SyncToServer(_ context.Context) error {
	if s.block != nil {
		s.once.Do(func() { close(s.started) })
		<-s.block
	}
	return s.pushErr
}

func (s *stubSyncer) SyncFromServer(_ context.Context) ([]models.LocationRecord, error) {
	return s.pulled, nil
}

type testServer struct {
	mux     *http.ServeMux
	records *storage.Records
	blobs   *images.Store
	syncer  *stubSyncer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	blobs, err := images.NewStore(t.TempDir())
	require.NoError(t, err)
	records := storage.NewMemoryRecordStore(blobs)
	settings := storage.NewMemorySettingsStore()
	syncer := &stubSyncer{}

	h := New(records, settings, capture.NewPipeline(records, settings, blobs), syncer, blobs.Dir())
	mux := http.NewServeMux()
	h.Routes(mux)
	return &testServer{mux: mux, records: records, blobs: blobs, syncer: syncer}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, url string, fields map[string]string, photo []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("file", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func photoBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 3))))
	return buf.Bytes()
}

func TestLocationLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/locations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = s.do(multipartRequest(t, "/api/locations", map[string]string{
		"title": "Jaffa Gate", "latitude": "31.7767", "longitude": "35.2276", "notes": "north side",
	}, photoBytes(t)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.LocationRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Jaffa Gate", created.Title)
	assert.Equal(t, models.StatusNotVisited, created.Status)
	assert.True(t, created.HasHistoricalImage())

	rec = s.do(httptest.NewRequest(http.MethodPut, "/api/locations/"+created.ID,
		strings.NewReader(`{"status": "inaccessible", "notes": "closed"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := s.records.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInaccessible, stored.Status)
	assert.Equal(t, "closed", stored.Notes)

	rec = s.do(multipartRequest(t, "/api/locations/"+created.ID+"/capture", nil, photoBytes(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stored, err = s.records.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/images/"+filepath.Base(stored.NewImagePath), nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodDelete, "/api/locations/"+created.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/locations/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocationErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		req  *http.Request
		code int
	}{
		{"bad latitude", multipartRequest(t, "/api/locations", map[string]string{"title": "x", "latitude": "north", "longitude": "1"}, nil), http.StatusBadRequest},
		{"missing title", multipartRequest(t, "/api/locations", map[string]string{"latitude": "1", "longitude": "1"}, nil), http.StatusBadRequest},
		{"capture unknown", multipartRequest(t, "/api/locations/nope/capture", nil, photoBytes(t)), http.StatusNotFound},
		{"capture without file", multipartRequest(t, "/api/locations/nope/capture", nil, nil), http.StatusBadRequest},
		{"update unknown", httptest.NewRequest(http.MethodPut, "/api/locations/nope", strings.NewReader(`{}`)), http.StatusNotFound},
		{"bad method", httptest.NewRequest(http.MethodPatch, "/api/locations", nil), http.StatusMethodNotAllowed},
		{"traversal", httptest.NewRequest(http.MethodGet, "/images/..%5Csecret", nil), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.req)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}

	r := models.NewLocationRecord("Citadel", 31.77, 35.22, "")
	require.NoError(t, s.records.Add(context.Background(), r))
	rec := s.do(httptest.NewRequest(http.MethodPut, "/api/locations/"+r.ID, strings.NewReader(`{"status": "done"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"image_quality": "high"}`, rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`{"image_quality": "low"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"image_quality": "low"}`, rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`{"image_quality": "ultra"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.syncer.pulled = []models.LocationRecord{models.NewLocationRecord("a", 0, 0, "")}

	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/sync/pull", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "Downloaded 1 locations"}`, rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodPost, "/api/sync/push", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "Upload complete"}`, rec.Body.String())

	s.syncer.pushErr = fmt.Errorf("upload abc_new: %w", models.ErrNetwork)
	rec = s.do(httptest.NewRequest(http.MethodPost, "/api/sync/push", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "upload abc_new")

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/sync/push", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSyncRejectsOverlappingPasses(t *testing.T) {
	s := newTestServer(t)
	s.syncer.block = make(chan struct{})
	s.syncer.started = make(chan struct{})

	done := make(chan int)
	go func() {
		done <- s.do(httptest.NewRequest(http.MethodPost, "/api/sync/push", nil)).Code
	}()
	<-s.syncer.started

	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/sync/pull", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(s.syncer.block)
	assert.Equal(t, http.StatusOK, <-done)

	rec = s.do(httptest.NewRequest(http.MethodPost, "/api/sync/pull", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
