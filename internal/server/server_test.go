package server

import (
	"bytes"
	"encoding/json"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkingphoto-ai/ingest/internal/facedet"
	"github.com/talkingphoto-ai/ingest/internal/pipeline"
	"github.com/talkingphoto-ai/ingest/internal/testutil"
)

type stubFinder struct{ boxes []image.Rectangle }

func (f stubFinder) Assess(img image.Image) (facedet.Assessment, error) {
	return facedet.FromBoxes(f.boxes), nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	pl, err := pipeline.NewBuilder().
		WithFaceFinder(stubFinder{boxes: []image.Rectangle{image.Rect(10, 10, 60, 60)}}).
		Build()
	require.NoError(t, err)
	return &Server{
		pipeline:    pl,
		corsOrigin:  "*",
		maxUploadMB: 25,
	}
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	newTestServer(t).SetupRoutes(mux)
	return mux
}

// multipartUpload builds a multipart body with one "image" part.
func multipartUpload(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func doProcess(t *testing.T, mux *http.ServeMux, filename string, data []byte) (*httptest.ResponseRecorder, ProcessResponse) {
	t.Helper()
	body, contentType := multipartUpload(t, filename, data)
	req := httptest.NewRequest(http.MethodPost, "/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var resp ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Time)
}

func TestHealthEndpoint_MethodNotAllowed(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTipsEndpoint(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/tips", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TipsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.General)
	assert.Len(t, resp.ByKind, 4)
	assert.NotEmpty(t, resp.ByKind["unsupported_format"])
}

func TestProcess_Success(t *testing.T) {
	mux := newTestMux(t)
	data := testutil.EncodePNG(t, testutil.NewPortrait(300, 300))

	rec, resp := doProcess(t, mux, "selfie.png", data)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, 300, resp.Width)
	assert.Equal(t, 300, resp.Height)
	assert.Equal(t, "png", resp.Format)
	require.NotNil(t, resp.Face)
	assert.True(t, resp.Face.Detected)
	assert.Equal(t, 1, resp.Face.Count)
	assert.Equal(t, [][4]int{{10, 10, 50, 50}}, resp.Face.Boxes)
	assert.Empty(t, resp.PreviewJPEG, "preview disabled by default")
	assert.Empty(t, resp.Tips)
}

func TestProcess_FailureStatusAndTips(t *testing.T) {
	mux := newTestMux(t)

	cases := []struct {
		name       string
		filename   string
		data       []byte
		wantStatus int
		wantKind   string
	}{
		{
			name:       "undecodable",
			filename:   "bad.png",
			data:       []byte("not an image"),
			wantStatus: http.StatusUnsupportedMediaType,
			wantKind:   "unsupported_format",
		},
		{
			name:       "heic garbage",
			filename:   "photo.heic",
			data:       []byte("not heic either"),
			wantStatus: http.StatusUnsupportedMediaType,
			wantKind:   "unsupported_format",
		},
	}
	for _, tc := range cases {
		rec, resp := doProcess(t, mux, tc.filename, tc.data)
		assert.Equal(t, tc.wantStatus, rec.Code, tc.name)
		assert.False(t, resp.Success, tc.name)
		assert.Equal(t, tc.wantKind, resp.ErrorType, tc.name)
		assert.NotEmpty(t, resp.Error, tc.name)
		assert.NotEmpty(t, resp.Tips, tc.name)
	}
}

func TestProcess_TooSmallStatus(t *testing.T) {
	mux := newTestMux(t)
	data := testutil.EncodePNG(t, testutil.NewPortrait(150, 150))

	rec, resp := doProcess(t, mux, "tiny.png", data)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "image_too_small", resp.ErrorType)
	assert.Contains(t, resp.Error, "150x150")
}

func TestProcess_MissingFilePart(t *testing.T) {
	mux := newTestMux(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "no image here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/process", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "No image file provided", resp.Error)
}

func TestProcess_MethodNotAllowed(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/process", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestProcess_PreviewEnabled(t *testing.T) {
	pl, err := pipeline.NewBuilder().WithFaceFinder(stubFinder{}).Build()
	require.NoError(t, err)
	srv := &Server{pipeline: pl, corsOrigin: "*", maxUploadMB: 25, previewEnabled: true}
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	data := testutil.EncodePNG(t, testutil.NewPortrait(300, 300))
	rec, resp := doProcess(t, mux, "p.png", data)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, resp.PreviewJPEG)
}

func TestCORSPreflight(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodOptions, "/process", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestMetricsEndpoint(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
