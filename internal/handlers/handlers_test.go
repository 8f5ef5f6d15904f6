package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/boardsnap/boardsnap/internal/analysis"
	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/boardsnap/boardsnap/internal/images"
	"github.com/boardsnap/boardsnap/internal/lichess"
	"github.com/boardsnap/boardsnap/internal/models"
	"github.com/boardsnap/boardsnap/internal/position"
	"github.com/boardsnap/boardsnap/internal/providers"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func init() {
	gin.SetMode(gin.TestMode)
}

type mapStore map[string]string

func (m mapStore) Get(key string) string { return m[key] }
func (m mapStore) Set(key, value string) error {
	m[key] = value
	return nil
}

// fakeAnalyzer returns a canned result built from the reply text or error kind
type fakeAnalyzer struct {
	mu      sync.Mutex
	reply   string
	kind    apperrors.Kind
	configs []providers.Config
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, image images.Payload, cfg providers.Config) analysis.Result {
	f.mu.Lock()
	f.configs = append(f.configs, cfg)
	f.mu.Unlock()

	if f.kind != "" {
		r := analysis.Failure(&apperrors.AppError{Kind: f.kind, Message: "failed"})
		r.Provider = cfg.Provider
		return r
	}
	ext := position.Extract(f.reply)
	return analysis.Result{
		ID:        fmt.Sprintf("fake-%d", len(f.configs)),
		Success:   true,
		PGN:       ext.PGN,
		FEN:       ext.FEN,
		Strategy:  ext.Strategy,
		Provider:  cfg.Provider,
		CreatedAt: time.Now(),
	}
}

func (f *fakeAnalyzer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.configs)
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func newTestHandler(analyzer Analyzer, settings mapStore) *gin.Engine {
	return New(Options{Analyzer: analyzer, Settings: settings}).Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeUpload(t *testing.T) {
	analyzer := &fakeAnalyzer{reply: startFEN}
	router := newTestHandler(analyzer, mapStore{"openai.api_key": "sk-test"})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "board.png")
	require.NoError(t, err)
	_, err = part.Write(testPNG(t))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("model", "gpt-4o-mini"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var record models.AnalysisRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.True(t, record.Success)
	assert.Equal(t, position.WrapFEN(startFEN), record.PGN)
	assert.Equal(t, "upload", record.Image.Source)
	assert.Equal(t, "image/png", record.Image.MIMEType)
	require.NotNil(t, record.Link)
	assert.Equal(t, lichess.KindDirect, record.Link.Kind)

	require.Len(t, analyzer.configs, 1)
	assert.Equal(t, providers.OpenAI, analyzer.configs[0].Provider)
	assert.Equal(t, "gpt-4o-mini", analyzer.configs[0].Model)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyses/"+record.ID, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyses", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.AnalysisRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestAnalyzeStatusCodes(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(testPNG(t))

	tests := []struct {
		name     string
		kind     apperrors.Kind
		settings mapStore
		want     int
		wantCall bool
	}{
		{name: "quota", kind: apperrors.KindQuotaExceeded, settings: mapStore{"deepseek.api_key": "k"}, want: http.StatusTooManyRequests, wantCall: true},
		{name: "provider", kind: apperrors.KindProvider, settings: mapStore{"deepseek.api_key": "k"}, want: http.StatusBadGateway, wantCall: true},
		{name: "extraction", kind: apperrors.KindExtractionFailed, settings: mapStore{"deepseek.api_key": "k"}, want: http.StatusUnprocessableEntity, wantCall: true},
		{name: "no configuration", settings: mapStore{}, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{kind: tt.kind}
			router := newTestHandler(analyzer, tt.settings)

			w := doJSON(t, router, http.MethodPost, "/api/analyze", AnalyzeRequest{ImageBase64: "data:image/png;base64," + encoded})
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCall, analyzer.calls() == 1)

			var record models.AnalysisRecord
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
			assert.False(t, record.Success)
			assert.Nil(t, record.Link)
			assert.Equal(t, "base64", record.Image.Source)
		})
	}
}

func TestAnalyzeBadRequests(t *testing.T) {
	router := newTestHandler(&fakeAnalyzer{}, mapStore{"openai.api_key": "k"})

	tests := []struct {
		name string
		body any
	}{
		{name: "nothing", body: AnalyzeRequest{}},
		{name: "both sources", body: AnalyzeRequest{ImageURL: "https://example.com/a.png", ImageBase64: "aGVsbG8="}},
		{name: "bad scheme", body: AnalyzeRequest{ImageURL: "file:///etc/passwd"}},
		{name: "bad base64", body: AnalyzeRequest{ImageBase64: "!!!"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("no form"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalysisNotFound(t *testing.T) {
	router := newTestHandler(&fakeAnalyzer{}, mapStore{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyses/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/analyses/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalysisDelete(t *testing.T) {
	router := newTestHandler(&fakeAnalyzer{reply: startFEN}, mapStore{"openai.api_key": "sk-test"})
	encoded := base64.StdEncoding.EncodeToString(testPNG(t))

	w := doJSON(t, router, http.MethodPost, "/api/analyze", AnalyzeRequest{ImageBase64: "data:image/png;base64," + encoded})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var record models.AnalysisRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/analyses/"+record.ID, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyses/"+record.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeWithoutSettings(t *testing.T) {
	analyzer := &fakeAnalyzer{reply: startFEN}
	router := New(Options{Analyzer: analyzer}).Router()
	encoded := base64.StdEncoding.EncodeToString(testPNG(t))

	w := doJSON(t, router, http.MethodPost, "/api/analyze", AnalyzeRequest{ImageBase64: "data:image/png;base64," + encoded})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, 0, analyzer.calls())

	var record models.AnalysisRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.False(t, record.Success)
	assert.Equal(t, apperrors.KindConfiguration, record.Kind)
}

func TestLink(t *testing.T) {
	router := newTestHandler(&fakeAnalyzer{}, mapStore{})

	w := doJSON(t, router, http.MethodPost, "/api/link", LinkRequest{PGN: position.WrapFEN(startFEN)})
	require.Equal(t, http.StatusOK, w.Code)
	var action lichess.Action
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &action))
	assert.Equal(t, lichess.KindDirect, action.Kind)
	assert.Equal(t, "https://lichess.org/analysis/rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR_w_KQkq_-_0_1", action.URL)

	w = doJSON(t, router, http.MethodPost, "/api/link", LinkRequest{PGN: "1. e4 *"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &action))
	assert.Equal(t, lichess.KindForm, action.Kind)
	require.NotNil(t, action.Form)
	assert.Equal(t, "1. e4 *", action.Form.Fields["pgn"])

	w = doJSON(t, router, http.MethodPost, "/api/link", LinkRequest{PGN: "  "})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.KindLinkConstruction, resp.Kind)
	assert.Equal(t, apperrors.ManualCopyMessage, resp.Error)
}

func TestOpen(t *testing.T) {
	data := testPNG(t)
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer imageServer.Close()

	router := newTestHandler(&fakeAnalyzer{reply: "Here it is: " + startFEN}, mapStore{"gemini.api_key": "k"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open?image="+imageServer.URL+"/board.png", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://lichess.org/analysis/rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR_w_KQkq_-_0_1", w.Header().Get("Location"))

	router = newTestHandler(&fakeAnalyzer{reply: "A quiet position."}, mapStore{"gemini.api_key": "k"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open?image="+imageServer.URL+"/board.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="https://lichess.org/paste"`)
	assert.Contains(t, w.Body.String(), "A quiet position.")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthcheckAndMetrics(t *testing.T) {
	router := newTestHandler(&fakeAnalyzer{}, mapStore{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
