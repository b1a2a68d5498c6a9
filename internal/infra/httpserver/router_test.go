package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	appanalyses "github.com/clausecheck/clausecheck/internal/application/analyses"
	domain "github.com/clausecheck/clausecheck/internal/domain/analysis"
)

type fakeRepo struct {
	saved map[domain.ID]*domain.Analysis
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{saved: make(map[domain.ID]*domain.Analysis)}
}

func (r *fakeRepo) Save(_ context.Context, a *domain.Analysis) error {
	cp := *a
	r.saved[a.ID] = &cp
	return nil
}

func (r *fakeRepo) Get(_ context.Context, id domain.ID) (*domain.Analysis, error) {
	a, ok := r.saved[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (e *fakeExtractor) ExtractText(_ context.Context, _ []byte, _ string) (string, error) {
	e.calls++
	return e.text, e.err
}

type fakeClassifier struct {
	report domain.RiskReport
	err    error
	calls  int
}

func (c *fakeClassifier) ClassifyRisks(_ context.Context, _ string) (domain.RiskReport, error) {
	c.calls++
	return c.report, c.err
}

type fakeImages struct {
	calls int
}

func (s *fakeImages) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	s.calls++
	return key, nil
}

func (s *fakeImages) SignedURL(_ context.Context, key string) (string, error) {
	return "https://storage.example.com/" + key, nil
}

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

type testEnv struct {
	handler    http.Handler
	repo       *fakeRepo
	extractor  *fakeExtractor
	classifier *fakeClassifier
	images     *fakeImages
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:       newFakeRepo(),
		extractor:  &fakeExtractor{text: "Sample contract text. Renews automatically each year."},
		classifier: &fakeClassifier{report: domain.RiskReport{
			AutoRenewTraps: []domain.AutoRenewTrap{
				{Title: "Annual auto-renewal", Description: "Renews each year unless cancelled 60 days prior", CancellationDifficulty: "hard"},
			},
		}},
		images: &fakeImages{},
	}
	env.handler = NewRouter(&appanalyses.Service{
		Repo:       env.repo,
		Extractor:  env.extractor,
		Classifier: env.classifier,
		Images:     env.images,
		Clock:      fixedClock{},
	})
	return env
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestAnalyzeEndpointSuccess(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, "file", "contract.jpg", bytes.Repeat([]byte("x"), 2<<20))
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got domain.Analysis
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID == "" || got.ImageURL == "" || got.CreatedAt.IsZero() {
		t.Errorf("missing id/imageUrl/createdAt: %+v", got)
	}
	if len(got.AutoRenewTraps) == 0 {
		t.Error("expected non-empty autoRenewTraps")
	}
	if got.HiddenRisks == nil || got.MoneyTraps == nil || got.DangerousClauses == nil {
		t.Error("all four category lists must be present")
	}
}

func TestAnalyzeThenGetRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, "file", "contract.png", []byte("imagebytes"))
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze status = %d", rec.Code)
	}

	var created map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode analyze response: %v", err)
	}

	getRec := httptest.NewRecorder()
	env.handler.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/analyses/%s", created["id"]), nil))
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status = %d", getRec.Code)
	}

	var fetched map[string]any
	if err := json.Unmarshal(getRec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode get response: %v", err)
	}

	cb, _ := json.Marshal(created)
	fb, _ := json.Marshal(fetched)
	if !bytes.Equal(cb, fb) {
		t.Errorf("round trip mismatch:\nanalyze: %s\nget:     %s", cb, fb)
	}
}

func TestAnalyzeNoFile(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("note", "no file here")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if env.extractor.calls != 0 || env.images.calls != 0 {
		t.Error("no external call may happen without a file")
	}
	if len(env.repo.saved) != 0 {
		t.Error("store must stay untouched")
	}
}

func TestAnalyzePayloadTooLarge(t *testing.T) {
	env := newTestEnv(t)

	// 30 MiB file, above the 25 MiB ceiling
	body, contentType := multipartBody(t, "file", "big.jpg", bytes.Repeat([]byte("x"), 30<<20))
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
	if len(env.repo.saved) != 0 {
		t.Error("store must stay untouched")
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp["error"] == "" {
		t.Error("expected error message in body")
	}
}

func TestGetUnknownID(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analyses/"+uuid.New().String(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetMalformedID(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/analyses/not-a-uuid", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAnalyzeClassifierFailureIs500(t *testing.T) {
	env := newTestEnv(t)
	env.classifier.err = errors.New("upstream exploded")

	body, contentType := multipartBody(t, "file", "contract.jpg", []byte("img"))
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if len(env.repo.saved) != 0 {
		t.Error("store must stay untouched after classification failure")
	}
	// Stage detail must not leak to the caller
	if body := rec.Body.String(); bytes.Contains([]byte(body), []byte("exploded")) {
		t.Errorf("internal error detail leaked: %s", body)
	}
}
