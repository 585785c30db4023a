package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/language-coach/sentence-search/internal/index"
	"github.com/language-coach/sentence-search/internal/ingest"
	"github.com/language-coach/sentence-search/internal/retriever"
	"github.com/language-coach/sentence-search/internal/tokenizer"
	"github.com/language-coach/sentence-search/pkg/config"
)

type fakeSubmitter struct {
	events []ingest.SentenceEvent
}

func (f *fakeSubmitter) Publish(_ context.Context, event ingest.SentenceEvent) error {
	f.events = append(f.events, event)
	return nil
}

func searchConfig() config.SearchConfig {
	return config.SearchConfig{
		MaxResults:         50,
		DefaultLimit:       5,
		DefaultProficiency: "intermediate",
		MinScore:           0.8,
	}
}

func newTestServer(t *testing.T, submitter Submitter) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	idx := index.New("en")
	for id, text := range map[int64]string{
		1: "The children walked the dog around the busy park yesterday.",
		2: "My good friend walked the dog over to the park.",
		3: "Dog barked.",
	} {
		if err := idx.Add(id, text, tokenizer.Tokenize(text)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := idx.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reg := retriever.NewRegistry(nil, dir, 0.8, nil)
	h := NewHandler(reg, reg, nil, submitter, searchConfig())
	mux := http.NewServeMux()
	h.Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestGetExamples(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/examples?q=dog&language=en")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[examplesResponse](t, resp)
	if body.Count != 2 || len(body.Examples) != 2 {
		t.Fatalf("count = %d, examples = %+v", body.Count, body.Examples)
	}
	if body.Examples[0].SentenceID != 2 {
		t.Errorf("top example = %d, want 2", body.Examples[0].SentenceID)
	}
	if body.Proficiency != "intermediate" {
		t.Errorf("proficiency = %q, want intermediate default", body.Proficiency)
	}
	for _, ex := range body.Examples {
		if ex.Score.Total < 0.8 {
			t.Errorf("example %d below threshold: %v", ex.SentenceID, ex.Score.Total)
		}
	}
}

func TestGetExamplesDefaultLanguage(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/examples?q=dog")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[examplesResponse](t, resp)
	if body.Language != "en" {
		t.Errorf("language = %q, want en default", body.Language)
	}
	if body.Count != 2 {
		t.Errorf("count = %d, want 2", body.Count)
	}
}

func TestGetExamplesLimit(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/examples?q=dog&language=en&limit=1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body := decodeBody[examplesResponse](t, resp)
	if body.Count != 1 {
		t.Fatalf("count = %d, want 1", body.Count)
	}
}

func TestGetExamplesValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, url := range []string{
		"/api/v1/examples?language=en",
		"/api/v1/examples?q=dog&language=en&limit=0",
		"/api/v1/examples?q=dog&language=en&limit=abc",
	} {
		resp, err := http.Get(srv.URL + url)
		if err != nil {
			t.Fatalf("GET %s: %v", url, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", url, resp.StatusCode)
		}
	}
}

func TestGetExamplesUnsupportedLanguage(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/examples?q=hund&language=de")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetExamplesZeroResults(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/examples?q=zebra&language=en")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 for zero results", resp.StatusCode)
	}
	body := decodeBody[examplesResponse](t, resp)
	if body.Count != 0 || len(body.Examples) != 0 {
		t.Fatalf("body = %+v, want empty result set", body)
	}
}

func TestSubmitSentence(t *testing.T) {
	submitter := &fakeSubmitter{}
	srv := newTestServer(t, submitter)

	payload := `{"text": "The dog runs fast.", "language": "EN", "source_title": "Reader"}`
	resp, err := http.Post(srv.URL+"/api/v1/sentences", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if len(submitter.events) != 1 {
		t.Fatalf("published %d events, want 1", len(submitter.events))
	}
	if submitter.events[0].Language != "en" {
		t.Errorf("language = %q, want normalised en", submitter.events[0].Language)
	}
}

func TestSubmitSentenceValidation(t *testing.T) {
	submitter := &fakeSubmitter{}
	srv := newTestServer(t, submitter)

	for _, payload := range []string{
		`{not json`,
		`{"text": "   ", "language": "en"}`,
		`{"text": "The dog runs fast."}`,
	} {
		resp, err := http.Post(srv.URL+"/api/v1/sentences", "application/json", strings.NewReader(payload))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("payload %q status = %d, want 400", payload, resp.StatusCode)
		}
	}
	if len(submitter.events) != 0 {
		t.Fatalf("published %d events, want 0", len(submitter.events))
	}
}

func TestSubmitSentenceWithoutIngestion(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/api/v1/sentences", "application/json",
		strings.NewReader(`{"text": "The dog runs fast.", "language": "en"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}

func TestRebuildWithoutCorpus(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/api/v1/index/en/rebuild", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}

func TestLanguages(t *testing.T) {
	srv := newTestServer(t, nil)

	// Force the lazy load so the language shows as resident.
	resp, err := http.Get(srv.URL + "/api/v1/examples?q=dog&language=en")
	if err != nil {
		t.Fatalf("GET examples: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/v1/languages")
	if err != nil {
		t.Fatalf("GET languages: %v", err)
	}
	body := decodeBody[struct {
		Languages []string `json:"languages"`
	}](t, resp)
	if len(body.Languages) != 1 || body.Languages[0] != "en" {
		t.Fatalf("languages = %v, want [en]", body.Languages)
	}
}

func TestCacheStatsDisabled(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/v1/cache/stats")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body := decodeBody[struct {
		Enabled bool `json:"enabled"`
	}](t, resp)
	if body.Enabled {
		t.Fatal("cache reported enabled without a client")
	}
}
