package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/datagen/internal/config"
	"github.com/JonMunkholm/datagen/internal/core"
	"github.com/google/go-cmp/cmp"
)

var fixedNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *core.MemoryHistory) {
	t.Helper()

	cfg, err := config.LoadFrom(func(string) (string, bool) { return "", false })
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Rate.Enabled = false

	history := core.NewMemoryHistory(cfg.History.Limit)
	svc, err := core.NewService(history, cfg,
		core.WithClock(func() time.Time { return fixedNow }),
		core.WithSeedSource(func() uint64 { return 7 }),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	s := NewServer(svc, cfg)
	t.Cleanup(s.Close)
	return s, history
}

func doJSON(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHandleListCategories(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/categories", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	got := decode[[]core.CategoryInfo](t, rec)
	if diff := cmp.Diff(core.Categories(), got); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleListFormats(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/formats", "")

	got := decode[[]core.FormatInfo](t, rec)
	keys := make([]string, len(got))
	for i, f := range got {
		keys[i] = f.Key
	}
	if diff := cmp.Diff([]string{"json", "csv", "xml", "sql"}, keys); diff != "" {
		t.Errorf("format keys mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleGenerate_JSON(t *testing.T) {
	s, history := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/generate",
		`{"category":"personal","count":3,"format":"json"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decode[struct {
		Output      string `json:"output"`
		Category    string `json:"category"`
		RecordCount int    `json:"record_count"`
		RecordLabel string `json:"record_label"`
		FileName    string `json:"file_name"`
		Seed        uint64 `json:"seed"`
	}](t, rec)

	if resp.RecordCount != 3 || resp.RecordLabel != "3 records" {
		t.Errorf("count = %d label = %q, want 3 / %q", resp.RecordCount, resp.RecordLabel, "3 records")
	}
	if resp.FileName != "personal_data.json" {
		t.Errorf("file name = %q, want personal_data.json", resp.FileName)
	}
	if resp.Seed != 7 {
		t.Errorf("seed = %d, want 7", resp.Seed)
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(resp.Output), &records); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}

	entries, _ := history.List(t.Context())
	if len(entries) != 1 || entries[0].Category != "personal" || entries[0].Count != 3 {
		t.Errorf("history = %+v, want one personal/3 entry", entries)
	}
}

func TestHandleGenerate_FormDownload(t *testing.T) {
	s, _ := newTestServer(t)

	form := url.Values{"category": {"financial"}, "count": {"2"}, "format": {"csv"}}
	req := httptest.NewRequest(http.MethodPost, "/api/generate?download=1", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="financial_data.csv"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", got)
	}
	lines := strings.Split(rec.Body.String(), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d CSV lines, want header + 2 rows", len(lines))
	}
	if lines[0] != "id,accountNumber,balance,currency,transactionDate,transactionAmount,category" {
		t.Errorf("header = %q", lines[0])
	}
}

func TestHandleGenerate_DefaultCount(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/generate", `{"category":"internet","format":"sql"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[struct {
		RecordCount int `json:"record_count"`
	}](t, rec)
	if resp.RecordCount != s.cfg.Generate.DefaultCount {
		t.Errorf("record_count = %d, want default %d", resp.RecordCount, s.cfg.Generate.DefaultCount)
	}
}

func TestHandleGenerate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"zero count", "/api/generate", `{"category":"personal","count":0,"format":"json"}`, http.StatusBadRequest, "GEN001"},
		{"text count", "/api/generate", `{"category":"personal","count":"ten","format":"json"}`, http.StatusBadRequest, "REQ003"},
		{"too many", "/api/generate", `{"category":"personal","count":10001,"format":"json"}`, http.StatusBadRequest, "GEN002"},
		{"unknown category", "/api/generate", `{"category":"medical","count":1,"format":"json"}`, http.StatusBadRequest, "CAT001"},
		{"unknown format", "/api/generate", `{"category":"personal","count":1,"format":"yaml"}`, http.StatusBadRequest, "FMT001"},
		{"malformed body", "/api/generate", `{"category":`, http.StatusBadRequest, "REQ003"},
		{"schema syntax", "/api/generate/custom", `{"schema":"{\"a\": \"number|1,2\",}","count":1,"format":"json"}`, http.StatusBadRequest, "SCH001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, history := newTestServer(t)
			rec := doJSON(t, s, http.MethodPost, tt.target, tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			resp := decode[ErrorResponse](t, rec)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if entries, _ := history.List(t.Context()); len(entries) != 0 {
				t.Errorf("failed run recorded history: %+v", entries)
			}
		})
	}
}

func TestHandleGenerateCustom(t *testing.T) {
	s, history := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/generate/custom",
		`{"schema":"{\"greeting\": \"string|hello\"}","count":1,"format":"json"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[struct {
		Output   string `json:"output"`
		Category string `json:"category"`
	}](t, rec)

	want := "[\n  {\n    \"greeting\": \"hello\"\n  }\n]"
	if resp.Output != want {
		t.Errorf("output = %q, want %q", resp.Output, want)
	}
	if resp.Category != core.CustomCategory {
		t.Errorf("category = %q, want %q", resp.Category, core.CustomCategory)
	}

	entries, _ := history.List(t.Context())
	if len(entries) != 1 || entries[0].Category != core.CustomCategory {
		t.Errorf("history = %+v, want one custom entry", entries)
	}
}

func TestHandleGenerateCustom_YAML(t *testing.T) {
	s, _ := newTestServer(t)
	body := `{"schema":"name: firstName\nage: number|30,30\n","schema_format":"yaml","count":1,"format":"csv"}`
	rec := doJSON(t, s, http.MethodPost, "/api/generate/custom", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode[struct {
		Output string `json:"output"`
	}](t, rec)

	header, row, ok := strings.Cut(resp.Output, "\n")
	if !ok || header != "name,age" {
		t.Fatalf("output = %q, want name,age header", resp.Output)
	}
	if !strings.HasSuffix(row, ",30") {
		t.Errorf("row = %q, want age 30", row)
	}
}

func TestHandleHistory_ListReplayClear(t *testing.T) {
	s, _ := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/generate", `{"category":"business","count":2,"format":"xml"}`)
	doJSON(t, s, http.MethodPost, "/api/generate/custom", `{"schema":"{\"x\": \"email\"}","count":1,"format":"json"}`)

	rec := doJSON(t, s, http.MethodGet, "/api/history", "")
	entries := decode[[]core.HistoryEntry](t, rec)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	custom, business := entries[0], entries[1]
	if custom.Category != core.CustomCategory || business.Category != "business" {
		t.Fatalf("entries not newest first: %+v", entries)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/history/"+business.ID+"/replay", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("replay status = %d, body = %s", rec.Code, rec.Body.String())
	}
	replayed := decode[struct {
		Format      string `json:"format"`
		RecordCount int    `json:"record_count"`
	}](t, rec)
	if replayed.Format != "xml" || replayed.RecordCount != 2 {
		t.Errorf("replay = %+v, want xml/2", replayed)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/history/"+custom.ID+"/replay", "")
	if rec.Code != http.StatusConflict {
		t.Errorf("custom replay status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/history/does-not-exist/replay", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing replay status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/api/history", "")
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("history after clear = %s, want []", got)
	}
}

func TestHTMXResponses(t *testing.T) {
	s, _ := newTestServer(t)

	form := url.Values{"category": {"geographic"}, "count": {"1"}, "format": {"json"}}
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("HX-Trigger"); got != historyChangedEvent {
		t.Errorf("HX-Trigger = %q, want %q", got, historyChangedEvent)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "1 record") || !strings.Contains(body, "&#34;latitude&#34;") {
		t.Errorf("result fragment missing stats or escaped output: %s", body)
	}

	form.Set("count", "-4")
	req = httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Code: GEN001") {
		t.Errorf("error fragment = %s", rec.Body.String())
	}
}

func TestHandleDashboard(t *testing.T) {
	s, _ := newTestServer(t)
	doJSON(t, s, http.MethodPost, "/api/generate", `{"category":"personal","count":1,"format":"json"}`)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`value="personal"`, `value="sql"`, `name="schema"`, "/replay"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("expected Content-Security-Policy header")
	}
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/healthz", "")

	resp := decode[struct {
		Status  string             `json:"status"`
		Limiter core.LimiterStatus `json:"limiter"`
	}](t, rec)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.Limiter.MaxConcurrent != s.cfg.Generate.MaxConcurrent {
		t.Errorf("limiter max = %d, want %d", resp.Limiter.MaxConcurrent, s.cfg.Generate.MaxConcurrent)
	}
}

func TestRateLimiter(t *testing.T) {
	now := fixedNow
	rl := newRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.allow("a") || !rl.allow("a") {
		t.Fatal("first two requests should be allowed")
	}
	if rl.allow("a") {
		t.Error("third request in window should be rejected")
	}
	if !rl.allow("b") {
		t.Error("other client should have its own budget")
	}

	now = now.Add(time.Minute + time.Second)
	if !rl.allow("a") {
		t.Error("request after window should be allowed")
	}

	now = now.Add(3 * time.Minute)
	rl.evict()
	if len(rl.visitors) != 0 {
		t.Errorf("evict left %d visitors, want 0", len(rl.visitors))
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	h := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
		req.RemoteAddr = "192.0.2.10:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("request %d status = %d, want %d", i, rec.Code, want)
		}
		if want == http.StatusTooManyRequests {
			if decode[ErrorResponse](t, rec).Code != "RATE001" {
				t.Errorf("rate limited body = %s", rec.Body.String())
			}
		}
	}
}
