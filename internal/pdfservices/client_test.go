package pdfservices

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeService struct {
	t *testing.T

	mu    sync.Mutex
	calls []string

	failAt      string
	failStatus  int
	tokenStatus int
	pollStates  []string
	archive     []byte
	uploadBody  []byte
	tokenForm   map[string]string
	startBody   map[string]any
	apiKeySeen  []string
	uploadAuth  string
	uploadCType string

	srv *httptest.Server
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{t: t, failStatus: http.StatusInternalServerError, archive: sampleArchive(t)}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeService) record(step string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, step)
	return f.failAt == step
}

func (f *fakeService) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeService) serve(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/token":
		if f.record("token") {
			http.Error(w, `{"error":"invalid_client"}`, f.failStatus)
			return
		}
		_ = r.ParseForm()
		f.tokenForm = map[string]string{
			"grant_type":    r.PostForm.Get("grant_type"),
			"client_id":     r.PostForm.Get("client_id"),
			"client_secret": r.PostForm.Get("client_secret"),
		}
		w.Header().Set("Content-Type", "application/json")
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer","expires_in":86399}`))
	case r.Method == http.MethodPost && r.URL.Path == "/assets":
		f.apiKeySeen = append(f.apiKeySeen, r.Header.Get("x-api-key"))
		if f.record("assets") {
			http.Error(w, "asset quota exceeded", f.failStatus)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "asset-1", "uploadUri": f.srv.URL + "/upload/asset-1"})
	case r.Method == http.MethodPut && r.URL.Path == "/upload/asset-1":
		if f.record("upload") {
			http.Error(w, "upload rejected", f.failStatus)
			return
		}
		f.uploadAuth = r.Header.Get("Authorization")
		f.uploadCType = r.Header.Get("Content-Type")
		f.uploadBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPost && r.URL.Path == "/operation/extractpdf":
		f.apiKeySeen = append(f.apiKeySeen, r.Header.Get("x-api-key"))
		if f.record("start") {
			http.Error(w, "bad request", f.failStatus)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&f.startBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"jobID":"job-9"}`))
	case r.Method == http.MethodGet && r.URL.Path == "/jobs/job-9":
		if f.record("poll") {
			http.Error(w, "no such job", f.failStatus)
			return
		}
		f.mu.Lock()
		state := "running"
		if len(f.pollStates) > 0 {
			state = f.pollStates[0]
			if len(f.pollStates) > 1 {
				f.pollStates = f.pollStates[1:]
			}
		}
		f.mu.Unlock()
		payload := map[string]any{"status": state}
		if state == "done" {
			payload["downloadUri"] = f.srv.URL + "/download/job-9"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	case r.Method == http.MethodGet && r.URL.Path == "/download/job-9":
		if f.record("download") {
			http.Error(w, "expired", f.failStatus)
			return
		}
		_, _ = w.Write(f.archive)
	default:
		f.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	}
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps int
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps++
	c.now = c.now.Add(d)
	return ctx.Err()
}

func newTestClient(f *fakeService, clock *fakeClock, cfg Config) *Client {
	if cfg.ClientID == "" && cfg.ClientSecret == "" {
		cfg.ClientID = "client-id"
		cfg.ClientSecret = "client-secret"
	}
	cfg.BaseURL = f.srv.URL
	return NewClient(cfg, WithHTTPClient(f.srv.Client()), WithClock(clock.Now, clock.Sleep))
}

func sampleArchive(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("structuredData.json")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	doc := `{"elements":[
		{"Role":"H2","Text":"Second","Page":2,"Bounds":[0,20,0,0]},
		{"Role":"H1","Text":"First","Page":1,"Bounds":[0,80,0,0]},
		{"Role":"P","Text":"body","Page":1}
	]}`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractHappyPath(t *testing.T) {
	f := newFakeService(t)
	f.pollStates = []string{"running", "running", "done"}
	clock := &fakeClock{now: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
	client := newTestClient(f, clock, Config{})

	pdf := []byte("%PDF-1.7 fake")
	res, err := client.Extract(context.Background(), pdf)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if res.AssetID != "asset-1" || res.JobID != "job-9" {
		t.Fatalf("unexpected ids: %+v", res)
	}
	if len(res.Headings) != 2 || res.Headings[0].Title != "First" || res.Headings[1].Title != "Second" {
		t.Fatalf("unexpected headings: %+v", res.Headings)
	}

	want := []string{"token", "assets", "upload", "start", "poll", "poll", "poll", "download"}
	if got := f.callLog(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("call order = %v, want %v", got, want)
	}
	if clock.sleeps != 2 {
		t.Fatalf("expected 2 sleeps between polls, got %d", clock.sleeps)
	}

	if f.tokenForm["grant_type"] != "client_credentials" || f.tokenForm["client_id"] != "client-id" || f.tokenForm["client_secret"] != "client-secret" {
		t.Fatalf("unexpected token form: %v", f.tokenForm)
	}
	for _, key := range f.apiKeySeen {
		if key != "client-id" {
			t.Fatalf("expected x-api-key client-id, got %q", key)
		}
	}
	if !bytes.Equal(f.uploadBody, pdf) {
		t.Fatalf("uploaded body mismatch")
	}
	if f.uploadCType != "application/pdf" {
		t.Fatalf("upload content type = %q", f.uploadCType)
	}
	if f.uploadAuth != "" {
		t.Fatalf("upload should not carry Authorization, got %q", f.uploadAuth)
	}
	if f.startBody["assetID"] != "asset-1" || f.startBody["includeCharBounds"] != true {
		t.Fatalf("unexpected start body: %v", f.startBody)
	}
}

func TestExtractAcceptsNon200SuccessfulToken(t *testing.T) {
	f := newFakeService(t)
	f.tokenStatus = http.StatusCreated
	f.pollStates = []string{"done"}
	clock := &fakeClock{now: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
	client := newTestClient(f, clock, Config{})

	res, err := client.Extract(context.Background(), []byte("%PDF-1.7 fake"))
	if err != nil {
		t.Fatalf("Extract with 201 token response: %v", err)
	}
	if len(res.Headings) != 2 {
		t.Fatalf("unexpected headings: %+v", res.Headings)
	}
	if got := f.callLog(); len(got) == 0 || got[0] != "token" {
		t.Fatalf("expected token call first, got %v", got)
	}
}

func TestExtractMissingCredentialsMakesNoCalls(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
	}{
		{name: "missing id", secret: "secret"},
		{name: "missing secret", id: "id"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeService(t)
			clock := &fakeClock{now: time.Now()}
			client := NewClient(Config{ClientID: tt.id, ClientSecret: tt.secret, BaseURL: f.srv.URL},
				WithHTTPClient(f.srv.Client()), WithClock(clock.Now, clock.Sleep))

			_, err := client.ExtractHeadings(context.Background(), []byte("%PDF"))
			if !errors.Is(err, ErrMissingCredentials) {
				t.Fatalf("expected ErrMissingCredentials, got %v", err)
			}
			if !strings.Contains(err.Error(), "credentials") {
				t.Fatalf("expected credentials message, got %q", err.Error())
			}
			if calls := f.callLog(); len(calls) != 0 {
				t.Fatalf("expected no network calls, got %v", calls)
			}
		})
	}
}

func TestExtractStopsAtFailingStep(t *testing.T) {
	tests := []struct {
		step   string
		status int
		op     string
		calls  []string
	}{
		{step: "token", status: http.StatusUnauthorized, op: OpToken, calls: []string{"token"}},
		{step: "assets", status: http.StatusBadRequest, op: OpCreateAsset, calls: []string{"token", "assets"}},
		{step: "upload", status: http.StatusForbidden, op: OpUpload, calls: []string{"token", "assets", "upload"}},
		{step: "start", status: http.StatusBadRequest, op: OpStartJob, calls: []string{"token", "assets", "upload", "start"}},
		{step: "poll", status: http.StatusNotFound, op: OpPollJob, calls: []string{"token", "assets", "upload", "start", "poll"}},
		{step: "download", status: http.StatusGone, op: OpDownload, calls: []string{"token", "assets", "upload", "start", "poll", "download"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.step, func(t *testing.T) {
			f := newFakeService(t)
			f.failAt = tt.step
			f.failStatus = tt.status
			f.pollStates = []string{"done"}
			clock := &fakeClock{now: time.Now()}
			client := newTestClient(f, clock, Config{})

			_, err := client.Extract(context.Background(), []byte("%PDF"))
			var extErr *ExtractionError
			if !errors.As(err, &extErr) {
				t.Fatalf("expected ExtractionError, got %v", err)
			}
			if extErr.Op != tt.op {
				t.Fatalf("op = %q, want %q", extErr.Op, tt.op)
			}
			if extErr.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", extErr.StatusCode, tt.status)
			}
			if extErr.Body == "" {
				t.Fatalf("expected response body in error")
			}
			if got := f.callLog(); strings.Join(got, ",") != strings.Join(tt.calls, ",") {
				t.Fatalf("calls = %v, want %v", got, tt.calls)
			}
		})
	}
}

func TestExtractPollTimeout(t *testing.T) {
	f := newFakeService(t)
	f.pollStates = []string{"running"}
	clock := &fakeClock{now: time.Now()}
	client := newTestClient(f, clock, Config{PollInterval: 2 * time.Second, PollTimeout: 10 * time.Second})

	_, err := client.Extract(context.Background(), []byte("%PDF"))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	// Polls at t=0,2,...,10 stay within the limit; the poll at t=12 exceeds it.
	if clock.sleeps != 6 {
		t.Fatalf("expected 6 sleeps before timing out, got %d", clock.sleeps)
	}
	for _, call := range f.callLog() {
		if call == "download" {
			t.Fatalf("download must not run after a timeout")
		}
	}
}

func TestExtractTerminalFailureStates(t *testing.T) {
	for _, state := range []string{StatusFailed, StatusCancelled} {
		state := state
		t.Run(state, func(t *testing.T) {
			f := newFakeService(t)
			f.pollStates = []string{"running", state}
			clock := &fakeClock{now: time.Now()}
			client := newTestClient(f, clock, Config{})

			_, err := client.Extract(context.Background(), []byte("%PDF"))
			if !errors.Is(err, ErrJobNotDone) {
				t.Fatalf("expected ErrJobNotDone, got %v", err)
			}
			if !strings.Contains(err.Error(), state) {
				t.Fatalf("expected status payload in error, got %q", err.Error())
			}
		})
	}
}

func TestExtractCorruptArchive(t *testing.T) {
	f := newFakeService(t)
	f.pollStates = []string{"done"}
	f.archive = []byte("not a zip")
	clock := &fakeClock{now: time.Now()}
	client := newTestClient(f, clock, Config{})

	_, err := client.Extract(context.Background(), []byte("%PDF"))
	var extErr *ExtractionError
	if !errors.As(err, &extErr) || extErr.Op != OpParse {
		t.Fatalf("expected parse ExtractionError, got %v", err)
	}
}

func TestExtractContextCanceledDuringPoll(t *testing.T) {
	f := newFakeService(t)
	f.pollStates = []string{"running"}
	ctx, cancel := context.WithCancel(context.Background())
	clock := &fakeClock{now: time.Now()}
	client := NewClient(Config{ClientID: "id", ClientSecret: "secret", BaseURL: f.srv.URL},
		WithHTTPClient(f.srv.Client()),
		WithClock(clock.Now, func(ctx context.Context, d time.Duration) error {
			cancel()
			return clock.Sleep(ctx, d)
		}))

	_, err := client.Extract(ctx, []byte("%PDF"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtractionErrorMessage(t *testing.T) {
	err := &ExtractionError{Op: OpUpload, StatusCode: 403, Body: "denied\n"}
	if got, want := err.Error(), "upload asset error: status 403: denied"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
