package pdfservices

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"doctoc-backend/internal/shared/telemetry"
	"doctoc-backend/internal/toc"
)

const (
	DefaultBaseURL      = "https://pdf-services.adobe.io"
	DefaultPollInterval = 2 * time.Second
	DefaultPollTimeout  = 120 * time.Second
	defaultHTTPTimeout  = 60 * time.Second

	mediaTypePDF = "application/pdf"

	// maxErrorBody caps how much of a failed response is kept in errors.
	maxErrorBody = 4 << 10
)

// Config holds the service endpoint, credentials and polling bounds.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	PollInterval time.Duration
	PollTimeout  time.Duration
	HTTPTimeout  time.Duration
}

// Client drives the extract job protocol. It keeps no per-call state, so one
// Client can serve concurrent extractions.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClock replaces the time source and the wait between polls.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewClient builds a Client, filling in defaults for unset config fields.
// Credentials are validated per call, not here.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		now:        time.Now,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of one extraction. On failure the ids reached so far
// are still populated.
type Result struct {
	AssetID  string
	JobID    string
	Headings []toc.Heading
}

// ExtractHeadings runs a full extraction for the given PDF bytes.
func (c *Client) ExtractHeadings(ctx context.Context, pdf []byte) ([]toc.Heading, error) {
	res, err := c.Extract(ctx, pdf)
	if err != nil {
		return nil, err
	}
	return res.Headings, nil
}

// ExtractTOC adapts Extract to toc.Extractor.
func (c *Client) ExtractTOC(ctx context.Context, pdf []byte) (toc.Extraction, error) {
	res, err := c.Extract(ctx, pdf)
	return toc.Extraction{JobID: res.JobID, Headings: res.Headings}, err
}

// Extract authenticates, uploads the PDF, runs an extract job, waits for it
// and parses the downloaded archive. Each step runs once; the first failure
// ends the call.
func (c *Client) Extract(ctx context.Context, pdf []byte) (Result, error) {
	start := c.now()
	var res Result

	token, err := c.accessToken(ctx)
	if err != nil {
		return res, err
	}

	asset, err := c.createAsset(ctx, token)
	if err != nil {
		return res, err
	}
	res.AssetID = asset.ID

	if err := c.uploadAsset(ctx, asset.UploadURI, pdf); err != nil {
		return res, err
	}

	jobID, err := c.startJob(ctx, token, asset.ID)
	if err != nil {
		return res, err
	}
	res.JobID = jobID
	telemetry.Info("pdfservices.job.started", map[string]any{
		"asset_id":   asset.ID,
		"job_id":     jobID,
		"size_bytes": len(pdf),
	})

	job, err := c.pollJob(ctx, token, jobID)
	if err != nil {
		return res, err
	}

	archive, err := c.downloadResult(ctx, job.DownloadURI)
	if err != nil {
		return res, err
	}

	headings, err := toc.ParseHeadings(archive)
	if err != nil {
		return res, &ExtractionError{Op: OpParse, Err: err}
	}
	res.Headings = headings

	telemetry.Info("pdfservices.job.done", map[string]any{
		"asset_id":    asset.ID,
		"job_id":      jobID,
		"headings":    len(headings),
		"duration_ms": float64(c.now().Sub(start).Microseconds()) / 1000.0,
	})

	return res, nil
}

func (c *Client) authHeaders(req *http.Request, token string) {
	req.Header.Set("x-api-key", c.cfg.ClientID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) postJSON(ctx context.Context, url, token string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.authHeaders(req, token)
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

// statusError builds the error for an unexpected response and drains a
// bounded part of its body.
func statusError(op string, resp *http.Response) *ExtractionError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &ExtractionError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
}

func decodeJSON(op string, resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ExtractionError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func statusIn(code int, accepted ...int) bool {
	for _, a := range accepted {
		if code == a {
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
