package pdfservices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"doctoc-backend/internal/shared/metrics"
)

// Job states reported by the service. done, failed and cancelled are terminal.
const (
	StatusRunning   = "running"
	StatusDone      = "done"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// JobStatus is one poll response.
type JobStatus struct {
	Status      string
	DownloadURI string
	Raw         json.RawMessage
}

type extractRequest struct {
	AssetID           string   `json:"assetID"`
	OutputType        string   `json:"outputType"`
	ElementsToExtract []string `json:"elementsToExtract"`
	IncludeCharBounds bool     `json:"includeCharBounds"`
}

func (c *Client) startJob(ctx context.Context, token, assetID string) (string, error) {
	resp, err := c.postJSON(ctx, c.cfg.BaseURL+"/operation/extractpdf", token, extractRequest{
		AssetID:           assetID,
		OutputType:        "json",
		ElementsToExtract: []string{"text"},
		IncludeCharBounds: true,
	})
	if err != nil {
		return "", &ExtractionError{Op: OpStartJob, Err: err}
	}
	defer resp.Body.Close()

	if !statusIn(resp.StatusCode, http.StatusOK, http.StatusCreated, http.StatusAccepted) {
		return "", statusError(OpStartJob, resp)
	}

	var parsed struct {
		JobID string `json:"jobID"`
	}
	if err := decodeJSON(OpStartJob, resp, &parsed); err != nil {
		return "", err
	}
	if parsed.JobID == "" {
		return "", &ExtractionError{Op: OpStartJob, Err: errors.New("response missing jobID")}
	}
	return parsed.JobID, nil
}

// pollJob queries the job until it reaches a terminal state. The timeout is
// checked after each poll, so a job finishing right at the deadline is still
// observed.
func (c *Client) pollJob(ctx context.Context, token, jobID string) (JobStatus, error) {
	start := c.now()
	for {
		status, err := c.jobStatus(ctx, token, jobID)
		if err != nil {
			return JobStatus{}, err
		}

		switch status.Status {
		case StatusDone:
			if status.DownloadURI == "" {
				return JobStatus{}, &ExtractionError{Op: OpPollJob, Err: errors.New("done job missing downloadUri"), Body: string(status.Raw)}
			}
			return status, nil
		case StatusFailed, StatusCancelled:
			return JobStatus{}, &ExtractionError{Op: OpPollJob, Err: ErrJobNotDone, Body: string(status.Raw)}
		}

		if elapsed := c.now().Sub(start); elapsed > c.cfg.PollTimeout {
			metrics.IncExtractionTimeout()
			return JobStatus{}, &ExtractionError{Op: OpPollJob, Err: fmt.Errorf("%w after %s", ErrTimeout, c.cfg.PollTimeout)}
		}

		if err := c.sleep(ctx, c.cfg.PollInterval); err != nil {
			return JobStatus{}, &ExtractionError{Op: OpPollJob, Err: err}
		}
	}
}

func (c *Client) jobStatus(ctx context.Context, token, jobID string) (JobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return JobStatus{}, &ExtractionError{Op: OpPollJob, Err: err}
	}
	c.authHeaders(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return JobStatus{}, &ExtractionError{Op: OpPollJob, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return JobStatus{}, statusError(OpPollJob, resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return JobStatus{}, &ExtractionError{Op: OpPollJob, Err: err}
	}

	var parsed struct {
		Status      string `json:"status"`
		DownloadURI string `json:"downloadUri"`
		Resource    *struct {
			DownloadURI string `json:"downloadUri"`
		} `json:"resource"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return JobStatus{}, &ExtractionError{Op: OpPollJob, Err: fmt.Errorf("decode response: %w", err), Body: string(raw)}
	}

	downloadURI := parsed.DownloadURI
	if downloadURI == "" && parsed.Resource != nil {
		downloadURI = parsed.Resource.DownloadURI
	}
	return JobStatus{Status: parsed.Status, DownloadURI: downloadURI, Raw: raw}, nil
}

func (c *Client) downloadResult(ctx context.Context, downloadURI string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURI, nil)
	if err != nil {
		return nil, &ExtractionError{Op: OpDownload, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ExtractionError{Op: OpDownload, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(OpDownload, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ExtractionError{Op: OpDownload, Err: err}
	}
	return data, nil
}
