package pdfservices

import (
	"bytes"
	"context"
	"errors"
	"net/http"
)

// Asset is an upload slot provisioned by the service.
type Asset struct {
	ID        string `json:"id"`
	UploadURI string `json:"uploadUri"`
}

func (c *Client) createAsset(ctx context.Context, token string) (Asset, error) {
	resp, err := c.postJSON(ctx, c.cfg.BaseURL+"/assets", token, map[string]string{
		"mediaType": mediaTypePDF,
	})
	if err != nil {
		return Asset{}, &ExtractionError{Op: OpCreateAsset, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return Asset{}, statusError(OpCreateAsset, resp)
	}

	var asset Asset
	if err := decodeJSON(OpCreateAsset, resp, &asset); err != nil {
		return Asset{}, err
	}
	if asset.ID == "" || asset.UploadURI == "" {
		return Asset{}, &ExtractionError{Op: OpCreateAsset, Err: errors.New("response missing id or uploadUri")}
	}
	return asset, nil
}

// uploadAsset PUTs the document to the pre-signed upload address. The address
// carries its own authorization, so no service headers are sent.
func (c *Client) uploadAsset(ctx context.Context, uploadURI string, pdf []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURI, bytes.NewReader(pdf))
	if err != nil {
		return &ExtractionError{Op: OpUpload, Err: err}
	}
	req.Header.Set("Content-Type", mediaTypePDF)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ExtractionError{Op: OpUpload, Err: err}
	}
	defer resp.Body.Close()

	if !statusIn(resp.StatusCode, http.StatusOK, http.StatusCreated) {
		return statusError(OpUpload, resp)
	}
	return nil
}
