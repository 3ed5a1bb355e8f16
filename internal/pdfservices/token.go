package pdfservices

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// accessToken exchanges the client id and secret for a bearer token. A fresh
// token is requested on every extraction; nothing is cached.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if strings.TrimSpace(c.cfg.ClientID) == "" || strings.TrimSpace(c.cfg.ClientSecret) == "" {
		return "", &ExtractionError{Op: OpToken, Err: ErrMissingCredentials}
	}

	cc := clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     c.cfg.BaseURL + "/token",
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := cc.Token(ctx)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			return "", &ExtractionError{Op: OpToken, StatusCode: rerr.Response.StatusCode, Body: string(rerr.Body)}
		}
		return "", &ExtractionError{Op: OpToken, Err: err}
	}
	return tok.AccessToken, nil
}
