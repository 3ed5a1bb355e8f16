package pdfservices

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingCredentials = errors.New("pdf services credentials are not set")
	ErrTimeout            = errors.New("timed out waiting for extract job")
	ErrJobNotDone         = errors.New("extract job did not complete")
)

// Operation names used in ExtractionError.Op.
const (
	OpToken       = "token"
	OpCreateAsset = "create asset"
	OpUpload      = "upload asset"
	OpStartJob    = "start job"
	OpPollJob     = "poll job"
	OpDownload    = "download result"
	OpParse       = "parse result"
)

// ExtractionError reports the step that failed and what the service said.
type ExtractionError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ExtractionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(" error")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		b.WriteString(": ")
		b.WriteString(body)
	}
	return b.String()
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
