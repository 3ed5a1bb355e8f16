package toc

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	structuredDataFile = "structuredData.json"
	elementsFile       = "elements.json"
)

// ErrMalformedArchive marks a result archive that could not be read or decoded.
var ErrMalformedArchive = errors.New("malformed result archive")

// ParseHeadings reads the extraction result archive and returns its headings,
// sorted by page and vertical position. An archive without a recognized result
// file yields an empty slice.
func ParseHeadings(archive []byte) ([]Heading, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("%w: open zip: %v", ErrMalformedArchive, err)
	}

	entry := findEntry(zr.File, structuredDataFile)
	if entry == nil {
		entry = findEntry(zr.File, elementsFile)
	}
	if entry == nil {
		return []Heading{}, nil
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrMalformedArchive, entry.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrMalformedArchive, entry.Name, err)
	}

	elements, err := decodeElements(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrMalformedArchive, entry.Name, err)
	}

	return headingsFrom(elements), nil
}

func findEntry(files []*zip.File, suffix string) *zip.File {
	for _, f := range files {
		if strings.HasSuffix(f.Name, suffix) {
			return f
		}
	}
	return nil
}

// decodeElements accepts either a bare element list or {"elements": [...]}.
func decodeElements(raw []byte) ([]any, error) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if list, ok := v["elements"].([]any); ok {
			return list, nil
		}
		return nil, nil
	default:
		return nil, nil
	}
}

func headingsFrom(elements []any) []Heading {
	out := make([]Heading, 0)
	for _, item := range elements {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		el := NormalizeElement(obj)
		if !el.IsHeading() || el.Text == "" {
			continue
		}
		out = append(out, el.Heading())
	}
	SortHeadings(out)
	return out
}
