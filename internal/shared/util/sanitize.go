package util

import (
	"errors"
	"strings"
)

const maxDocumentIDLen = 128

var (
	errInvalidFileName   = errors.New("invalid file name")
	errInvalidDocumentID = errors.New("invalid document id")
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errInvalidFileName
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errInvalidFileName
	}
	return s, nil
}

// ValidateDocumentID accepts ids made of letters, digits, '-', '_' and '.',
// and rejects anything that could escape the documents directory.
func ValidateDocumentID(id string) error {
	if id == "" || len(id) > maxDocumentIDLen || strings.Contains(id, "..") {
		return errInvalidDocumentID
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return errInvalidDocumentID
		}
	}
	return nil
}
