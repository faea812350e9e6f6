package mail

import (
	"errors"
	"strings"
)

// ContentType is the encoding of webhook request bodies.
type ContentType int8

const (
	// ContentTypeJSON is the JSON content type.
	ContentTypeJSON ContentType = iota
	// ContentTypeForm is the form content type.
	ContentTypeForm
)

var contentTypeStrings = map[ContentType]string{
	ContentTypeJSON: "application/json",
	ContentTypeForm: "application/x-www-form-urlencoded",
}

// String returns the MIME type of the content type.
func (c ContentType) String() string {
	return contentTypeStrings[c]
}

// ErrInvalidContentType is returned when the content type is invalid.
var ErrInvalidContentType = errors.New("invalid content type")

// ParseContentType parses either a short name ("json", "form") or a MIME
// type.
func ParseContentType(s string) (ContentType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "json":
		return ContentTypeJSON, nil
	case "form":
		return ContentTypeForm, nil
	}

	for k, v := range contentTypeStrings {
		if strings.HasPrefix(s, v) {
			return k, nil
		}
	}

	return -1, ErrInvalidContentType
}
