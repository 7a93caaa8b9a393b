package citation

import (
	"fmt"
	"strconv"
)

// ParseError reports a collaborator response that does not match the schema
// requested for its condition. Path names the offending field, e.g.
// $["Pneumonia"].evidence_for[0].citations.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed response at %s: %s", e.Path, e.Reason)
}

func fieldErr(path, reason string) *ParseError {
	return &ParseError{Path: path, Reason: reason}
}

func keyPath(parent, key string) string {
	return parent + "[" + strconv.Quote(key) + "]"
}

func fieldPath(parent, field string) string {
	return parent + "." + field
}

func itemPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}
