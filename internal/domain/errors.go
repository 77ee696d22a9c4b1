package domain

import (
	"errors"
	"fmt"
)

// ErrorKind tags a resolution failure so the calling layer can map it to
// user messaging without inspecting error strings.
type ErrorKind string

const (
	// KindDistrictNotRecognized: no span of the query matched the gazetteer.
	KindDistrictNotRecognized ErrorKind = "district_not_recognized"
	// KindRetrieval: upstream fetch failed or returned empty content after
	// all URL name variants. Indicates an outage, not a format change.
	KindRetrieval ErrorKind = "retrieval_error"
	// KindParse: content was fetched but zero valid forecast days came out.
	// Indicates an upstream format regression, not a network problem.
	KindParse ErrorKind = "parse_error"
)

// ResolveError is the only error type the pipeline lets cross its boundary.
type ResolveError struct {
	Kind ErrorKind
	msg  string
	err  error
}

func (e *ResolveError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *ResolveError) Unwrap() error { return e.err }

// NewResolveError tags an underlying error with a kind.
func NewResolveError(kind ErrorKind, msg string, err error) *ResolveError {
	return &ResolveError{Kind: kind, msg: msg, err: err}
}

// DistrictNotRecognizedError reports that no district could be extracted
// from the given query text.
func DistrictNotRecognizedError(query string) *ResolveError {
	return &ResolveError{
		Kind: KindDistrictNotRecognized,
		msg:  fmt.Sprintf("no recognizable district in query %q", truncate(query, 80)),
	}
}

// KindOf returns the ErrorKind carried by err, or "" if err is not a
// ResolveError.
func KindOf(err error) ErrorKind {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
