package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies ingestion failures. Recoverable kinds are recorded per file
// during folder runs and the run continues; KindPersistence is fatal and
// halts the run.
type Kind int

const (
	// KindUnsupportedFormat means the file's extension is not registered.
	KindUnsupportedFormat Kind = iota
	// KindFileTooLarge means an in-memory payload exceeded the size limit.
	KindFileTooLarge
	// KindEmptyDocument means extraction or chunking produced nothing.
	KindEmptyDocument
	// KindExtraction means the extractor failed on the file's content.
	KindExtraction
	// KindPersistence means the index store rejected a write.
	KindPersistence
)

// Error is a classified ingestion failure. File is the basename of the
// offending file, empty for persistence failures.
type Error struct {
	Kind Kind
	File string
	Err  error
	msg  string
}

func (e *Error) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error must abort a folder run.
func (e *Error) Fatal() bool {
	return e.Kind == KindPersistence
}

// Reason is the short description recorded in folder reports.
func (e *Error) Reason() string {
	switch e.Kind {
	case KindUnsupportedFormat:
		return "unsupported format"
	case KindFileTooLarge:
		return "file too large"
	case KindEmptyDocument:
		return "empty or unreadable content"
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.msg
	}
}

// IsKind reports whether err is an ingest.Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ie *Error
	return errors.As(err, &ie) && ie.Kind == kind
}

func errUnsupportedFormat(ext string, supported []string) *Error {
	return &Error{
		Kind: KindUnsupportedFormat,
		msg:  fmt.Sprintf("unsupported format %q (supported: %s)", ext, strings.Join(supported, ", ")),
	}
}

func errFileTooLarge(name string, size, limit int64) *Error {
	return &Error{
		Kind: KindFileTooLarge,
		File: name,
		msg:  fmt.Sprintf("file %q exceeds %dMB limit (got %.1fMB)", name, limit/(1024*1024), float64(size)/1024/1024),
	}
}

func errEmptyDocument(name string) *Error {
	return &Error{
		Kind: KindEmptyDocument,
		File: name,
		msg:  fmt.Sprintf("empty or unreadable document: %s", name),
	}
}

func errInvalidBase64(name string, err error) *Error {
	return &Error{
		Kind: KindExtraction,
		File: name,
		msg:  fmt.Sprintf("invalid base64 content: %v", err),
	}
}

func errExtraction(name string, err error) *Error {
	return &Error{Kind: KindExtraction, File: name, Err: err}
}

func errPersistence(err error) *Error {
	return &Error{Kind: KindPersistence, Err: fmt.Errorf("persist batch: %w", err)}
}
