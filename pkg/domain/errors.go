package domain

import (
	"errors"
	"fmt"
	"regexp"
)

// Sentinel errors shared across store implementations.
var (
	// ErrNoParent signals that an entry sits at the hierarchy root and a
	// parent-relative operation cannot proceed. Callers recover it locally;
	// it never reaches a directory client.
	ErrNoParent = errors.New("entry has no parent")
	// ErrNoSuchEntry signals a lookup for a DN the store does not hold.
	ErrNoSuchEntry = errors.New("no such entry")
	// ErrEntryExists signals an add for a DN already present.
	ErrEntryExists = errors.New("entry already exists")
)

// QueryErrorKind classifies a failed directory search so diagnostics keep the
// structured cause rather than only the message text.
type QueryErrorKind string

// Query failure classifications.
const (
	QueryTimeout   QueryErrorKind = "timeout"
	QuerySizeLimit QueryErrorKind = "size_limit"
	QueryProtocol  QueryErrorKind = "protocol"
	QueryAccess    QueryErrorKind = "access"
	QueryOther     QueryErrorKind = "other"
)

// QueryError wraps a failure reported by the directory-query capability.
type QueryError struct {
	Kind QueryErrorKind
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("directory query failed (%s): %v", e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// QueryKind extracts the classification from err, defaulting to QueryOther
// for failures that carry no QueryError in their chain.
func QueryKind(err error) QueryErrorKind {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return QueryOther
}

// Attribute and object class names share one grammar: a leading letter
// followed by letters, digits, or hyphens. Names are validated once at
// configuration time so filter text built from them needs no sanitization.
var nameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)

// InvalidNameError reports a configured name that fails the grammar. It is a
// configuration-time failure and never surfaces during request processing.
type InvalidNameError struct {
	Field string
	Name  string
}

func (e InvalidNameError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: name is required", e.Field)
	}
	return fmt.Sprintf("%s: invalid name %q", e.Field, e.Name)
}

// ValidateName checks name against the shared grammar, tagging failures with
// the configuration field they belong to.
func ValidateName(field, name string) error {
	if !nameRe.MatchString(name) {
		return InvalidNameError{Field: field, Name: name}
	}
	return nil
}
