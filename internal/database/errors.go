package database

import (
	"errors"
	"fmt"

	"github.com/nfrund/eventdesk/internal/domain"
)

// Sentinels callers can match with errors.Is.
var (
	// ErrNotFound aliases the domain sentinel so handlers never import this package.
	ErrNotFound = domain.ErrNotFound

	ErrInvalidInput = errors.New("invalid input data")
	ErrQueryFailed  = errors.New("query execution failed")
	ErrNotConnected = errors.New("database not connected")

	// ErrClosed is returned by stores used after Close.
	ErrClosed = fmt.Errorf("store closed: %w", domain.ErrStoreUnavailable)
)

// QueryError records which store operation failed and, when known, the
// statement it ran.
type QueryError struct {
	Op    string
	Query string
	Err   error
}

func opErr(op string, err error) *QueryError {
	return &QueryError{Op: op, Err: err}
}

func queryErr(op, query string, err error) *QueryError {
	return &QueryError{Op: op, Query: query, Err: err}
}

func (e *QueryError) Error() string {
	msg := e.Op
	if e.Query != "" {
		msg += " [" + e.Query + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *QueryError) Unwrap() error { return e.Err }

// wrapOp prefixes op to an existing QueryError, keeping its statement, or
// starts a new one.
func wrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return &QueryError{Op: op + ": " + qe.Op, Query: qe.Query, Err: qe.Err}
	}
	return opErr(op, err)
}
