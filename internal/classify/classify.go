// Package classify maps failures from the order and aggregation paths onto a
// small, user-facing taxonomy. It is pure and has no side effects.
package classify

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jacobarthurs/schemabench/internal/orders"
)

type Category string

const (
	DuplicateData            Category = "duplicate_data"
	MissingReference         Category = "missing_reference"
	IncompleteInput          Category = "incomplete_input"
	InternalMisconfiguration Category = "internal_misconfiguration"
	InternalInconsistency    Category = "internal_inconsistency"
	StorageUnavailable       Category = "storage_unavailable"
	Timeout                  Category = "timeout"
	Unknown                  Category = "unknown"
)

type Fault string

const (
	UserFault     Fault = "user"
	OperatorFault Fault = "operator"
	SystemFault   Fault = "system"
)

// Classification is safe to show to a user. Code carries the raw SQLSTATE, if
// any, for diagnostics only.
type Classification struct {
	Category  Category `json:"category"`
	Message   string   `json:"message"`
	Status    int      `json:"status"`
	Fault     Fault    `json:"fault"`
	Retryable bool     `json:"retryable"`
	Code      string   `json:"code,omitempty"`
}

var catalog = map[Category]Classification{
	DuplicateData: {
		Message:   "duplicate data: a record with the same unique value already exists",
		Status:    http.StatusConflict,
		Fault:     UserFault,
		Retryable: true,
	},
	MissingReference: {
		Message: "missing referenced record: the customer, store, employee or menu item does not exist",
		Status:  http.StatusBadRequest,
		Fault:   UserFault,
	},
	IncompleteInput: {
		Message: "incomplete input: a required field is missing or invalid",
		Status:  http.StatusBadRequest,
		Fault:   UserFault,
	},
	InternalMisconfiguration: {
		Message: "internal misconfiguration: the database schema is missing or out of date",
		Status:  http.StatusInternalServerError,
		Fault:   OperatorFault,
	},
	InternalInconsistency: {
		Message: "internal inconsistency: referenced data changed while the operation was running",
		Status:  http.StatusInternalServerError,
		Fault:   SystemFault,
	},
	StorageUnavailable: {
		Message:   "storage unavailable: the database could not be reached",
		Status:    http.StatusServiceUnavailable,
		Fault:     SystemFault,
		Retryable: true,
	},
	Timeout: {
		Message:   "the operation timed out",
		Status:    http.StatusGatewayTimeout,
		Fault:     SystemFault,
		Retryable: true,
	},
	Unknown: {
		Message: "the operation failed",
		Status:  http.StatusInternalServerError,
		Fault:   SystemFault,
	},
}

func Classify(err error) Classification {
	if err == nil {
		return Classification{}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		c := lookup(categoryForCode(pgErr.Code))
		c.Code = pgErr.Code
		return c
	}

	switch {
	case errors.Is(err, orders.ErrValidation):
		return lookup(IncompleteInput)
	case errors.Is(err, orders.ErrInconsistent):
		return lookup(InternalInconsistency)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), pgconn.Timeout(err):
		return lookup(Timeout)
	case isConnectionError(err):
		return lookup(StorageUnavailable)
	}

	return lookup(Unknown)
}

// Of returns the category of err.
func Of(err error) Category {
	return Classify(err).Category
}

func lookup(cat Category) Classification {
	c := catalog[cat]
	c.Category = cat
	return c
}

func categoryForCode(code string) Category {
	switch {
	case code == pgerrcode.UniqueViolation:
		return DuplicateData
	case code == pgerrcode.ForeignKeyViolation:
		return MissingReference
	case code == pgerrcode.NotNullViolation, code == pgerrcode.CheckViolation:
		return IncompleteInput
	case code == pgerrcode.UndefinedTable, code == pgerrcode.UndefinedColumn, code == pgerrcode.UndefinedFunction:
		return InternalMisconfiguration
	case pgerrcode.IsConnectionException(code), pgerrcode.IsOperatorIntervention(code):
		return StorageUnavailable
	default:
		return Unknown
	}
}

func isConnectionError(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
