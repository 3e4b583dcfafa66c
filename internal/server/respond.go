package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jacobarthurs/schemabench/internal/classify"
	"github.com/jacobarthurs/schemabench/internal/orders"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Success       bool              `json:"success"`
	Error         string            `json:"error"`
	Category      classify.Category `json:"category"`
	Code          string            `json:"code,omitempty"`
	Retryable     bool              `json:"retryable"`
	ExecutionTime *float64          `json:"executionTime,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeFailure classifies err and writes the failure envelope with the
// classification's status. elapsedMs is included when the failure was timed.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, op string, err error, elapsedMs *float64) {
	c := classify.Classify(err)
	s.logger.LogAttrs(r.Context(), levelFor(c.Status), "operation failed",
		slog.String("op", op),
		slog.String("category", string(c.Category)),
		slog.String("code", c.Code),
		slog.String("err", classify.Wrap(op, err).Error()),
	)
	writeJSON(w, c.Status, errorBody{
		Error:         c.Message,
		Category:      c.Category,
		Code:          c.Code,
		Retryable:     c.Retryable,
		ExecutionTime: elapsedMs,
	})
}

func writeNotFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: msg, Category: classify.IncompleteInput})
}

// decodeBody reads an optional JSON body into v. It reports whether a body
// was present; malformed JSON is a validation error.
func decodeBody(r *http.Request, v any) (bool, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return false, fmt.Errorf("%w: reading request body: %v", orders.ErrValidation, err)
	}
	if len(body) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return true, fmt.Errorf("%w: decoding request body: %v", orders.ErrValidation, err)
	}
	return true, nil
}
