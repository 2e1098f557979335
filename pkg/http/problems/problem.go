// Package problems writes RFC 7807 problem details.
package problems

import (
	"net/http"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/tracecontext"
	json "github.com/goccy/go-json"
)

const ContentType = "application/problem+json"

// Problem represents RFC7807 Problem Details for HTTP APIs
type Problem struct {
	Type     string       `json:"type,omitempty"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// New creates a new Problem with the given status and detail
func New(status int, detail string) *Problem {
	return &Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

// WithFieldError appends a validation failure for field.
func (p *Problem) WithFieldError(field, message string) *Problem {
	p.Errors = append(p.Errors, FieldError{Field: field, Message: message})
	return p
}

// Write sends p for r, filling the instance and the trace id of the request.
func Write(w http.ResponseWriter, r *http.Request, p *Problem) {
	if p.Instance == "" {
		p.Instance = r.URL.Path
	}
	if tc, ok := tracecontext.FromContext(r.Context()); ok && tc.IsValid() {
		p.TraceID = tc.TraceID.String()
	}

	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
