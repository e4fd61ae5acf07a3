package errors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
)

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Status     int                    `json:"status"`
	Detail     string                 `json:"detail,omitempty"`
	Instance   string                 `json:"instance,omitempty"`
	TraceID    string                 `json:"trace_id,omitempty"`
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	w.Header().Set("Content-Type", "application/problem+json")
	return nil
}

// MarshalJSON customizes JSON marshaling to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	type alias ProblemDetails
	base, err := json.Marshal((*alias)(pd))
	if err != nil {
		return nil, err
	}

	if len(pd.Extensions) == 0 {
		return base, nil
	}

	var m map[string]interface{}
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range pd.Extensions {
		m[k] = v
	}
	return json.Marshal(m)
}

// NewProblemDetails creates a new RFC 7807 problem details response
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:     problemType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	if pd.Extensions == nil {
		pd.Extensions = make(map[string]interface{})
	}
	pd.Extensions[key] = value
	return pd
}
