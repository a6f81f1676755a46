package engine

import "fmt"

// ResponseType classifies a Response for rendering and batch semantics.
// Only "error" stops a batch.
type ResponseType string

const (
	TypeSuccess ResponseType = "success"
	TypeError   ResponseType = "error"
	TypeWarning ResponseType = "warning"
	TypeInfo    ResponseType = "info"
	TypeData    ResponseType = "data"
	TypePrompt  ResponseType = "prompt"
)

// Response is the envelope returned for every command and every batch item.
type Response struct {
	Type     ResponseType      `json:"type"`
	Message  string            `json:"message"`
	Data     any               `json:"data,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// WithMeta sets one metadata key, allocating the map on first use.
func (r *Response) WithMeta(key, value string) *Response {
	if r.Metadata == nil {
		r.Metadata = make(map[string]string)
	}
	r.Metadata[key] = value
	return r
}

// Successf formats a success response.
func Successf(format string, args ...any) *Response {
	return &Response{Type: TypeSuccess, Message: fmt.Sprintf(format, args...)}
}

// Errorf formats an error response.
func Errorf(format string, args ...any) *Response {
	return &Response{Type: TypeError, Message: fmt.Sprintf(format, args...)}
}

// Infof formats an info response.
func Infof(format string, args ...any) *Response {
	return &Response{Type: TypeInfo, Message: fmt.Sprintf(format, args...)}
}

// Promptf formats a prompt response (wizard question).
func Promptf(format string, args ...any) *Response {
	return &Response{Type: TypePrompt, Message: fmt.Sprintf(format, args...)}
}

// DataResponse wraps a structured payload with a caption.
func DataResponse(message string, data any) *Response {
	return &Response{Type: TypeData, Message: message, Data: data}
}

// BatchOutcome reports a batch run: one Response per command that ran, how
// many succeeded, and the raw text of commands skipped after the first
// error, so the caller can fix and resubmit them verbatim.
type BatchOutcome struct {
	Results    []*Response `json:"results"`
	Executed   int         `json:"executed"`
	Total      int         `json:"total"`
	Unexecuted []string    `json:"unexecuted,omitempty"`
}

// BatchLimitExceededError reports a batch larger than the allowed chain.
type BatchLimitExceededError struct {
	Count int
	Limit int
}

func (e *BatchLimitExceededError) Error() string {
	return fmt.Sprintf("batch of %d commands exceeds the limit of %d", e.Count, e.Limit)
}
