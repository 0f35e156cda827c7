package pipeline

import "encoding/json"

// Status is the outcome of one invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Envelope is the result returned to the tool caller for every invocation.
//
// A success envelope carries Analysis and never Error; an error envelope
// carries Error and never Analysis. URL always echoes the input unchanged.
type Envelope struct {
	Status   Status `json:"status" jsonschema:"success or error"`
	URL      string `json:"url" jsonschema:"the URL exactly as it was supplied"`
	Analysis string `json:"analysis,omitempty" jsonschema:"model analysis of the page, present on success"`
	Error    string `json:"error,omitempty" jsonschema:"human-readable failure reason, present on error"`
}

// Success builds a success envelope.
func Success(url, analysis string) Envelope {
	return Envelope{Status: StatusSuccess, URL: url, Analysis: analysis}
}

// Failure builds an error envelope carrying err's message verbatim.
func Failure(url string, err error) Envelope {
	return Envelope{Status: StatusError, URL: url, Error: err.Error()}
}

// OK reports whether the envelope is a success.
func (e Envelope) OK() bool {
	return e.Status == StatusSuccess
}

// MarshalJSON emits analysis on success and error on failure, even when the
// value is empty, and never both.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Status == StatusSuccess {
		return json.Marshal(struct {
			Status   Status `json:"status"`
			URL      string `json:"url"`
			Analysis string `json:"analysis"`
		}{e.Status, e.URL, e.Analysis})
	}
	return json.Marshal(struct {
		Status Status `json:"status"`
		URL    string `json:"url"`
		Error  string `json:"error"`
	}{e.Status, e.URL, e.Error})
}
