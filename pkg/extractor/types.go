package extractor

import "encoding/json"

// SubmitRequest asks the extraction service to process a stored PDF.
type SubmitRequest struct {
	ObjectKey string `json:"objectKey"`
	Bucket    string `json:"bucket"`
}

// SubmitResponse acknowledges a queued extraction.
type SubmitResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// ExtractedQuestion is one question parsed out of the PDF.
type ExtractedQuestion struct {
	Text    string          `json:"text"`
	Options json.RawMessage `json:"options"`
	Answer  string          `json:"answer"`
}

// JobResult is the extraction service's job view.
// Status is one of: queued, running, completed, failed.
type JobResult struct {
	JobID     string              `json:"jobId"`
	Status    string              `json:"status"`
	Error     string              `json:"error,omitempty"`
	Questions []ExtractedQuestion `json:"questions,omitempty"`
}
