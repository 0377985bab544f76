// internal/models/job.go
package models

import "time"

// JobState tracks an upload through the extraction state machine.
type JobState string

const (
	JobReceived           JobState = "received"
	JobParsing            JobState = "parsing"
	JobExtractingMetadata JobState = "extracting_metadata"
	JobExtractingKPIs     JobState = "extracting_kpis"
	JobPersisting         JobState = "persisting"
	JobCompleted          JobState = "completed"
	JobFailed             JobState = "failed"

	// JobQueued is the pre-machine state for deferred processing.
	JobQueued JobState = "queued"
)

// ProcessingJob is one upload's lifecycle record. The extraction core reports
// into it but does not own its schema. Progress is advisory telemetry only.
type ProcessingJob struct {
	FileID       string    `json:"fileId"`
	Filename     string    `json:"filename"`
	FilePath     string    `json:"-"`
	FileType     string    `json:"fileType"`
	ProcessingID string    `json:"processingId"`
	Status       JobState  `json:"status"`
	Progress     int       `json:"progress"`
	Message      string    `json:"message,omitempty"`
	ResultURL    string    `json:"resultUrl,omitempty"`
	ErrorMessage string    `json:"error,omitempty"`
	UploadDate   time.Time `json:"uploadDate"`
}

// Envelope is the uniform response wrapper. Callers must check Success
// rather than relying on the transport status alone.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK wraps data in a successful envelope.
func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// Err wraps an error message in a failed envelope.
func Err(message string) Envelope {
	return Envelope{Success: false, Error: message}
}
