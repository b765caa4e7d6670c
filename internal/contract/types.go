package contract

import "time"

const SchemaVersion = "v1"

type ErrorCode string

const (
	ErrGeneric              ErrorCode = "GENERIC_FAILURE"
	ErrInvalidUsage         ErrorCode = "INVALID_USAGE"
	ErrMissingField         ErrorCode = "MISSING_FIELD"
	ErrInvalidDate          ErrorCode = "INVALID_DATE"
	ErrClipboardUnavailable ErrorCode = "CLIPBOARD_UNAVAILABLE"
	ErrNotFound             ErrorCode = "NOT_FOUND"
)

type ErrorEnvelope struct {
	SchemaVersion string         `json:"schema_version"`
	Error         ErrorBody      `json:"error"`
	Meta          map[string]any `json:"meta,omitempty"`
}

type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Hint    string    `json:"hint,omitempty"`
}

type SuccessEnvelope struct {
	SchemaVersion string         `json:"schema_version"`
	Command       string         `json:"command"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Data          any            `json:"data"`
	Meta          map[string]any `json:"meta"`
	Warnings      []string       `json:"warnings"`
}

type ReminderInput struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	Datetime  string `json:"datetime"`
}

type ReminderResult struct {
	Input     ReminderInput `json:"input"`
	Formatted string        `json:"formatted"`
	Command   string        `json:"command"`
	Link      string        `json:"link"`
	ValidDate bool          `json:"valid_date"`
	Copied    string        `json:"copied,omitempty"`
}

type HistoryEntry struct {
	ID      string        `json:"id"`
	At      time.Time     `json:"at"`
	Input   ReminderInput `json:"input"`
	Command string        `json:"command"`
	Link    string        `json:"link"`
}

type DoctorCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
