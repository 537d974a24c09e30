package domain

import "time"

// HistoryRecord captures executed or generated command metadata together
// with the full safety verdict so nothing is lost between sessions.
type HistoryRecord struct {
	ID              string           `json:"id"`
	Timestamp       time.Time        `json:"timestamp"`
	Prompt          string           `json:"prompt"`
	Command         string           `json:"command"`
	Model           string           `json:"model"`
	Executed        bool             `json:"executed"`
	Success         bool             `json:"success"`
	ExitCode        int              `json:"exit_code"`
	Validation      ValidationResult `json:"validation"`
	ExecutionTimeMS int64            `json:"execution_time_ms"`
}
