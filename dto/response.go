package dto

import "errors"

// Document-level errors. Row and page failures are never errors; they
// are skipped and counted.
var (
	ErrNoFiles           = errors.New("no files provided")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyDocument     = errors.New("document contains no readable pages")
	ErrNoHeaderRow       = errors.New("no header row detected")
	ErrFileTooLarge      = errors.New("file exceeds the maximum allowed size")
	ErrNoPolicyList      = errors.New("no policy list has been uploaded")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// FileResult reports the outcome of one file in a batch. A failed
// file carries an error message; other files are unaffected.
type FileResult struct {
	Filename     string `json:"filename"`
	Records      int    `json:"records"`
	SkippedRows  int    `json:"skipped_rows"`
	UsedFallback bool   `json:"used_fallback,omitempty"`
	Error        string `json:"error,omitempty"`
}

type StatementUploadResult struct {
	BatchID      string       `json:"batch_id"`
	Files        []FileResult `json:"files"`
	RecordsAdded int          `json:"records_added"`
	TotalRecords int          `json:"total_records"`
}

type PolicyUploadResult struct {
	Filename   string     `json:"filename"`
	Rows       int        `json:"rows"`
	Columns    ColumnMap  `json:"columns"`
	Confidence Confidence `json:"confidence"`
}

type ReconciliationResponse struct {
	State     ReconciliationState `json:"state"`
	Analytics Analytics           `json:"analytics"`
}

type RecordsResponse struct {
	Records []CommissionRecord `json:"records"`
}

type PoliciesResponse struct {
	Filename   string      `json:"filename"`
	Rows       []PolicyRow `json:"rows"`
	Columns    ColumnMap   `json:"columns"`
	Confidence Confidence  `json:"confidence"`
}

type LogResponse struct {
	Entries []LogEntry `json:"entries"`
}
