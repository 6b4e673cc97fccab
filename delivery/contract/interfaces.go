package contract

import "context"

// HintProvider supplies per-field prompt text from an external dictionary.
// An empty string with a nil error means the key has no hint; callers fall
// back to the built-in prompt table.
type HintProvider interface {
	Hint(ctx context.Context, fieldKey string) (string, error)
}

// Recorder is the row-store boundary: it persists completed submissions,
// exposes the externally computed result, and answers history queries.
type Recorder interface {
	// Submit appends one row and returns its position once the write lands.
	Submit(ctx context.Context, sub Submission) (int, error)
	// AwaitResult waits the settle delay, reads the derived column once and
	// returns whatever is there. Empty string means "no result yet".
	AwaitResult(ctx context.Context, row int) (string, error)
	// History returns all rows for the user in storage order. No rows is an
	// empty slice, not an error.
	History(ctx context.Context, userID string) ([]HistoryRow, error)
	// AppendHistory writes the completed calculation to the history log that
	// History reads back. result may be empty when the derived cost never
	// settled.
	AppendHistory(ctx context.Context, sub Submission, result string) error
}
