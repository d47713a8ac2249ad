package sqlite

import "errors"

var (
	ErrEmptyPath     = errors.New("journal database path is empty")
	ErrOpenFailed    = errors.New("failed to open journal database")
	ErrMigrateFailed = errors.New("failed to migrate journal database")
	ErrRecordFailed  = errors.New("failed to record journal entry")
	ErrQueryFailed   = errors.New("failed to query journal")
	ErrEntryNotFound = errors.New("journal entry not found")
	ErrJournalClosed = errors.New("journal is closed")
)
