package attendance

import "errors"

var (
	// ErrCourseNameTooShort rejects course labels under 3 characters.
	ErrCourseNameTooShort = errors.New("course name must be at least 3 characters")
	// ErrSessionNotFound covers absent and deleted sessions alike.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed rejects scans against a closed session.
	ErrSessionClosed = errors.New("session is closed")
	// ErrDuplicateScan marks a second scan for the same (session, student)
	// pair. Expected and frequent, not a failure.
	ErrDuplicateScan = errors.New("attendance already recorded for this session")
	// ErrNotSessionCreator rejects deletion by anyone but the creator.
	ErrNotSessionCreator = errors.New("only the session creator can delete it")
)
