package attendance

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const minCourseNameLen = 3

// SessionManager creates, closes and deletes attendance sessions, and owns
// the "is this session scannable" decision through the active flag.
type SessionManager struct {
	sessions SessionStore
	records  RecordStore
}

// NewSessionManager creates a manager over the stores.
func NewSessionManager(sessions SessionStore, records RecordStore) *SessionManager {
	return &SessionManager{sessions: sessions, records: records}
}

// Create opens a new active session for the course. The id is a random UUID;
// possession of it is what lets a student scan, so it must not be guessable.
func (m *SessionManager) Create(ctx context.Context, courseName, creatorID string) (*Session, error) {
	courseName = strings.TrimSpace(courseName)
	if utf8.RuneCountInString(courseName) < minCourseNameLen {
		return nil, ErrCourseNameTooShort
	}
	s := Session{
		ID:         uuid.NewString(),
		CourseName: courseName,
		CreatedBy:  creatorID,
		IsActive:   true,
	}
	if err := m.sessions.InsertSession(ctx, s); err != nil {
		return nil, err
	}
	created, err := m.sessions.Session(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// List returns all sessions, newest first.
func (m *SessionManager) List(ctx context.Context) ([]Session, error) {
	return m.sessions.Sessions(ctx)
}

// Close marks the session inactive. Closing an already-closed session is a
// no-op success; there is no reopen.
func (m *SessionManager) Close(ctx context.Context, sessionID string) error {
	found, err := m.sessions.CloseSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !found {
		return ErrSessionNotFound
	}
	return nil
}

// Delete removes the session and all its attendance records. Only the
// creating account may delete; any admin may close.
func (m *SessionManager) Delete(ctx context.Context, sessionID, callerID string) error {
	s, err := m.sessions.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	if s == nil {
		return ErrSessionNotFound
	}
	if s.CreatedBy != callerID {
		return ErrNotSessionCreator
	}
	return m.sessions.DeleteSessionCascade(ctx, sessionID)
}

// GetWithRoster returns the session and its roster newest-first, or nil when
// the session does not exist. Absence is a valid outcome, not an error.
func (m *SessionManager) GetWithRoster(ctx context.Context, sessionID string) (*SessionDetail, error) {
	s, err := m.sessions.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	roster, err := m.records.Roster(ctx, sessionID, false)
	if err != nil {
		return nil, err
	}
	return &SessionDetail{Session: *s, Roster: roster}, nil
}

// ExportData returns the session and its roster oldest-first for reporting.
func (m *SessionManager) ExportData(ctx context.Context, sessionID string) (*Session, []Record, error) {
	s, err := m.sessions.Session(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if s == nil {
		return nil, nil, ErrSessionNotFound
	}
	roster, err := m.records.Roster(ctx, sessionID, true)
	if err != nil {
		return nil, nil, err
	}
	return s, roster, nil
}
