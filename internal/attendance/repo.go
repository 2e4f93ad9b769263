package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"absensi/internal/store"
)

// SessionStore persists sessions.
type SessionStore interface {
	InsertSession(ctx context.Context, s Session) error
	Session(ctx context.Context, id string) (*Session, error)
	Sessions(ctx context.Context) ([]Session, error)
	CloseSession(ctx context.Context, id string) (bool, error)
	DeleteSessionCascade(ctx context.Context, id string) error
	CountActiveSessions(ctx context.Context) (int, error)
}

// RecordStore persists attendance records.
type RecordStore interface {
	InsertRecord(ctx context.Context, rec Record) error
	Record(ctx context.Context, id string) (*Record, error)
	FindRecord(ctx context.Context, sessionID, studentID string) (*Record, error)
	Roster(ctx context.Context, sessionID string, oldestFirst bool) ([]Record, error)
	History(ctx context.Context, studentID string) ([]HistoryEntry, error)
	CountScansSince(ctx context.Context, studentID string, since time.Time) (int, error)
	CountScansByStudent(ctx context.Context, studentID string) (int, error)
}

// Repository persists attendance data in Postgres. It implements both
// SessionStore and RecordStore.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertSession writes a new session.
func (r *Repository) InsertSession(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, course_name, created_by, is_active)
		VALUES ($1, $2, $3, $4)
	`, s.ID, s.CourseName, s.CreatedBy, s.IsActive)
	return err
}

// Session returns a session by id, or nil when absent. A syntactically
// invalid id (e.g. a mistyped token) is treated the same as a missing row, so
// typed and scanned ids follow one path.
func (r *Repository) Session(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT id, course_name, created_by, created_at, is_active
		FROM sessions WHERE id = $1
	`, id)
	var s Session
	if err := row.Scan(&s.ID, &s.CourseName, &s.CreatedBy, &s.CreatedAt, &s.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Sessions returns all sessions, newest first.
func (r *Repository) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, course_name, created_by, created_at, is_active
		FROM sessions
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.CourseName, &s.CreatedBy, &s.CreatedAt, &s.IsActive); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CloseSession sets is_active = false. Reports whether the session exists;
// closing an already-closed session still counts as found.
func (r *Repository) CloseSession(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE sessions SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteSessionCascade removes a session and all its attendance records in
// one transaction: records first for foreign-key order, and a rollback on any
// failure so no orphaned half-deleted state survives.
func (r *Repository) DeleteSessionCascade(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("delete attendance records: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrSessionNotFound
	}
	return tx.Commit()
}

// CountActiveSessions counts sessions currently accepting scans.
func (r *Repository) CountActiveSessions(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE is_active = TRUE`).Scan(&n)
	return n, err
}

// InsertRecord writes a new attendance record. A unique violation on
// (session_id, student_id) is reported as ErrDuplicateScan: the constraint is
// the arbiter when two scans race past the pre-check.
func (r *Repository) InsertRecord(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (id, session_id, student_id, scanned_at)
		VALUES ($1, $2, $3, $4)
	`, rec.ID, rec.SessionID, rec.StudentID, rec.ScannedAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return ErrDuplicateScan
		}
		return err
	}
	return nil
}

const recordColumns = `
	a.id, a.session_id, a.student_id, a.scanned_at, p.full_name, p.nim
`

// Record returns a single record joined with the student profile, or nil.
func (r *Repository) Record(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance a
		JOIN profiles p ON p.id = a.student_id
		WHERE a.id = $1
	`, id)
	return scanRecord(row)
}

// FindRecord returns the record for (session, student), or nil when absent.
func (r *Repository) FindRecord(ctx context.Context, sessionID, studentID string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance a
		JOIN profiles p ON p.id = a.student_id
		WHERE a.session_id = $1 AND a.student_id = $2
	`, sessionID, studentID)
	return scanRecord(row)
}

// Roster returns a session's records. Ties at the same timestamp keep
// insertion order via the id tiebreak; rows are never re-sorted client-side.
func (r *Repository) Roster(ctx context.Context, sessionID string, oldestFirst bool) ([]Record, error) {
	order := "DESC"
	if oldestFirst {
		order = "ASC"
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance a
		JOIN profiles p ON p.id = a.student_id
		WHERE a.session_id = $1
		ORDER BY a.scanned_at `+order+`, a.id `+order+`
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.ScannedAt, &rec.StudentName, &rec.StudentNIM); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// History returns a student's attendance joined with course names, newest first.
func (r *Repository) History(ctx context.Context, studentID string) ([]HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.session_id, s.course_name, a.scanned_at
		FROM attendance a
		JOIN sessions s ON s.id = a.session_id
		WHERE a.student_id = $1
		ORDER BY a.scanned_at DESC
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.CourseName, &e.ScannedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountScansSince counts records scanned at or after since; studentID == ""
// counts across all students.
func (r *Repository) CountScansSince(ctx context.Context, studentID string, since time.Time) (int, error) {
	var n int
	var err error
	if studentID == "" {
		err = r.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM attendance WHERE scanned_at >= $1
		`, since).Scan(&n)
	} else {
		err = r.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM attendance WHERE student_id = $1 AND scanned_at >= $2
		`, studentID, since).Scan(&n)
	}
	return n, err
}

// CountScansByStudent counts all of a student's records.
func (r *Repository) CountScansByStudent(ctx context.Context, studentID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance WHERE student_id = $1
	`, studentID).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	if err := row.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.ScannedAt, &rec.StudentName, &rec.StudentNIM); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}
