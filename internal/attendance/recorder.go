package attendance

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"absensi/internal/realtime"
)

// Recorder validates and records scan events. Every decision re-reads the
// store; session state and roster membership are never cached across requests.
type Recorder struct {
	sessions SessionStore
	records  RecordStore
	bus      realtime.Bus
}

// NewRecorder creates a recorder. bus may be nil when no live viewers exist
// (tests, batch tooling).
func NewRecorder(sessions SessionStore, records RecordStore, bus realtime.Bus) *Recorder {
	return &Recorder{sessions: sessions, records: records, bus: bus}
}

// RecordScan records one student's presence at one session. A typed-in id and
// a camera-decoded one take the identical path. Outcomes:
//
//	ErrSessionNotFound - absent or deleted session
//	ErrSessionClosed   - session no longer accepting scans
//	ErrDuplicateScan   - (session, student) already recorded
//
// The pre-check for duplicates only produces a friendlier fast path; the
// insert's unique constraint is what decides a race, so a constraint
// violation from the insert is mapped to ErrDuplicateScan as well.
func (r *Recorder) RecordScan(ctx context.Context, sessionID, studentID string) (*ScanConfirmation, error) {
	s, err := r.sessions.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSessionNotFound
	}
	if !s.IsActive {
		return nil, ErrSessionClosed
	}

	existing, err := r.records.FindRecord(ctx, sessionID, studentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateScan
	}

	rec := Record{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		StudentID: studentID,
		ScannedAt: time.Now().UTC(),
	}
	if err := r.records.InsertRecord(ctx, rec); err != nil {
		if errors.Is(err, ErrDuplicateScan) {
			return nil, ErrDuplicateScan
		}
		return nil, err
	}

	if r.bus != nil {
		if err := r.bus.Publish(ctx, realtime.SessionChannel(sessionID), []byte(rec.ID)); err != nil {
			log.Printf("attendance: publish record %s failed: %v", rec.ID, err)
		}
	}

	return &ScanConfirmation{
		RecordID:   rec.ID,
		SessionID:  sessionID,
		CourseName: s.CourseName,
		ScannedAt:  rec.ScannedAt,
	}, nil
}

// History returns the student's own attendance, newest first.
func (r *Recorder) History(ctx context.Context, studentID string) ([]HistoryEntry, error) {
	return r.records.History(ctx, studentID)
}

// AdminStats aggregates today's scans and the number of open sessions.
func (r *Recorder) AdminStats(ctx context.Context) (*AdminStats, error) {
	today, err := r.records.CountScansSince(ctx, "", startOfToday())
	if err != nil {
		return nil, err
	}
	active, err := r.sessions.CountActiveSessions(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminStats{AttendanceToday: today, ActiveSessions: active}, nil
}

// StudentStats aggregates one student's counters for their dashboard.
func (r *Recorder) StudentStats(ctx context.Context, studentID string) (*StudentStats, error) {
	today, err := r.records.CountScansSince(ctx, studentID, startOfToday())
	if err != nil {
		return nil, err
	}
	total, err := r.records.CountScansByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	active, err := r.sessions.CountActiveSessions(ctx)
	if err != nil {
		return nil, err
	}
	return &StudentStats{AttendanceToday: today, AttendanceTotal: total, ActiveSessions: active}, nil
}

func startOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
