package attendance

import "time"

// Session is one attendance-taking event. Its id doubles as the QR payload:
// an opaque random UUID, not derivable from prior ids.
type Session struct {
	ID         string    `json:"id"`
	CourseName string    `json:"course_name"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	IsActive   bool      `json:"is_active"`
}

// Record is one student's presence at one session, joined with the student's
// profile for display. Never updated after insertion.
type Record struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	StudentID   string    `json:"student_id"`
	ScannedAt   time.Time `json:"scanned_at"`
	StudentName string    `json:"student_name"`
	StudentNIM  *string   `json:"student_nim,omitempty"`
}

// SessionDetail is a session together with its roster, newest scan first.
type SessionDetail struct {
	Session Session  `json:"session"`
	Roster  []Record `json:"roster"`
}

// ScanConfirmation is returned to the student after a successful scan.
type ScanConfirmation struct {
	RecordID   string    `json:"record_id"`
	SessionID  string    `json:"session_id"`
	CourseName string    `json:"course_name"`
	ScannedAt  time.Time `json:"scanned_at"`
}

// HistoryEntry is one row of a student's own attendance history.
type HistoryEntry struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	CourseName string    `json:"course_name"`
	ScannedAt  time.Time `json:"scanned_at"`
}

// AdminStats backs the admin dashboard cards.
type AdminStats struct {
	AttendanceToday int `json:"attendance_today"`
	ActiveSessions  int `json:"active_sessions"`
}

// StudentStats backs the student dashboard cards.
type StudentStats struct {
	AttendanceToday int `json:"attendance_today"`
	AttendanceTotal int `json:"attendance_total"`
	ActiveSessions  int `json:"active_sessions"`
}
