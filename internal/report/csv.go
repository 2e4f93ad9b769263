// Package report renders attendance rosters as downloadable CSV.
package report

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"absensi/internal/attendance"
)

var header = []string{"No", "Nama", "NIM", "Waktu Scan"}

// BuildCSV renders the roster for one session. Records are expected
// oldest-first. The document starts with a title line and the header row; a
// session with no attendees yields exactly those two lines.
func BuildCSV(courseName string, records []attendance.Record, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Laporan Kehadiran: " + courseName}); err != nil {
		return nil, err
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for i, rec := range records {
		nim := "-"
		if rec.StudentNIM != nil && *rec.StudentNIM != "" {
			nim = *rec.StudentNIM
		}
		name := rec.StudentName
		if name == "" {
			name = "-"
		}
		row := []string{
			strconv.Itoa(i + 1),
			name,
			nim,
			rec.ScannedAt.In(loc).Format("2/1/2006 15.04.05"),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
