package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"absensi/internal/attendance"
	"absensi/internal/metrics"
)

type scanRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// recordScan handles a student submitting a session token, whether decoded
// from a QR camera or typed by hand; both arrive here identically.
func (s *Server) recordScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}

	confirmation, err := s.recorder.RecordScan(c.Request.Context(), req.SessionID, callerProfile(c).ID)
	if err != nil {
		metrics.ScansTotal.WithLabelValues(scanOutcome(err)).Inc()
		respondError(c, err)
		return
	}
	metrics.ScansTotal.WithLabelValues("recorded").Inc()

	c.JSON(http.StatusCreated, gin.H{
		"confirmation": confirmation,
		"message":      "Absensi berhasil untuk " + confirmation.CourseName,
	})
}

func (s *Server) myHistory(c *gin.Context) {
	entries, err := s.recorder.History(c.Request.Context(), callerProfile(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": entries})
}

func (s *Server) studentStats(c *gin.Context) {
	stats, err := s.recorder.StudentStats(c.Request.Context(), callerProfile(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func scanOutcome(err error) string {
	switch {
	case errors.Is(err, attendance.ErrDuplicateScan):
		return "duplicate"
	case errors.Is(err, attendance.ErrSessionClosed):
		return "closed"
	case errors.Is(err, attendance.ErrSessionNotFound):
		return "not_found"
	default:
		return "error"
	}
}
