package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"absensi/internal/metrics"
	"absensi/internal/report"
	"absensi/internal/roster"
)

type createSessionRequest struct {
	CourseName string `json:"course_name" binding:"required"`
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}

	session, err := s.sessions.Create(c.Request.Context(), req.CourseName, callerProfile(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.SessionsCreated.Inc()
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

func (s *Server) listSessions(c *gin.Context) {
	sessions, err := s.sessions.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// getSession returns the session with its roster. A missing session is a 404
// with the not_found code, distinct from a store failure.
func (s *Server) getSession(c *gin.Context) {
	detail, err := s.sessions.GetWithRoster(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sesi tidak ditemukan", "code": "not_found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) closeSession(c *gin.Context) {
	if err := s.sessions.Close(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Request.Context(), c.Param("id"), callerProfile(c).ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "redirect_to": "/admin/sessions"})
}

func (s *Server) exportSession(c *gin.Context) {
	id := c.Param("id")
	session, records, err := s.sessions.ExportData(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	loc, err := time.LoadLocation(s.cfg.ExportTimezone)
	if err != nil {
		loc = time.UTC
	}
	csvBody, err := report.BuildCSV(session.CourseName, records, loc)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "attendance-"+id+".csv"))
	c.Data(http.StatusOK, "text/csv", csvBody)
}

// streamRoster serves the live roster as SSE: a snapshot event on connect,
// then one append event per new scan. On a stream gap the next event is a
// fresh snapshot.
func (s *Server) streamRoster(c *gin.Context) {
	detail, err := s.sessions.GetWithRoster(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sesi tidak ditemukan", "code": "not_found"})
		return
	}

	events, err := s.projector.Subscribe(c.Request.Context(), detail.Session.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.RosterSubscribers.Inc()
	defer metrics.RosterSubscribers.Dec()

	c.Header("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		switch ev.Kind {
		case roster.KindSnapshot:
			c.SSEvent("snapshot", ev.Roster)
		case roster.KindAppend:
			c.SSEvent("append", ev.Record)
		}
		return true
	})
}
