package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"absensi/internal/account"
)

type createAdminRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required,min=2"`
}

// createAdmin registers another admin account. Only admins reach this
// handler; the new account's role is forced, never taken from input.
func (s *Server) createAdmin(c *gin.Context) {
	var req createAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}

	profile, err := s.accounts.Register(c.Request.Context(), account.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     account.RoleAdmin,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"profile": profile, "message": "Admin baru berhasil dibuat"})
}

func (s *Server) listAdmins(c *gin.Context) {
	admins, err := s.accounts.ListAdmins(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admins": admins})
}

func (s *Server) deleteAdmin(c *gin.Context) {
	if err := s.accounts.DeleteAdmin(c.Request.Context(), callerProfile(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Admin berhasil dihapus"})
}

func (s *Server) listStudents(c *gin.Context) {
	students, err := s.accounts.ListStudents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

func (s *Server) adminStats(c *gin.Context) {
	stats, err := s.recorder.AdminStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	students, err := s.accounts.CountStudents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"attendance_today": stats.AttendanceToday,
		"active_sessions":  stats.ActiveSessions,
		"total_students":   students,
	})
}
