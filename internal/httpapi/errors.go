package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"absensi/internal/account"
	"absensi/internal/attendance"
)

// apiError is the uniform error body. Code lets clients tell the expected
// outcomes (duplicate_scan, session_closed) apart from real failures without
// parsing the localized message.
type apiError struct {
	status   int
	code     string
	message  string
	redirect string
}

func classify(err error) apiError {
	var wrongRole *account.WrongRoleError
	switch {
	case errors.Is(err, account.ErrUnauthenticated):
		return apiError{http.StatusUnauthorized, "unauthenticated", "Silakan login terlebih dahulu", ""}
	case errors.As(err, &wrongRole):
		return apiError{http.StatusForbidden, "wrong_role", "Anda tidak memiliki akses ke halaman ini", dashboardPath(wrongRole.Actual)}
	case errors.Is(err, account.ErrInvalidCredentials):
		return apiError{http.StatusUnauthorized, "invalid_credentials", "Email atau password salah", ""}
	case errors.Is(err, account.ErrInvalidRefreshToken):
		return apiError{http.StatusUnauthorized, "invalid_refresh_token", "Sesi login berakhir, silakan login kembali", ""}
	case errors.Is(err, account.ErrEmailTaken):
		return apiError{http.StatusConflict, "email_taken", "Email sudah terdaftar", ""}
	case errors.Is(err, account.ErrNIMRequired):
		return apiError{http.StatusBadRequest, "validation", "NIM wajib diisi untuk mahasiswa", ""}
	case errors.Is(err, account.ErrInvalidRole):
		return apiError{http.StatusBadRequest, "validation", "Role tidak dikenal", ""}
	case errors.Is(err, account.ErrSelfDelete):
		return apiError{http.StatusBadRequest, "self_delete", "Tidak dapat menghapus akun sendiri", ""}
	case errors.Is(err, account.ErrProfileNotFound):
		return apiError{http.StatusNotFound, "not_found", "Akun tidak ditemukan", ""}
	case errors.Is(err, attendance.ErrCourseNameTooShort):
		return apiError{http.StatusBadRequest, "validation", "Nama mata kuliah minimal 3 karakter", ""}
	case errors.Is(err, attendance.ErrSessionNotFound):
		return apiError{http.StatusNotFound, "not_found", "Sesi tidak ditemukan", ""}
	case errors.Is(err, attendance.ErrSessionClosed):
		return apiError{http.StatusConflict, "session_closed", "Sesi sudah ditutup", ""}
	case errors.Is(err, attendance.ErrDuplicateScan):
		return apiError{http.StatusConflict, "duplicate_scan", "Anda sudah absen untuk sesi ini", ""}
	case errors.Is(err, attendance.ErrNotSessionCreator):
		return apiError{http.StatusForbidden, "forbidden", "Hanya pembuat sesi yang dapat menghapus sesi ini", ""}
	default:
		// Anything unrecognized is treated as a transient store failure; the
		// user retries, we do not.
		log.Printf("httpapi: store failure: %v", err)
		return apiError{http.StatusServiceUnavailable, "store_unavailable", "Layanan sedang bermasalah, silakan coba lagi", ""}
	}
}

func respondError(c *gin.Context, err error) {
	e := classify(err)
	body := gin.H{"error": e.message, "code": e.code}
	if e.redirect != "" {
		body["redirect_to"] = e.redirect
	}
	c.JSON(e.status, body)
}

func abortWithError(c *gin.Context, err error) {
	e := classify(err)
	body := gin.H{"error": e.message, "code": e.code}
	if e.redirect != "" {
		body["redirect_to"] = e.redirect
	}
	c.AbortWithStatusJSON(e.status, body)
}

// dashboardPath maps a role to its landing page, so a wrong-role caller can
// be sent where they belong instead of just being refused.
func dashboardPath(role account.Role) string {
	switch role {
	case account.RoleAdmin:
		return "/admin"
	case account.RoleStudent:
		return "/student"
	default:
		return "/login"
	}
}
