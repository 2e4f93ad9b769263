// Package httpapi wires the domain services to gin handlers.
package httpapi

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"absensi/internal/account"
	"absensi/internal/attendance"
	"absensi/internal/auth"
	"absensi/internal/config"
	"absensi/internal/roster"
)

// profileKey is the gin context key for the resolved caller profile.
const profileKey = "profile"

// Server holds the handler dependencies.
type Server struct {
	cfg       config.App
	accounts  *account.Service
	gate      *account.Gate
	sessions  *attendance.SessionManager
	recorder  *attendance.Recorder
	projector *roster.Projector
}

// New creates the HTTP server facade.
func New(cfg config.App, accounts *account.Service, gate *account.Gate,
	sessions *attendance.SessionManager, recorder *attendance.Recorder,
	projector *roster.Projector) *Server {
	return &Server{
		cfg:       cfg,
		accounts:  accounts,
		gate:      gate,
		sessions:  sessions,
		recorder:  recorder,
		projector: projector,
	}
}

// RegisterRoutes mounts all API routes on the engine.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/refresh", s.refresh)

	authed := v1.Group("", auth.Authenticate(s.cfg.JWTSigningKey, s.cfg.JWTIssuer))
	authed.POST("/auth/logout", s.logout)
	authed.GET("/auth/me", s.me)

	admin := authed.Group("", s.requireRole(account.RoleAdmin))
	admin.POST("/sessions", s.createSession)
	admin.GET("/sessions", s.listSessions)
	admin.GET("/sessions/:id", s.getSession)
	admin.POST("/sessions/:id/close", s.closeSession)
	admin.DELETE("/sessions/:id", s.deleteSession)
	admin.GET("/sessions/:id/export", s.exportSession)
	admin.GET("/sessions/:id/roster/stream", s.streamRoster)
	admin.GET("/admins", s.listAdmins)
	admin.POST("/admins", s.createAdmin)
	admin.DELETE("/admins/:id", s.deleteAdmin)
	admin.GET("/students", s.listStudents)
	admin.GET("/stats/admin", s.adminStats)

	student := authed.Group("", s.requireRole(account.RoleStudent))
	student.POST("/scans", s.recordScan)
	student.GET("/attendance/me", s.myHistory)
	student.GET("/stats/student", s.studentStats)
}

// requireRole resolves the caller's profile against the store on every
// request and stores it in the context for the handler.
func (s *Server) requireRole(role account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := s.gate.Resolve(c.Request.Context(), auth.CallerID(c), role)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(profileKey, profile)
		c.Next()
	}
}

// callerProfile returns the profile stored by requireRole.
func callerProfile(c *gin.Context) *account.Profile {
	p, _ := c.Get(profileKey)
	profile, _ := p.(*account.Profile)
	return profile
}

var nimPattern = regexp.MustCompile(`^[0-9A-Za-z]+$`)

// RegisterValidators installs custom binding validations. Call once at startup.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("nim", func(fl validator.FieldLevel) bool {
			return nimPattern.MatchString(fl.Field().String())
		})
	}
}
