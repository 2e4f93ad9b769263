package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"absensi/internal/account"
	"absensi/internal/auth"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required,min=2"`
	Role     string `json:"role" binding:"required,oneof=admin student"`
	NIM      string `json:"nim" binding:"omitempty,nim"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}

	profile, err := s.accounts.Register(c.Request.Context(), account.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     account.Role(req.Role),
		NIM:      req.NIM,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	tokens, err := s.issueTokens(c, profile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"profile":       profile,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
		"redirect_to":   dashboardPath(profile.Role),
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}

	profile, err := s.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	tokens, err := s.issueTokens(c, profile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile":       profile,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
		"redirect_to":   dashboardPath(profile.Role),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (s *Server) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}

	// The token must verify as one of ours before the store is consulted.
	if _, err := auth.Parse(req.RefreshToken, s.cfg.JWTSigningKey, s.cfg.JWTIssuer); err != nil {
		respondError(c, account.ErrInvalidRefreshToken)
		return
	}
	accountID, err := s.accounts.ConsumeRefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	profile, err := s.accounts.Profile(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	if profile == nil {
		respondError(c, account.ErrInvalidRefreshToken)
		return
	}

	tokens, err := s.issueTokens(c, profile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"expires_at":    tokens.AccessExp.Unix(),
	})
}

func (s *Server) logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
		return
	}
	if err := s.accounts.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "redirect_to": "/login"})
}

func (s *Server) me(c *gin.Context) {
	profile, err := s.accounts.Profile(c.Request.Context(), auth.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if profile == nil {
		respondError(c, account.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (s *Server) issueTokens(c *gin.Context, profile *account.Profile) (auth.TokenPair, error) {
	tokens, err := auth.Issue(profile.ID, string(profile.Role), s.cfg.JWTIssuer, s.cfg.JWTSigningKey, s.cfg.AccessTTL, s.cfg.RefreshTTL)
	if err != nil {
		return auth.TokenPair{}, err
	}
	if err := s.accounts.SaveRefreshToken(c.Request.Context(), profile.ID, tokens.RefreshToken, tokens.RefreshExp); err != nil {
		return auth.TokenPair{}, err
	}
	return tokens, nil
}
