package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"nutrivision-go/internal/apperr"
	"nutrivision-go/internal/models"
)

// Auth Response Wrapper
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// POST /v1/auth/signup
func (s *Server) authSignup(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := s.Credentials.Register(c.Request.Context(), input.Email, input.Username, input.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "message": "Account created successfully! You can now log in."})
}

// POST /v1/auth/login
func (s *Server) authLogin(c *gin.Context) {
	var input struct {
		Identifier string `json:"identifier" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := s.Credentials.Authenticate(c.Request.Context(), input.Identifier, input.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials", "message": "Incorrect Username/Email or Password"})
			return
		}
		s.fail(c, err)
		return
	}

	token, err := s.Sessions.Begin(c.Request.Context(), user.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// POST /v1/auth/password/forgot
func (s *Server) authForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	surfaced, err := s.Credentials.BeginPasswordReset(c.Request.Context(), input.Email)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp := gin.H{"message": "reset_token_issued"}
	if surfaced != "" {
		resp["reset_token"] = surfaced
	}
	c.JSON(http.StatusOK, resp)
}

// POST /v1/auth/password/reset
func (s *Server) authResetPassword(c *gin.Context) {
	var input struct {
		Email           string `json:"email" binding:"required"`
		Token           string `json:"token" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	if input.NewPassword != input.ConfirmPassword {
		s.fail(c, apperr.Invalid("confirm_password", "passwords do not match"))
		return
	}

	if err := s.Credentials.CompletePasswordReset(c.Request.Context(), input.Email, input.Token, input.NewPassword); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password successfully reset."})
}

// POST /v1/auth/logout
func (s *Server) authLogout(c *gin.Context) {
	if err := s.Sessions.End(c.Request.Context(), c.GetString(ctxToken)); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You have been logged out."})
}
