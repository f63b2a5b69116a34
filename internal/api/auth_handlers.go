package api

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ghosttier/arsenal-server/internal/auth"
	"github.com/ghosttier/arsenal-server/internal/logging"
)

// cookieMaxAge matches the session token lifetime of 7 days.
const cookieMaxAge = 7 * 24 * 60 * 60

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	upperPattern    = regexp.MustCompile(`[A-Z]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
)

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// validate checks the registration schema. The username bound matches the
// 20-char column in the MariaDB user store.
func (r *RegisterRequest) validate() string {
	switch {
	case len(r.Username) < 3:
		return "Username must be at least 3 characters"
	case len(r.Username) > 20:
		return "Username cannot exceed 20 characters"
	case !usernamePattern.MatchString(r.Username):
		return "Only letters, numbers, and underscores allowed"
	case !emailPattern.MatchString(r.Email):
		return "Invalid email address"
	case len(r.Password) < 8:
		return "Password must be at least 8 characters"
	case !upperPattern.MatchString(r.Password):
		return "Password must contain at least one uppercase letter"
	case !digitPattern.MatchString(r.Password):
		return "Password must contain at least one number"
	}
	return ""
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (rs *RestServer) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, cookieMaxAge, "/", "", false, true)
}

func (rs *RestServer) handleRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if msg := req.validate(); msg != "" {
		respondError(c, http.StatusUnprocessableEntity, msg)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to process password")
		return
	}

	user, err := rs.users.CreateUser(req.Username, req.Email, passwordHash, auth.RoleUser)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		respondError(c, http.StatusConflict, "Username already taken")
		return
	case errors.Is(err, auth.ErrEmailExists):
		respondError(c, http.StatusConflict, "Email already registered")
		return
	case err != nil:
		logging.Error("Register: failed to create user %s: %v", req.Username, err)
		respondError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := auth.GenerateJWT(user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	rs.setSessionCookie(c, token)
	logging.Info("Register: new account %s (%s)", user.Username, user.ID)
	respondCreated(c, gin.H{"user": user, "token": token})
}

func (rs *RestServer) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := rs.users.ValidateCredentials(strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUserNotFound):
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	case err != nil:
		logging.Error("Login: credential check failed: %v", err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := auth.GenerateJWT(user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	rs.setSessionCookie(c, token)
	respondOK(c, gin.H{"user": user, "token": token})
}

func (rs *RestServer) handleLogout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	respondOK(c, gin.H{"message": "Logged out"})
}

func (rs *RestServer) handleMe(c *gin.Context) {
	user, err := rs.users.GetUserByID(callerID(c))
	if err != nil {
		respondError(c, http.StatusUnauthorized, "User not found")
		return
	}
	respondOK(c, gin.H{"user": user})
}
