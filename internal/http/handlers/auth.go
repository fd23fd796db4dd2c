package handlers

import (
	"errors"
	"net/http"

	"todo_backend/internal/apperr"
	"todo_backend/internal/domain"
	"todo_backend/internal/http/middleware"
	"todo_backend/internal/http/response"
	"todo_backend/internal/logger"
	"todo_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// userPayload is the user summary returned alongside token pairs.
func userPayload(u *domain.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
	}
}

// Token verifies username+password and issues an access/refresh pair. Every
// failure on this endpoint is a 401, including missing credential fields.
// POST /api/token/
func (h *Handler) Token(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			abort(c, apperr.AuthenticationFields("Validation failed.", middleware.FieldErrors(vErrs)))
			return
		}
		abort(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		abort(c, apperr.Authentication("No active account found with the given credentials"))
		return
	}
	if !service.CheckPassword(user.Password, req.Password) {
		abort(c, apperr.Authentication("No active account found with the given credentials"))
		return
	}

	pair, err := h.Tokens.IssuePair(user)
	if err != nil {
		abort(c, apperr.Internal("Login failed", err))
		return
	}

	response.JSON(c, http.StatusOK, "Login successful", gin.H{
		"user":   userPayload(user),
		"tokens": pair,
	})
}

// Refresh exchanges a valid, non-blacklisted refresh token for a new access
// token. The refresh token is not rotated.
// POST /api/refresh/
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, err)
		return
	}

	access, err := h.Tokens.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			abort(c, apperr.Authentication("Token is invalid or expired"))
			return
		}
		abort(c, apperr.Internal("Unable to refresh token", err))
		return
	}

	response.JSON(c, http.StatusOK, "Token refreshed successfully", gin.H{
		"access": access,
	})
}

// Register validates new-account input, persists the user with a hashed
// password and immediately issues a token pair.
// POST /api/register/
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, err)
		return
	}

	if req.Password != req.Password2 {
		abort(c, apperr.FieldError("password", "Password fields didn't match."))
		return
	}
	if len(req.Password) < 8 {
		abort(c, apperr.FieldError("password", "Password must be at least 8 characters long."))
		return
	}

	hashed, err := service.HashPassword(req.Password)
	if err != nil {
		abort(c, apperr.Internal("Unable to register user", err))
		return
	}

	user := &domain.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  hashed,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	ctx := c.Request.Context()
	if err := h.Users.Create(ctx, user); err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind == apperr.KindValidation {
			abort(c, appErr)
			return
		}
		logger.Error("error creating user", "error", err)
		abort(c, apperr.Internal("Unable to register user", err))
		return
	}

	pair, err := h.Tokens.IssuePair(user)
	if err != nil {
		abort(c, apperr.Internal("Unable to register user", err))
		return
	}

	response.JSON(c, http.StatusCreated, "User registered successfully", gin.H{
		"user":   userPayload(user),
		"tokens": pair,
	})
}

// Logout blacklists the presented refresh token. Revocation is idempotent:
// an already-blacklisted or malformed token still logs out successfully.
// POST /api/logout/
func (h *Handler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, err)
		return
	}

	h.Tokens.Blacklist(c.Request.Context(), req.Refresh)

	response.JSON(c, http.StatusResetContent, "Logout successful, token blacklisted.", nil)
}
