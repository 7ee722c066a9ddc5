package http

import (
	"net/http"

	"github.com/avrorin/auth-api/internal/adapters/transport/http/middleware"
	"github.com/avrorin/auth-api/internal/auth/dto"
	authErrors "github.com/avrorin/auth-api/internal/auth/errors"
	"github.com/avrorin/auth-api/internal/auth/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	wwwAuthenticate  = "WWW-Authenticate"
	authFailedRealm  = `Basic realm="Authentication Failed"`
	invalidTokenMsg  = "Invalid refresh token"
	oauthStateCookie = "oauthstate"
)

type Handler struct {
	svc service.AuthService
	log *zap.Logger
}

func NewHandler(svc service.AuthService, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Login authenticates Basic-Auth credentials and returns a token pair.
func (h *Handler) Login(c *gin.Context) {
	username, password, ok := c.Request.BasicAuth()
	if !ok || username == "" || password == "" {
		h.log.Warn("login without usable basic auth")
		c.Header(wwwAuthenticate, authFailedRealm)
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Could not verify creds."})
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), dto.LoginDTO{Username: username, Password: password})
	if err != nil {
		if authErrors.IsInvalidCredentials(err) {
			c.Header(wwwAuthenticate, authFailedRealm)
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Could not verify creds"})
			return
		}
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Refresh rotates a refresh token into a fresh pair. Every failure mode
// answers with the same generic message.
func (h *Handler) Refresh(c *gin.Context) {
	var body dto.RefreshDTO
	if err := c.ShouldBindJSON(&body); err != nil || body.RefreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": invalidTokenMsg})
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), body)
	if err != nil {
		if authErrors.IsInvalidToken(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": invalidTokenMsg})
			return
		}
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Logout drops the caller's refresh token. Always 204, whether or not
// one existed.
func (h *Handler) Logout(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	if err := h.svc.Logout(c.Request.Context(), user.ID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GoogleLogin redirects the browser into the Google consent flow.
func (h *Handler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	c.SetCookie(oauthStateCookie, state, 300, "/", "", false, true)
	c.Redirect(http.StatusFound, h.svc.GoogleAuthCodeURL(state))
}

// GoogleAuthorize finishes the code flow and returns a token pair.
func (h *Handler) GoogleAuthorize(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	pair, err := h.svc.GoogleLogin(c.Request.Context(), code)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Register creates a new user.
func (h *Handler) Register(c *gin.Context) {
	var body dto.RegisterDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.svc.Register(c.Request.Context(), body)
	if err != nil {
		if authErrors.IsAlreadyExists(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "User with the same info already exists"})
			return
		}
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "user created!", "id": id.String()})
}

// ForgotPassword mails a reset token to a registered address.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var body dto.ForgotPasswordDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.ForgotPassword(c.Request.Context(), body); err != nil {
		if authErrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User with such email address does not exist"})
			return
		}
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Recovery email was sent to your email."})
}

// CheckResetPasswordToken validates a mailed reset token and answers
// with a short-lived reset-session token.
func (h *Handler) CheckResetPasswordToken(c *gin.Context) {
	sessionToken, err := h.svc.CheckResetPasswordToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if authErrors.IsResetTokenInvalid(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":                "Token is valid.",
		"resetPasswordToken": sessionToken,
	})
}

// ResetPassword updates the password of the guarded user.
func (h *Handler) ResetPassword(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	var body dto.ResetPasswordDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), user, body); err != nil {
		if authErrors.IsInternal(err) {
			// no password material in the log, only the wrapped cause
			h.log.Error("failed to update password", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
			return
		}
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Password updated"})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case authErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case authErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case authErrors.IsInvalidToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case authErrors.IsResetTokenInvalid(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
	case authErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case authErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
