package handlers

import (
	"errors"
	"net/http"

	"github.com/decoambiente/decoambiente-backend/internal/auth"
	"github.com/decoambiente/decoambiente-backend/internal/middleware"
	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	Tokens       *utils.TokenManager
	Guard        *auth.Guard
	Google       *auth.GoogleVerifier
	Passwords    *auth.PasswordVerifier
	CookieName   string
	CookieSecure bool
}

type googleSignInInput struct {
	IDToken string `json:"idToken" validate:"required"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleSignIn exchanges a Google ID token for an admin session.
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var input googleSignInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json body"))
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}
	if !h.Google.Enabled() {
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("Google sign-in is not configured"))
		return
	}

	identity, err := h.Google.Verify(c.Request.Context(), input.IDToken)
	if err != nil {
		logrus.WithError(err).Warn("Rejected Google sign-in")
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("sign-in failed"))
		return
	}
	h.startSession(c, identity)
}

// LoginUser signs an admin in with a configured password.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json body"))
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}
	if !h.Passwords.Enabled() {
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("password sign-in is not configured"))
		return
	}

	identity, err := h.Passwords.Verify(input.Email, input.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrBadCredentials) {
			logrus.WithError(err).Error("Password sign-in failed")
		}
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse(auth.ErrBadCredentials.Error()))
		return
	}
	h.startSession(c, identity)
}

func (h *AuthHandler) startSession(c *gin.Context, identity *auth.Identity) {
	switch h.Guard.Decide(identity) {
	case auth.DecisionPending:
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("Admin sign-in is not configured"))
		return
	case auth.DecisionRedirect:
		logrus.WithField("email", identity.Email).Warn("Sign-in from an account outside the admin list")
		c.JSON(http.StatusForbidden, utils.ErrorResponse("this account is not allowed to access the admin area"))
		return
	}

	token, err := h.Tokens.GenerateToken(identity.Email, identity.Name, utils.RoleAdmin)
	if err != nil {
		logrus.WithError(err).Error("Failed to sign session token")
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("could not start the session"))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.CookieName, token, int(h.Tokens.TTL().Seconds()), "/", "", h.CookieSecure, true)

	logrus.WithField("email", identity.Email).Info("Admin signed in")
	c.JSON(http.StatusOK, utils.SuccessResponse("signed in successfully", gin.H{
		"token":     token,
		"expiresIn": int(h.Tokens.TTL().Seconds()),
		"user":      identity,
	}))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.CookieName, "", -1, "/", "", h.CookieSecure, true)
	c.JSON(http.StatusOK, utils.SuccessResponse("signed out", nil))
}

// Me reports the signed-in admin. It runs behind AuthMiddleware and AdminGuard.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, utils.SuccessResponse("session is valid", gin.H{
		"email": c.GetString(middleware.ContextEmail),
		"name":  c.GetString(middleware.ContextName),
		"role":  c.GetString(middleware.ContextRole),
	}))
}
