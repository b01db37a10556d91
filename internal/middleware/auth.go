package middleware

import (
	"net/http"
	"strings"

	"github.com/decoambiente/decoambiente-backend/internal/auth"
	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/gin-gonic/gin"
)

const (
	ContextEmail = "email"
	ContextName  = "name"
	ContextRole  = "role"
)

// TokenFromRequest returns the session token from the Authorization header or, failing that, the session cookie.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	if cookieName == "" {
		return ""
	}
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}

func AuthMiddleware(tokens *utils.TokenManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !tokens.Ready() {
			c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("Admin sign-in is not configured"))
			c.Abort()
			return
		}

		tokenString := TokenFromRequest(c, cookieName)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Authorization header is required"))
			c.Abort()
			return
		}

		claims, err := tokens.VerifyToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse(err.Error()))
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth stores the session claims when a valid token is present and never aborts.
func OptionalAuth(tokens *utils.TokenManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens.Ready() {
			if tokenString := TokenFromRequest(c, cookieName); tokenString != "" {
				if claims, err := tokens.VerifyToken(tokenString); err == nil {
					setClaims(c, claims)
				}
			}
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextName, claims.Name)
	c.Set(ContextRole, claims.Role)
}

// IdentityFromContext rebuilds the identity stored by AuthMiddleware. Session
// tokens are only issued for verified emails.
func IdentityFromContext(c *gin.Context) *auth.Identity {
	email := c.GetString(ContextEmail)
	if email == "" {
		return nil
	}
	return &auth.Identity{Email: email, Name: c.GetString(ContextName), Verified: true}
}

func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Role not found in context"))
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		isAllowed := false
		for _, r := range allowedRoles {
			if strings.EqualFold(userRole, r) {
				isAllowed = true
				break
			}
		}

		if !isAllowed {
			c.JSON(http.StatusForbidden, utils.ErrorResponse("You do not have permission to access this resource"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminGuard re-checks the allow-list on every request so a reloaded list takes effect
// for tokens that were issued before the change.
func AdminGuard(guard *auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch guard.Decide(IdentityFromContext(c)) {
		case auth.DecisionAllow:
			c.Next()
		case auth.DecisionPending:
			c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("Admin sign-in is not configured"))
			c.Abort()
		default:
			c.JSON(http.StatusForbidden, utils.ErrorResponse("You do not have permission to access this resource"))
			c.Abort()
		}
	}
}

// AdminPageGuard is the HTML flavour of AdminGuard: denied visitors are sent to the login page.
func AdminPageGuard(guard *auth.Guard, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch guard.Decide(IdentityFromContext(c)) {
		case auth.DecisionAllow:
			c.Next()
		case auth.DecisionPending:
			c.String(http.StatusServiceUnavailable, "Admin sign-in is not configured")
			c.Abort()
		default:
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
		}
	}
}
