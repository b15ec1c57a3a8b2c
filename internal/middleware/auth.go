package middleware

import (
	"net/http"
	"strings"

	"invoicer/internal/auth"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

// Gin context keys set by RequireAuth.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextUserName  = "userName"
)

// RequireAuth resolves the bearer token (app JWT or Google ID token) to the
// owner identity. Requests without a valid token stop with 401.
func RequireAuth(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		identity, err := authenticator.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextUserEmail, identity.Email)
		c.Set(ContextUserName, identity.Name)

		c.Next()
	}
}

// CurrentUser returns the identity stored by RequireAuth.
func CurrentUser(c *gin.Context) (auth.Identity, bool) {
	userID := c.GetString(ContextUserID)
	if userID == "" {
		return auth.Identity{}, false
	}
	return auth.Identity{
		UserID: userID,
		Email:  c.GetString(ContextUserEmail),
		Name:   c.GetString(ContextUserName),
	}, true
}

// bearerToken reads the Authorization header, falling back to the access_token cookie.
func bearerToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		token := strings.TrimSpace(parts[1])
		return token, token != ""
	}
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token, true
	}
	return "", false
}

// SetTokenCookie stores the app token as an HttpOnly cookie. secure selects
// SameSite=None for cross-origin deployments.
func SetTokenCookie(c *gin.Context, token string, maxAge int, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie("access_token", token, maxAge, "/", "", secure, true)
}

// ClearTokenCookie removes the access_token cookie.
func ClearTokenCookie(c *gin.Context, secure bool) {
	SetTokenCookie(c, "", -1, secure)
}
