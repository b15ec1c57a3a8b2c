package handler

import (
	"net/http"
	"time"

	"invoicer/internal/auth"
	"invoicer/internal/middleware"
	"invoicer/internal/service"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService   service.AuthService
	authenticator auth.Authenticator
	tokenTTL      time.Duration
	secureCookies bool
}

// NewAuthHandler sets up the sign-in endpoints. secureCookies marks the token
// cookie Secure and SameSite=None for cross-origin frontends.
func NewAuthHandler(authService service.AuthService, authenticator auth.Authenticator, tokenTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		authenticator: authenticator,
		tokenTTL:      tokenTTL,
		secureCookies: secureCookies,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth/google", h.GoogleLogin)
	router.POST("/auth/logout", h.Logout)
	router.GET("/me", middleware.RequireAuth(h.authenticator), h.GetMe)
}

// GoogleLogin exchanges a Google ID token for an app token
// @Summary      Sign in with Google
// @Description  Verifies a Google ID token, upserts the user and returns an app token (also set as an HttpOnly cookie)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.GoogleLoginRequest  true  "Google ID token"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/v1/auth/google [post]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req service.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	res, err := h.authService.GoogleLogin(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookie(c, res.Token, int(h.tokenTTL.Seconds()), h.secureCookies)
	c.JSON(http.StatusOK, response.SuccessMessage(http.StatusOK, "Signed in", res))
}

// Logout clears the token cookie
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c, h.secureCookies)
	c.JSON(http.StatusOK, response.SuccessMessage(http.StatusOK, "Signed out", nil))
}

// GetMe returns the authenticated identity
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=auth.Identity}
// @Failure      401  {object}  response.Response
// @Router       /api/v1/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, owner))
}
