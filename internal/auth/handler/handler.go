package handler

import (
	"errors"
	"net/http"

	"idgate/internal/auth"
	"idgate/internal/auth/credentials"
	"idgate/internal/auth/provider"
	"idgate/internal/logger"
	"idgate/internal/middleware"
	"idgate/internal/session"
	"idgate/internal/user"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	providers         *provider.Registry
	sessionStore      session.Store
	users             user.Store
	credentialService *credentials.Service
}

func NewHandler(
	registry *provider.Registry,
	sessionStore session.Store,
	users user.Store,
	credentialService *credentials.Service,
) *Handler {
	return &Handler{
		providers:         registry,
		sessionStore:      sessionStore,
		users:             users,
		credentialService: credentialService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/auth/login/:provider", h.login)
	r.GET("/auth/login/:provider/callback", h.callback)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
}

// login starts the first leg: a fresh verifier is parked in a
// short-lived cookie and the user is redirected to the provider.
func (h *Handler) login(c *gin.Context) {
	d, err := h.providers.Get(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown auth provider"})
		return
	}

	verifier := d.GenerateCodeVerifier()
	setVerifierCookie(c.Writer, verifier)

	authURL, err := d.GenerateAuthURL(c.Request.Context(), verifier, false)
	if err != nil {
		h.renderAuthError(c, d.Name(), err)
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// callback handles the second leg: assemble the payload, resolve the
// account, mint a session.
func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	d, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown auth provider"})
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.Redirect(http.StatusFound, "/auth/login/"+providerName)
		return
	}

	payload := provider.CallbackPayload{
		Code:         c.Query("code"),
		State:        c.Query("state"),
		CodeVerifier: verifierFromCookie(c.Request),
	}
	clearVerifierCookie(c.Writer)

	userID, err := d.GetUserID(c.Request.Context(), payload)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			// The grant is dead; restart the flow once with a forced
			// consent screen so the provider issues a fresh one.
			h.retryWithConsent(c, d)
			return
		}
		h.renderAuthError(c, providerName, err)
		return
	}

	if !h.createSession(c, userID) {
		return
	}

	logger.Info("login succeeded", map[string]any{
		"provider": providerName,
		"user_id":  userID,
	})

	c.JSON(http.StatusOK, gin.H{"status": "authenticated"})
}

func (h *Handler) retryWithConsent(c *gin.Context, d provider.Driver) {
	verifier := d.GenerateCodeVerifier()
	setVerifierCookie(c.Writer, verifier)

	authURL, err := d.GenerateAuthURL(c.Request.Context(), verifier, true)
	if err != nil {
		h.renderAuthError(c, d.Name(), err)
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

func (h *Handler) renderAuthError(c *gin.Context, providerName string, err error) {
	logger.Warn("authentication failed", map[string]any{
		"provider": providerName,
		"error":    err.Error(),
	})

	switch {
	case errors.Is(err, auth.ErrServiceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth provider unavailable"})
	case errors.Is(err, auth.ErrInvalidConfig):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "auth provider misconfigured"})
	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
	}
}

// Refresh runs the silent token refresh for the session's account.
// Mounted behind the auth middleware.
func (h *Handler) Refresh(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	account, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil || account == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	d, err := h.providers.Get(account.Provider)
	if err != nil {
		// Account not provisioned by a registered driver: nothing to refresh.
		c.Status(http.StatusNoContent)
		return
	}

	if err := d.Login(c.Request.Context(), account); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "reauthentication required"})
		case errors.Is(err, auth.ErrServiceUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth provider unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Logout(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		// best-effort delete
		_ = h.sessionStore.Delete(c.Request.Context(), cookie.Value)
	}

	session.ClearCookie(c.Writer, session.CookieOptions{
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	c.Status(http.StatusNoContent)
}
