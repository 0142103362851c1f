package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"idgate/internal/auth/credentials"
	"idgate/internal/auth/handler"
	"idgate/internal/auth/provider"
	"idgate/internal/auth/provider/oidc"
	"idgate/internal/auth/resolver"
	"idgate/internal/config"
	"idgate/internal/logger"
	"idgate/internal/middleware"
	"idgate/internal/session"
	"idgate/internal/user"
)

// setupHTTP wires storage, the identity resolver, one OIDC driver per
// configured provider block and the HTTP surface into a gin router.
func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	inf, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	userStore := user.NewSQLStore(inf.db)
	sessionStore := session.NewRedisStore(inf.redis.Client)
	identityResolver := resolver.NewStoreResolver(userStore, nil)
	credentialService := credentials.NewService(inf.db)

	drivers, err := buildDrivers(cfg, identityResolver, userStore)
	if err != nil {
		_ = inf.close()
		return nil, nil, err
	}

	registry := provider.NewRegistry(drivers...)
	authHandler := handler.NewHandler(registry, sessionStore, userStore, credentialService)

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler.RegisterRoutes(router)

	api := router.Group("/api")
	api.Use(middleware.RequireAuth(sessionStore))
	api.POST("/refresh", authHandler.Refresh)
	api.GET("/me", me(userStore))

	return router, inf.close, nil
}

// buildDrivers turns every configured provider block into an OIDC
// driver. A service with no blocks configured still serves local
// credential login.
func buildDrivers(
	cfg config.Config,
	res resolver.Resolver,
	store user.Store,
) ([]provider.Driver, error) {

	blocks := []struct {
		name  string
		block config.OIDCProvider
	}{
		{"google", cfg.Google},
		{"keycloak", cfg.Keycloak},
	}

	var drivers []provider.Driver
	for _, b := range blocks {
		if !b.block.Configured() {
			continue
		}

		d, err := oidc.New(oidc.Config{
			Name:                 b.name,
			IssuerURL:            b.block.Issuer,
			ClientID:             b.block.ClientID,
			ClientSecret:         b.block.ClientSecret,
			Scope:                b.block.Scope,
			IdentifierClaim:      b.block.IdentifierClaim,
			DefaultRoleID:        b.block.DefaultRoleID,
			AllowRegistration:    b.block.AllowRegistration,
			RequireVerifiedEmail: b.block.RequireVerifiedEmail,
			ExtraAuthParams:      b.block.ExtraAuthParams,
		}, cfg.PublicBaseURL, res, store)
		if err != nil {
			return nil, err
		}

		logger.Info("auth provider configured", map[string]any{
			"provider": b.name,
			"issuer":   b.block.Issuer,
		})
		drivers = append(drivers, d)
	}

	return drivers, nil
}

func me(users user.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserIDFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		account, err := users.FindByID(c.Request.Context(), userID)
		if err != nil || account == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":         account.ID,
			"email":      account.Email,
			"first_name": account.FirstName,
			"last_name":  account.LastName,
			"role":       account.RoleID,
			"provider":   account.Provider,
		})
	}
}
