package oidc

import (
	"context"
	"fmt"

	"idgate/internal/auth"
	"idgate/internal/logger"
	"idgate/internal/user"

	"golang.org/x/oauth2"
)

// Login refreshes the account's provider tokens. A login against an
// already-linked account is a silent refresh.
func (d *Driver) Login(ctx context.Context, account *user.Account) error {
	return d.Refresh(ctx, account)
}

// Refresh exchanges the account's stored refresh token for a new token
// pair and persists the rotation, last writer wins. Malformed stored
// auth data is tolerated: the login proceeds without a refresh. A
// provider rejection is not swallowed; it surfaces translated.
func (d *Driver) Refresh(ctx context.Context, account *user.Account) error {
	if account == nil {
		return fmt.Errorf("%w: no account to refresh", auth.ErrInvalidCredentials)
	}

	data, err := auth.DecodeAuthData(account.AuthData)
	if err != nil {
		logger.Warn("malformed auth data, skipping token refresh", map[string]any{
			"provider": d.cfg.Name,
			"user_id":  account.ID,
			"error":    err.Error(),
		})
		return nil
	}

	if data.RefreshToken == "" {
		return nil
	}

	client, err := d.ensureClient(ctx)
	if err != nil {
		return err
	}

	token, err := client.oauth.TokenSource(ctx, &oauth2.Token{
		RefreshToken: data.RefreshToken,
	}).Token()
	if err != nil {
		return d.translate(err)
	}

	if token.RefreshToken != "" && token.RefreshToken != data.RefreshToken {
		return d.store.UpdateAuthData(
			ctx,
			account.ID,
			auth.EncodeAuthData(token.RefreshToken),
		)
	}

	return nil
}
