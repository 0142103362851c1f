package oidc

import (
	"context"
	"fmt"

	"idgate/internal/auth"
	"idgate/internal/auth/provider"

	"golang.org/x/oauth2"
)

// exchange trades the authorization code for tokens and returns the
// merged claim set. At most two outbound calls: the token exchange and,
// when the issuer exposes one, the userinfo endpoint. No local mutation.
func (d *Driver) exchange(
	ctx context.Context,
	client *protocolClient,
	payload provider.CallbackPayload,
) (*auth.TokenSet, error) {

	// The expected state is the challenge re-derived from the supplied
	// verifier; a mismatch means the callback was stitched together
	// from two different login attempts.
	if payload.State != ChallengeOf(payload.CodeVerifier) {
		return nil, fmt.Errorf(
			"%w: state does not match the code challenge",
			auth.ErrInvalidCredentials,
		)
	}

	token, err := client.oauth.Exchange(
		ctx,
		payload.Code,
		oauth2.SetAuthURLParam("code_verifier", payload.CodeVerifier),
	)
	if err != nil {
		return nil, d.translate(err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: provider did not return an id_token", auth.ErrInvalidCredentials)
	}

	idToken, err := client.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: id_token verification failed: %v", auth.ErrInvalidCredentials, err)
	}

	var claims auth.Claims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: id_token claims: %v", auth.ErrInvalidCredentials, err)
	}
	if claims == nil {
		claims = auth.Claims{}
	}

	if client.userInfoURL != "" {
		info, err := client.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
		if err != nil {
			return nil, d.translate(err)
		}

		var extra auth.Claims
		if err := info.Claims(&extra); err != nil {
			return nil, fmt.Errorf("%w: userinfo claims: %v", auth.ErrInvalidCredentials, err)
		}

		// userinfo wins on conflict
		for k, v := range extra {
			claims[k] = v
		}
	}

	return &auth.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Claims:       claims,
	}, nil
}
