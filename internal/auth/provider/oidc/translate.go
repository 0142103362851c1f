package oidc

import (
	"errors"
	"fmt"
	"net/url"

	"idgate/internal/auth"
	"idgate/internal/logger"

	"golang.org/x/oauth2"
)

// translate maps provider and protocol failures onto the domain error
// taxonomy: invalid_grant means the grant is dead and the user must
// re-consent; any other provider response is an upstream outage; a
// transport failure likewise. Errors already in the taxonomy, and
// anything unrecognized, pass through. Every translation logs the
// provider name so operators can attribute upstream failures.
func (d *Driver) translate(err error) error {
	if err == nil {
		return nil
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		logger.Error("oidc provider rejected request", map[string]any{
			"provider":    d.cfg.Name,
			"error":       retrieveErr.ErrorCode,
			"description": retrieveErr.ErrorDescription,
		})

		if retrieveErr.ErrorCode == "invalid_grant" {
			return fmt.Errorf("%w: provider rejected the grant", auth.ErrInvalidToken)
		}

		description := retrieveErr.ErrorDescription
		if description == "" {
			description = retrieveErr.ErrorCode
		}
		if description == "" {
			description = fmt.Sprintf("unexpected response (%s)", retrieveErr.Response.Status)
		}
		return fmt.Errorf("%w: %s: %s", auth.ErrServiceUnavailable, d.cfg.Name, description)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		logger.Error("oidc provider unreachable", map[string]any{
			"provider": d.cfg.Name,
			"error":    urlErr.Error(),
		})
		return fmt.Errorf("%w: %s: %v", auth.ErrServiceUnavailable, d.cfg.Name, urlErr.Err)
	}

	logger.Error("oidc error", map[string]any{
		"provider": d.cfg.Name,
		"error":    err.Error(),
	})
	return err
}
