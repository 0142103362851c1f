package oidc

import "golang.org/x/oauth2"

// authCodeURL assembles the authorization redirect. Parameter
// precedence, lowest to highest: configured scopes, access_type=offline,
// prompt=consent (only when requested), provider extra params, PKCE
// challenge fields. Extra params may override anything below them but
// never the challenge fields or state.
//
// state is the challenge itself: it can be re-derived from the verifier
// on the callback, so no server-side state store is needed.
func authCodeURL(
	client *protocolClient,
	extra map[string]string,
	verifier string,
	promptConsent bool,
) string {

	challenge := ChallengeOf(verifier)

	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline}
	if promptConsent {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", "consent"))
	}

	for key, value := range extra {
		switch key {
		case "code_challenge", "code_challenge_method", "state":
			continue
		}
		opts = append(opts, oauth2.SetAuthURLParam(key, value))
	}

	opts = append(opts,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	return client.oauth.AuthCodeURL(challenge, opts...)
}
