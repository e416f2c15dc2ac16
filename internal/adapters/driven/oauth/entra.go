// Package oauth authenticates outbound requests to Azure services, either
// with static keys or with Microsoft Entra ID client-credential tokens.
package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Token scopes for Azure data-plane APIs.
const (
	CognitiveServicesScope = "https://cognitiveservices.azure.com/.default"
	SearchScope            = "https://search.azure.com/.default"
)

// DefaultAuthorityHost is the public-cloud Entra ID endpoint.
const DefaultAuthorityHost = "https://login.microsoftonline.com"

// EntraConfig holds service principal credentials.
type EntraConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string

	// AuthorityHost overrides DefaultAuthorityHost (sovereign clouds, tests).
	AuthorityHost string
}

// TokenURL returns the v2.0 token endpoint for the tenant.
func (c EntraConfig) TokenURL() string {
	host := c.AuthorityHost
	if host == "" {
		host = DefaultAuthorityHost
	}
	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimRight(host, "/"), c.TenantID)
}

// TokenSource returns a cached, auto-refreshing token source for scope.
// The HTTP client used for token requests can be set on ctx with oauth2.HTTPClient.
func (c EntraConfig) TokenSource(ctx context.Context, scope string) (oauth2.TokenSource, error) {
	if c.TenantID == "" || c.ClientID == "" || c.ClientSecret == "" {
		return nil, fmt.Errorf("entra: tenant ID, client ID and client secret are required")
	}
	cc := &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL(),
		Scopes:       []string{scope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	return cc.TokenSource(ctx), nil
}

// Authorizer sets credentials on an outbound request.
type Authorizer interface {
	Authorize(req *http.Request) error
}

// headerAuth sets a fixed header value.
type headerAuth struct {
	name  string
	value string
}

func (h headerAuth) Authorize(req *http.Request) error {
	if h.name != "" {
		req.Header.Set(h.name, h.value)
	}
	return nil
}

// APIKey authorizes with an Azure "api-key" header.
func APIKey(key string) Authorizer {
	return headerAuth{name: "api-key", value: key}
}

// Header authorizes with an arbitrary header, e.g. "x-api-key".
func Header(name, value string) Authorizer {
	return headerAuth{name: name, value: value}
}

// Bearer authorizes with a static bearer token.
func Bearer(token string) Authorizer {
	return headerAuth{name: "Authorization", value: "Bearer " + token}
}

// tokenAuth fetches a bearer token per request from a TokenSource.
type tokenAuth struct {
	source oauth2.TokenSource
}

func (t tokenAuth) Authorize(req *http.Request) error {
	tok, err := t.source.Token()
	if err != nil {
		return fmt.Errorf("acquire token: %w", err)
	}
	tok.SetAuthHeader(req)
	return nil
}

// Token authorizes with bearer tokens from source.
func Token(source oauth2.TokenSource) Authorizer {
	return tokenAuth{source: source}
}

// None leaves requests unauthenticated, e.g. for a local Ollama.
func None() Authorizer {
	return headerAuth{}
}

// ForAzure picks Entra ID when entra is complete, otherwise the api-key header.
func ForAzure(ctx context.Context, apiKey string, entra EntraConfig, scope string) (Authorizer, error) {
	if entra.TenantID != "" && entra.ClientID != "" && entra.ClientSecret != "" {
		ts, err := entra.TokenSource(ctx, scope)
		if err != nil {
			return nil, err
		}
		return Token(ts), nil
	}
	if apiKey == "" {
		return nil, fmt.Errorf("azure: API key or Entra ID credentials are required")
	}
	return APIKey(apiKey), nil
}

// transport applies an Authorizer to every request before sending it.
type transport struct {
	base http.RoundTripper
	auth Authorizer
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if err := t.auth.Authorize(req); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// Client returns a copy of client that authorizes every request with auth.
// Use it for SDKs that drop their own credentials when handed a client.
func Client(client *http.Client, auth Authorizer) *http.Client {
	if client == nil {
		client = &http.Client{}
	}
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *client
	wrapped.Transport = &transport{base: base, auth: auth}
	return &wrapped
}
