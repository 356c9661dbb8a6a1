package commercetools

import (
	"errors"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired       = errors.New("config is required")
	ErrAPIURLRequired       = errors.New("API URL is required")
	ErrAuthURLRequired      = errors.New("auth URL is required")
	ErrProjectKeyRequired   = errors.New("project key is required")
	ErrClientIDRequired     = errors.New("client ID is required")
	ErrClientSecretRequired = errors.New("client secret is required")
)

// Scope is the OAuth2 permission scope requested for the project. The
// token request sends it as "{scope}:{projectKey}".
type Scope string

// Project scopes supported by the platform.
const (
	ScopeManageProject   Scope = "manage_project"
	ScopeManageProducts  Scope = "manage_products"
	ScopeViewProducts    Scope = "view_products"
	ScopeManageOrders    Scope = "manage_orders"
	ScopeViewOrders      Scope = "view_orders"
	ScopeManageCustomers Scope = "manage_customers"
	ScopeViewCustomers   Scope = "view_customers"
	ScopeManagePayments  Scope = "manage_payments"
	ScopeViewPayments    Scope = "view_payments"
	ScopeManageTypes     Scope = "manage_types"
	ScopeViewTypes       Scope = "view_types"
)

// Config holds the connection settings for one API project. It is treated
// as immutable once handed to New; the client it builds owns it exclusively.
type Config struct {
	// APIURL is the base URL of the REST API, without the project key.
	APIURL string `json:"apiUrl"       yaml:"apiUrl"`
	// AuthURL is the full OAuth2 token endpoint.
	AuthURL string `json:"authUrl"      yaml:"authUrl"`
	// ProjectKey identifies the project; it is the first path segment of
	// every resource URL.
	ProjectKey string `json:"projectKey"   yaml:"projectKey"`
	// ClientID and ClientSecret are the OAuth2 client credentials.
	ClientID     string `json:"clientId"     yaml:"clientId"`
	ClientSecret string `json:"clientSecret" yaml:"clientSecret"`
	// Scope is the permission scope requested for access tokens. Defaults
	// to ScopeManageProject when empty.
	Scope Scope `json:"scope"        yaml:"scope"`
}

// Validate checks that all required settings are present.
func (c *Config) Validate() error {
	switch {
	case c.APIURL == "":
		return ErrAPIURLRequired
	case c.AuthURL == "":
		return ErrAuthURLRequired
	case c.ProjectKey == "":
		return ErrProjectKeyRequired
	case c.ClientID == "":
		return ErrClientIDRequired
	case c.ClientSecret == "":
		return ErrClientSecretRequired
	}

	return nil
}

// normalizeURL trims a trailing slash and defaults the scheme to https. An
// empty URL stays empty so validation still catches it.
func normalizeURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	rawURL = strings.TrimSuffix(rawURL, "/")
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	return rawURL
}
