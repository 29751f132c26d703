package model

import (
	"fmt"
	"strings"
	"time"
)

// AuthType selects how the Jenkins client authenticates against a server.
type AuthType string

const (
	// AuthBasic is HTTP Basic auth using the username and an API token.
	AuthBasic AuthType = "basic"
	// AuthToken is bearer-token auth using the API token alone.
	AuthToken AuthType = "token"
	// AuthSSO is bearer-token auth using an SSO token, optionally with cookies.
	AuthSSO AuthType = "sso"
	// AuthBasicAuth is HTTP Basic auth using the username and a password.
	AuthBasicAuth AuthType = "basic_auth"
)

// Connection describes one registered Jenkins server and its credentials.
// Exactly the credential fields required by AuthType must be populated;
// Validate enforces this before any network call is made.
type Connection struct {
	ID         string
	Name       string
	URL        string
	AuthType   AuthType
	Username   string
	Token      string
	Password   string
	SSOToken   string
	CookieAuth bool
	Folder     string
	Color      string // Display tag in the UI, not the Jenkins job color.
	CreatedAt  time.Time
}

// InferAuthType derives the auth type from whichever credential fields are
// populated. Priority: username+token, token alone, ssoToken (or cookieAuth),
// username+password, then basic as the fallback.
func (c Connection) InferAuthType() AuthType {
	switch {
	case c.Username != "" && c.Token != "":
		return AuthBasic
	case c.Token != "":
		return AuthToken
	case c.SSOToken != "" || c.CookieAuth:
		return AuthSSO
	case c.Username != "" && c.Password != "":
		return AuthBasicAuth
	default:
		return AuthBasic
	}
}

// Normalize fills in a missing AuthType from the populated credential fields.
// Applied wherever a connection is constructed, tested, or persisted so the
// effective auth type never silently mismatches the credentials it holds.
func (c Connection) Normalize() Connection {
	if c.AuthType == "" {
		c.AuthType = c.InferAuthType()
	}
	return c
}

// Validate checks that the URL is set and that the credential fields required
// by the declared auth type are present. The returned error names the auth
// type and the missing fields.
func (c Connection) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("connection %q: url is required", c.Name)
	}

	var missing []string
	switch c.AuthType {
	case AuthBasic:
		if c.Username == "" {
			missing = append(missing, "username")
		}
		if c.Token == "" {
			missing = append(missing, "token")
		}
	case AuthToken:
		if c.Token == "" {
			missing = append(missing, "token")
		}
	case AuthSSO:
		if c.SSOToken == "" && !c.CookieAuth {
			missing = append(missing, "ssoToken")
		}
	case AuthBasicAuth:
		if c.Username == "" {
			missing = append(missing, "username")
		}
		if c.Password == "" {
			missing = append(missing, "password")
		}
	default:
		return fmt.Errorf("connection %q: unknown auth type %q", c.Name, c.AuthType)
	}

	if len(missing) > 0 {
		return fmt.Errorf("connection %q: missing required credentials for %s authentication: %s",
			c.Name, c.AuthType, strings.Join(missing, ", "))
	}
	return nil
}
