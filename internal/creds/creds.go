// Package creds reads and writes the OAuth client credentials file. Values
// are stored base64-encoded in a JSON file so the plaintext secret never
// sits on disk verbatim.
package creds

import (
	"encoding/base64"
	"encoding/json"
	"os"

	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
)

// Credentials are the decoded client credentials for the token exchange.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
}

// DefaultGrantType is used when encoding credentials without an explicit
// grant type.
const DefaultGrantType = "client_credentials"

// Load reads a credentials file and decodes its base64 values.
func Load(path string) (*Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.NewConfigError("credentials", "cannot read "+path, err)
	}

	var encoded map[string]string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, pkgerrors.NewConfigError("credentials", "cannot parse "+path, err)
	}

	decoded := make(map[string]string, len(encoded))
	for k, v := range encoded {
		plain, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, pkgerrors.NewConfigError("credentials", "cannot decode "+k, err)
		}
		decoded[k] = string(plain)
	}

	c := &Credentials{
		ClientID:     decoded["client_id"],
		ClientSecret: decoded["client_secret"],
		GrantType:    decoded["grant_type"],
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return nil, pkgerrors.NewConfigError("credentials", "client_id and client_secret are required", nil)
	}
	if c.GrantType == "" {
		c.GrantType = DefaultGrantType
	}
	return c, nil
}

// Encode writes the credentials to path with base64-encoded values.
func Encode(path string, c *Credentials) error {
	if c.GrantType == "" {
		c.GrantType = DefaultGrantType
	}
	encoded := map[string]string{
		"client_id":     base64.StdEncoding.EncodeToString([]byte(c.ClientID)),
		"client_secret": base64.StdEncoding.EncodeToString([]byte(c.ClientSecret)),
		"grant_type":    base64.StdEncoding.EncodeToString([]byte(c.GrantType)),
	}
	raw, err := json.Marshal(encoded)
	if err != nil {
		return pkgerrors.NewConfigError("credentials", "cannot encode credentials", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return pkgerrors.NewConfigError("credentials", "cannot write "+path, err)
	}
	return nil
}
