package domain

// Credentials authenticate against the remote dataset repository.
type Credentials struct {
	// Username is the repository account name.
	Username string `json:"username"`

	// Key is the API key paired with Username.
	Key string `json:"key"`

	// Origin describes where the credentials were found (e.g. "env", a file path).
	Origin string `json:"-"`
}

// IsUsable returns true when both fields are set.
func (c *Credentials) IsUsable() bool {
	return c != nil && c.Username != "" && c.Key != ""
}
