package domain

// User is a registered account.
type User struct {
	// Username is the unique account name.
	Username string `json:"username"`

	// PasswordHash is the one-way hash of the account password.
	PasswordHash string `json:"password_hash"`

	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`

	// Admin marks accounts listed as administrators in server
	// configuration at registration time.
	Admin bool `json:"admin"`

	// DefaultPlugin names the plugin that handles commands no plugin
	// claims.
	DefaultPlugin string `json:"default_plugin,omitempty"`

	// Settings holds free-form per-user settings.
	Settings map[string]string `json:"settings,omitempty"`
}

// Clone creates a deep copy of the user.
func (u *User) Clone() *User {
	clone := *u
	if u.Settings != nil {
		clone.Settings = make(map[string]string, len(u.Settings))
		for k, v := range u.Settings {
			clone.Settings[k] = v
		}
	}
	return &clone
}
