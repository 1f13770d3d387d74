package config

import "strings"

// Sanitize returns a copy of the config with secrets masked, for
// logging at startup.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	sanitized.Storage.EncryptionKey = maskSecret(sanitized.Storage.EncryptionKey)
	sanitized.Auth.ClientSecretKey = maskSecret(sanitized.Auth.ClientSecretKey)
	sanitized.Auth.UserTokenKey = maskSecret(sanitized.Auth.UserTokenKey)
	sanitized.Auth.AccessTokenKey = maskSecret(sanitized.Auth.AccessTokenKey)
	sanitized.Plugins.Search.AppID = maskSecret(sanitized.Plugins.Search.AppID)

	return &sanitized
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
