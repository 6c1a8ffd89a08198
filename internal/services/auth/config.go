package auth

import "time"

type Config struct {
	JWTSecret    string
	Issuer       string
	TokenTTL     time.Duration
	ResetCodeTTL time.Duration
	AdminEmails  []string
}

func (c *Config) isAdminEmail(email string) bool {
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}
